package answer

import (
	"context"
	"strings"
	"time"

	"github.com/fwojciec/sitechat"
)

// DefaultTimeout bounds one backend call.
const DefaultTimeout = 60 * time.Second

// Ensure Service implements sitechat.Asker at compile time.
var _ sitechat.Asker = (*Service)(nil)

// Service answers questions from every page in the store.
type Service struct {
	Pages       sitechat.PageStore
	Synthesizer *Synthesizer
	Policy      sitechat.QuestionPolicy

	// Timeout bounds the backend call. Zero means DefaultTimeout.
	Timeout time.Duration
}

// NewService creates a Service with the default question policy.
func NewService(pages sitechat.PageStore, completer sitechat.Completer) *Service {
	return &Service{
		Pages:       pages,
		Synthesizer: NewSynthesizer(completer),
		Policy:      sitechat.DefaultQuestionPolicy(),
	}
}

// SourceInfo returns the stored pages as a mapping from URL to content.
func (s *Service) SourceInfo(ctx context.Context) (map[string]string, error) {
	pages, err := s.Pages.ListPages(ctx)
	if err != nil {
		return nil, err
	}
	return sitechat.PageMap(pages), nil
}

// Ask validates the question, assembles every stored page into one context
// block and asks the backend. Sources the backend cites that are not among
// the stored pages are dropped.
func (s *Service) Ask(ctx context.Context, question string) (*sitechat.AnsweredResult, error) {
	if err := s.Policy.Validate(question).Err(); err != nil {
		return nil, err
	}

	pages, err := s.Pages.ListPages(ctx)
	if err != nil {
		return nil, err
	}

	contextBlock, err := sitechat.AssembleContext(pages)
	if err != nil {
		return nil, err
	}

	timeout := s.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	result, err := s.Synthesizer.Synthesize(ctx, question, contextBlock)
	if err != nil {
		return nil, err
	}

	result.Sources = KnownSources(result.Sources, pages)
	return result, nil
}

// KnownSources keeps the cited sources that name a stored page, in order and
// without duplicates. Labels may keep the brackets used in the context block.
func KnownSources(sources []string, pages []*sitechat.Page) []string {
	known := make(map[string]bool, len(pages))
	for _, p := range pages {
		known[p.URL] = true
	}

	seen := make(map[string]bool, len(sources))
	out := make([]string, 0, len(sources))
	for _, src := range sources {
		src = strings.TrimSpace(src)
		src = strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(src, "["), "]"))
		if !known[src] || seen[src] {
			continue
		}
		seen[src] = true
		out = append(out, src)
	}
	return out
}
