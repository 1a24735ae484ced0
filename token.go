package sitechat

import "context"

// TokenCounter estimates the model tokens in a piece of page text.
// Crawls use it to report what the stored corpus will cost per question.
type TokenCounter interface {
	// CountTokens returns the number of tokens in text.
	CountTokens(ctx context.Context, text string) (int, error)
}
