package main

import (
	"fmt"
	"unicode/utf8"

	"github.com/fwojciec/sitechat"
	"github.com/fwojciec/sitechat/crawl"
)

// Run executes the sources command.
func (c *SourcesCmd) Run(deps *Dependencies) error {
	pages, err := deps.Pages.ListPages(deps.Ctx)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", sitechat.ErrorMessage(err))
		return err
	}

	if c.Full {
		// Same text the model receives.
		block, err := sitechat.AssembleContext(pages)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s. Run 'sitechat crawl --domain <domain>' first.\n", sitechat.ErrorMessage(err))
			return err
		}
		fmt.Fprintln(deps.Stdout, block)
		return nil
	}

	if len(pages) == 0 {
		fmt.Fprintln(deps.Stdout, "No pages stored. Run 'sitechat crawl --domain <domain>' first.")
		return nil
	}

	total := 0
	for _, p := range pages {
		total += utf8.RuneCountInString(p.Content)
	}

	fmt.Fprintf(deps.Stdout, "Pages (%d total, %s):\n\n", len(pages), crawl.FormatChars(total))
	for i, p := range pages {
		title := p.Title
		if title == "" {
			title = p.URL
		}
		fmt.Fprintf(deps.Stdout, "  %d. %s\n     %s\n", i+1, title, crawl.TruncateURL(p.URL, 80))
	}
	return nil
}
