package main

import (
	"fmt"

	"github.com/fwojciec/sitechat"
	"github.com/fwojciec/sitechat/crawl"
)

// Run executes the crawl command.
func (c *CrawlCmd) Run(deps *Dependencies) error {
	startURL := c.startURL()
	fmt.Fprintf(deps.Stdout, "Crawling %s\n", startURL)

	outcome := <-crawl.Start(deps.Ctx, deps.Crawler, startURL, crawl.MatchDomain(c.Domain), c.CrawlTimeout, deps.Progress)
	if outcome.Result != nil {
		fmt.Fprintf(deps.Stdout, "  %s\n", outcome.Result.Summary())
	}
	if outcome.Err != nil {
		fmt.Fprintf(deps.Stderr, "error crawling: %s\n", sitechat.ErrorMessage(outcome.Err))
		return outcome.Err
	}
	return nil
}
