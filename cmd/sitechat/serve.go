package main

import (
	"fmt"

	"github.com/fwojciec/sitechat"
	"github.com/fwojciec/sitechat/crawl"
	schttp "github.com/fwojciec/sitechat/http"
	"golang.org/x/sync/errgroup"
)

// Run executes the serve command. The crawl runs in the background while
// questions are answered from whatever has been stored so far. A failed
// crawl is logged and the server keeps running until the context ends; a
// crawl that reaches its time limit is an ordinary finish, not a failure.
func (c *ServeCmd) Run(deps *Dependencies) error {
	server := schttp.NewServer(deps.Asker, deps.Logger, schttp.WithCORSOrigins(c.CORSOrigins...))
	server.Addr = c.Listen
	if err := server.Open(); err != nil {
		fmt.Fprintf(deps.Stderr, "error: cannot listen on %s: %v\n", c.Listen, err)
		return err
	}
	defer server.Close()

	fmt.Fprintf(deps.Stdout, "Listening on %s\n", server.URL())

	g, ctx := errgroup.WithContext(deps.Ctx)

	g.Go(func() error {
		outcome := <-crawl.Start(ctx, deps.Crawler, c.startURL(), crawl.MatchDomain(c.Domain), c.CrawlTimeout, deps.Progress)
		switch {
		case outcome.Err == nil || ctx.Err() != nil:
		case sitechat.ErrorCode(outcome.Err) == sitechat.ETIMEOUT:
			deps.Logger.Info("crawl stopped at its time limit", "domain", c.Domain, "timeout", c.CrawlTimeout)
		default:
			deps.Logger.Error("crawl failed", "domain", c.Domain, "err", sitechat.ErrorMessage(outcome.Err))
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		return nil
	})

	return g.Wait()
}
