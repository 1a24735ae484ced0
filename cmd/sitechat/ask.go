package main

import (
	"encoding/json"
	"fmt"

	"github.com/fwojciec/sitechat"
)

// Run executes the ask command.
func (c *AskCmd) Run(deps *Dependencies) error {
	result, err := deps.Asker.Ask(deps.Ctx, c.Question)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", sitechat.ErrorMessage(err))
		return err
	}

	if c.JSON {
		enc := json.NewEncoder(deps.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	fmt.Fprintln(deps.Stdout, result.Answer)
	if len(result.Sources) > 0 {
		fmt.Fprintln(deps.Stdout, "\nSources:")
		for _, src := range result.Sources {
			fmt.Fprintf(deps.Stdout, "  - %s\n", src)
		}
	}
	fmt.Fprintf(deps.Stdout, "\n(%d input tokens, %d output tokens)\n", result.Usage.InputTokens, result.Usage.OutputTokens)
	return nil
}
