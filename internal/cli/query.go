// internal/cli/query.go
package cli

import (
	"fmt"

	"github.com/dalemusser/audiencekit/internal/app/audience"
	"github.com/dalemusser/audiencekit/pantry/urlutil"
)

// QueryCmd implements `query URL [KEY [VALUE]] [--set k=v ...]`.
type QueryCmd struct {
	URL    string   `arg:"" help:"URL to rewrite"`
	Key    string   `arg:"" optional:"" help:"Parameter name"`
	Value  string   `arg:"" optional:"" help:"Parameter value, written as is"`
	Set    []string `short:"s" sep:"none" placeholder:"KEY=VALUE" help:"Additional parameters, applied in order after KEY"`
	Strict bool     `help:"Require an absolute http(s) URL"`
}

func (c *QueryCmd) Run(g *Global) error {
	var params []urlutil.Param
	if c.Key != "" || c.Value != "" {
		params = append(params, urlutil.Param{Key: c.Key, Value: c.Value})
	}
	for _, s := range c.Set {
		p, err := urlutil.ParseParam(s)
		if err != nil {
			return fmt.Errorf("--set: %w", err)
		}
		params = append(params, p)
	}

	out, err := audience.New(g.Logger).Upsert(c.URL, params, c.Strict)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(g.Stdout, out)
	return err
}
