// internal/cli/serve.go
package cli

import (
	"github.com/dalemusser/audiencekit/app"
	"github.com/dalemusser/audiencekit/internal/app/bootstrap"
)

// ServeCmd hands every argument after `serve` to the config loader, so
// `audiencekit serve --http_port 9000 --api_key ...` works unchanged.
type ServeCmd struct {
	Args []string `arg:"" optional:"" help:"Service flags, see config"`
}

func (c *ServeCmd) Run(g *Global) error {
	return app.Run(g.Ctx, bootstrap.Hooks(c.Args))
}
