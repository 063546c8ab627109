// internal/cli/version.go
package cli

import (
	"encoding/json"
	"fmt"

	"github.com/dalemusser/audiencekit/pantry/version"
)

type VersionCmd struct {
	JSON bool `help:"Print as JSON"`
}

func (c *VersionCmd) Run(g *Global) error {
	info := version.Get()
	if c.JSON {
		enc := json.NewEncoder(g.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(info)
	}
	_, err := fmt.Fprintf(g.Stdout, "audiencekit %s %s %s/%s\n", version.String(), info.GoVersion, info.OS, info.Arch)
	return err
}
