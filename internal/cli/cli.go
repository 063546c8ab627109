// internal/cli/cli.go
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"
	"go.uber.org/zap"

	"github.com/dalemusser/audiencekit/logging"
)

// Global is bound into every command's Run method.
type Global struct {
	Ctx    context.Context
	Logger *zap.Logger
	Stdin  io.Reader
	Stdout io.Writer
}

// CLI is the command tree and its global flags.
type CLI struct {
	Verbose bool `short:"v" help:"Enable debug logging on stderr"`

	Merge   MergeCmd   `cmd:"" help:"Merge extension mappings into an original mapping"`
	Query   QueryCmd   `cmd:"" help:"Insert or replace query parameters in a URL"`
	Serve   ServeCmd   `cmd:"" passthrough:"" help:"Run the HTTP service (flags are the service config flags)"`
	Version VersionCmd `cmd:"" help:"Print build information"`
}

// exitCode carries kong's requested exit status out of Parse.
type exitCode int

// Run is the entrypoint used by cmd/audiencekit. args exclude the binary
// name. It returns a process exit code; callers should os.Exit(Run(...)).
func Run(binName string, args []string) int {
	return run(context.Background(), binName, args, os.Stdin, os.Stdout, os.Stderr)
}

func run(ctx context.Context, binName string, args []string, stdin io.Reader, stdout, stderr io.Writer) (code int) {
	// kong calls Exit after --help; unwind instead of exiting the process.
	defer func() {
		if r := recover(); r != nil {
			c, ok := r.(exitCode)
			if !ok {
				panic(r)
			}
			code = int(c)
		}
	}()

	var cli CLI
	parser, err := kong.New(&cli,
		kong.Name(binName),
		kong.Description("Audience List helpers: object merge and URL query upsert."),
		kong.UsageOnError(),
		kong.Writers(stdout, stderr),
		kong.Exit(func(c int) { panic(exitCode(c)) }),
	)
	if err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", binName, err)
		return 1
	}

	kctx, err := parser.Parse(args)
	if err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", binName, err)
		return 1
	}

	logger := logging.CLILogger(cli.Verbose)
	defer func() { _ = logger.Sync() }()

	g := &Global{Ctx: ctx, Logger: logger, Stdin: stdin, Stdout: stdout}
	if err := kctx.Run(g); err != nil {
		logger.Debug("command failed", zap.String("command", kctx.Command()), zap.Error(err))
		fmt.Fprintf(stderr, "%s: %v\n", binName, err)
		return 1
	}
	return 0
}
