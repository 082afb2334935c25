package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
	"github.com/broady/shadow/cmd/shadow/internal/check"
	"github.com/broady/shadow/cmd/shadow/internal/gen"
	"github.com/mattn/go-isatty"
)

type CLI struct {
	LogLevel slog.Level `help:"Log level (debug, info, warn, error)." default:"info" name:"log-level"`

	Version VersionCmd `cmd:"" help:"Print version information."`
	Gen     gen.Cmd    `cmd:"" help:"Generate the shadow registry, service listing and documentation."`
	Check   check.Cmd  `cmd:"" help:"Validate shadow declarations without generating files."`
}

type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Println(Version())
	return nil
}

// newLogger logs text to terminals and JSON everywhere else.
func newLogger(w *os.File, level slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if isatty.IsTerminal(w.Fd()) || isatty.IsCygwinTerminal(w.Fd()) {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

func main() {
	cli := &CLI{}
	ctx := kong.Parse(cli,
		kong.Name("shadow"),
		kong.Description("Generate registries of shadow types that substitute for platform types."),
		kong.UsageOnError(),
	)
	logger := newLogger(os.Stderr, cli.LogLevel)
	slog.SetDefault(logger)

	err := ctx.Run(logger)
	ctx.FatalIfErrorf(err)
}
