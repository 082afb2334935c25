package gen

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/broady/shadow/cmd/shadow/internal/options"
	"github.com/broady/shadow/internal/watch"
	"github.com/broady/shadow/shadowgen"
	"github.com/broady/shadow/shadowgen/docs"
	"github.com/broady/shadow/shadowgen/golang"
	"github.com/broady/shadow/shadowgen/validate"
)

type Cmd struct {
	Out   string        `arg:"" help:"Output directory for generated files." type:"path"`
	Flags options.Flags `embed:""`
	Watch bool          `help:"Watch for changes and regenerate." short:"w"`
}

func (c *Cmd) Run(logger *slog.Logger) error {
	cfg, err := c.Flags.Resolve(logger)
	if err != nil {
		return err
	}
	cfg.OutDir = c.Out

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := round(ctx, cfg); err != nil && !c.Watch {
		return err
	}
	if !c.Watch {
		return nil
	}

	w, err := watch.New(watch.Config{
		Dir:    cfg.Dir,
		Ignore: ignores(cfg),
		Logger: logger,
		OnChange: func(ctx context.Context, changed []string) error {
			logger.Info("sources changed", slog.Int("files", len(changed)))
			return round(ctx, cfg)
		},
	})
	if err != nil {
		return err
	}
	logger.Info("watching for changes", slog.String("out", cfg.OutDir))
	return w.Run(ctx)
}

// round runs one generation round and reports its outcome.
func round(ctx context.Context, cfg *shadowgen.Config) error {
	result, err := shadowgen.Run(ctx, cfg)
	var diags validate.Diagnostics
	if errors.As(err, &diags) {
		return fmt.Errorf("%d shadow declaration problem(s); nothing was generated", len(diags))
	}
	if err != nil {
		return err
	}
	fmt.Printf("✓ %d shadows, %d files written to %s\n", result.Registered, len(result.Files), cfg.OutDir)
	return nil
}

// ignores excludes the generated output from the watched tree.
func ignores(cfg *shadowgen.Config) []string {
	name := cfg.FileName
	if name == "" {
		name = golang.DefaultFileName
	}
	docsDir := cfg.DocsDir
	if docsDir == "" {
		docsDir = docs.DefaultDir
	}
	patterns := []string{"**/" + name}

	root := cfg.Dir
	if root == "" {
		root = "."
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return patterns
	}
	rel, err := filepath.Rel(root, cfg.OutDir)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return patterns
	}
	if rel == "." {
		return append(patterns, "services/**", docsDir+"/**")
	}
	return append(patterns, filepath.ToSlash(rel)+"/**")
}
