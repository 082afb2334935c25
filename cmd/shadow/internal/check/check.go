package check

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/broady/shadow/cmd/shadow/internal/options"
	"github.com/broady/shadow/shadowgen"
)

type Cmd struct {
	Flags options.Flags `embed:""`
}

func (c *Cmd) Run(logger *slog.Logger) error {
	cfg, err := c.Flags.Resolve(logger)
	if err != nil {
		return err
	}

	r, err := shadowgen.Check(context.Background(), cfg)
	if err != nil {
		return err
	}

	for _, d := range r.Diagnostics {
		fmt.Println(d.Error())
	}
	if len(r.Diagnostics) > 0 {
		return fmt.Errorf("%d problem(s) found", len(r.Diagnostics))
	}

	excluded := len(r.Valid) - len(r.Registered)
	fmt.Printf("✓ %d shadows for %d targets", len(r.Registered), len(r.Mapping.Targets()))
	if excluded > 0 {
		fmt.Printf(" (%d unexported, not registered)", excluded)
	}
	fmt.Println()
	return nil
}
