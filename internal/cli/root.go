// Package cli wires the pneuma commands onto the DI container.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"pneuma/internal/application/port/output"
	"pneuma/internal/automation"
	"pneuma/internal/di"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const closeTimeout = 10 * time.Second

type rootCommand struct {
	cfg          di.Config
	newContainer func(context.Context, di.Config) (*di.Container, error)
}

// NewRootCommand builds the command tree. Defaults come from config and flags override them.
func NewRootCommand(config output.ConfigPort) *cobra.Command {
	c := &rootCommand{
		cfg:          di.ConfigFromEnv(config),
		newContainer: di.NewContainer,
	}

	root := &cobra.Command{
		Use:          "pneuma",
		Short:        "Drive a headless browser from JavaScript",
		Version:      automation.Version,
		SilenceUsage: true,
	}
	root.PersistentFlags().AddFlagSet(c.flagSet())

	root.AddCommand(
		c.runCommand(),
		c.evalCommand(),
		c.snapshotCommand(),
		c.serveCommand(),
	)
	return root
}

func (c *rootCommand) flagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("global", pflag.ContinueOnError)
	fs.StringVar(&c.cfg.Engine, "engine", c.cfg.Engine, "engine behind the bridge: chromium or static")
	fs.BoolVar(&c.cfg.Headless, "headless", c.cfg.Headless, "run Chromium without a window")
	fs.StringVar(&c.cfg.BrowserBin, "browser-bin", c.cfg.BrowserBin, "path to the Chromium binary")
	fs.StringVar(&c.cfg.ControlURL, "control-url", c.cfg.ControlURL, "attach to a running browser's DevTools URL")
	fs.StringVar(&c.cfg.Log.Level, "log-level", c.cfg.Log.Level, "debug, info, warn or error")
	fs.StringVar(&c.cfg.Log.Dir, "log-dir", c.cfg.Log.Dir, "also write JSON logs to this directory")
	fs.DurationVar(&c.cfg.Timeout, "timeout", c.cfg.Timeout, "limit for a single script run (0 disables)")
	return fs
}

// withContainer builds a container for one command and always tears it down.
func (c *rootCommand) withContainer(cmd *cobra.Command, fn func(ctx context.Context, ct *di.Container) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	ct, err := c.newContainer(ctx, c.cfg)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), closeTimeout)
		defer cancel()
		ct.Close(closeCtx)
	}()

	return fn(ctx, ct)
}

func printValue(w io.Writer, v any) error {
	if s, ok := v.(string); ok {
		_, err := fmt.Fprintln(w, s)
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
