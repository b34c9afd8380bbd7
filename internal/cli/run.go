package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"pneuma/internal/di"

	"github.com/spf13/cobra"
)

func (c *rootCommand) runCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "run <script.js | ->",
		Short: "Run a script file against the automation namespace",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, source, err := readScript(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}

			return c.withContainer(cmd, func(ctx context.Context, ct *di.Container) error {
				res, err := ct.Runner.Run(ctx, name, source)
				if err != nil {
					return err
				}
				if res.Value == nil {
					return nil
				}
				return printValue(cmd.OutOrStdout(), res.Value)
			})
		},
	}
}

func (c *rootCommand) evalCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "eval <expression>",
		Short: "Evaluate one expression and print its value",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withContainer(cmd, func(ctx context.Context, ct *di.Container) error {
				res, err := ct.Runner.Eval(ctx, strings.Join(args, " "))
				if err != nil {
					return err
				}
				return printValue(cmd.OutOrStdout(), res.Value)
			})
		},
	}
}

func readScript(stdin io.Reader, path string) (string, string, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", "", fmt.Errorf("read stdin: %w", err)
		}
		return "<stdin>", string(data), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", "", fmt.Errorf("read script: %w", err)
	}
	return filepath.Base(path), string(data), nil
}
