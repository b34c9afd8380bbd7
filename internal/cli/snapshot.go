package cli

import (
	"context"
	"fmt"
	"os"

	"pneuma/internal/di"
	"pneuma/internal/infrastructure/markup"

	"github.com/spf13/cobra"
)

func (c *rootCommand) snapshotCommand() *cobra.Command {
	var (
		clean      bool
		screenshot string
	)

	cmd := &cobra.Command{
		Use:   "snapshot <url>",
		Short: "Print the HTML of a page, optionally saving a screenshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withContainer(cmd, func(ctx context.Context, ct *di.Container) error {
				page, err := ct.Namespace.Open(ctx, args[0], nil)
				if err != nil {
					return err
				}

				content, err := page.Content(ctx)
				if err != nil {
					return err
				}
				if clean {
					content, err = markup.NewCleaner(markup.DefaultConfig()).Clean(content)
					if err != nil {
						return err
					}
				}

				if screenshot != "" {
					data, err := page.Screenshot(ctx)
					if err != nil {
						return err
					}
					if err := os.WriteFile(screenshot, data, 0o644); err != nil {
						return fmt.Errorf("write screenshot: %w", err)
					}
					ct.Logger.Info("Screenshot saved", "path", screenshot, "bytes", len(data))
				}

				_, err = fmt.Fprintln(cmd.OutOrStdout(), content)
				return err
			})
		},
	}

	cmd.Flags().BoolVar(&clean, "clean", false, "strip scripts, styles and noisy attributes")
	cmd.Flags().StringVar(&screenshot, "screenshot", "", "write a JPEG screenshot to this file")
	return cmd
}
