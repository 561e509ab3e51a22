package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/agentic-research/litgrep/internal/mcpserver"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve [root]",
		Short: "Serve find_string as an MCP tool over stdio",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := "."
			if len(args) == 1 {
				root = args[0]
			}
			abs, err := filepath.Abs(root)
			if err != nil {
				return fmt.Errorf("resolve root: %w", err)
			}
			if info, err := os.Stat(abs); err != nil || !info.IsDir() {
				return fmt.Errorf("serve root %s is not a directory", abs)
			}

			level, err := cmd.Flags().GetString("log-level")
			if err != nil {
				return err
			}
			// stdout carries the protocol, so logs go to stderr only.
			logger, err := newLogger(cmd.ErrOrStderr(), level)
			if err != nil {
				return err
			}

			logger.Info("serving", "root", abs)
			return mcpserver.Serve(Version, &mcpserver.Handler{Root: abs, Logger: logger})
		},
	}
}
