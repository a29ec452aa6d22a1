package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/dmrgn/portfolio/backend/internal/infrastructure/config"
	"github.com/dmrgn/portfolio/backend/internal/infrastructure/server"
)

// Version information (set at build time).
var (
	Version   = "1.0.0"
	GitCommit = "unknown"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "portfolio",
		Short: "Portfolio backend server",
		Long: `Serves the portfolio sessions: the landing page crash, the code editor
file tree and tabs, and the scripted canvas window.

Configuration comes from environment variables; flags override them.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := applyFlags(cmd, cfg); err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}

	rootCmd.SetVersionTemplate(`{{.Name}} {{.Version}}
`)

	rootCmd.Flags().String("port", "", "Server port (overrides PORT)")
	rootCmd.Flags().String("host", "", "Bind address (overrides HOST)")
	rootCmd.Flags().Bool("dev", false, "Development mode: colored console logs at debug level")
	rootCmd.Flags().String("data-dir", "", "Dataset directory (overrides DATA_DIR)")
	rootCmd.Flags().Bool("watch", false, "Reload the dataset when files in --data-dir change")

	rootCmd.AddCommand(newVersionCmd())
	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "portfolio %s (%s)\n", Version, GitCommit)
		},
	}
}

// applyFlags copies explicitly set flags over cfg
func applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	var err error
	if flags.Changed("port") {
		if cfg.Server.Port, err = flags.GetString("port"); err != nil {
			return err
		}
	}
	if flags.Changed("host") {
		if cfg.Server.Host, err = flags.GetString("host"); err != nil {
			return err
		}
	}
	if flags.Changed("dev") {
		if cfg.Logging.Development, err = flags.GetBool("dev"); err != nil {
			return err
		}
		if cfg.Logging.Development {
			cfg.Logging.Level = "debug"
		}
	}
	if flags.Changed("data-dir") {
		if cfg.Data.Dir, err = flags.GetString("data-dir"); err != nil {
			return err
		}
	}
	if flags.Changed("watch") {
		if cfg.Data.Watch, err = flags.GetBool("watch"); err != nil {
			return err
		}
	}
	return nil
}

func serve(parent context.Context, cfg *config.Config) error {
	srv, err := server.NewServer(cfg)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	// Handle graceful shutdown
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Run()
	}()

	select {
	case <-ctx.Done():
	case err = <-errChan:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if cerr := srv.Close(shutdownCtx); cerr != nil && err == nil {
		err = cerr
	}
	return err
}
