package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"checkctl/internal/config"
	"checkctl/internal/server"
	"checkctl/internal/system"
)

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("addr", "a", "127.0.0.1:8787", "address to bind (host:port)")
	serveCmd.Flags().String("state", "", "bbolt state file (default: <config dir>/state.db, empty flag keeps default)")
	serveCmd.Flags().Bool("ephemeral", false, "keep state in memory only, nothing persists")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the checkbox authority server",
	Long:  "serve owns the truth: it stores all ten million bits, answers range\nqueries, and broadcasts every toggle to all connected viewers.",
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("addr")
		statePath, _ := cmd.Flags().GetString("state")
		ephemeral, _ := cmd.Flags().GetBool("ephemeral")

		if ephemeral {
			statePath = ""
		} else if statePath == "" {
			dir, err := config.Dir()
			if err != nil {
				return err
			}
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return err
			}
			statePath = filepath.Join(dir, "state.db")
		}

		srv := &server.Server{Addr: addr, StatePath: statePath}

		// Handle Ctrl+C
		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		system.Logger.Info("starting authority", "addr", addr, "state", statePath)
		if err := srv.Start(ctx); err != nil {
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		}
		return nil
	},
}
