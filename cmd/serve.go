package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/churnlens-cli/internal/server"
	"github.com/KaramelBytes/churnlens-cli/internal/session"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the dashboard views as a JSON HTTP API",
	Long: `Serve the dashboard views as a JSON HTTP API. The current session, if
any, is served at startup; POST /api/dataset replaces it and
DELETE /api/dataset clears it.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := requireConfig()
		if err != nil {
			return err
		}
		st := session.NewStore(c.SessionDir)
		snap, err := st.Load()
		if err != nil && !errors.Is(err, session.ErrNoSession) {
			return err
		}
		addr := c.ListenAddr
		if serveAddr != "" {
			addr = serveAddr
		}

		// request and lifecycle logs go to stderr at info level
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
		srv := server.New(server.Options{
			Addr:        addr,
			CORSOrigins: c.CORSOrigins,
			PageSize:    c.PageSize,
			Views:       viewOptions(),
			Store:       st,
			Logger:      logger,
		}, snap)

		if snap != nil {
			fmt.Printf("✓ Serving %s (%d customers) on %s\n", snap.Source, snap.Dataset.Len(), addr)
		} else {
			fmt.Printf("✓ Serving on %s (no dataset loaded yet)\n", addr)
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return srv.ListenAndServe(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config, :8080)")
}
