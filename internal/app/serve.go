package app

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/birthlog/internal/httpapi"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the JSON API",
	Long: `Serve records, streak, achievements and preferences over HTTP, with
Prometheus metrics at /metrics. Stops gracefully on SIGINT or SIGTERM.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from config server.addr)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer func() { _ = e.Close() }()

	addr := e.cfg.Server.Addr
	if serveAddr != "" {
		addr = serveAddr
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := httpapi.New(e.tracker, httpapi.Options{
		RateLimit:      e.cfg.Server.RateLimit,
		RateBurst:      e.cfg.Server.RateBurst,
		AllowedOrigins: e.cfg.Server.AllowedOrigins,
		Logger:         slog.Default(),
		Ping:           e.db.Ping,
	})
	return srv.ListenAndServe(ctx, addr)
}
