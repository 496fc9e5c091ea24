package commands

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jkoskela/nakkikone/pkg/api"
)

// ServeCmd creates the serve command
func ServeCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the booking API over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, _ := cmd.Flags().GetString("addr")
			if addr == "" {
				addr = app.Cfg.ListenAddr
			}

			app.Logger.Info("Starting server", zap.String("addr", addr))

			ctx, stop := signal.NotifyContext(app.Ctx, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			handler := api.NewHandler(app.Store, app.Catalog, app.Directory, app.Logger)
			return api.NewServer(addr, handler, app.Logger).Run(ctx)
		},
	}

	cmd.Flags().String("addr", "", "Listen address (overrides config)")

	return cmd
}
