package cmd

import (
	"github.com/spf13/cobra"

	"github.com/dev-kir/web-stress/internal/config"
	"github.com/dev-kir/web-stress/internal/observability"
	"github.com/dev-kir/web-stress/internal/stressserver"
)

func newServeCmd() *cobra.Command {
	var (
		addr     string
		serverID string
	)

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the synthetic stress server",
		Long: `Starts the web server the traffic generator points at: realistic pages that
burn database time, CPU, memory, and bandwidth in believable proportions,
plus parameterized /stress and /extreme endpoints for targeted load. Every
response carries an X-Server-ID header so clients can verify how a load
balancer spreads requests across a pool.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Get()

			srvCfg := cfg.Server
			if cmd.Flags().Changed("addr") {
				srvCfg.Addr = addr
			}
			if cmd.Flags().Changed("server-id") {
				srvCfg.ServerID = serverID
			}

			srv := stressserver.New(srvCfg, observability.GetLogger())
			return srv.ListenAndServe(cmd.Context())
		},
	}

	serveCmd.Flags().StringVar(&addr, "addr", ":7777", "listen address")
	serveCmd.Flags().StringVar(&serverID, "server-id", "", "identifier reported in X-Server-ID (default: hostname)")

	return serveCmd
}
