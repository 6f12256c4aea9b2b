package main

import (
	"github.com/Zuo-Peng/chatlens/internal/config"
	"github.com/Zuo-Peng/chatlens/internal/server"
	"github.com/spf13/cobra"
)

func serveCmd() *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the web dashboard: upload an export and browse its analysis",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if listen == "" {
				listen = cfg.Listen
			}

			a, err := newAnalyzer(cfg)
			if err != nil {
				return err
			}
			charts, err := newCharts(cfg)
			if err != nil {
				return err
			}

			srv := server.New(server.Options{
				Analyzer:       a,
				Charts:         charts,
				Report:         reportOptions(cfg),
				MaxUploadBytes: cfg.MaxUploadBytes(),
			})
			return srv.Start(listen)
		},
	}

	cmd.Flags().StringVar(&listen, "listen", "", "Address to listen on (default from config, "+config.DefaultListen+")")

	return cmd
}
