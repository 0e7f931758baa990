package main

import (
	"github.com/spf13/cobra"

	"github.com/thywilljoshua/poster-to-web/internal/server"
)

func serveCmd(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the document API over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if addr == "" {
				addr = a.cfg.Server.Addr
			}
			st, err := a.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			opts, err := a.exportOptions(ctx)
			if err != nil {
				return err
			}
			srv := server.New(server.Config{
				Store:          st,
				Convert:        a.convertConfig(ctx),
				Export:         opts,
				MaxUploadBytes: a.cfg.Server.MaxUploadMB << 20,
				Logger:         a.log,
			})
			return srv.Run(ctx, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from server.addr)")
	return cmd
}
