package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/shouni/image-studio-kit/internal/server"
	"github.com/shouni/image-studio-kit/pkg/loader"
)

func newServeCmd(a *app) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			srv, err := server.New(server.Config{
				Studio:      a.studio,
				Loader:      loader.New(loader.WithoutLocalFiles(), loader.WithLogger(a.logger)),
				Store:       a.store,
				Defaults:    a.applyFlags(a.cfg.Defaults()),
				DefaultsFor: a.cfg.DefaultsFor,
				Logger:      a.logger,
			})
			if err != nil {
				return err
			}

			if addr == "" {
				addr = a.cfg.Addr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return srv.ListenAndServe(ctx, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default IMAGE_STUDIO_ADDR)")
	return cmd
}
