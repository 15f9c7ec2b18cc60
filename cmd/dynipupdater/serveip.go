package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"time"

	"dynipupdater/internal/app"
	"dynipupdater/internal/whoami"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func serveIPCmd() *cobra.Command {
	var (
		listen     string
		trustProxy bool
	)
	cmd := &cobra.Command{
		Use:   "serve-ip",
		Short: "Serve GET /ip, answering with the caller's public IP as plain text",
		RunE: func(cmd *cobra.Command, args []string) error {
			if logLevel != "" {
				app.SetupLogging(logLevel)
			}
			listener, err := net.Listen("tcp", listen)
			if err != nil {
				return fmt.Errorf("error while listening HTTP: %w", err)
			}

			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, shutdownSignals...)
			defer signal.Stop(sigChan)

			return serveIP(listener, trustProxy, sigChan)
		},
	}
	cmd.Flags().StringVar(&listen, "listen", ":8472", "address to listen on")
	cmd.Flags().BoolVar(&trustProxy, "trust-proxy", false, "take the address from X-Forwarded-For / X-Real-IP")
	return cmd
}

func serveIP(listener net.Listener, trustProxy bool, signals <-chan os.Signal) error {
	srv := &http.Server{
		Handler:           whoami.NewRouter(trustProxy),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errChan := make(chan error, 1)
	go func() {
		if e := srv.Serve(listener); e != nil && !errors.Is(e, http.ErrServerClosed) {
			errChan <- fmt.Errorf("failed to serve HTTP: %w", e)
		}
	}()
	log.Info().Msgf("Serving source IP on %s", listener.Addr())

	select {
	case sig := <-signals:
		log.Info().Msgf("received signal: %v", sig)
	case err := <-errChan:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
