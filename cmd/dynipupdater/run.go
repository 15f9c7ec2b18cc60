package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"sync"
	"syscall"
	"time"

	"dynipupdater/constant"
	v1 "dynipupdater/internal/api/v1"
	"dynipupdater/internal/app"
	"dynipupdater/internal/logbuffer"
	"dynipupdater/internal/pidfile"
	"dynipupdater/internal/report"
	"dynipupdater/models"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

const pidFileLocation = constant.RunDir + "/dynipupdater.pid"

var pidFilePath = pidFileLocation

var shutdownSignals = []os.Signal{os.Interrupt, syscall.SIGTERM, syscall.SIGHUP}

func runService(cmd *cobra.Command, logs *logbuffer.Buffer) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	log.Info().
		Str("version", constant.Version).
		Str("commit", constant.Commit).
		Msg("starting dynipupdater")

	core, cfg, err := prepare(ctx, true)
	if err != nil {
		return err
	}

	pid := pidfile.New(filepath.Clean(pidFilePath))
	if err := pid.Acquire(); err != nil {
		return fmt.Errorf("failed to create PID file: %w", err)
	}
	defer pid.Release()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, shutdownSignals...)
	defer signal.Stop(sigChan)

	return serve(ctx, cmd.OutOrStdout(), core, cfg.App.HTTPAPI, logs, sigChan)
}

// serve opens the rules, waits for a shutdown signal or an API close
// request and closes them again. signals must already be subscribed so a
// signal that arrives while rules are being opened is not lost.
func serve(ctx context.Context, out io.Writer, core *app.App, apiCfg models.HTTPAPI, logs *logbuffer.Buffer, signals <-chan os.Signal) error {
	openResults, err := core.Open(ctx)
	if err != nil {
		return err
	}
	printOpen(out, core, openResults)

	select {
	case sig := <-signals:
		log.Info().Msgf("received signal while opening: %v", sig)
		return finish(out, core, nil, openResults)
	default:
	}

	closeRequested := make(chan struct{})
	var requestOnce sync.Once
	requestClose := func() {
		requestOnce.Do(func() { close(closeRequested) })
	}

	errChan := make(chan error, 1)
	var srv *http.Server
	if apiCfg.Enabled {
		srv, err = setupHTTP(core, logs, requestClose, apiCfg, errChan)
		if err != nil {
			// the rules are already open, keep going so they get closed
			log.Error().Err(err).Msg("setupHTTP error")
		} else {
			log.Info().Msgf("Starting HTTP API on %s", srv.Addr)
		}
	}

	select {
	case sig := <-signals:
		log.Info().Msgf("received signal: %v", sig)
	case <-closeRequested:
	case err := <-errChan:
		log.Error().Err(err).Msg("server error")
	}

	return finish(out, core, srv, openResults)
}

func finish(out io.Writer, core *app.App, srv *http.Server, openResults []models.RuleChangeResult) error {
	closeResults, closeErr := core.Close(context.Background())

	if srv != nil {
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancelShutdown()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				log.Warn().Msg("HTTP server shutdown timed out; some connections may not have closed cleanly")
			} else {
				log.Error().Err(err).Msg("HTTP server shutdown error")
			}
		}
	}

	if closeErr != nil {
		return closeErr
	}
	printClose(out, closeResults)
	log.Info().Msg("service stopped")

	if models.AnyFailed(openResults) || models.AnyFailed(closeResults) {
		return exitCode(2)
	}
	return nil
}

func setupHTTP(core *app.App, logs *logbuffer.Buffer, onClose func(), cfg models.HTTPAPI, errChan chan error) (*http.Server, error) {
	listener, err := net.Listen("tcp", net.JoinHostPort(cfg.Address, strconv.Itoa(int(cfg.Port))))
	if err != nil {
		return nil, fmt.Errorf("error while listening HTTP: %w", err)
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Mount("/api", v1.NewRouter(v1.NewHandler(core, logs, onClose)))

	srv := &http.Server{
		Addr:              listener.Addr().String(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if e := srv.Serve(listener); e != nil && !errors.Is(e, http.ErrServerClosed) {
			errChan <- fmt.Errorf("failed to serve HTTP: %w", e)
		}
		_ = listener.Close()
	}()
	return srv, nil
}

func printOpen(out io.Writer, core *app.App, results []models.RuleChangeResult) {
	report.PublicIP(out, core.PublicIP())
	report.Results(out, "Opening ports for "+core.Config().Settings.DeviceName, results)
}

func printClose(out io.Writer, results []models.RuleChangeResult) {
	report.Results(out, "Closing ports", results)
}
