package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"paketetl/internal/api"
)

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "serve GET /listpaket for every configured module",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "addr", Usage: "listen address override (e.g. :8080)", EnvVars: []string{"PAKET_ADDR"}},
		},
		Action: runServe,
	}
}

func runServe(c *cli.Context) error {
	env, err := loadEnv(c)
	if err != nil {
		return err
	}
	defer env.close()

	scrape, flush := setupMetrics(env.settings.Metrics, env.log)
	defer flush()

	mods, err := api.BuildModules(env.settings, &env.log)
	if err != nil {
		return err
	}

	sc := env.settings.Server
	addr := sc.Addr
	if v := c.String("addr"); v != "" {
		addr = v
	}
	if addr == "" {
		addr = ":8080"
	}

	srv := &http.Server{
		Addr: addr,
		Handler: api.NewServer(api.Config{
			Logger:         env.log,
			RequestTimeout: seconds(sc.RequestTimeout),
			Metrics:        scrape,
		}, mods...).Router(),
		ReadTimeout:  seconds(sc.ReadTimeout),
		WriteTimeout: seconds(sc.WriteTimeout),
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() {
		env.log.Info().
			Str("addr", addr).
			Strs("modules", env.settings.ModuleNames()).
			Msg("paketetl listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	env.log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		env.log.Error().Err(err).Msg("graceful shutdown error")
		return err
	}
	env.log.Info().Msg("stopped")
	return nil
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}
