package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ralborta/cucuru-bridge/config"
	"github.com/ralborta/cucuru-bridge/internal/http/chi"
	"github.com/ralborta/cucuru-bridge/metrics"
	"github.com/ralborta/cucuru-bridge/routes"
	"github.com/ralborta/cucuru-bridge/upstream"
	"github.com/ralborta/cucuru-bridge/webhook"
	"github.com/ralborta/cucuru-bridge/webhook/auth"
	"github.com/rs/zerolog"
)

const TIMEOUT = 30 * time.Second

/* main wires the bridge together: configuration, the outbound provider
 * client, the inbound webhook gate and the HTTP surface. Configuration
 * problems are fatal before the listener binds; everything after that
 * is per-request and recoverable.
 */

func main() {
	cfg, err := config.GetConfig()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	verifier, err := auth.NewVerifier(auth.Settings{
		HeaderName:      cfg.InboundHeaderName,
		HeaderValue:     cfg.InboundHeaderValue,
		Secret:          cfg.WebhookSecret,
		SignatureHeader: cfg.SignatureHeader,
		Algorithm:       cfg.HMACAlgo,
	})
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	table := routes.NewLoader()
	if cfg.UpstreamRoutesFile != "" {
		err = table.Load(cfg.UpstreamRoutesFile)
	} else {
		err = table.LoadDefaults()
	}
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	recorder, err := metrics.NewRecorder()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT,
	)
	defer stop()

	logger := zerolog.New(os.Stdout).With().
		Timestamp().
		Str("service", "cucuru-bridge").
		Logger()

	client := upstream.NewClient(cfg.BaseURL, cfg.APIKey, cfg.CollectorID, logger)
	gate := webhook.NewService(logger)

	r := chi.Handlers(ctx, cfg, client, table, gate, verifier, recorder)
	http.Handle("/", r)
	srv := &http.Server{
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		Addr:         ":" + cfg.Port,
		Handler:      http.DefaultServeMux,
	}

	errShutdown := make(chan error, 1)
	go shutdown(srv, ctx, errShutdown)
	fmt.Printf("Listening on port %s\n", cfg.Port)
	err = srv.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		fmt.Println(err)
		os.Exit(1)
	}
	err = <-errShutdown
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	if err := recorder.Shutdown(context.Background()); err != nil {
		fmt.Println(err)
	}
}

func shutdown(server *http.Server, ctxShutdown context.Context, errShutdown chan error) {
	<-ctxShutdown.Done()

	ctxTimeout, stop := context.WithTimeout(context.Background(), TIMEOUT)
	defer stop()

	err := server.Shutdown(ctxTimeout)
	switch err {
	case nil:
		fmt.Printf("\nShutting down server...\n")
		errShutdown <- nil
	case context.DeadlineExceeded:
		errShutdown <- fmt.Errorf("Forcing closing the server")
	default:
		errShutdown <- fmt.Errorf("Forcing closing the server")
	}
}
