package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MetalBlockchain/metalgo/utils/logging"
	"github.com/MetalBlockchain/metalgo/utils/ulimit"
	"github.com/MetalBlockchain/starchain/chain/constants"
	"github.com/MetalBlockchain/starchain/vm"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const (
	metricsEndpoint = "/metrics"
	shutdownTimeout = 5 * time.Second
)

func main() {
	p, err := parseParams(os.Args[1:])
	if err != nil {
		fmt.Printf("couldn't get config: %s\n", err)
		os.Exit(1)
	}
	if p.version {
		fmt.Println(constants.Version)
		os.Exit(0)
	}

	log := logging.NewLogger(
		constants.ServiceName,
		logging.NewWrappedCore(p.logLevel, os.Stdout, logging.Colors.ConsoleEncoder()),
	)
	if err := ulimit.Set(ulimit.DefaultFDLimit, log); err != nil {
		fmt.Printf("failed to set fd limit correctly due to: %s\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, log, p); err != nil {
		log.Fatal("starchain exited with error", zap.Error(err))
		stop()
		os.Exit(1)
	}
}

func newHandler(chainVM *vm.VM, gatherer prometheus.Gatherer) (http.Handler, error) {
	handlers, err := chainVM.CreateHandlers()
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	for endpoint, handler := range handlers {
		mux.Handle(endpoint, handler)
	}
	mux.Handle(metricsEndpoint, promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	return mux, nil
}

// run serves the chain until ctx is cancelled.
func run(ctx context.Context, log logging.Logger, p *params) error {
	registry := prometheus.NewRegistry()
	chainVM := &vm.VM{}
	if err := chainVM.Initialize(log, registry, p.vmConfig); err != nil {
		return fmt.Errorf("couldn't initialize VM: %w", err)
	}

	handler, err := newHandler(chainVM, registry)
	if err != nil {
		return fmt.Errorf("couldn't create handlers: %w", err)
	}

	server := &http.Server{
		Addr:              p.addr(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("starting HTTP server",
			zap.String("addr", server.Addr),
			zap.String("version", chainVM.Version()),
		)
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("stopping HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
