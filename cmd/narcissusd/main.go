package main

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/JamesWelchman/narcissus"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	cfg, err := loadConfig(os.Getenv("NARCISSUS_CONFIG"))
	if err != nil {
		logger.Error("load config failed", "error", err)
		os.Exit(1)
	}

	sender, recv, err := narcissus.New(cfg.Bufsize)
	if err != nil {
		logger.Error("create exchange failed", "error", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(narcissus.NewCollector(sender))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go narcissus.StartStatsLogger(ctx, sender, 10*time.Second, logger)

	metricsSrv := &http.Server{Addr: cfg.MetricsAddr, Handler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{})}
	go func() {
		if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics server failed", "error", err)
		}
	}()

	os.Remove(cfg.SocketPath)
	listener, err := net.Listen("unix", cfg.SocketPath)
	if err != nil {
		logger.Error("listen failed", "error", err, "socket_path", cfg.SocketPath)
		os.Exit(1)
	}
	defer listener.Close()

	go produceFrames(ctx, sender, cfg.Bufsize, logger)
	go acceptLoop(ctx, listener, recv, cfg, logger)

	logger.Info("narcissusd started", "socket_path", cfg.SocketPath, "bufsize", cfg.Bufsize)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutting down")
	cancel()
	sender.Close()
	metricsSrv.Close()
}

func acceptLoop(ctx context.Context, listener net.Listener, recv *narcissus.Receiver, cfg *Config, logger *slog.Logger) {
	for {
		conn, err := listener.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return
			default:
				logger.Warn("accept failed", "error", err)
				continue
			}
		}

		clientRecv, err := recv.Clone()
		if err != nil {
			logger.Warn("rejecting client, pool exhausted", "error", err)
			conn.Close()
			continue
		}

		go handleConn(conn, clientRecv, cfg, logger)
	}
}

func handleConn(conn net.Conn, recv *narcissus.Receiver, cfg *Config, logger *slog.Logger) {
	defer conn.Close()
	defer recv.Close()

	sess := newSession(conn, recv, logger)
	if err := sess.sayHello(cfg.Bufsize); err != nil {
		logger.Warn("hello failed", "error", err)
		return
	}

	stop := make(chan struct{})
	go sess.streamLoop(stop)
	defer close(stop)

	helloTimeout := time.Duration(cfg.ClientHelloTimeout) * time.Second
	if err := sess.readLoop(helloTimeout); err != nil {
		logger.Info("session ended", "session_id", sess.sessionID, "reason", err)
	}
}

// produceFrames stands in for the webcam capture loop in the original
// (webcam.rs); narcissusd needs something publishing for the demo to
// be runnable standalone.
func produceFrames(ctx context.Context, sender *narcissus.Sender, bufsize int, logger *slog.Logger) {
	ticker := time.NewTicker(33 * time.Millisecond)
	defer ticker.Stop()

	buf := make([]byte, bufsize)
	var ts uint64
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			ts++
			if err := sender.Publish(buf, ts); err != nil && err != narcissus.ErrNoReceivers {
				logger.Warn("publish failed", "error", err)
			}
		}
	}
}
