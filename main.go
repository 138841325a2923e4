package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/danielhkuo/quickpoll/cliparse"
	"github.com/danielhkuo/quickpoll/events"
	"github.com/danielhkuo/quickpoll/middleware"
	"github.com/danielhkuo/quickpoll/polls"
	"github.com/danielhkuo/quickpoll/router"
	"github.com/danielhkuo/quickpoll/store"
)

// Swapped out in tests
var (
	openStore = store.Open
	dialAMQP  = events.DialAMQP
)

func main() {
	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = run(ctx, cfg)
	stop()
	if err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

// run serves until ctx is cancelled. Everything it opens is closed before it
// returns.
func run(ctx context.Context, cfg cliparse.Config) error {
	// Connect to the document store
	st, err := openStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("store setup failed (%s): %w", cfg.DatabaseType, err)
	}
	defer st.Close()
	slog.Info("Store ready", "type", cfg.DatabaseType)

	// Event fan-out: live feed always, RabbitMQ when configured
	hubCtx, stopHub := context.WithCancel(ctx)
	defer stopHub()
	hub := events.NewHub()
	go hub.Run(hubCtx)
	publishers := events.Fanout{hub}

	if cfg.AMQPURL != "" {
		conn, err := dialAMQP(cfg.AMQPURL)
		if err != nil {
			return fmt.Errorf("RabbitMQ setup failed: %w", err)
		}
		defer conn.Close()

		amqpPub, err := events.NewAMQPPublisher(conn, cfg.AMQPQueue)
		if err != nil {
			return fmt.Errorf("RabbitMQ setup failed: %w", err)
		}
		defer amqpPub.Close()
		publishers = append(publishers, amqpPub)
		slog.Info("Publishing poll events", "queue", cfg.AMQPQueue)
	}

	svc := polls.NewService(st, publishers)

	// Create router
	mux := router.NewRouter(svc, hub)

	// Create server
	server := http.Server{
		Handler: chimw.RequestID(chimw.Recoverer(middleware.CORS(mux))),
		Addr:    ":" + strconv.Itoa(cfg.Port),
	}

	go func() {
		// Wait for Ctrl-C signal
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("Could not gracefully shut down the server", "error", err)
		}
	}()

	// Start server
	slog.Info("Listening", "port", cfg.Port)
	err = server.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	slog.Info("Server closed")
	return nil
}
