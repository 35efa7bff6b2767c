package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/LSkevi/PieTracker/internal"
	"github.com/LSkevi/PieTracker/internal/auth"
	"github.com/LSkevi/PieTracker/internal/category"
	"github.com/LSkevi/PieTracker/internal/email"
	"github.com/LSkevi/PieTracker/internal/email/postmark"
	"github.com/LSkevi/PieTracker/internal/expense"
	"github.com/LSkevi/PieTracker/internal/storage/jsonfile"
	"github.com/LSkevi/PieTracker/internal/web"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, os.Stderr))
}

func run(ctx context.Context, w io.Writer) int {
	logger := slog.New(slog.NewTextHandler(w, nil))

	cfg, err := configFromEnv()
	if err != nil {
		logger.Error("failed to get config from environment", "error", err)
		return 1
	}

	if cfg.auth.devSecretInUse {
		logger.Warn("TOKEN_SECRET is not set, using the insecure development fallback; " +
			"tokens signed with it are forgeable, do not expose this server to untrusted networks")
	}

	if err := os.MkdirAll(cfg.dataDir, 0o750); err != nil {
		logger.Error("failed to create data directory", "dir", cfg.dataDir, "error", err)
		return 1
	}

	users, err := jsonfile.OpenUsers(cfg.dataDir)
	if err != nil {
		logger.Error("failed to open user store", "error", err)
		return 1
	}

	categories, err := jsonfile.OpenCategories(cfg.dataDir, logger)
	if err != nil {
		logger.Error("failed to open category store", "error", err)
		return 1
	}

	expenses, err := jsonfile.OpenExpenses(cfg.dataDir)
	if err != nil {
		logger.Error("failed to open expense store", "error", err)
		return 1
	}

	var sender email.Sender
	switch cfg.auth.emailDriver {
	case "postmark":
		if cfg.auth.postmarkURL == nil {
			logger.Error("EMAIL_DRIVER is postmark but POSTMARK_API_URL is not set")
			return 1
		}
		sender = postmark.NewSender(http.DefaultClient, postmark.Settings{
			APIURL:        cfg.auth.postmarkURL,
			ServerToken:   cfg.auth.postmarkToken,
			MessageStream: cfg.auth.postmarkStream,
		})
	default:
		sender = email.NewLogSender(logger)
	}

	notifier := email.NewService(sender, email.Address(cfg.auth.emailFrom))

	tokens := auth.NewTokenService(cfg.auth.tokenSecret, cfg.auth.tokenTTL)

	authSvc, err := auth.NewService(users, tokens, notifier,
		func(err error) {
			logger.Error("auth worker failed", "error", err)
		},
		auth.ServiceConfig{
			WorkerTimeout:    cfg.auth.workerTimeout,
			ResetTokenExpiry: cfg.auth.resetTTL,
			SuperUsername:    cfg.auth.superUsername,
			SuperPassword:    cfg.auth.superPassword,
		})
	if err != nil {
		logger.Error("failed to create auth service", "error", err)
		return 1
	}

	expenseSvc := expense.NewService(expenses)
	categorySvc := category.NewService(categories, expenseSvc)

	// Deleting a user cascades to their expense and category data.
	authSvc.AddPurger(expenseSvc)
	authSvc.AddPurger(categorySvc)

	srv := &http.Server{
		Addr:         cfg.http.addr,
		ReadTimeout:  cfg.http.readTimeout,
		WriteTimeout: cfg.http.writeTimeout,
		IdleTimeout:  cfg.http.idleTimeout,
		Handler: web.NewServer(&web.ServerDeps{
			Logger:      logger,
			AuthService: authSvc,
			Tokens:      tokens,
			Expenses:    expenseSvc,
			Categories:  categorySvc,
		}, web.ServerConfig{
			AllowedOrigins: cfg.corsOrigins,
		}),
	}

	// We need to run two tasks concurrently:
	// - Listen and serving of the HTTP server.
	// - Waiting for a signal to stop the server.

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting http server",
			"addr", cfg.http.addr,
			"dataDir", cfg.dataDir,
			"buildRevision", internal.BuildRevision,
			"buildRevisionTime", internal.BuildRevisionTime,
			"buildLocalModified", internal.BuildLocalModified,
		)
		// ListenAndServe always returns a non-nil error,
		// g will cancel gCtx when an error is returned, so
		// this will also stop the other goroutine.
		return srv.ListenAndServe()
	})

	g.Go(func() error {
		<-gCtx.Done()
		logger.Info("stopping http server")

		shutCtx, cancel := context.WithTimeout(context.Background(), cfg.http.shutdownTimeout)
		defer cancel()

		return srv.Shutdown(shutCtx)
	})

	err = g.Wait()

	// Let in-flight reset workers finish before exiting.
	authSvc.Wait()

	if err != nil && err != http.ErrServerClosed {
		logger.Error("http server stopped with error", "error", err)
		return 1
	}

	logger.Info("http server stopped successfully")

	return 0
}
