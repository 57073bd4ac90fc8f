package main

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"luxebites/internal/config"
	"luxebites/internal/handlers"
	"luxebites/internal/logging"
	"luxebites/internal/services"
)

const (
	cleanupInterval = time.Minute
	shutdownTimeout = 10 * time.Second
)

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = config.DefaultPath
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatalf("Server stopped: %v", err)
	}
}

func run(cfg *config.Config, logger *zap.SugaredLogger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg.Storage, logger)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer closeStore()

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	menu := cfg.Menu
	if len(menu) == 0 {
		menu = services.DefaultMenu()
	}

	email := services.NewEmailService(services.SMTPSettings{
		Host: cfg.SMTP.Host,
		Port: cfg.SMTP.Port,
		User: cfg.SMTP.User,
		Pass: cfg.SMTP.Pass,
		From: cfg.SMTP.From,
	}, logger)
	listeners := []services.OrderListener{email}

	if cfg.Journal != "" {
		journal, err := services.NewOrderJournal(cfg.Journal)
		if err != nil {
			return fmt.Errorf("open order journal: %w", err)
		}
		defer journal.Close()
		listeners = append(listeners, journal)
	}

	scheduler := services.NewClearScheduler(logger)
	h := handlers.NewHandler(store, services.NewCatalog(menu), scheduler, logger, handlers.Options{
		ClearDelay: cfg.Checkout.ClearDelay,
		SessionTTL: cfg.Checkout.SessionTTL,
		Now:        func() time.Time { return time.Now().In(loc) },
		Listeners:  listeners,

		SecureCookie: cfg.Server.TLS,
	})

	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router, err := handlers.NewRouter(h)
	if err != nil {
		return err
	}

	servers, err := buildServers(cfg.Server, router, logger)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, srv := range servers {
		srv := srv
		g.Go(func() error {
			var err error
			if srv.TLSConfig != nil {
				logger.Infof("HTTPS server listening on %s", srv.Addr)
				err = srv.ListenAndServeTLS("", "")
			} else {
				logger.Infof("HTTP server listening on %s", srv.Addr)
				err = srv.ListenAndServe()
			}
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		})
	}

	g.Go(func() error {
		return h.RunCleanup(gctx, cleanupInterval)
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		for _, srv := range servers {
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Warnf("Error shutting down %s: %v", srv.Addr, err)
			}
		}
		if err := scheduler.Flush(shutdownCtx); err != nil {
			logger.Warnf("Pending cart clears not flushed: %v", err)
		}
		email.Wait()
		return nil
	})

	return g.Wait()
}

// buildServers returns a plain HTTP server, or an HTTPS server plus an HTTP
// server that redirects to it when TLS is enabled.
func buildServers(cfg config.Server, router http.Handler, logger *zap.SugaredLogger) ([]*http.Server, error) {
	if !cfg.TLS {
		return []*http.Server{{
			Addr:              ":" + cfg.Port,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		}}, nil
	}

	cert, selfSigned, err := loadCertificate(cfg.CertFile, cfg.KeyFile, time.Now())
	if err != nil {
		return nil, fmt.Errorf("load certificate: %w", err)
	}
	if selfSigned {
		logger.Infof("No certificate at %s, using a self-signed one", cfg.CertFile)
	}

	httpsPort := cfg.HTTPSPort
	httpsServer := &http.Server{
		Addr:              ":" + httpsPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		TLSConfig: &tls.Config{
			Certificates: []tls.Certificate{cert},
			MinVersion:   tls.VersionTLS12,
		},
	}

	redirect := &http.Server{
		Addr:              ":" + cfg.Port,
		ReadHeaderTimeout: 10 * time.Second,
		Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			host := r.Host
			if h, _, err := net.SplitHostPort(r.Host); err == nil {
				host = h
			}
			httpsURL := fmt.Sprintf("https://%s:%s%s", host, httpsPort, r.URL.Path)
			if r.URL.RawQuery != "" {
				httpsURL += "?" + r.URL.RawQuery
			}
			http.Redirect(w, r, httpsURL, http.StatusMovedPermanently)
		}),
	}

	return []*http.Server{httpsServer, redirect}, nil
}
