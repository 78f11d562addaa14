// ABOUTME: Gateway wires the store, registry, coordinator and HTTP/WebSocket servers together
// ABOUTME: Owns startup reconciliation, the liveness sweep loop and graceful shutdown

package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/veriflow/vkyc-gateway/internal/auth"
	"github.com/veriflow/vkyc-gateway/internal/config"
	"github.com/veriflow/vkyc-gateway/internal/notify"
	"github.com/veriflow/vkyc-gateway/internal/registry"
	"github.com/veriflow/vkyc-gateway/internal/session"
	"github.com/veriflow/vkyc-gateway/internal/store"
	"github.com/veriflow/vkyc-gateway/internal/verify"
	"github.com/veriflow/vkyc-gateway/internal/ws"
)

// Gateway is the running service.
type Gateway struct {
	config     *config.Config
	store      store.Store
	registry   *registry.Registry
	coord      *session.Coordinator
	tokens     *auth.JWTVerifier
	turnClient *verify.TURNClient
	sms        *notify.SMSSender
	email      *notify.EmailSender
	httpServer *http.Server
	logger     *slog.Logger
}

// New builds a gateway from configuration. Sessions left live by a
// previous process are reconciled to disconnected before any
// connection is accepted.
func New(cfg *config.Config) (*Gateway, error) {
	logger := slog.Default().With("component", "gateway")

	st, err := store.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}

	reconciled, err := st.ReconcileOrphanedSessions(context.Background())
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("reconciling sessions: %w", err)
	}
	if reconciled > 0 {
		logger.Info("reconciled sessions from previous run", "count", reconciled)
	}

	reg := registry.New()

	coord := session.NewCoordinator(st, reg,
		verify.NewOCRClient(cfg.Services.OCR.PANURL, cfg.Services.OCR.AadhaarURL),
		verify.NewDigiLockerClient(cfg.Services.DigiLocker.URL, cfg.Services.DigiLocker.APIKey),
		session.Options{
			HeartbeatInterval: cfg.Sessions.HeartbeatInterval,
			SessionExpiry:     cfg.Sessions.Expiry,
			RecordingDir:      cfg.Recording.Dir,
		})

	var verifier auth.TokenVerifier
	var tokens *auth.JWTVerifier
	if cfg.Auth.JWTSecret != "" {
		tokens = auth.NewJWTVerifier([]byte(cfg.Auth.JWTSecret))
		verifier = tokens
	}

	g := &Gateway{
		config:     cfg,
		store:      st,
		registry:   reg,
		coord:      coord,
		tokens:     tokens,
		turnClient: verify.NewTURNClient(cfg.Services.TURN.URL, cfg.Services.TURN.APIKey),
		sms: notify.NewSMSSender(cfg.Services.SMS.URL, cfg.Services.SMS.AuthKey,
			cfg.Services.SMS.SenderID, cfg.Services.SMS.Route, cfg.Services.SMS.Country),
		email: notify.NewEmailSender(cfg.Services.SMTP.Host, cfg.Services.SMTP.Port,
			cfg.Services.SMTP.User, cfg.Services.SMTP.Password),
		logger: logger,
	}

	mux := http.NewServeMux()
	g.registerRoutes(mux)
	ws.NewServer(coord, verifier, cfg.Sessions.ReceiveTimeout, cfg.Sessions.PongTimeout).Register(mux)

	g.httpServer = &http.Server{
		Addr:    cfg.Server.HTTPAddr,
		Handler: mux,
	}

	return g, nil
}

// Run serves until the context is cancelled, then shuts down
// gracefully.
func (g *Gateway) Run(ctx context.Context) error {
	sweepCtx, cancelSweep := context.WithCancel(ctx)
	defer cancelSweep()
	go g.sweepLoop(sweepCtx)

	errCh := make(chan error, 1)
	go func() {
		g.logger.Info("HTTP server listening", "addr", g.config.Server.HTTPAddr)
		if err := g.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		g.closeResources()
		return err
	case <-ctx.Done():
	}

	g.logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := g.httpServer.Shutdown(shutdownCtx); err != nil {
		g.logger.Warn("HTTP shutdown error", "error", err)
	}

	g.closeResources()
	return nil
}

func (g *Gateway) closeResources() {
	g.coord.Close()
	if err := g.store.Close(); err != nil {
		g.logger.Warn("store close error", "error", err)
	}
}

// sweepLoop periodically evicts connections that stopped sending
// heartbeats.
func (g *Gateway) sweepLoop(ctx context.Context) {
	ticker := time.NewTicker(g.config.Sessions.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			g.coord.EvictStale(ctx, g.config.Sessions.StaleTimeout)
		}
	}
}
