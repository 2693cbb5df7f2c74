// Package conciergeservice wires configuration, storage, collaborators, and
// the HTTP surface into a runnable service.
package conciergeservice

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/witlab/concierge/internal/api"
	"github.com/witlab/concierge/internal/assembler"
	"github.com/witlab/concierge/internal/auth"
	"github.com/witlab/concierge/internal/budget"
	"github.com/witlab/concierge/internal/config"
	"github.com/witlab/concierge/internal/factory"
	"github.com/witlab/concierge/internal/genai"
	"github.com/witlab/concierge/internal/health"
	"github.com/witlab/concierge/internal/intent"
	"github.com/witlab/concierge/internal/knowledge"
	"github.com/witlab/concierge/internal/logger"
	"github.com/witlab/concierge/internal/model"
	"github.com/witlab/concierge/internal/notes"
	"github.com/witlab/concierge/internal/reminder"
	"github.com/witlab/concierge/internal/store"
	"github.com/witlab/concierge/internal/thread"
	"github.com/witlab/concierge/internal/websearch"
)

// Run starts the concierge HTTP server and blocks until shutdown or error.
func Run() error {
	log := logger.New("concierge")

	cfg, err := config.New()
	if err != nil {
		log.Error().Err(err).Msg("Failed to load configuration")
		return err
	}

	log.Info().
		Str("build_target", cfg.BuildTarget).
		Str("db_driver", cfg.DBDriver).
		Int("http_port", cfg.HTTPPort).
		Str("gen_backend_url", cfg.GenBackendURL).
		Str("gen_model", cfg.GenModel).
		Msg("Concierge service starting")

	// Cancellable root context bound to SIGINT/SIGTERM.
	ctx, stop := newServerContext()
	defer stop()

	st, err := factory.NewStore(ctx, cfg, log)
	if err != nil {
		log.Error().Err(err).Msg("Store adapter unavailable")
		return err
	}

	// Background dependency monitor; startup blocks until the first probe
	// cycle reports healthy.
	if pinger, ok := st.(health.Pinger); ok {
		monitor := health.NewMonitor(log, 2*time.Second, health.Probe{Name: "store", Pinger: pinger})
		go monitor.Start(ctx, 15*time.Second)
		if err := monitor.WaitUntilHealthy(ctx, time.Minute); err != nil {
			log.Error().Err(err).Msg("startup health check failed")
			return err
		}
	}

	router := buildRouter(st, cfg, log)

	server := newHTTPServer(ctx, cfg, router)
	errCh := serveHTTP(server, log, cfg)

	select {
	case <-ctx.Done():
		log.Info().Msg("Shutting down server")
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctxShutdown); err != nil {
			log.Error().Err(err).Msg("Server forced to shutdown")
			return err
		}
		log.Info().Msg("Server exited")
		return nil
	case err := <-errCh:
		log.Error().Err(err).Msg("HTTP server failed")
		return err
	}
}

// buildRouter constructs the engine components and wires HTTP routes.
func buildRouter(st store.Store, cfg *config.Config, log zerolog.Logger) http.Handler {
	scheduler := reminder.NewScheduler(st.Reminders(), cfg.ReminderTTL())
	knowledgeStore := knowledge.NewStore(st.Facts(), cfg.FactTTL())
	ledger := budget.NewLedger(st.Budget(), cfg.RecentEntriesLimit)
	pad := notes.NewPad(st.Notes(), cfg.NoteTTL())

	var searcher websearch.Searcher
	if cfg.SearchBaseURL != "" {
		searcher = websearch.NewDuckDuckGoClient(cfg.SearchBaseURL)
	} else {
		log.Info().Msg("live lookup disabled; no search base URL configured")
	}

	asm := assembler.New(
		intent.NewPhraseClassifier(cfg.DefaultReminderOffset()),
		thread.NewManager(st.Turns(), cfg.ThreadWindow()),
		scheduler,
		knowledgeStore,
		ledger,
		genai.NewOllamaClient(cfg.GenBackendURL, cfg.GenModel),
		searcher,
		st.Turns(),
		cfg.HistoryLimit,
		cfg.TurnTTL(),
		log,
	)

	pinger, _ := st.(api.Pinger)
	return api.NewRouter(api.Deps{
		Assembler: asm,
		Scheduler: scheduler,
		Knowledge: knowledgeStore,
		Ledger:    ledger,
		Notes:     pad,
		Verifier:  newVerifier(cfg, log),
		Store:     pinger,
		Log:       log,
	})
}

// newVerifier parses the static token table, or falls back to the permissive
// dev verifier when none is configured.
func newVerifier(cfg *config.Config, log zerolog.Logger) auth.Verifier {
	if cfg.AuthTokens == "" {
		log.Warn().Msg("no auth tokens configured; using dev verifier")
		return auth.DevVerifier{}
	}

	tokens := make(map[string]auth.Identity)
	for _, pair := range strings.Split(cfg.AuthTokens, ",") {
		token, ident, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if !ok {
			log.Warn().Str("pair", pair).Msg("skipping malformed auth token pair")
			continue
		}
		userID, roleStr, _ := strings.Cut(ident, ":")
		role := model.RoleMember
		if roleStr == string(model.RoleAdmin) {
			role = model.RoleAdmin
		}
		tokens[token] = auth.Identity{UserID: userID, Role: role}
	}
	log.Info().Int("tokens", len(tokens)).Msg("static verifier configured")
	return auth.NewStaticVerifier(tokens)
}

func newHTTPServer(ctx context.Context, cfg *config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           handler,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
}

func serveHTTP(server *http.Server, log zerolog.Logger, cfg *config.Config) <-chan error {
	errCh := make(chan error, 1)
	go func() {
		log.Info().Int("port", cfg.HTTPPort).Msg("HTTP server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()
	return errCh
}

// newServerContext returns a cancellable context that is cancelled on SIGINT/SIGTERM.
func newServerContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
