package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/franckalain/nutrisnap/internal/analysis"
	"github.com/franckalain/nutrisnap/internal/config"
	"github.com/franckalain/nutrisnap/internal/models"
)

type Server struct {
	svc       analysis.Performer
	clients   sync.Map // client id -> *wsClient
	staticDir string
	timeout   time.Duration
	maxUpload int64
}

func New(svc analysis.Performer, cfg config.ServerConfig) *Server {
	maxUpload := int64(cfg.MaxUploadMB) << 20
	if maxUpload <= 0 {
		maxUpload = 10 << 20
	}
	return &Server{
		svc:       svc,
		staticDir: cfg.StaticDir,
		timeout:   cfg.RequestTimeout.Duration,
		maxUpload: maxUpload,
	}
}

// Handler returns the routes served by the application
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/analyze", s.handleAnalyze)
	mux.HandleFunc("GET /ws", s.handleWebSocket)
	mux.HandleFunc("GET /health", s.handleHealth)

	if s.staticDir != "" {
		mux.Handle("/", http.FileServer(http.Dir(s.staticDir)))
	}
	return mux
}

// Start serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Starting server", "port", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	// Shutdown does not track hijacked websocket connections.
	s.closeClients()
	return srv.Shutdown(shutdownCtx)
}

// closeClients sends a going-away close frame to every websocket client and
// drops its connection, which ends its read loop and in-flight analyses.
func (s *Server) closeClients() {
	s.clients.Range(func(_, v any) bool {
		v.(*wsClient).close()
		return true
	})
}

// perform runs one analysis under the configured request timeout
func (s *Server) perform(ctx context.Context, image models.ImagePayload) (*models.FullAnalysisResult, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	return s.svc.Perform(ctx, image)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}
