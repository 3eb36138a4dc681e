package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/shouni/image-studio-kit/pkg/domain"
	"github.com/shouni/image-studio-kit/pkg/generator"
	"github.com/shouni/image-studio-kit/pkg/loader"
	"github.com/shouni/image-studio-kit/pkg/settings"
)

const (
	shutdownTimeout = 10 * time.Second
	maxBodyBytes    = 32 << 20
)

// Config は Server の依存関係です。
type Config struct {
	Studio   generator.ImageStudio
	Loader   *loader.Loader
	Store    *settings.FileStore
	Dialog   *settings.Dialog
	Defaults domain.Credentials
	// DefaultsFor は X-Provider で別プロバイダーを指定されたときの既定値です。
	DefaultsFor func(domain.Provider) domain.Credentials
	Logger      *zap.Logger
}

// Server は ImageStudio を HTTP API として公開します。
type Server struct {
	router      *chi.Mux
	studio      generator.ImageStudio
	loader      *loader.Loader
	store       *settings.FileStore
	dialog      *settings.Dialog
	defaults    domain.Credentials
	defaultsFor func(domain.Provider) domain.Credentials
	logger      *zap.Logger
}

// New はルーティングを組み立てた Server を返します。
func New(cfg Config) (*Server, error) {
	if cfg.Studio == nil {
		return nil, fmt.Errorf("image studio is required")
	}
	if cfg.Store == nil {
		return nil, fmt.Errorf("settings store is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	ld := cfg.Loader
	if ld == nil {
		ld = loader.New(loader.WithoutLocalFiles(), loader.WithLogger(logger))
	}
	dialog := cfg.Dialog
	if dialog == nil {
		dialog = settings.NewDialog(cfg.Studio.ListAvailableImageModels, cfg.Store.Save,
			settings.WithProvider(cfg.Defaults.Provider),
			settings.WithDefaultModel(cfg.Defaults.Model),
			settings.WithLogger(logger),
		)
	}

	s := &Server{
		router:      chi.NewRouter(),
		studio:      cfg.Studio,
		loader:      ld,
		store:       cfg.Store,
		dialog:      dialog,
		defaults:    cfg.Defaults,
		defaultsFor: cfg.DefaultsFor,
		logger:      logger,
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s, nil
}

// Handler はルーターを返します。
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupMiddleware() {
	s.router.Use(chiMiddleware.RealIP)
	s.router.Use(requestID)
	s.router.Use(accessLog(s.logger))
	s.router.Use(chiMiddleware.Recoverer)
}

func (s *Server) setupRoutes() {
	s.router.Route("/api/v1", func(r chi.Router) {
		r.Route("/images", func(r chi.Router) {
			r.Post("/cards", s.handleCards)
			r.Post("/text-to-image", s.handleTextToImage)
			r.Post("/image-to-image", s.handleImageToImage)
			r.Post("/style-inspiration", s.handleStyleInspiration)
			r.Post("/inpainting", s.handleInpainting)
		})

		r.Route("/comics", func(r chi.Router) {
			r.Post("/strip", s.handleComicStrip)
			r.Post("/panel-edit", s.handlePanelEdit)
			r.Post("/video-scripts", s.handleVideoScripts)
		})

		r.Post("/videos", s.handleVideo)
		r.Get("/models", s.handleModels)

		r.Route("/settings", func(r chi.Router) {
			r.Get("/", s.handleSettingsView)
			r.Delete("/", s.handleSettingsClear)
			r.Post("/open", s.handleSettingsOpen)
			r.Put("/fields", s.handleSettingsFields)
			r.Post("/refresh-models", s.handleSettingsRefresh)
			r.Post("/save", s.handleSettingsSave)
			r.Post("/cancel", s.handleSettingsCancel)
		})
	})
}

// ListenAndServe は ctx がキャンセルされるまで待ち受け、その後グレースフルに停止します。
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTPサーバーを起動します", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("HTTPサーバーの起動に失敗しました: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("HTTPサーバーの停止に失敗しました: %w", err)
	}
	s.logger.Info("HTTPサーバーを停止しました")
	return nil
}
