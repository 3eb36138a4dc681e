package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/shouni/image-studio-kit/pkg/adapters"
	"github.com/shouni/image-studio-kit/pkg/config"
	"github.com/shouni/image-studio-kit/pkg/domain"
	"github.com/shouni/image-studio-kit/pkg/generator"
	"github.com/shouni/image-studio-kit/pkg/imgutil"
	"github.com/shouni/image-studio-kit/pkg/loader"
	"github.com/shouni/image-studio-kit/pkg/settings"
)

// options は全サブコマンド共通のフラグです。
type options struct {
	apiKey   string
	baseURL  string
	model    string
	provider string
	outDir   string
	logLevel string
}

type studioBuilder func(cfg *config.Config, logger *zap.Logger) (generator.ImageStudio, error)

// app はコマンド実行時に組み立てる依存関係をまとめたものです。
type app struct {
	opts      options
	newStudio studioBuilder

	cfg    *config.Config
	logger *zap.Logger
	store  *settings.FileStore
	loader *loader.Loader
	studio generator.ImageStudio
	out    io.Writer
}

func newApp() *app {
	return &app{newStudio: buildStudio}
}

func buildStudio(cfg *config.Config, logger *zap.Logger) (generator.ImageStudio, error) {
	g, err := generator.New(
		adapters.NewClientFactory(logger),
		generator.WithLogger(logger),
		generator.WithModels(cfg.ProviderValue(), cfg.Models()),
	)
	if err != nil {
		return nil, err
	}
	return g, nil
}

func (a *app) init(cmd *cobra.Command) error {
	config.LoadEnvFiles()
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if p := strings.ToLower(strings.TrimSpace(a.opts.provider)); p != "" {
		if p != string(domain.ProviderOpenAI) && p != string(domain.ProviderGemini) {
			return fmt.Errorf("--provider must be openai or gemini, got %q", a.opts.provider)
		}
		cfg.Provider = p
	}

	level := cfg.LogLevel
	if a.opts.logLevel != "" {
		level = a.opts.logLevel
	}
	logger, err := newLogger(level)
	if err != nil {
		return err
	}

	studio, err := a.newStudio(cfg, logger)
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = logger
	a.store = settings.NewFileStore(cfg.SettingsPath)
	a.loader = loader.New(loader.WithLogger(logger))
	a.studio = studio
	a.out = cmd.OutOrStdout()
	return nil
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	zcfg := zap.NewProductionConfig()
	zcfg.Level = lvl
	return zcfg.Build()
}

// credentials はフラグ、保存済み設定、環境変数の順で接続情報を決めます。
func (a *app) credentials() (domain.Credentials, error) {
	stored, err := a.store.Load()
	if err != nil {
		return domain.Credentials{}, err
	}
	creds, _ := settings.Resolve(stored, a.cfg.Defaults())
	return a.applyFlags(creds), nil
}

// applyFlags は指定されたフラグで接続情報を上書きします。
func (a *app) applyFlags(creds domain.Credentials) domain.Credentials {
	if v := strings.TrimSpace(a.opts.apiKey); v != "" {
		creds.APIKey = v
	}
	if v := strings.TrimSpace(a.opts.baseURL); v != "" {
		creds.BaseURL = v
	}
	if v := strings.TrimSpace(a.opts.model); v != "" {
		creds.Model = v
	}
	if a.opts.provider != "" {
		creds.Provider = a.cfg.ProviderValue()
	}
	return creds
}

// writeImages は生成画像を出力ディレクトリに保存し、パスを 1 行ずつ表示します。
func (a *app) writeImages(images []domain.GeneratedImage) error {
	if err := os.MkdirAll(a.opts.outDir, 0o755); err != nil {
		return fmt.Errorf("出力ディレクトリの作成に失敗しました: %w", err)
	}
	for _, img := range images {
		mimeType, data, err := imgutil.DecodeDataURL(img.Src)
		if err != nil {
			return err
		}
		name := filepath.Join(a.opts.outDir, uuid.NewString()+extensionFor(mimeType))
		if err := os.WriteFile(name, data, 0o644); err != nil {
			return fmt.Errorf("画像の書き込みに失敗しました: %w", err)
		}
		a.logger.Debug("image written", zap.String("path", name), zap.Int("bytes", len(data)))
		fmt.Fprintln(a.out, name)
	}
	return nil
}

// loadDataURL はローカルファイルや URL の画像を data URL に変換します。
func (a *app) loadDataURL(cmd *cobra.Command, ref string) (string, error) {
	if imgutil.IsDataURL(ref) {
		return ref, nil
	}
	f, err := a.loader.Load(cmd.Context(), ref)
	if err != nil {
		return "", err
	}
	return imgutil.EncodeDataURL(imgutil.DetectMimeType(f.Data), f.Data), nil
}

func extensionFor(mimeType string) string {
	if m := mimetype.Lookup(mimeType); m != nil && m.Extension() != "" {
		return m.Extension()
	}
	return ".png"
}
