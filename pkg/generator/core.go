package generator

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	"go.uber.org/zap"

	"github.com/shouni/image-studio-kit/pkg/adapters"
	"github.com/shouni/image-studio-kit/pkg/domain"
)

// Generator は各ユースケースのプロンプト組み立てとエラー変換を担うサービス層です。
// 呼び出しごとに Credentials からクライアントを作り直し、状態を持ちません。
type Generator struct {
	newClient adapters.ClientFactory
	logger    *zap.Logger
	validate  *validator.Validate
	models    map[domain.Provider]adapters.Models
}

// Option は Generator の設定を変更します。
type Option func(*Generator)

// WithLogger はロガーを差し替えます。nil は無視されます。
func WithLogger(logger *zap.Logger) Option {
	return func(g *Generator) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// WithModels はプロバイダーの既定モデルを上書きします。空のフィールドは既定値のままです。
func WithModels(p domain.Provider, m adapters.Models) Option {
	return func(g *Generator) {
		p = p.Normalize()
		current := g.models[p]
		if m.Image = strings.TrimSpace(m.Image); m.Image != "" {
			current.Image = m.Image
		}
		if m.Chat = strings.TrimSpace(m.Chat); m.Chat != "" {
			current.Chat = m.Chat
		}
		g.models[p] = current
	}
}

// New は依存関係を注入して Generator を初期化します。
func New(factory adapters.ClientFactory, opts ...Option) (*Generator, error) {
	if factory == nil {
		return nil, fmt.Errorf("client factory is required")
	}

	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		return nil, fmt.Errorf("バリデーションルールの登録に失敗しました: %w", err)
	}

	g := &Generator{
		newClient: factory,
		logger:    zap.NewNop(),
		validate:  v,
		models: map[domain.Provider]adapters.Models{
			domain.ProviderOpenAI: adapters.DefaultModels(domain.ProviderOpenAI),
			domain.ProviderGemini: adapters.DefaultModels(domain.ProviderGemini),
		},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// DefaultImageModel はプロバイダーの既定画像モデルを返します。
func (g *Generator) DefaultImageModel(p domain.Provider) string {
	return g.models[p.Normalize()].Image
}

// session は 1 回の呼び出しで使うクライアントと解決済みモデルです。
type session struct {
	client   adapters.ImageClient
	provider domain.Provider
	models   adapters.Models
}

func (s session) label() string {
	return s.provider.Label()
}

// open は API キーを検証してからクライアントを作成します。
// キーが空ならクライアントは作られず、通信も発生しません。
func (g *Generator) open(ctx context.Context, creds domain.Credentials) (session, error) {
	provider := creds.Provider.Normalize()
	if !creds.HasKey() {
		return session{}, domain.ValidationError(fmt.Sprintf(msgMissingKey, provider.Label()))
	}

	models := g.models[provider]
	if m := strings.TrimSpace(creds.Model); m != "" {
		models.Image = m
	}

	creds.Provider = provider
	client, err := g.newClient(ctx, creds)
	if err != nil {
		return session{}, g.translate(err, provider)
	}
	return session{client: client, provider: provider, models: models}, nil
}
