package adapters

import (
	"context"

	"go.uber.org/zap"

	"github.com/shouni/image-studio-kit/pkg/domain"
)

// ClientFactory は呼び出し単位の認証情報から ImageClient を作成します。
type ClientFactory func(ctx context.Context, creds domain.Credentials) (ImageClient, error)

// NewClientFactory は Credentials.Provider に応じて実装を切り替えるファクトリを返します。
func NewClientFactory(logger *zap.Logger) ClientFactory {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(ctx context.Context, creds domain.Credentials) (ImageClient, error) {
		return NewImageClient(ctx, creds, logger)
	}
}

// NewImageClient は Credentials.Provider に対応するバックエンドを作成します。未指定は OpenAI 互換です。
func NewImageClient(ctx context.Context, creds domain.Credentials, logger *zap.Logger) (ImageClient, error) {
	provider := creds.Provider.Normalize()
	if logger != nil {
		logger = logger.With(zap.String("provider", string(provider)))
	}

	switch provider {
	case domain.ProviderGemini:
		return NewGeminiClient(ctx, creds, logger)
	default:
		return NewOpenAIClient(creds, logger), nil
	}
}
