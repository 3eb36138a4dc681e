package adapters

import (
	"context"

	"github.com/shouni/image-studio-kit/pkg/domain"
)

// ImageClient は画像生成バックエンドの共通窓口です。
// 実装は呼び出しごとの Credentials から生成され、状態を共有しません。
type ImageClient interface {
	// GenerateImages はテキストから画像を生成します。
	GenerateImages(ctx context.Context, req GenerateRequest) ([]ImageOutput, error)
	// EditImage は入力画像（と任意のマスク）を元に画像を編集します。
	EditImage(ctx context.Context, req EditRequest) ([]ImageOutput, error)
	// CompleteStringList は JSON スキーマで制約したチャット補完から文字列配列を取り出します。
	CompleteStringList(ctx context.Context, req StringListRequest) ([]string, error)
	// ListModels は利用可能なモデル ID を返します。
	ListModels(ctx context.Context) ([]string, error)
}

// GenerateRequest は画像生成 1 回分のパラメータです。
type GenerateRequest struct {
	Model       string
	Prompt      string
	Size        string // OpenAI 形式 (例: 1792x1024)
	AspectRatio string // Gemini 形式 (例: 16:9)
	N           int
}

// EditRequest は画像編集 1 回分のパラメータです。Size が空ならサーバー既定値に任せます。
type EditRequest struct {
	Model       string
	Prompt      string
	Size        string
	AspectRatio string
	Image       domain.ImageFile
	Mask        *domain.ImageFile
}

// StringListRequest は {Field: [string...]} 形式の構造化出力を要求するチャット補完です。
type StringListRequest struct {
	Model           string
	SystemPrompt    string
	UserPrompt      string
	SchemaName      string
	Field           string
	ItemDescription string
	// Count が正の場合、配列長を Count に固定します。
	Count int
}

// ImageOutput はプロバイダーに依存しない生成画像です。
type ImageOutput struct {
	Data     []byte
	MimeType string
}

// Models はプロバイダーごとの既定モデルの組です。
type Models struct {
	Image string
	Chat  string
}

const (
	DefaultOpenAIImageModel = "gpt-image-1"
	DefaultOpenAIChatModel  = "gpt-4.1-mini"
	DefaultGeminiImageModel = "gemini-2.5-flash-image"
	DefaultGeminiChatModel  = "gemini-2.5-flash"
)

// DefaultModels はプロバイダーの既定モデルを返します。
func DefaultModels(p domain.Provider) Models {
	if p.Normalize() == domain.ProviderGemini {
		return Models{Image: DefaultGeminiImageModel, Chat: DefaultGeminiChatModel}
	}
	return Models{Image: DefaultOpenAIImageModel, Chat: DefaultOpenAIChatModel}
}
