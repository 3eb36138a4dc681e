package generator

import (
	"context"

	"github.com/shouni/image-studio-kit/pkg/domain"
)

// ImageStudio は HTTP API や CLI が利用する統合窓口です。
type ImageStudio interface {
	GenerateIllustratedCards(ctx context.Context, creds domain.Credentials, req domain.IllustratedCardsRequest) ([]domain.GeneratedImage, error)
	GenerateTextToImage(ctx context.Context, creds domain.Credentials, req domain.TextToImageRequest) ([]domain.GeneratedImage, error)
	GenerateFromImageAndPrompt(ctx context.Context, creds domain.Credentials, req domain.ImageToImageRequest) ([]domain.GeneratedImage, error)
	GenerateWithStyleInspiration(ctx context.Context, creds domain.Credentials, req domain.StyleInspirationRequest) ([]domain.GeneratedImage, error)
	GenerateInpainting(ctx context.Context, creds domain.Credentials, req domain.InpaintingRequest) ([]domain.GeneratedImage, error)

	GenerateComicStrip(ctx context.Context, creds domain.Credentials, req domain.ComicStripRequest) (*domain.ComicStrip, error)
	EditComicPanel(ctx context.Context, creds domain.Credentials, req domain.PanelEditRequest) (domain.GeneratedImage, error)
	GenerateVideoScripts(ctx context.Context, creds domain.Credentials, req domain.VideoScriptRequest) ([]string, error)

	GenerateVideo(ctx context.Context, creds domain.Credentials) error
	GenerateVideoTransition(ctx context.Context, creds domain.Credentials) error
	GetVideosOperation(ctx context.Context, creds domain.Credentials) error

	// ListAvailableImageModels は設定ダイアログのモデル候補取得にも使われます。
	ListAvailableImageModels(ctx context.Context, creds domain.Credentials) ([]string, error)
}

var _ ImageStudio = (*Generator)(nil)
