package server

import (
	"context"
	"sync"

	"github.com/shouni/image-studio-kit/pkg/domain"
)

// fakeStudio は generator.ImageStudio のテスト用実装です。
type fakeStudio struct {
	mu    sync.Mutex
	creds []domain.Credentials

	cardsReq  domain.IllustratedCardsRequest
	textReq   domain.TextToImageRequest
	i2iReq    domain.ImageToImageRequest
	styleReq  domain.StyleInspirationRequest
	inpaint   domain.InpaintingRequest
	stripReq  domain.ComicStripRequest
	panelReq  domain.PanelEditRequest
	scriptReq domain.VideoScriptRequest

	images  []domain.GeneratedImage
	strip   *domain.ComicStrip
	scripts []string
	models  []string
	err     error
}

func (f *fakeStudio) record(creds domain.Credentials) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creds = append(f.creds, creds)
}

func (f *fakeStudio) lastCreds() domain.Credentials {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.creds) == 0 {
		return domain.Credentials{}
	}
	return f.creds[len(f.creds)-1]
}

func (f *fakeStudio) GenerateIllustratedCards(_ context.Context, creds domain.Credentials, req domain.IllustratedCardsRequest) ([]domain.GeneratedImage, error) {
	f.record(creds)
	f.cardsReq = req
	return f.images, f.err
}

func (f *fakeStudio) GenerateTextToImage(_ context.Context, creds domain.Credentials, req domain.TextToImageRequest) ([]domain.GeneratedImage, error) {
	f.record(creds)
	f.textReq = req
	return f.images, f.err
}

func (f *fakeStudio) GenerateFromImageAndPrompt(_ context.Context, creds domain.Credentials, req domain.ImageToImageRequest) ([]domain.GeneratedImage, error) {
	f.record(creds)
	f.i2iReq = req
	return f.images, f.err
}

func (f *fakeStudio) GenerateWithStyleInspiration(_ context.Context, creds domain.Credentials, req domain.StyleInspirationRequest) ([]domain.GeneratedImage, error) {
	f.record(creds)
	f.styleReq = req
	return f.images, f.err
}

func (f *fakeStudio) GenerateInpainting(_ context.Context, creds domain.Credentials, req domain.InpaintingRequest) ([]domain.GeneratedImage, error) {
	f.record(creds)
	f.inpaint = req
	return f.images, f.err
}

func (f *fakeStudio) GenerateComicStrip(_ context.Context, creds domain.Credentials, req domain.ComicStripRequest) (*domain.ComicStrip, error) {
	f.record(creds)
	f.stripReq = req
	return f.strip, f.err
}

func (f *fakeStudio) EditComicPanel(_ context.Context, creds domain.Credentials, req domain.PanelEditRequest) (domain.GeneratedImage, error) {
	f.record(creds)
	f.panelReq = req
	if len(f.images) == 0 {
		return domain.GeneratedImage{}, f.err
	}
	return f.images[0], f.err
}

func (f *fakeStudio) GenerateVideoScripts(_ context.Context, creds domain.Credentials, req domain.VideoScriptRequest) ([]string, error) {
	f.record(creds)
	f.scriptReq = req
	return f.scripts, f.err
}

func (f *fakeStudio) GenerateVideo(_ context.Context, creds domain.Credentials) error {
	f.record(creds)
	return domain.NotSupportedError("当前 OpenAI API 尚未提供视频生成功能。")
}

func (f *fakeStudio) GenerateVideoTransition(_ context.Context, creds domain.Credentials) error {
	return f.GenerateVideo(context.Background(), creds)
}

func (f *fakeStudio) GetVideosOperation(_ context.Context, creds domain.Credentials) error {
	return f.GenerateVideo(context.Background(), creds)
}

func (f *fakeStudio) ListAvailableImageModels(_ context.Context, creds domain.Credentials) ([]string, error) {
	f.record(creds)
	return f.models, f.err
}
