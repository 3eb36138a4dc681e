package main

import (
	"context"

	"github.com/shouni/image-studio-kit/pkg/domain"
)

type fakeStudio struct {
	creds   []domain.Credentials
	textReq domain.TextToImageRequest
	images  []domain.GeneratedImage
	models  []string
	err     error
}

func (f *fakeStudio) last() domain.Credentials {
	if len(f.creds) == 0 {
		return domain.Credentials{}
	}
	return f.creds[len(f.creds)-1]
}

func (f *fakeStudio) GenerateIllustratedCards(_ context.Context, creds domain.Credentials, _ domain.IllustratedCardsRequest) ([]domain.GeneratedImage, error) {
	f.creds = append(f.creds, creds)
	return f.images, f.err
}

func (f *fakeStudio) GenerateTextToImage(_ context.Context, creds domain.Credentials, req domain.TextToImageRequest) ([]domain.GeneratedImage, error) {
	f.creds = append(f.creds, creds)
	f.textReq = req
	return f.images, f.err
}

func (f *fakeStudio) GenerateFromImageAndPrompt(_ context.Context, creds domain.Credentials, _ domain.ImageToImageRequest) ([]domain.GeneratedImage, error) {
	f.creds = append(f.creds, creds)
	return f.images, f.err
}

func (f *fakeStudio) GenerateWithStyleInspiration(_ context.Context, creds domain.Credentials, _ domain.StyleInspirationRequest) ([]domain.GeneratedImage, error) {
	f.creds = append(f.creds, creds)
	return f.images, f.err
}

func (f *fakeStudio) GenerateInpainting(_ context.Context, creds domain.Credentials, _ domain.InpaintingRequest) ([]domain.GeneratedImage, error) {
	f.creds = append(f.creds, creds)
	return f.images, f.err
}

func (f *fakeStudio) GenerateComicStrip(_ context.Context, creds domain.Credentials, _ domain.ComicStripRequest) (*domain.ComicStrip, error) {
	f.creds = append(f.creds, creds)
	if f.err != nil {
		return nil, f.err
	}
	prompts := make([]string, len(f.images))
	return &domain.ComicStrip{Images: f.images, PanelPrompts: prompts}, nil
}

func (f *fakeStudio) EditComicPanel(_ context.Context, creds domain.Credentials, _ domain.PanelEditRequest) (domain.GeneratedImage, error) {
	f.creds = append(f.creds, creds)
	if len(f.images) == 0 {
		return domain.GeneratedImage{}, f.err
	}
	return f.images[0], f.err
}

func (f *fakeStudio) GenerateVideoScripts(_ context.Context, creds domain.Credentials, req domain.VideoScriptRequest) ([]string, error) {
	f.creds = append(f.creds, creds)
	scripts := make([]string, len(req.Images))
	for i := range scripts {
		scripts[i] = "slow zoom"
	}
	return scripts, f.err
}

func (f *fakeStudio) GenerateVideo(_ context.Context, creds domain.Credentials) error {
	f.creds = append(f.creds, creds)
	return domain.NotSupportedError("当前 OpenAI API 尚未提供视频生成功能。")
}

func (f *fakeStudio) GenerateVideoTransition(ctx context.Context, creds domain.Credentials) error {
	return f.GenerateVideo(ctx, creds)
}

func (f *fakeStudio) GetVideosOperation(ctx context.Context, creds domain.Credentials) error {
	return f.GenerateVideo(ctx, creds)
}

func (f *fakeStudio) ListAvailableImageModels(_ context.Context, creds domain.Credentials) ([]string, error) {
	f.creds = append(f.creds, creds)
	return f.models, f.err
}
