package generator

import (
	"context"

	"go.uber.org/zap"

	"github.com/shouni/image-studio-kit/pkg/adapters"
	"github.com/shouni/image-studio-kit/pkg/domain"
	"github.com/shouni/image-studio-kit/pkg/imgutil"
)

// GenerateIllustratedCards はテーマを説明する 4 枚組の図解カードを生成します。
func (g *Generator) GenerateIllustratedCards(ctx context.Context, creds domain.Credentials, req domain.IllustratedCardsRequest) ([]domain.GeneratedImage, error) {
	if err := g.validateRequest(req); err != nil {
		return nil, err
	}
	s, err := g.open(ctx, creds)
	if err != nil {
		return nil, err
	}

	outs, err := s.client.GenerateImages(ctx, adapters.GenerateRequest{
		Model:       s.models.Image,
		Prompt:      cardsPrompt(req.Prompt, req.Style),
		Size:        domain.SizeWide,
		AspectRatio: string(domain.AspectRatioWide),
		N:           cardCount,
	})
	if err != nil {
		return nil, g.translate(err, s.provider)
	}
	return toGeneratedImages(outs, cardCount, s.label())
}

// GenerateTextToImage はプロンプトから指定枚数の画像を生成します。
func (g *Generator) GenerateTextToImage(ctx context.Context, creds domain.Credentials, req domain.TextToImageRequest) ([]domain.GeneratedImage, error) {
	if err := g.validateRequest(req); err != nil {
		return nil, err
	}
	s, err := g.open(ctx, creds)
	if err != nil {
		return nil, err
	}

	n := req.NumberOfImages
	if n == 0 {
		n = defaultImageCount
	}
	outs, err := s.client.GenerateImages(ctx, adapters.GenerateRequest{
		Model:       s.models.Image,
		Prompt:      withNegativePrompt(req.Prompt, req.NegativePrompt),
		Size:        req.AspectRatio.Size(),
		AspectRatio: string(req.AspectRatio.Normalize()),
		N:           n,
	})
	if err != nil {
		return nil, g.translate(err, s.provider)
	}
	return toGeneratedImages(outs, n, s.label())
}

// GenerateFromImageAndPrompt は先頭のアップロード画像をプロンプトに従って編集します。
func (g *Generator) GenerateFromImageAndPrompt(ctx context.Context, creds domain.Credentials, req domain.ImageToImageRequest) ([]domain.GeneratedImage, error) {
	if err := g.validateRequest(req); err != nil {
		return nil, err
	}
	s, err := g.open(ctx, creds)
	if err != nil {
		return nil, err
	}

	base, err := imgutil.ConvertToPNG(req.Files[0])
	if err != nil {
		return nil, err
	}
	outs, err := s.client.EditImage(ctx, adapters.EditRequest{
		Model:  s.models.Image,
		Prompt: req.Prompt,
		Image:  base,
	})
	if err != nil {
		return nil, g.translate(err, s.provider)
	}
	return toGeneratedImages(outs, 1, s.label())
}

// GenerateWithStyleInspiration は参照画像の画風を強度に応じて借りながら新しい画像を生成します。
func (g *Generator) GenerateWithStyleInspiration(ctx context.Context, creds domain.Credentials, req domain.StyleInspirationRequest) ([]domain.GeneratedImage, error) {
	if err := g.validateRequest(req); err != nil {
		return nil, err
	}
	if len(req.Reference.Data) == 0 {
		return nil, domain.ValidationError(msgNoFile)
	}
	s, err := g.open(ctx, creds)
	if err != nil {
		return nil, err
	}

	ref, err := imgutil.ConvertToPNG(req.Reference)
	if err != nil {
		return nil, err
	}
	outs, err := s.client.EditImage(ctx, adapters.EditRequest{
		Model:  s.models.Image,
		Prompt: inspirationPrompt(req.Prompt, req.Strength),
		Image:  ref,
	})
	if err != nil {
		return nil, g.translate(err, s.provider)
	}
	return toGeneratedImages(outs, 1, s.label())
}

// GenerateInpainting はマスクで示した領域だけを描き直します。
func (g *Generator) GenerateInpainting(ctx context.Context, creds domain.Credentials, req domain.InpaintingRequest) ([]domain.GeneratedImage, error) {
	if err := g.validateRequest(req); err != nil {
		return nil, err
	}
	if len(req.Image.Data) == 0 || len(req.Mask.Data) == 0 {
		return nil, domain.ValidationError(msgNoFile)
	}
	s, err := g.open(ctx, creds)
	if err != nil {
		return nil, err
	}

	base, err := imgutil.ConvertToPNG(req.Image)
	if err != nil {
		return nil, err
	}
	mask, err := imgutil.NormalizeMask(req.Mask)
	if err != nil {
		return nil, err
	}

	g.logger.Debug("inpainting request prepared", zap.Int("image_bytes", len(base.Data)), zap.Int("mask_bytes", len(mask.Data)))
	outs, err := s.client.EditImage(ctx, adapters.EditRequest{
		Model:  s.models.Image,
		Prompt: req.Prompt,
		Image:  base,
		Mask:   &mask,
	})
	if err != nil {
		return nil, g.translate(err, s.provider)
	}
	return toGeneratedImages(outs, 0, s.label())
}

// ListAvailableImageModels は画像生成向けのモデル ID を返します。
func (g *Generator) ListAvailableImageModels(ctx context.Context, creds domain.Credentials) ([]string, error) {
	s, err := g.open(ctx, creds)
	if err != nil {
		return nil, err
	}
	ids, err := s.client.ListModels(ctx)
	if err != nil {
		return nil, g.translate(err, s.provider)
	}
	return filterImageModels(ids), nil
}
