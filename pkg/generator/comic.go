package generator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/shouni/image-studio-kit/pkg/adapters"
	"github.com/shouni/image-studio-kit/pkg/domain"
	"github.com/shouni/image-studio-kit/pkg/imgutil"
)

const panelFileName = "panel.png"

// GenerateComicStrip は物語をシーンごとのプロンプトに分割し、各コマを順番に生成します。
// 途中で失敗した場合、それまでに生成したコマは返しません。
func (g *Generator) GenerateComicStrip(ctx context.Context, creds domain.Credentials, req domain.ComicStripRequest) (*domain.ComicStrip, error) {
	if err := g.validateRequest(req); err != nil {
		return nil, err
	}
	s, err := g.open(ctx, creds)
	if err != nil {
		return nil, err
	}

	n := req.NumberOfImages
	scenes, err := s.client.CompleteStringList(ctx, adapters.StringListRequest{
		Model:        s.models.Chat,
		SystemPrompt: comicSystemPrompt,
		UserPrompt:   comicScenesPrompt(req.Story, n, req.Style),
		SchemaName:   comicSchemaName,
		Field:        comicSchemaField,
		Count:        n,
	})
	if errors.Is(err, adapters.ErrEmptyCompletion) {
		return nil, domain.EmptyResultError(fmt.Sprintf(msgNoComicPrompts, s.label()))
	}
	if err != nil {
		return nil, g.translate(err, s.provider)
	}
	if len(scenes) != n {
		return nil, domain.CountMismatchError(fmt.Sprintf(msgPromptCount, n, len(scenes)), n, len(scenes))
	}

	images := make([]domain.GeneratedImage, 0, n)
	for i, scene := range scenes {
		g.logger.Debug("generating comic panel", zap.Int("panel", i+1), zap.Int("total", n))
		outs, err := s.client.GenerateImages(ctx, adapters.GenerateRequest{
			Model:       s.models.Image,
			Prompt:      comicPanelPrompt(scene, req.Style),
			Size:        domain.SizeWide,
			AspectRatio: string(domain.AspectRatioWide),
			N:           1,
		})
		if err != nil {
			return nil, g.translate(err, s.provider)
		}
		panel, err := toGeneratedImages(outs, 0, s.label())
		if err != nil {
			return nil, err
		}
		images = append(images, panel...)
	}

	if len(images) != n {
		return nil, domain.CountMismatchError(msgPanelCount, n, len(images))
	}
	return &domain.ComicStrip{Images: images, PanelPrompts: scenes}, nil
}

// EditComicPanel は生成済みのコマをプロンプトに従って描き直します。
func (g *Generator) EditComicPanel(ctx context.Context, creds domain.Credentials, req domain.PanelEditRequest) (domain.GeneratedImage, error) {
	if err := g.validateRequest(req); err != nil {
		return domain.GeneratedImage{}, err
	}
	if strings.TrimSpace(req.Panel.Src) == "" {
		return domain.GeneratedImage{}, domain.ValidationError(msgNoFile)
	}
	s, err := g.open(ctx, creds)
	if err != nil {
		return domain.GeneratedImage{}, err
	}

	file, err := imgutil.DataURLToFile(req.Panel.Src, panelFileName)
	if err != nil {
		return domain.GeneratedImage{}, err
	}
	base, err := imgutil.ConvertToPNG(file)
	if err != nil {
		return domain.GeneratedImage{}, err
	}

	outs, err := s.client.EditImage(ctx, adapters.EditRequest{
		Model:       s.models.Image,
		Prompt:      req.Prompt,
		Size:        domain.SizeWide,
		AspectRatio: string(domain.AspectRatioWide),
		Image:       base,
	})
	if err != nil {
		return domain.GeneratedImage{}, g.translate(err, s.provider)
	}
	images, err := toGeneratedImages(outs, 1, s.label())
	if err != nil {
		return domain.GeneratedImage{}, err
	}
	return images[0], nil
}

// GenerateVideoScripts は各コマに対応する動画演出文を 1 つずつ生成します。
func (g *Generator) GenerateVideoScripts(ctx context.Context, creds domain.Credentials, req domain.VideoScriptRequest) ([]string, error) {
	if err := g.validateRequest(req); err != nil {
		return nil, err
	}
	s, err := g.open(ctx, creds)
	if err != nil {
		return nil, err
	}

	scripts, err := s.client.CompleteStringList(ctx, adapters.StringListRequest{
		Model:           s.models.Chat,
		SystemPrompt:    videoSystemPrompt,
		UserPrompt:      videoScriptsPrompt(req.Story, req.Images),
		SchemaName:      videoSchemaName,
		Field:           videoSchemaField,
		ItemDescription: videoScriptItemDetail,
	})
	if errors.Is(err, adapters.ErrEmptyCompletion) {
		return nil, domain.EmptyResultError(fmt.Sprintf(msgNoVideoScripts, s.label()))
	}
	if err != nil {
		return nil, g.translate(err, s.provider)
	}
	if len(scripts) != len(req.Images) {
		return nil, domain.CountMismatchError(msgScriptCount, len(req.Images), len(scripts))
	}
	return scripts, nil
}

// GenerateVideo は未提供です。常に NotSupported を返します。
func (g *Generator) GenerateVideo(ctx context.Context, creds domain.Credentials) error {
	return videoNotSupported(creds)
}

// GenerateVideoTransition は未提供です。常に NotSupported を返します。
func (g *Generator) GenerateVideoTransition(ctx context.Context, creds domain.Credentials) error {
	return videoNotSupported(creds)
}

// GetVideosOperation は未提供です。常に NotSupported を返します。
func (g *Generator) GetVideosOperation(ctx context.Context, creds domain.Credentials) error {
	return videoNotSupported(creds)
}

func videoNotSupported(creds domain.Credentials) error {
	return domain.NotSupportedError(fmt.Sprintf(msgVideoNotSupported, creds.Provider.Label()))
}
