package generator

import (
	"fmt"
	"strings"

	"github.com/shouni/image-studio-kit/pkg/adapters"
	"github.com/shouni/image-studio-kit/pkg/domain"
	"github.com/shouni/image-studio-kit/pkg/imgutil"
)

const (
	cardCount          = 4
	defaultImageCount  = 1
	panelSourcePreview = 128

	comicSystemPrompt = "You are an expert visual storyteller who writes detailed prompts for an image generation model."
	comicSchemaName   = "comic_strip_prompts"
	comicSchemaField  = "prompts"

	videoSystemPrompt     = "You are an experienced film director who writes concise yet cinematic shot descriptions."
	videoSchemaName       = "comic_video_scripts"
	videoSchemaField      = "scripts"
	videoScriptItemDetail = "A cinematic single-sentence video direction in Chinese."
)

func cardsPrompt(topic string, style domain.Style) string {
	return fmt.Sprintf(
		"Design an educational infographic that explains \"%s\". Style guidance: %s. Each image must be a separate card, cohesive as a set, with readable English labels.",
		topic, style.Prompt())
}

// withNegativePrompt は除外指示を末尾に追記します。除外指示が空白だけなら付けません。
func withNegativePrompt(prompt, negative string) string {
	prompt = strings.TrimSpace(prompt)
	negative = strings.TrimSpace(negative)
	if negative == "" {
		return prompt
	}
	return prompt + "\nDo not include: " + negative
}

func inspirationPrompt(prompt string, strength domain.InspirationStrength) string {
	return prompt + ". " + strength.Directive()
}

func comicScenesPrompt(story string, n int, style domain.Style) string {
	return fmt.Sprintf(
		"Story idea:\n%s\n\nCreate %d detailed visual scene prompts. Each prompt must describe composition, characters, actions, mood, and integrate this art style: %s.",
		story, n, style.Prompt())
}

func comicPanelPrompt(scene string, style domain.Style) string {
	return fmt.Sprintf("%s\nArt style: %s. Aspect ratio 16:9.", scene, style.Prompt())
}

// videoScriptsPrompt はパネルごとに data URL の先頭だけを列挙した指示文を組み立てます。
func videoScriptsPrompt(story string, images []domain.GeneratedImage) string {
	lines := make([]string, len(images))
	for i, img := range images {
		src := img.Src
		if len(src) > panelSourcePreview {
			src = src[:panelSourcePreview]
		}
		lines[i] = fmt.Sprintf("Panel %d: %s...", i+1, src)
	}
	return fmt.Sprintf(
		"Story context: %s\n\nDraft cinematic video prompts for each panel below. Each prompt must mention camera movement, shot type, core action, and emotional tone.\n%s",
		story, strings.Join(lines, "\n"))
}

// toGeneratedImages は生成結果を data URL に変換します。limit が正なら先頭 limit 件だけ返します。
func toGeneratedImages(outs []adapters.ImageOutput, limit int, label string) ([]domain.GeneratedImage, error) {
	images := make([]domain.GeneratedImage, 0, len(outs))
	for _, out := range outs {
		if len(out.Data) == 0 {
			continue
		}
		images = append(images, domain.GeneratedImage{Src: imgutil.EncodeDataURL(out.MimeType, out.Data)})
	}
	if len(images) == 0 {
		return nil, domain.EmptyResultError(fmt.Sprintf(msgNoImages, label))
	}
	if limit > 0 && len(images) > limit {
		images = images[:limit]
	}
	return images, nil
}

// filterImageModels は "image" を含む ID だけを残します。該当が無ければ全件を返します。
func filterImageModels(ids []string) []string {
	var filtered []string
	for _, id := range ids {
		if strings.Contains(strings.ToLower(id), "image") {
			filtered = append(filtered, id)
		}
	}
	if len(filtered) == 0 {
		return ids
	}
	return filtered
}
