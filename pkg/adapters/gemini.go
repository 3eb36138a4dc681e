package adapters

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/shouni/image-studio-kit/pkg/domain"
	"github.com/shouni/image-studio-kit/pkg/imgutil"
)

const (
	UseImageCompression     = true
	ImageCompressionQuality = 75

	geminiModelPrefix = "models/"
	maskInstruction   = "The second image is an edit mask. Only repaint the regions that are transparent in the mask and keep every other pixel unchanged."
)

// errNoImageData は正常終了したが画像パーツが含まれなかった応答を表します。
var errNoImageData = errors.New("画像データが見つかりませんでした")

// geminiModels は genai.Models のうち利用するメソッドだけを切り出したものです。
type geminiModels interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
	All(ctx context.Context) iter.Seq2[*genai.Model, error]
}

// GeminiClient は Gemini API を使う ImageClient 実装です。
// Gemini は 1 回の呼び出しで 1 枚しか返さないため、複数枚は順番に要求します。
type GeminiClient struct {
	models geminiModels
	logger *zap.Logger
}

// NewGeminiClient は呼び出し単位の認証情報から genai クライアントを作成します。
func NewGeminiClient(ctx context.Context, creds domain.Credentials, logger *zap.Logger) (*GeminiClient, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg := &genai.ClientConfig{
		APIKey:  strings.TrimSpace(creds.APIKey),
		Backend: genai.BackendGeminiAPI,
	}
	if base := strings.TrimSpace(creds.BaseURL); base != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: base}
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("Geminiクライアントの初期化に失敗しました: %w", err)
	}
	return &GeminiClient{models: client.Models, logger: logger}, nil
}

// GenerateImages は N 回の生成を順に実行します。途中で失敗した場合は結果を破棄します。
func (c *GeminiClient) GenerateImages(ctx context.Context, req GenerateRequest) ([]ImageOutput, error) {
	n := max(req.N, 1)
	c.logger.Debug("gemini image generation",
		zap.String("model", req.Model), zap.Int("n", n), zap.String("aspect_ratio", req.AspectRatio))

	outputs := make([]ImageOutput, 0, n)
	for i := 0; i < n; i++ {
		out, err := c.generate(ctx, req.Model, []*genai.Part{genai.NewPartFromText(req.Prompt)}, req.AspectRatio)
		if errors.Is(err, errNoImageData) {
			c.logger.Warn("Geminiが画像を返しませんでした", zap.Int("index", i))
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("Gemini画像生成エラー (%d/%d): %w", i+1, n, err)
		}
		outputs = append(outputs, *out)
	}
	return outputs, nil
}

// EditImage は入力画像（とマスク）をインラインパーツとして添付して生成します。
func (c *GeminiClient) EditImage(ctx context.Context, req EditRequest) ([]ImageOutput, error) {
	c.logger.Debug("gemini image edit", zap.String("model", req.Model), zap.Bool("mask", req.Mask != nil))

	parts := []*genai.Part{genai.NewPartFromText(req.Prompt)}
	imgPart := c.prepareImagePart(req.Image.Data)
	if imgPart == nil {
		return nil, domain.DecodeError(imgutil.MsgDecodeImage, fmt.Errorf("input %q is not an image", req.Image.Name))
	}
	parts = append(parts, imgPart)

	if req.Mask != nil {
		// マスクは透過情報が必要なので圧縮しない
		if maskPart := c.toPart(req.Mask.Data); maskPart != nil {
			parts = append(parts, maskPart, genai.NewPartFromText(maskInstruction))
		}
	}

	out, err := c.generate(ctx, req.Model, parts, req.AspectRatio)
	if errors.Is(err, errNoImageData) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Gemini画像編集エラー: %w", err)
	}
	return []ImageOutput{*out}, nil
}

// CompleteStringList は ResponseSchema を指定した JSON 出力で文字列配列を生成します。
func (c *GeminiClient) CompleteStringList(ctx context.Context, req StringListRequest) ([]string, error) {
	c.logger.Debug("gemini structured completion",
		zap.String("model", req.Model), zap.String("schema", req.SchemaName), zap.Int("count", req.Count))

	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(req.SystemPrompt, genai.RoleUser),
		ResponseMIMEType:  "application/json",
		ResponseSchema:    stringListGenaiSchema(req.Field, req.ItemDescription, req.Count),
	}
	contents := []*genai.Content{genai.NewContentFromText(req.UserPrompt, genai.RoleUser)}

	resp, err := c.models.GenerateContent(ctx, req.Model, contents, cfg)
	if err != nil {
		return nil, fmt.Errorf("Geminiテキスト生成エラー: %w", err)
	}
	return parseStringList(responseText(resp), req.Field)
}

// ListModels は "models/" 接頭辞を除いたモデル名を返します。
func (c *GeminiClient) ListModels(ctx context.Context) ([]string, error) {
	var ids []string
	for m, err := range c.models.All(ctx) {
		if err != nil {
			return nil, fmt.Errorf("Geminiモデル一覧取得エラー: %w", err)
		}
		ids = append(ids, strings.TrimPrefix(m.Name, geminiModelPrefix))
	}
	return ids, nil
}

func (c *GeminiClient) generate(ctx context.Context, model string, parts []*genai.Part, aspectRatio string) (*ImageOutput, error) {
	cfg := &genai.GenerateContentConfig{ResponseModalities: []string{"TEXT", "IMAGE"}}
	if aspectRatio != "" {
		cfg.ImageConfig = &genai.ImageConfig{AspectRatio: aspectRatio}
	}

	resp, err := c.models.GenerateContent(ctx, model, []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}, cfg)
	if err != nil {
		return nil, err
	}
	return c.parseToResponse(resp)
}

// prepareImagePart は参照画像を必要に応じて JPEG に圧縮してから Part に変換します。
func (c *GeminiClient) prepareImagePart(data []byte) *genai.Part {
	finalData := data
	if UseImageCompression {
		if compressed, err := imgutil.CompressToJPEG(data, ImageCompressionQuality); err == nil {
			finalData = compressed
		} else {
			c.logger.Warn("参照画像の圧縮に失敗したため元データを送信します", zap.Error(err))
		}
	}
	return c.toPart(finalData)
}

// toPart はバイト列を genai.Part (InlineData) に変換します。
func (c *GeminiClient) toPart(data []byte) *genai.Part {
	mimeType := imgutil.DetectMimeType(data)
	if !strings.HasPrefix(mimeType, "image/") {
		c.logger.Warn("MIMEタイプが画像ではないためPartに変換できませんでした", zap.String("detected_mime_type", mimeType))
		return nil
	}
	return &genai.Part{InlineData: &genai.Blob{MIMEType: mimeType, Data: data}}
}

// parseToResponse は Gemini のレスポンスから最初の画像パーツを取り出します。
func (c *GeminiClient) parseToResponse(resp *genai.GenerateContentResponse) (*ImageOutput, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return nil, fmt.Errorf("Geminiからの有効な応答がありませんでした")
	}

	// 最初の候補のみを利用する
	candidate := resp.Candidates[0]
	if candidate.Content != nil {
		for _, part := range candidate.Content.Parts {
			if part.InlineData != nil && len(part.InlineData.Data) > 0 {
				return &ImageOutput{Data: part.InlineData.Data, MimeType: part.InlineData.MIMEType}, nil
			}
		}
	}

	// 安全フィルター等によるブロック
	if candidate.FinishReason != genai.FinishReasonUnspecified && candidate.FinishReason != genai.FinishReasonStop {
		return nil, fmt.Errorf("画像生成が異常終了しました (FinishReason: %s)", candidate.FinishReason)
	}

	return nil, errNoImageData
}

// responseText は最初の候補のテキストパーツを連結します。
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part.Text != "" && !part.Thought {
			sb.WriteString(part.Text)
		}
	}
	return sb.String()
}

var (
	_ ImageClient = (*GeminiClient)(nil)
	_ ImageClient = (*OpenAIClient)(nil)
)
