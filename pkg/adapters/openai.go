package adapters

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/shouni/image-studio-kit/pkg/domain"
	"github.com/shouni/image-studio-kit/pkg/imgutil"
)

// OpenAIClient は OpenAI 互換 API を使う ImageClient 実装です。
// BaseURL を差し替えれば互換ゲートウェイにも接続できます。
type OpenAIClient struct {
	client *openai.Client
	logger *zap.Logger
}

// NewOpenAIClient は呼び出し単位の認証情報からクライアントを作成します。
func NewOpenAIClient(creds domain.Credentials, logger *zap.Logger) *OpenAIClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg := openai.DefaultConfig(strings.TrimSpace(creds.APIKey))
	if base := strings.TrimSpace(creds.BaseURL); base != "" {
		cfg.BaseURL = strings.TrimRight(base, "/")
	}
	return &OpenAIClient{
		client: openai.NewClientWithConfig(cfg),
		logger: logger,
	}
}

// GenerateImages は images/generations を呼び出します。
func (c *OpenAIClient) GenerateImages(ctx context.Context, req GenerateRequest) ([]ImageOutput, error) {
	c.logger.Debug("openai image generation",
		zap.String("model", req.Model), zap.Int("n", req.N), zap.String("size", req.Size))

	resp, err := c.client.CreateImage(ctx, openai.ImageRequest{
		Model:          req.Model,
		Prompt:         req.Prompt,
		N:              req.N,
		Size:           req.Size,
		ResponseFormat: openai.CreateImageResponseFormatB64JSON,
	})
	if err != nil {
		return nil, fmt.Errorf("OpenAI画像生成エラー: %w", err)
	}
	return decodeImageData(resp.Data)
}

// EditImage は images/edits を multipart で呼び出します。入力は PNG 済みである前提です。
func (c *OpenAIClient) EditImage(ctx context.Context, req EditRequest) ([]ImageOutput, error) {
	c.logger.Debug("openai image edit",
		zap.String("model", req.Model), zap.Bool("mask", req.Mask != nil), zap.String("size", req.Size))

	editReq := openai.ImageEditRequest{
		Image:          openai.WrapReader(bytes.NewReader(req.Image.Data), req.Image.Name, imgutil.MimeTypePNG),
		Model:          req.Model,
		Prompt:         req.Prompt,
		N:              1,
		Size:           req.Size,
		ResponseFormat: openai.CreateImageResponseFormatB64JSON,
	}
	if req.Mask != nil {
		editReq.Mask = openai.WrapReader(bytes.NewReader(req.Mask.Data), req.Mask.Name, imgutil.MimeTypePNG)
	}

	resp, err := c.client.CreateEditImage(ctx, editReq)
	if err != nil {
		return nil, fmt.Errorf("OpenAI画像編集エラー: %w", err)
	}
	return decodeImageData(resp.Data)
}

// CompleteStringList は json_schema 形式の response_format を指定してチャット補完を実行します。
func (c *OpenAIClient) CompleteStringList(ctx context.Context, req StringListRequest) ([]string, error) {
	c.logger.Debug("openai structured completion",
		zap.String("model", req.Model), zap.String("schema", req.SchemaName), zap.Int("count", req.Count))

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: req.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: req.SystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: req.UserPrompt},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   req.SchemaName,
				Schema: stringListSchema(req.Field, req.ItemDescription, req.Count),
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("OpenAIチャット補完エラー: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, ErrEmptyCompletion
	}
	return parseStringList(resp.Choices[0].Message.Content, req.Field)
}

// ListModels は /models の ID を返却順のまま返します。
func (c *OpenAIClient) ListModels(ctx context.Context) ([]string, error) {
	list, err := c.client.ListModels(ctx)
	if err != nil {
		return nil, fmt.Errorf("OpenAIモデル一覧取得エラー: %w", err)
	}
	ids := make([]string, 0, len(list.Models))
	for _, m := range list.Models {
		ids = append(ids, m.ID)
	}
	return ids, nil
}

// decodeImageData は b64_json を持つ要素だけを画像に変換します。
func decodeImageData(items []openai.ImageResponseDataInner) ([]ImageOutput, error) {
	out := make([]ImageOutput, 0, len(items))
	for i, item := range items {
		if item.B64JSON == "" {
			continue
		}
		data, err := base64.StdEncoding.DecodeString(item.B64JSON)
		if err != nil {
			return nil, fmt.Errorf("画像データ[%d]のデコードに失敗しました: %w", i, err)
		}
		out = append(out, ImageOutput{Data: data, MimeType: detectImageMime(data)})
	}
	return out, nil
}

// parseStringList は {field: [...]} 形式の本文から配列を取り出します。
// フィールドが無い、または配列でない場合は空の結果を返し、件数判定は呼び出し側に任せます。
func parseStringList(content, field string) ([]string, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyCompletion
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(content), &obj); err != nil {
		return nil, fmt.Errorf("構造化出力のJSON解析に失敗しました: %w", err)
	}

	var list []string
	if raw, ok := obj[field]; ok {
		if err := json.Unmarshal(raw, &list); err != nil {
			return nil, nil
		}
	}
	return list, nil
}

// detectImageMime は画像の MIME タイプを判定します。画像と判定できなければ PNG とみなします。
func detectImageMime(data []byte) string {
	if m := imgutil.DetectMimeType(data); strings.HasPrefix(m, "image/") {
		return m
	}
	return imgutil.MimeTypePNG
}
