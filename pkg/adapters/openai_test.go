package adapters

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shouni/image-studio-kit/pkg/domain"
)

// newTestOpenAIClient は httptest サーバーに向けた OpenAIClient を作成します。
func newTestOpenAIClient(t *testing.T, handler http.HandlerFunc) *OpenAIClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewOpenAIClient(domain.Credentials{APIKey: " sk-test ", BaseURL: srv.URL + "/v1/"}, nil)
}

func writeJSON(t *testing.T, w http.ResponseWriter, status int, body any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	require.NoError(t, json.NewEncoder(w).Encode(body))
}

func TestOpenAIClient_GenerateImages(t *testing.T) {
	ctx := context.Background()
	pngData := testPNG(t)

	t.Run("リクエストが正しく組み立てられ b64_json だけが返るのだ", func(t *testing.T) {
		var got map[string]any
		client := newTestOpenAIClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/v1/images/generations", r.URL.Path)
			assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			writeJSON(t, w, http.StatusOK, map[string]any{
				"created": 1,
				"data": []map[string]any{
					{"b64_json": base64.StdEncoding.EncodeToString(pngData)},
					{"url": "https://example.com/ignored.png"},
				},
			})
		})

		out, err := client.GenerateImages(ctx, GenerateRequest{Model: "gpt-image-1", Prompt: "cat", Size: "1792x1024", N: 4})

		require.NoError(t, err)
		require.Len(t, out, 1)
		assert.Equal(t, pngData, out[0].Data)
		assert.Equal(t, "image/png", out[0].MimeType)
		assert.Equal(t, "gpt-image-1", got["model"])
		assert.Equal(t, "cat", got["prompt"])
		assert.Equal(t, "1792x1024", got["size"])
		assert.Equal(t, "b64_json", got["response_format"])
		assert.EqualValues(t, 4, got["n"])
	})

	t.Run("APIエラーは分類可能な形で返るのだ", func(t *testing.T) {
		client := newTestOpenAIClient(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(t, w, http.StatusUnauthorized, map[string]any{
				"error": map[string]any{"message": "Incorrect API key provided", "type": "invalid_request_error", "code": "invalid_api_key"},
			})
		})

		_, err := client.GenerateImages(ctx, GenerateRequest{Prompt: "cat", N: 1})

		require.Error(t, err)
		assert.Equal(t, ReasonUnauthorized, Classify(err))
	})

	t.Run("残高不足コードは insufficient_quota になるのだ", func(t *testing.T) {
		client := newTestOpenAIClient(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(t, w, http.StatusBadRequest, map[string]any{
				"error": map[string]any{"message": "You exceeded your current quota", "type": "insufficient_quota", "code": "insufficient_quota"},
			})
		})

		_, err := client.GenerateImages(ctx, GenerateRequest{Prompt: "cat", N: 1})

		assert.Equal(t, ReasonInsufficientQuota, Classify(err))
	})
}

func TestOpenAIClient_EditImage(t *testing.T) {
	ctx := context.Background()
	pngData := testPNG(t)

	client := newTestOpenAIClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/images/edits", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(10<<20))
		assert.Equal(t, "make it blue", r.FormValue("prompt"))
		assert.Equal(t, "gpt-image-1", r.FormValue("model"))
		assert.Equal(t, "1792x1024", r.FormValue("size"))

		img, header, err := r.FormFile("image")
		require.NoError(t, err)
		defer img.Close()
		assert.Equal(t, "panel.png", header.Filename)
		body, _ := io.ReadAll(img)
		assert.Equal(t, pngData, body)

		mask, maskHeader, err := r.FormFile("mask")
		require.NoError(t, err)
		defer mask.Close()
		assert.Equal(t, "mask.png", maskHeader.Filename)

		writeJSON(t, w, http.StatusOK, map[string]any{
			"data": []map[string]any{{"b64_json": base64.StdEncoding.EncodeToString(pngData)}},
		})
	})

	out, err := client.EditImage(ctx, EditRequest{
		Model:  "gpt-image-1",
		Prompt: "make it blue",
		Size:   "1792x1024",
		Image:  domain.ImageFile{Name: "panel.png", Data: pngData},
		Mask:   &domain.ImageFile{Name: "mask.png", Data: pngData},
	})

	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, pngData, out[0].Data)
}

func TestOpenAIClient_CompleteStringList(t *testing.T) {
	ctx := context.Background()

	t.Run("json_schema で件数が固定されるのだ", func(t *testing.T) {
		var got struct {
			Model          string `json:"model"`
			Messages       []struct{ Role, Content string }
			ResponseFormat struct {
				Type       string `json:"type"`
				JSONSchema struct {
					Name   string         `json:"name"`
					Schema map[string]any `json:"schema"`
				} `json:"json_schema"`
			} `json:"response_format"`
		}
		client := newTestOpenAIClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/v1/chat/completions", r.URL.Path)
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			writeJSON(t, w, http.StatusOK, map[string]any{
				"choices": []map[string]any{{
					"index":   0,
					"message": map[string]any{"role": "assistant", "content": `{"prompts":["a","b","c"]}`},
				}},
			})
		})

		list, err := client.CompleteStringList(ctx, StringListRequest{
			Model: "gpt-4.1-mini", SystemPrompt: "sys", UserPrompt: "user",
			SchemaName: "comic_strip_prompts", Field: "prompts", Count: 3,
		})

		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b", "c"}, list)
		assert.Equal(t, "gpt-4.1-mini", got.Model)
		require.Len(t, got.Messages, 2)
		assert.Equal(t, "system", got.Messages[0].Role)
		assert.Equal(t, "user", got.Messages[1].Content)
		assert.Equal(t, "json_schema", got.ResponseFormat.Type)
		assert.Equal(t, "comic_strip_prompts", got.ResponseFormat.JSONSchema.Name)
		props := got.ResponseFormat.JSONSchema.Schema["properties"].(map[string]any)
		prompts := props["prompts"].(map[string]any)
		assert.EqualValues(t, 3, prompts["minItems"])
		assert.EqualValues(t, 3, prompts["maxItems"])
	})

	t.Run("本文が空なら ErrEmptyCompletion なのだ", func(t *testing.T) {
		client := newTestOpenAIClient(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(t, w, http.StatusOK, map[string]any{
				"choices": []map[string]any{{"message": map[string]any{"role": "assistant", "content": ""}}},
			})
		})

		_, err := client.CompleteStringList(ctx, StringListRequest{Field: "prompts"})

		assert.ErrorIs(t, err, ErrEmptyCompletion)
	})
}

func TestOpenAIClient_ListModels(t *testing.T) {
	client := newTestOpenAIClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/models", r.URL.Path)
		writeJSON(t, w, http.StatusOK, map[string]any{
			"object": "list",
			"data":   []map[string]any{{"id": "gpt-image-1"}, {"id": "text-embed-1"}},
		})
	})

	ids, err := client.ListModels(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"gpt-image-1", "text-embed-1"}, ids)
}

func TestParseStringList(t *testing.T) {
	t.Run("フィールドが無ければ空", func(t *testing.T) {
		list, err := parseStringList(`{"other":["x"]}`, "prompts")
		require.NoError(t, err)
		assert.Empty(t, list)
	})

	t.Run("配列でなければ空", func(t *testing.T) {
		list, err := parseStringList(`{"prompts":"x"}`, "prompts")
		require.NoError(t, err)
		assert.Empty(t, list)
	})

	t.Run("JSONでなければエラー", func(t *testing.T) {
		_, err := parseStringList(`not json`, "prompts")
		assert.Error(t, err)
	})
}
