package adapters

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"iter"
	"testing"

	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

// --- Mocks ---

type generateCall struct {
	model    string
	contents []*genai.Content
	config   *genai.GenerateContentConfig
}

// fakeGeminiModels は geminiModels のテスト用モックです。
type fakeGeminiModels struct {
	calls        []generateCall
	generateFunc func(call int) (*genai.GenerateContentResponse, error)
	models       []*genai.Model
	listErr      error
}

func (f *fakeGeminiModels) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.calls = append(f.calls, generateCall{model: model, contents: contents, config: config})
	if f.generateFunc != nil {
		return f.generateFunc(len(f.calls) - 1)
	}
	return imageResponse([]byte("fake-png")), nil
}

func (f *fakeGeminiModels) All(ctx context.Context) iter.Seq2[*genai.Model, error] {
	return func(yield func(*genai.Model, error) bool) {
		if f.listErr != nil {
			yield(nil, f.listErr)
			return
		}
		for _, m := range f.models {
			if !yield(m, nil) {
				return
			}
		}
	}
}

// --- Helpers ---

func imageResponse(data []byte) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{
				Parts: []*genai.Part{
					{Text: "here you go"},
					{InlineData: &genai.Blob{MIMEType: "image/png", Data: data}},
				},
			},
			FinishReason: genai.FinishReasonStop,
		}},
	}
}

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content:      &genai.Content{Parts: []*genai.Part{{Text: text}}},
			FinishReason: genai.FinishReasonStop,
		}},
	}
}

// testPNG は 4x4 の不透明な PNG を返します。
func testPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.Set(x, y, color.RGBA{R: 30, G: 120, B: 200, A: 255})
		}
	}
	buf := new(bytes.Buffer)
	require.NoError(t, png.Encode(buf, img))
	return buf.Bytes()
}
