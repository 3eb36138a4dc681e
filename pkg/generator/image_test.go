package generator

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shouni/image-studio-kit/pkg/adapters"
	"github.com/shouni/image-studio-kit/pkg/domain"
	"github.com/shouni/image-studio-kit/pkg/imgutil"
)

func TestGenerator_RequiresAPIKeyBeforeNetwork(t *testing.T) {
	ctx := context.Background()
	png := domain.ImageFile{Name: "a.png", Data: []byte("png")}
	noKey := domain.Credentials{APIKey: "   ", BaseURL: "https://example.com/v1"}

	calls := map[string]func(g *Generator) error{
		"cards": func(g *Generator) error {
			_, err := g.GenerateIllustratedCards(ctx, noKey, domain.IllustratedCardsRequest{Prompt: "water"})
			return err
		},
		"text-to-image": func(g *Generator) error {
			_, err := g.GenerateTextToImage(ctx, noKey, domain.TextToImageRequest{Prompt: "cat"})
			return err
		},
		"image-to-image": func(g *Generator) error {
			_, err := g.GenerateFromImageAndPrompt(ctx, noKey, domain.ImageToImageRequest{Prompt: "cat", Files: []domain.ImageFile{png}})
			return err
		},
		"style-inspiration": func(g *Generator) error {
			_, err := g.GenerateWithStyleInspiration(ctx, noKey, domain.StyleInspirationRequest{Prompt: "cat", Reference: png})
			return err
		},
		"inpainting": func(g *Generator) error {
			_, err := g.GenerateInpainting(ctx, noKey, domain.InpaintingRequest{Prompt: "cat", Image: png, Mask: png})
			return err
		},
		"comic": func(g *Generator) error {
			_, err := g.GenerateComicStrip(ctx, noKey, domain.ComicStripRequest{Story: "story", NumberOfImages: 2})
			return err
		},
		"panel-edit": func(g *Generator) error {
			_, err := g.EditComicPanel(ctx, noKey, domain.PanelEditRequest{Panel: domain.GeneratedImage{Src: "data:image/png;base64,QUJD"}, Prompt: "fix"})
			return err
		},
		"video-scripts": func(g *Generator) error {
			_, err := g.GenerateVideoScripts(ctx, noKey, domain.VideoScriptRequest{Images: []domain.GeneratedImage{{Src: "data:"}}})
			return err
		},
		"models": func(g *Generator) error {
			_, err := g.ListAvailableImageModels(ctx, noKey)
			return err
		},
	}

	for name, call := range calls {
		t.Run(name, func(t *testing.T) {
			client := &mockImageClient{}
			g, factory := newTestGenerator(t, client)

			err := call(g)

			require.ErrorIs(t, err, domain.ErrValidation)
			assert.Equal(t, "您需要先配置 OpenAI API Key。", err.Error())
			assert.Empty(t, factory.calls)
		})
	}
}

func TestGenerator_GenerateIllustratedCards(t *testing.T) {
	ctx := context.Background()

	t.Run("4枚組のワイドサイズで要求し最大4枚を返す", func(t *testing.T) {
		client := &mockImageClient{generateFunc: func(call int, req adapters.GenerateRequest) ([]adapters.ImageOutput, error) {
			return fakeOutputs(5), nil
		}}
		g, factory := newTestGenerator(t, client)

		images, err := g.GenerateIllustratedCards(ctx, testCreds, domain.IllustratedCardsRequest{Prompt: "photosynthesis", Style: domain.StyleWatercolor})

		require.NoError(t, err)
		assert.Len(t, images, 4)
		assert.True(t, strings.HasPrefix(images[0].Src, "data:image/png;base64,"))
		require.Len(t, client.generateCalls, 1)
		req := client.generateCalls[0]
		assert.Equal(t, 4, req.N)
		assert.Equal(t, "1792x1024", req.Size)
		assert.Equal(t, "gpt-image-1", req.Model)
		assert.Equal(t,
			`Design an educational infographic that explains "photosynthesis". Style guidance: `+domain.StyleWatercolor.Prompt()+`. Each image must be a separate card, cohesive as a set, with readable English labels.`,
			req.Prompt)
		assert.Equal(t, domain.ProviderOpenAI, factory.calls[0].Provider)
	})

	t.Run("資格情報のモデルが既定値より優先される", func(t *testing.T) {
		client := &mockImageClient{}
		g, _ := newTestGenerator(t, client)
		creds := testCreds
		creds.Model = " dall-e-3 "

		_, err := g.GenerateIllustratedCards(ctx, creds, domain.IllustratedCardsRequest{Prompt: "x"})

		require.NoError(t, err)
		assert.Equal(t, "dall-e-3", client.generateCalls[0].Model)
	})

	t.Run("画像が返らなければ EmptyResult", func(t *testing.T) {
		client := &mockImageClient{generateFunc: func(int, adapters.GenerateRequest) ([]adapters.ImageOutput, error) {
			return []adapters.ImageOutput{{}}, nil
		}}
		g, _ := newTestGenerator(t, client)

		_, err := g.GenerateIllustratedCards(ctx, testCreds, domain.IllustratedCardsRequest{Prompt: "x"})

		require.ErrorIs(t, err, domain.ErrEmptyResult)
		assert.Equal(t, "OpenAI 没有返回任何图片。", err.Error())
	})

	t.Run("空白のプロンプトは ValidationError", func(t *testing.T) {
		g, factory := newTestGenerator(t, &mockImageClient{})

		_, err := g.GenerateIllustratedCards(ctx, testCreds, domain.IllustratedCardsRequest{Prompt: "  \n"})

		require.ErrorIs(t, err, domain.ErrValidation)
		assert.Equal(t, "请输入提示词。", err.Error())
		assert.Empty(t, factory.calls)
	})
}

func TestGenerator_GenerateTextToImage(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		req        domain.TextToImageRequest
		wantPrompt string
		wantN      int
		wantSize   string
	}{
		{"除外指示なし", domain.TextToImageRequest{Prompt: "cat"}, "cat", 1, "1024x1024"},
		{"除外指示あり", domain.TextToImageRequest{Prompt: " cat ", NegativePrompt: " dog ", NumberOfImages: 3, AspectRatio: domain.AspectRatioTall}, "cat\nDo not include: dog", 3, "1024x1792"},
		{"空白だけの除外指示", domain.TextToImageRequest{Prompt: "cat", NegativePrompt: "   ", AspectRatio: "2:1"}, "cat", 1, "1024x1024"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &mockImageClient{}
			g, _ := newTestGenerator(t, client)

			images, err := g.GenerateTextToImage(ctx, testCreds, tt.req)

			require.NoError(t, err)
			assert.Len(t, images, tt.wantN)
			req := client.generateCalls[0]
			assert.Equal(t, tt.wantPrompt, req.Prompt)
			assert.Equal(t, tt.wantN, req.N)
			assert.Equal(t, tt.wantSize, req.Size)
		})
	}

	t.Run("要求より多く返っても n 枚に切り詰める", func(t *testing.T) {
		client := &mockImageClient{generateFunc: func(int, adapters.GenerateRequest) ([]adapters.ImageOutput, error) {
			return fakeOutputs(4), nil
		}}
		g, _ := newTestGenerator(t, client)

		images, err := g.GenerateTextToImage(ctx, testCreds, domain.TextToImageRequest{Prompt: "cat", NumberOfImages: 2})

		require.NoError(t, err)
		assert.Len(t, images, 2)
	})

	t.Run("枚数上限超過は ValidationError", func(t *testing.T) {
		g, _ := newTestGenerator(t, &mockImageClient{})
		_, err := g.GenerateTextToImage(ctx, testCreds, domain.TextToImageRequest{Prompt: "cat", NumberOfImages: 11})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})
}

func TestGenerator_GenerateFromImageAndPrompt(t *testing.T) {
	ctx := context.Background()

	t.Run("ファイルが無ければ通信前に ValidationError", func(t *testing.T) {
		g, factory := newTestGenerator(t, &mockImageClient{})

		_, err := g.GenerateFromImageAndPrompt(ctx, testCreds, domain.ImageToImageRequest{Prompt: "cat"})

		require.ErrorIs(t, err, domain.ErrValidation)
		assert.Equal(t, "请先上传一张图片。", err.Error())
		assert.Empty(t, factory.calls)
	})

	t.Run("先頭のJPEGはPNGに変換され結果は1枚だけ", func(t *testing.T) {
		client := &mockImageClient{editFunc: func(adapters.EditRequest) ([]adapters.ImageOutput, error) {
			return fakeOutputs(3), nil
		}}
		g, _ := newTestGenerator(t, client)
		files := []domain.ImageFile{
			{Name: "first.jpg", Data: encodeTestImage(t, "jpeg")},
			{Name: "second.png", Data: encodeTestImage(t, "png")},
		}

		images, err := g.GenerateFromImageAndPrompt(ctx, testCreds, domain.ImageToImageRequest{Prompt: "make it night", Files: files})

		require.NoError(t, err)
		assert.Len(t, images, 1)
		edit := client.editCalls[0]
		assert.Equal(t, "first.png", edit.Image.Name)
		assert.True(t, imgutil.IsPNG(edit.Image.Data))
		assert.Nil(t, edit.Mask)
		assert.Equal(t, "make it night", edit.Prompt)
	})

	t.Run("画像でないファイルは DecodeError", func(t *testing.T) {
		client := &mockImageClient{}
		g, _ := newTestGenerator(t, client)

		_, err := g.GenerateFromImageAndPrompt(ctx, testCreds, domain.ImageToImageRequest{Prompt: "x", Files: []domain.ImageFile{{Name: "a.txt", Data: []byte("text")}}})

		assert.ErrorIs(t, err, domain.ErrDecode)
		assert.Empty(t, client.editCalls)
	})
}

func TestGenerator_GenerateWithStyleInspiration(t *testing.T) {
	client := &mockImageClient{}
	g, _ := newTestGenerator(t, client)

	images, err := g.GenerateWithStyleInspiration(context.Background(), testCreds, domain.StyleInspirationRequest{
		Reference: domain.ImageFile{Name: "ref.png", Data: encodeTestImage(t, "png")},
		Prompt:    "a fox in the snow",
		Strength:  domain.StrengthHigh,
	})

	require.NoError(t, err)
	assert.Len(t, images, 1)
	assert.Equal(t, "a fox in the snow. "+domain.StrengthHigh.Directive(), client.editCalls[0].Prompt)

	t.Run("参照画像が空なら ValidationError", func(t *testing.T) {
		_, err := g.GenerateWithStyleInspiration(context.Background(), testCreds, domain.StyleInspirationRequest{Prompt: "x"})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})
}

func TestGenerator_GenerateInpainting(t *testing.T) {
	client := &mockImageClient{editFunc: func(adapters.EditRequest) ([]adapters.ImageOutput, error) {
		return fakeOutputs(2), nil
	}}
	g, _ := newTestGenerator(t, client)

	images, err := g.GenerateInpainting(context.Background(), testCreds, domain.InpaintingRequest{
		Prompt: "add a hat",
		Image:  domain.ImageFile{Name: "photo.jpg", Data: encodeTestImage(t, "jpeg")},
		Mask:   domain.ImageFile{Name: "brush.png", Data: encodeTestImage(t, "png")},
	})

	require.NoError(t, err)
	assert.Len(t, images, 2, "all results are returned")
	edit := client.editCalls[0]
	require.NotNil(t, edit.Mask)
	assert.Equal(t, "mask.png", edit.Mask.Name)
	assert.Equal(t, "photo.png", edit.Image.Name)
}

func TestGenerator_ProviderErrors(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		provider domain.Provider
		err      error
		wantKind error
		wantMsg  string
	}{
		{"401", "", &openai.APIError{HTTPStatusCode: http.StatusUnauthorized}, domain.ErrProviderAuth, "您提供的 OpenAI API Key 无效。请检查后重试。"},
		{"429", "", &openai.APIError{HTTPStatusCode: http.StatusTooManyRequests}, domain.ErrProviderQuota, "请求过于频繁或余额不足，请稍后再试或检查您的额度。"},
		{"残高不足", "", errors.New("insufficient_quota"), domain.ErrProviderQuota, "您的 OpenAI 账户余额不足或已达到配额限制。"},
		{"無効キー", domain.ProviderGemini, errors.New("invalid_api_key"), domain.ErrProviderAuth, "您提供的 Gemini API Key 无效。请确认是否输入正确。"},
		{"その他", domain.ProviderGemini, errors.New("EOF"), domain.ErrProvider, "调用 Gemini 失败，请稍后再试。"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &mockImageClient{generateFunc: func(int, adapters.GenerateRequest) ([]adapters.ImageOutput, error) {
				return nil, tt.err
			}}
			g, _ := newTestGenerator(t, client)
			creds := testCreds
			creds.Provider = tt.provider

			_, err := g.GenerateTextToImage(ctx, creds, domain.TextToImageRequest{Prompt: "cat"})

			require.ErrorIs(t, err, tt.wantKind)
			assert.Equal(t, tt.wantMsg, err.Error())
			assert.ErrorIs(t, err, tt.err, "cause is kept")
		})
	}

	t.Run("ファクトリのエラーも変換される", func(t *testing.T) {
		f := &mockFactory{err: errors.New("dial tcp: refused")}
		g, err := New(f.build)
		require.NoError(t, err)

		_, err = g.GenerateTextToImage(ctx, testCreds, domain.TextToImageRequest{Prompt: "cat"})

		assert.ErrorIs(t, err, domain.ErrProvider)
	})
}

func TestGenerator_ListAvailableImageModels(t *testing.T) {
	ctx := context.Background()

	t.Run("image を含む ID だけを返す", func(t *testing.T) {
		g, _ := newTestGenerator(t, &mockImageClient{models: []string{"gpt-image-1", "text-embed-1", "DALL-E-IMAGE"}})
		ids, err := g.ListAvailableImageModels(ctx, testCreds)
		require.NoError(t, err)
		assert.Equal(t, []string{"gpt-image-1", "DALL-E-IMAGE"}, ids)
	})

	t.Run("該当が無ければ全件", func(t *testing.T) {
		g, _ := newTestGenerator(t, &mockImageClient{models: []string{"gpt-4.1", "whisper-1"}})
		ids, err := g.ListAvailableImageModels(ctx, testCreds)
		require.NoError(t, err)
		assert.Equal(t, []string{"gpt-4.1", "whisper-1"}, ids)
	})

	t.Run("失敗は変換される", func(t *testing.T) {
		g, _ := newTestGenerator(t, &mockImageClient{modelsErr: &openai.APIError{HTTPStatusCode: http.StatusUnauthorized}})
		_, err := g.ListAvailableImageModels(ctx, testCreds)
		assert.ErrorIs(t, err, domain.ErrProviderAuth)
	})
}

func TestNew(t *testing.T) {
	t.Run("ファクトリが nil ならエラー", func(t *testing.T) {
		_, err := New(nil)
		assert.Error(t, err)
	})

	t.Run("既定モデルを上書きできる", func(t *testing.T) {
		f := &mockFactory{client: &mockImageClient{}}
		g, err := New(f.build, WithModels("", adapters.Models{Image: "custom-image"}), WithLogger(nil))
		require.NoError(t, err)
		assert.Equal(t, "custom-image", g.DefaultImageModel(domain.ProviderOpenAI))
		assert.Equal(t, adapters.DefaultGeminiImageModel, g.DefaultImageModel(domain.ProviderGemini))
		assert.Equal(t, adapters.DefaultOpenAIChatModel, g.models[domain.ProviderOpenAI].Chat)
	})
}
