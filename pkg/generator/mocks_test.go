package generator

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/shouni/image-studio-kit/pkg/adapters"
	"github.com/shouni/image-studio-kit/pkg/domain"
)

// --- Mocks ---

// mockImageClient は adapters.ImageClient のテスト用モックです。
type mockImageClient struct {
	generateCalls []adapters.GenerateRequest
	editCalls     []adapters.EditRequest
	listCalls     []adapters.StringListRequest

	generateFunc func(call int, req adapters.GenerateRequest) ([]adapters.ImageOutput, error)
	editFunc     func(req adapters.EditRequest) ([]adapters.ImageOutput, error)
	listFunc     func(req adapters.StringListRequest) ([]string, error)
	models       []string
	modelsErr    error
}

func (m *mockImageClient) GenerateImages(ctx context.Context, req adapters.GenerateRequest) ([]adapters.ImageOutput, error) {
	m.generateCalls = append(m.generateCalls, req)
	if m.generateFunc != nil {
		return m.generateFunc(len(m.generateCalls)-1, req)
	}
	return fakeOutputs(req.N), nil
}

func (m *mockImageClient) EditImage(ctx context.Context, req adapters.EditRequest) ([]adapters.ImageOutput, error) {
	m.editCalls = append(m.editCalls, req)
	if m.editFunc != nil {
		return m.editFunc(req)
	}
	return fakeOutputs(1), nil
}

func (m *mockImageClient) CompleteStringList(ctx context.Context, req adapters.StringListRequest) ([]string, error) {
	m.listCalls = append(m.listCalls, req)
	if m.listFunc != nil {
		return m.listFunc(req)
	}
	return nil, nil
}

func (m *mockImageClient) ListModels(ctx context.Context) ([]string, error) {
	return m.models, m.modelsErr
}

// mockFactory はファクトリ呼び出しを記録します。
type mockFactory struct {
	client *mockImageClient
	calls  []domain.Credentials
	err    error
}

func (f *mockFactory) build(ctx context.Context, creds domain.Credentials) (adapters.ImageClient, error) {
	f.calls = append(f.calls, creds)
	if f.err != nil {
		return nil, f.err
	}
	return f.client, nil
}

// --- Helpers ---

var testCreds = domain.Credentials{APIKey: "sk-test"}

func newTestGenerator(t *testing.T, client *mockImageClient) (*Generator, *mockFactory) {
	t.Helper()
	f := &mockFactory{client: client}
	g, err := New(f.build)
	require.NoError(t, err)
	return g, f
}

func fakeOutputs(n int) []adapters.ImageOutput {
	outs := make([]adapters.ImageOutput, n)
	for i := range outs {
		outs[i] = adapters.ImageOutput{Data: []byte{byte('a' + i)}, MimeType: "image/png"}
	}
	return outs
}

func encodeTestImage(t *testing.T, format string) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.Set(x, y, color.RGBA{R: 250, G: 250, B: 250, A: 255})
		}
	}
	buf := new(bytes.Buffer)
	switch format {
	case "jpeg":
		require.NoError(t, jpeg.Encode(buf, img, nil))
	default:
		require.NoError(t, png.Encode(buf, img))
	}
	return buf.Bytes()
}
