package loader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/shouni/image-studio-kit/pkg/domain"
	"github.com/shouni/image-studio-kit/pkg/imgutil"
)

const (
	defaultFetchTimeout = 30 * time.Second
	userAgent           = "image-studio-kit/1.0"
	defaultFileName     = "image"
	maxRedirects        = 5
	// DefaultMaxBytes はリモート画像の最大サイズです。HTTP API の本文上限と揃えています。
	DefaultMaxBytes int64 = 32 << 20
)

const (
	msgUnsafeURL  = "不允许访问该图片地址。"
	msgReadFailed = "无法读取图片文件。"
	msgTooLarge   = "图片文件过大。"
)

var errUnsafeRedirect = errors.New("unsafe redirect")

// URLValidator は取得前に URL を検証する関数です。
type URLValidator func(rawURL string) (bool, error)

// Loader はローカルパス、data URL、http(s) URL のいずれかから画像を読み込みます。
type Loader struct {
	http       *resty.Client
	validate   URLValidator
	logger     *zap.Logger
	allowLocal bool
	maxBytes   int64
	// 既定のクライアントと検証関数の組み合わせでのみ接続時の IP 検証を行う
	customHTTP     bool
	customValidate bool
}

// Option は Loader の設定を変更します。
type Option func(*Loader)

// WithHTTPClient はリモート取得に使う resty クライアントを差し替えます。
func WithHTTPClient(c *resty.Client) Option {
	return func(l *Loader) {
		if c != nil {
			l.http = c
			l.customHTTP = true
		}
	}
}

// WithURLValidator は SSRF 検証関数を差し替えます。
func WithURLValidator(fn URLValidator) Option {
	return func(l *Loader) {
		if fn != nil {
			l.validate = fn
			l.customValidate = true
		}
	}
}

// WithLogger はロガーを差し替えます。
func WithLogger(logger *zap.Logger) Option {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithMaxBytes はリモート画像の最大サイズを変更します。
func WithMaxBytes(n int64) Option {
	return func(l *Loader) {
		if n > 0 {
			l.maxBytes = n
		}
	}
}

// WithoutLocalFiles はローカルパスの読み込みを禁止します。HTTP API から使う場合に指定します。
func WithoutLocalFiles() Option {
	return func(l *Loader) {
		l.allowLocal = false
	}
}

// New は Loader を初期化します。
func New(opts ...Option) *Loader {
	l := &Loader{
		http: resty.New().
			SetHeader("User-Agent", userAgent).
			SetTimeout(defaultFetchTimeout),
		validate:   IsSafeURL,
		logger:     zap.NewNop(),
		allowLocal: true,
		maxBytes:   DefaultMaxBytes,
	}
	for _, opt := range opts {
		opt(l)
	}
	if !l.customHTTP && !l.customValidate {
		l.http.SetTransport(newSafeTransport())
	}
	// リダイレクト先も取得前に検証する
	l.http.SetRedirectPolicy(resty.RedirectPolicyFunc(l.checkRedirect))
	return l
}

func (l *Loader) checkRedirect(req *http.Request, via []*http.Request) error {
	if len(via) > maxRedirects {
		return fmt.Errorf("stopped after %d redirects", maxRedirects)
	}
	target := req.URL.String()
	if safe, err := l.validate(target); err != nil || !safe {
		l.logger.Warn("安全でないリダイレクト先をブロックしました", zap.String("url", target), zap.Error(err))
		return fmt.Errorf("%w: %s", errUnsafeRedirect, target)
	}
	return nil
}

// Load は参照先から画像を読み込みます。画像と判定できない内容は DecodeError になります。
func (l *Loader) Load(ctx context.Context, ref string) (domain.ImageFile, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return domain.ImageFile{}, domain.ValidationError(msgReadFailed)
	}

	var (
		file domain.ImageFile
		err  error
	)
	switch {
	case imgutil.IsDataURL(ref):
		file, err = loadDataURL(ref)
	case strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://"):
		file, err = l.fetch(ctx, ref)
	case l.allowLocal:
		file, err = loadLocal(ref)
	default:
		return domain.ImageFile{}, domain.ValidationError(msgUnsafeURL)
	}
	if err != nil {
		return domain.ImageFile{}, err
	}

	if mimeType := imgutil.DetectMimeType(file.Data); !strings.HasPrefix(mimeType, "image/") {
		return domain.ImageFile{}, domain.DecodeError(imgutil.MsgDecodeImage, fmt.Errorf("%s: detected %s", file.Name, mimeType))
	}
	return file, nil
}

// LoadAll は複数の参照先を順番に読み込みます。1 つでも失敗すればエラーを返します。
func (l *Loader) LoadAll(ctx context.Context, refs []string) ([]domain.ImageFile, error) {
	files := make([]domain.ImageFile, 0, len(refs))
	for _, ref := range refs {
		f, err := l.Load(ctx, ref)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, nil
}

func (l *Loader) fetch(ctx context.Context, rawURL string) (domain.ImageFile, error) {
	if safe, err := l.validate(rawURL); err != nil || !safe {
		l.logger.Warn("SSRFの可能性がある、または不正なURLをブロックしました", zap.String("url", rawURL), zap.Error(err))
		return domain.ImageFile{}, domain.NewError(domain.KindValidation, msgUnsafeURL, err)
	}

	resp, err := l.http.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(rawURL)
	if err != nil {
		if errors.Is(err, errUnsafeRedirect) {
			return domain.ImageFile{}, domain.NewError(domain.KindValidation, msgUnsafeURL, err)
		}
		return domain.ImageFile{}, domain.NewError(domain.KindValidation, msgReadFailed, fmt.Errorf("画像の取得に失敗しました: %w", err))
	}
	body := resp.RawBody()
	defer body.Close()

	if resp.IsError() {
		return domain.ImageFile{}, domain.NewError(domain.KindValidation, msgReadFailed,
			fmt.Errorf("画像の取得に失敗しました (HTTP %d): %s", resp.StatusCode(), resp.Status()))
	}

	data, err := io.ReadAll(io.LimitReader(body, l.maxBytes+1))
	if err != nil {
		return domain.ImageFile{}, domain.NewError(domain.KindValidation, msgReadFailed, fmt.Errorf("画像の読み込みに失敗しました: %w", err))
	}
	if int64(len(data)) > l.maxBytes {
		return domain.ImageFile{}, domain.NewError(domain.KindValidation, msgTooLarge,
			fmt.Errorf("%s exceeds %d bytes", rawURL, l.maxBytes))
	}

	l.logger.Debug("remote image fetched", zap.String("url", rawURL), zap.Int("bytes", len(data)))
	return domain.ImageFile{Name: remoteName(rawURL), Data: data}, nil
}

func loadDataURL(src string) (domain.ImageFile, error) {
	mimeType, data, err := imgutil.DecodeDataURL(src)
	if err != nil {
		return domain.ImageFile{}, err
	}
	name := defaultFileName
	if _, sub, ok := strings.Cut(mimeType, "/"); ok && sub != "" {
		name += "." + sub
	}
	return domain.ImageFile{Name: name, Data: data}, nil
}

func loadLocal(p string) (domain.ImageFile, error) {
	data, err := os.ReadFile(p)
	if err != nil {
		return domain.ImageFile{}, domain.NewError(domain.KindValidation, msgReadFailed, err)
	}
	return domain.ImageFile{Name: filepath.Base(p), Data: data}, nil
}

func remoteName(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return defaultFileName
	}
	base := path.Base(u.Path)
	if base == "." || base == "/" || base == "" {
		return defaultFileName
	}
	return base
}
