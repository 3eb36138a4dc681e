package adapters

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"
	"google.golang.org/genai"

	"github.com/shouni/image-studio-kit/pkg/domain"
)

// ErrEmptyCompletion はチャット補完が本文を返さなかったことを表します。
var ErrEmptyCompletion = errors.New("completion returned no content")

// Reason はプロバイダーエラーの分類結果です。表示メッセージの選択に使います。
type Reason int

const (
	ReasonUnknown Reason = iota
	ReasonUnauthorized
	ReasonRateLimited
	ReasonInsufficientQuota
	ReasonInvalidAPIKey
)

const (
	markerInsufficientQuota = "insufficient_quota"
	markerInvalidAPIKey     = "invalid_api_key"
)

func (r Reason) String() string {
	switch r {
	case ReasonUnauthorized:
		return "unauthorized"
	case ReasonRateLimited:
		return "rate_limited"
	case ReasonInsufficientQuota:
		return markerInsufficientQuota
	case ReasonInvalidAPIKey:
		return markerInvalidAPIKey
	default:
		return "unknown"
	}
}

// Kind は Reason に対応するドメインのエラー分類です。
func (r Reason) Kind() domain.ErrorKind {
	switch r {
	case ReasonUnauthorized, ReasonInvalidAPIKey:
		return domain.KindProviderAuth
	case ReasonRateLimited, ReasonInsufficientQuota:
		return domain.KindProviderQuota
	default:
		return domain.KindProvider
	}
}

// providerFault はプロバイダーのエラーから取り出した判定材料です。
type providerFault struct {
	status int
	code   string
	typ    string
}

// Classify はプロバイダー呼び出しの失敗を分類します。
// 構造化エラーの HTTP ステータスとコードを先に見て、最後にメッセージの部分一致で判定します。
// 判定順: 401, 429, insufficient_quota, invalid_api_key。
func Classify(err error) Reason {
	if err == nil {
		return ReasonUnknown
	}

	f := inspect(err)
	switch {
	case f.status == http.StatusUnauthorized:
		return ReasonUnauthorized
	case f.status == http.StatusTooManyRequests:
		return ReasonRateLimited
	case f.code == markerInsufficientQuota || f.typ == markerInsufficientQuota:
		return ReasonInsufficientQuota
	case f.code == markerInvalidAPIKey:
		return ReasonInvalidAPIKey
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, markerInsufficientQuota):
		return ReasonInsufficientQuota
	case strings.Contains(msg, markerInvalidAPIKey):
		return ReasonInvalidAPIKey
	}
	return ReasonUnknown
}

func inspect(err error) providerFault {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return providerFault{
			status: apiErr.HTTPStatusCode,
			code:   codeString(apiErr.Code),
			typ:    apiErr.Type,
		}
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return providerFault{status: reqErr.HTTPStatusCode}
	}

	var gErr genai.APIError
	if errors.As(err, &gErr) {
		return geminiFault(gErr)
	}
	var gErrPtr *genai.APIError
	if errors.As(err, &gErrPtr) && gErrPtr != nil {
		return geminiFault(*gErrPtr)
	}

	return providerFault{}
}

// geminiFault は Gemini のエラーを OpenAI と同じ判定軸に寄せます。
// 無効なキーは 400 INVALID_ARGUMENT で返るため、メッセージから invalid_api_key に読み替えます。
func geminiFault(e genai.APIError) providerFault {
	f := providerFault{status: e.Code, typ: e.Status}
	switch {
	case e.Status == "UNAUTHENTICATED":
		f.status = http.StatusUnauthorized
	case e.Status == "RESOURCE_EXHAUSTED":
		f.status = http.StatusTooManyRequests
	case strings.Contains(strings.ToLower(e.Message), "api key not valid"):
		f.code = markerInvalidAPIKey
	}
	return f
}

func codeString(code any) string {
	switch v := code.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}
