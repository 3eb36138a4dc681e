package generator

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/shouni/image-studio-kit/pkg/adapters"
	"github.com/shouni/image-studio-kit/pkg/domain"
)

// ユーザー向けメッセージ。%s にはプロバイダー名が入ります。
const (
	msgMissingKey        = "您需要先配置 %s API Key。"
	msgNoFile            = "请先上传一张图片。"
	msgNoImages          = "%s 没有返回任何图片。"
	msgNoComicPrompts    = "%s 没有返回连环画提示词。"
	msgPromptCount       = "提示词数量不正确。期望 %d 个，实际获得 %d 个。"
	msgPanelCount        = "部分画面生成失败，请稍后重试。"
	msgNoVideoScripts    = "%s 没有返回视频脚本。"
	msgScriptCount       = "视频脚本数量与画面数量不一致。"
	msgVideoNotSupported = "当前 %s API 尚未提供视频生成功能。"

	msgUnauthorized      = "您提供的 %s API Key 无效。请检查后重试。"
	msgRateLimited       = "请求过于频繁或余额不足，请稍后再试或检查您的额度。"
	msgInsufficientQuota = "您的 %s 账户余额不足或已达到配额限制。"
	msgInvalidAPIKey     = "您提供的 %s API Key 无效。请确认是否输入正确。"
	msgProviderFailure   = "调用 %s 失败，请稍后再试。"

	msgInvalidRequest = "请求参数无效。"
)

// fieldMessages はバリデーションに失敗したフィールドごとの表示メッセージです。
var fieldMessages = map[string]string{
	"Prompt":         "请输入提示词。",
	"Story":          "请先输入故事内容。",
	"Files":          msgNoFile,
	"Images":         "请先提供至少一张画面。",
	"NumberOfImages": "图片数量必须在 1 到 10 之间。",
}

// TranslateError はプロバイダーのエラーを分類済みの *domain.Error に変換します。
// すでに *domain.Error であればそのまま返します。
func TranslateError(err error, provider domain.Provider) *domain.Error {
	if err == nil {
		return nil
	}
	if e, ok := domain.AsError(err); ok {
		return e
	}

	label := provider.Normalize().Label()
	reason := adapters.Classify(err)

	var msg string
	switch reason {
	case adapters.ReasonUnauthorized:
		msg = fmt.Sprintf(msgUnauthorized, label)
	case adapters.ReasonRateLimited:
		msg = msgRateLimited
	case adapters.ReasonInsufficientQuota:
		msg = fmt.Sprintf(msgInsufficientQuota, label)
	case adapters.ReasonInvalidAPIKey:
		msg = fmt.Sprintf(msgInvalidAPIKey, label)
	default:
		msg = fmt.Sprintf(msgProviderFailure, label)
	}
	return domain.NewError(reason.Kind(), msg, err)
}

// translate は TranslateError の結果を返し、元のエラーをログに残します。
func (g *Generator) translate(err error, provider domain.Provider) error {
	if err == nil {
		return nil
	}
	if e, ok := domain.AsError(err); ok {
		return e
	}

	translated := TranslateError(err, provider)
	g.logger.Error("provider call failed",
		zap.String("provider", string(provider.Normalize())),
		zap.String("kind", translated.Kind.String()),
		zap.Error(err),
	)
	return translated
}

// validateRequest は構造体タグの検証を行い、最初の違反を ValidationError にします。
func (g *Generator) validateRequest(req any) error {
	err := g.validate.Struct(req)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		if msg, ok := fieldMessages[verrs[0].StructField()]; ok {
			return domain.NewError(domain.KindValidation, msg, err)
		}
	}
	return domain.NewError(domain.KindValidation, msgInvalidRequest, err)
}
