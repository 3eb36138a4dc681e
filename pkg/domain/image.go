package domain

import "strings"

// Provider は接続先のバックエンド種別です。
type Provider string

const (
	ProviderOpenAI Provider = "openai"
	ProviderGemini Provider = "gemini"
)

// Label はユーザー向けメッセージに埋め込む表示名です。
func (p Provider) Label() string {
	if p == ProviderGemini {
		return "Gemini"
	}
	return "OpenAI"
}

// Normalize は未指定や未知の値を OpenAI 互換として扱った値を返します。
func (p Provider) Normalize() Provider {
	if p == ProviderGemini {
		return p
	}
	return ProviderOpenAI
}

// Credentials は呼び出しごとに渡される接続情報です。このキット自身は永続化しません。
type Credentials struct {
	APIKey   string
	BaseURL  string
	Model    string
	Provider Provider
}

// HasKey は空白以外の API キーが設定されているかを返します。
func (c Credentials) HasKey() bool {
	return strings.TrimSpace(c.APIKey) != ""
}

// ImageFile は UI からアップロードされた不透明な画像ファイルです。
type ImageFile struct {
	Name string
	Data []byte
}

// GeneratedImage は生成結果の画像です。Src は data URL です。
type GeneratedImage struct {
	Src string `json:"src"`
}

// IllustratedCardsRequest は図解カード生成の入力です。
type IllustratedCardsRequest struct {
	Prompt string `validate:"notblank"`
	Style  Style
}

// TextToImageRequest はテキストからの画像生成の入力です。
type TextToImageRequest struct {
	Prompt         string `validate:"notblank"`
	NegativePrompt string
	NumberOfImages int `validate:"min=0,max=10"`
	AspectRatio    AspectRatio
}

// ImageToImageRequest はアップロード画像とプロンプトからの生成の入力です。
// 先頭のファイルだけが使われます。
type ImageToImageRequest struct {
	Prompt string      `validate:"notblank"`
	Files  []ImageFile `validate:"min=1"`
}

// StyleInspirationRequest は参照画像の画風を借りた生成の入力です。
type StyleInspirationRequest struct {
	Reference ImageFile
	Prompt    string `validate:"notblank"`
	Strength  InspirationStrength
}

// InpaintingRequest はマスク領域だけを描き直す編集の入力です。
type InpaintingRequest struct {
	Prompt string `validate:"notblank"`
	Image  ImageFile
	Mask   ImageFile
}
