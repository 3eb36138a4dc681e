package domain

import (
	"fmt"
	"strings"
)

// Style は画風テンプレートを選択する列挙値です。
type Style string

const (
	StyleIllustration    Style = "illustration"
	StyleClay            Style = "clay"
	StyleDoodle          Style = "doodle"
	StyleCartoon         Style = "cartoon"
	StyleInkWash         Style = "ink-wash"
	StyleAmericanComic   Style = "american-comic"
	StyleWatercolor      Style = "watercolor"
	StylePhotorealistic  Style = "photorealistic"
	StyleJapaneseManga   Style = "japanese-manga"
	StyleThreeDAnimation Style = "3d-animation"
)

// DefaultStyle は画風が未指定のときに使われます。
const DefaultStyle = StyleIllustration

// stylePrompts はプロンプト末尾に差し込む画風の説明文です。起動後に変更されることはありません。
var stylePrompts = map[Style]string{
	StyleIllustration:    "A modern flat illustration style using simple shapes, bold colors, and clean lines. Avoid gradients and complex textures. Characters and objects should remain minimalist and consistent.",
	StyleClay:            "A charming claymation aesthetic with visible sculpting marks, vibrant saturated colors, and soft dimensional lighting. Everything should look handcrafted from modeling clay.",
	StyleDoodle:          "A playful hand-drawn doodle style with thick colorful strokes, whimsical characters, and a scrapbook charm. Overall mood should remain friendly and approachable.",
	StyleCartoon:         "A cute kawaii cartoon style with large expressive eyes, rounded silhouettes, and soft pastel colors. Keep bold clean outlines and maintain a sweet, heartwarming tone.",
	StyleInkWash:         "A Chinese ink wash painting style (Shuǐ-mò huà) leveraging varied brushstrokes, atmospheric negative space, and flowing qi. Primarily monochrome with subtle accents.",
	StyleAmericanComic:   "A classic American comic book style featuring bold outlines, dynamic poses, dramatic shading, and slightly gritty printed textures. Colors should stay vibrant.",
	StyleWatercolor:      "A delicate watercolor painting style with translucent washes, soft bleeding edges, and visible paper texture. Keep the mood light and airy.",
	StylePhotorealistic:  "A photorealistic style with accurate lighting, textures, and depth of field that resembles a high-resolution photograph.",
	StyleJapaneseManga:   "A black-and-white Japanese manga style with clean sharp lines, screentone shading, expressive faces, and dynamic action lines.",
	StyleThreeDAnimation: "A polished 3D animation style similar to modern animated feature films. Smooth rounded forms, rich lighting, and cinematic depth are essential.",
}

// Styles は定義済みの画風を宣言順に返します。
func Styles() []Style {
	return []Style{
		StyleIllustration,
		StyleClay,
		StyleDoodle,
		StyleCartoon,
		StyleInkWash,
		StyleAmericanComic,
		StyleWatercolor,
		StylePhotorealistic,
		StyleJapaneseManga,
		StyleThreeDAnimation,
	}
}

// Prompt は画風に対応する説明文を返します。未知の値は既定の画風として扱います。
func (s Style) Prompt() string {
	if p, ok := stylePrompts[s]; ok {
		return p
	}
	return stylePrompts[DefaultStyle]
}

// Valid は定義済みの画風かどうかを返します。
func (s Style) Valid() bool {
	_, ok := stylePrompts[s]
	return ok
}

// ParseStyle は文字列を Style に変換します。
func ParseStyle(raw string) (Style, error) {
	s := Style(strings.ToLower(strings.TrimSpace(raw)))
	if s == "" {
		return DefaultStyle, nil
	}
	if !s.Valid() {
		return "", fmt.Errorf("unknown style: %q", raw)
	}
	return s, nil
}
