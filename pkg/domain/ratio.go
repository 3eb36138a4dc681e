package domain

import "fmt"

// AspectRatio は UI で選択されるアスペクト比です。
type AspectRatio string

const (
	AspectRatioSquare    AspectRatio = "1:1"
	AspectRatioWide      AspectRatio = "16:9"
	AspectRatioTall      AspectRatio = "9:16"
	AspectRatioLandscape AspectRatio = "4:3"
	AspectRatioPortrait  AspectRatio = "3:4"
)

// 生成 API に渡すピクセルサイズです。
const (
	SizeSquare    = "1024x1024"
	SizeWide      = "1792x1024"
	SizeTall      = "1024x1792"
	SizeLandscape = "1536x1152"
	SizePortrait  = "1152x1536"
)

var aspectRatioSizes = map[AspectRatio]string{
	AspectRatioSquare:    SizeSquare,
	AspectRatioWide:      SizeWide,
	AspectRatioTall:      SizeTall,
	AspectRatioLandscape: SizeLandscape,
	AspectRatioPortrait:  SizePortrait,
}

// AspectRatios は定義済みのアスペクト比を返します。
func AspectRatios() []AspectRatio {
	return []AspectRatio{
		AspectRatioSquare,
		AspectRatioWide,
		AspectRatioTall,
		AspectRatioLandscape,
		AspectRatioPortrait,
	}
}

// Size はアスペクト比に対応するサイズ文字列を返します。
// 未指定や未知の値は 1:1 のサイズになります。
func (a AspectRatio) Size() string {
	if size, ok := aspectRatioSizes[a]; ok {
		return size
	}
	return SizeSquare
}

// Normalize は未指定や未知の値を 1:1 に寄せた値を返します。
func (a AspectRatio) Normalize() AspectRatio {
	if _, ok := aspectRatioSizes[a]; ok {
		return a
	}
	return AspectRatioSquare
}

// ParseAspectRatio は文字列を AspectRatio に変換します。空文字は 1:1 です。
func ParseAspectRatio(raw string) (AspectRatio, error) {
	if raw == "" {
		return AspectRatioSquare, nil
	}
	a := AspectRatio(raw)
	if _, ok := aspectRatioSizes[a]; !ok {
		return "", fmt.Errorf("unknown aspect ratio: %q", raw)
	}
	return a, nil
}
