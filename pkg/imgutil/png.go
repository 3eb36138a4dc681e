package imgutil

import (
	"bytes"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/shouni/image-studio-kit/pkg/domain"
)

// MaskThreshold は R/G/B 平均がこの値を超える画素を編集領域（透明）とみなす閾値です。
// インペインティング API のマスク契約（透明 = 編集、不透明 = 保持）に合わせた固定値です。
const MaskThreshold = 220

const (
	MimeTypePNG  = "image/png"
	MimeTypeJPEG = "image/jpeg"

	maskFileName    = "mask.png"
	defaultBaseName = "image"
)

const (
	MsgDecodeImage = "无法解析图片数据。"
	msgConvertPNG  = "无法将图片转换为 PNG。"
	msgBuildMask   = "无法生成符合要求的蒙版。"
)

// IsPNG はバイト列が PNG として判定されるかを返します。
func IsPNG(data []byte) bool {
	return mimetype.Detect(data).Is(MimeTypePNG)
}

// DetectMimeType はバイト列の MIME タイプを返します。
func DetectMimeType(data []byte) string {
	return mimetype.Detect(data).String()
}

// ConvertToPNG は画像を PNG に変換します。すでに PNG の場合はそのまま返します。
func ConvertToPNG(file domain.ImageFile) (domain.ImageFile, error) {
	if IsPNG(file.Data) {
		return file, nil
	}

	img, _, err := image.Decode(bytes.NewReader(file.Data))
	if err != nil {
		return domain.ImageFile{}, domain.DecodeError(MsgDecodeImage, err)
	}

	data, err := encodePNG(img)
	if err != nil {
		return domain.ImageFile{}, domain.DecodeError(msgConvertPNG, err)
	}

	return domain.ImageFile{Name: pngName(file.Name), Data: data}, nil
}

// NormalizeMask は任意のマスク画像を二値のアルファマスクに変換します。
// 明るい画素（平均 > MaskThreshold）は透明に、それ以外は不透明な黒になります。
func NormalizeMask(mask domain.ImageFile) (domain.ImageFile, error) {
	pngMask, err := ConvertToPNG(mask)
	if err != nil {
		return domain.ImageFile{}, err
	}

	src, err := png.Decode(bytes.NewReader(pngMask.Data))
	if err != nil {
		return domain.ImageFile{}, domain.DecodeError(MsgDecodeImage, err)
	}

	bounds := src.Bounds()
	out := image.NewNRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	for y := 0; y < bounds.Dy(); y++ {
		for x := 0; x < bounds.Dx(); x++ {
			c := color.NRGBAModel.Convert(src.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.NRGBA)
			out.SetNRGBA(x, y, binarize(c))
		}
	}

	data, err := encodePNG(out)
	if err != nil {
		return domain.ImageFile{}, domain.DecodeError(msgBuildMask, err)
	}
	return domain.ImageFile{Name: maskFileName, Data: data}, nil
}

// binarize は1画素をマスク値に変換します。透明にする場合は RGB を保持します。
func binarize(c color.NRGBA) color.NRGBA {
	if int(c.R)+int(c.G)+int(c.B) > MaskThreshold*3 {
		c.A = 0
		return c
	}
	return color.NRGBA{A: 0xff}
}

func encodePNG(img image.Image) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := png.Encode(buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func pngName(name string) string {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	if base == "" {
		base = defaultBaseName
	}
	return base + ".png"
}
