package imgutil

import (
	"encoding/base64"
	"errors"
	"strings"

	"github.com/shouni/image-studio-kit/pkg/domain"
)

const dataURLPrefix = "data:"

// EncodeDataURL はバイト列を base64 の data URL に変換します。
func EncodeDataURL(mimeType string, data []byte) string {
	return EncodeBase64DataURL(mimeType, base64.StdEncoding.EncodeToString(data))
}

// EncodeBase64DataURL は base64 済みのペイロードを data URL に包みます。
func EncodeBase64DataURL(mimeType, b64 string) string {
	if mimeType == "" {
		mimeType = MimeTypePNG
	}
	return dataURLPrefix + mimeType + ";base64," + b64
}

// IsDataURL は文字列が data URL 形式かどうかを返します。
func IsDataURL(s string) bool {
	return strings.HasPrefix(s, dataURLPrefix)
}

// DecodeDataURL は base64 の data URL を MIME タイプとバイト列に分解します。
func DecodeDataURL(src string) (string, []byte, error) {
	if !IsDataURL(src) {
		return "", nil, domain.DecodeError(MsgDecodeImage, errors.New("not a data URL"))
	}

	meta, payload, ok := strings.Cut(strings.TrimPrefix(src, dataURLPrefix), ",")
	if !ok {
		return "", nil, domain.DecodeError(MsgDecodeImage, errors.New("data URL has no payload"))
	}

	mimeType, encoding, _ := strings.Cut(meta, ";")
	if encoding != "base64" {
		return "", nil, domain.DecodeError(MsgDecodeImage, errors.New("data URL is not base64 encoded"))
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, domain.DecodeError(MsgDecodeImage, err)
	}
	return mimeType, data, nil
}

// DataURLToFile は data URL を指定名のファイルに変換します。
func DataURLToFile(src, name string) (domain.ImageFile, error) {
	_, data, err := DecodeDataURL(src)
	if err != nil {
		return domain.ImageFile{}, err
	}
	return domain.ImageFile{Name: name, Data: data}, nil
}
