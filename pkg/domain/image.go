package domain

import (
	"encoding/base64"
	"strings"
)

// MIMETypeJPEG は Imagen へ要求する出力形式です。
const MIMETypeJPEG = "image/jpeg"

// Image は生成されたストーリーボード画像のペイロードです。
type Image struct {
	Data     []byte
	MIMEType string
}

// DataURL は HTML にそのまま埋め込める data URL 形式に変換します。
// MIMEType が空の場合は JPEG として扱います。
func (img Image) DataURL() string {
	mime := strings.TrimSpace(img.MIMEType)
	if mime == "" {
		mime = MIMETypeJPEG
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(img.Data)
}

// Clone はデータを複製した Image を返します。スナップショットから共有バッファが漏れないようにするためです。
func (img *Image) Clone() *Image {
	if img == nil {
		return nil
	}
	data := make([]byte, len(img.Data))
	copy(data, img.Data)
	return &Image{Data: data, MIMEType: img.MIMEType}
}
