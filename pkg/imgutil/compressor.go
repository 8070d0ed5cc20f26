package imgutil

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"net/http"
)

const mimeJPEG = "image/jpeg"

// CompressToJPEG は画像データ（PNG, GIF, JPEG等）をJPEG形式にエンコードします。
// image.Decodeがサポートするフォーマットに対応しています。
func CompressToJPEG(data []byte, quality int) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	buf := new(bytes.Buffer)
	if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// EnsureJPEG はデータがすでに JPEG ならそのまま返し、そうでなければ JPEG に変換します。
// 戻り値の MIME タイプは成功時は常に image/jpeg、失敗時は検出した形式です。
func EnsureJPEG(data []byte, quality int) ([]byte, string, error) {
	if len(data) == 0 {
		return nil, "", fmt.Errorf("画像データが空です")
	}

	detected := http.DetectContentType(data)
	if detected == mimeJPEG {
		return data, mimeJPEG, nil
	}

	converted, err := CompressToJPEG(data, quality)
	if err != nil {
		return data, detected, fmt.Errorf("%s からJPEGへの変換に失敗しました: %w", detected, err)
	}
	return converted, mimeJPEG, nil
}
