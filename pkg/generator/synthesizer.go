package generator

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shouni/go-storyboard-kit/pkg/domain"
	"github.com/shouni/go-storyboard-kit/pkg/imgutil"
	"google.golang.org/genai"
)

// SynthesizerOptions は ImageSynthesizer の任意設定です。
type SynthesizerOptions struct {
	Locale      string        // パネルの舞台となる地域。空なら DefaultLocale
	Cache       ImageCacher   // nil ならキャッシュなしで動作
	CacheTTL    time.Duration // 0 以下ならキャッシュしない
	JPEGQuality int           // 再エンコード時の品質。0 なら DefaultJPEGQuality
}

// ImageSynthesizer は1シーンの説明から1枚の 16:9 画像を生成します。
type ImageSynthesizer struct {
	client  ImageGenerator
	model   string
	locale  string
	cache   ImageCacher
	ttl     time.Duration
	quality int
}

// NewImageSynthesizer は依存関係を注入して ImageSynthesizer を初期化します。
func NewImageSynthesizer(client ImageGenerator, model string, opts SynthesizerOptions) (*ImageSynthesizer, error) {
	if client == nil {
		return nil, fmt.Errorf("client (ImageGenerator) is required")
	}
	if strings.TrimSpace(model) == "" {
		return nil, fmt.Errorf("model is required")
	}

	locale := strings.TrimSpace(opts.Locale)
	if locale == "" {
		locale = DefaultLocale
	}
	quality := opts.JPEGQuality
	if quality <= 0 || quality > 100 {
		quality = DefaultJPEGQuality
	}
	// cache は nil を許容（キャッシュなし動作）

	return &ImageSynthesizer{
		client:  client,
		model:   model,
		locale:  locale,
		cache:   opts.Cache,
		ttl:     opts.CacheTTL,
		quality: quality,
	}, nil
}

// Synthesize はシーン説明から画像を1枚生成します。
// 失敗はすべて domain.ErrSynthesisFailed として返ります。
func (s *ImageSynthesizer) Synthesize(ctx context.Context, description string) (*domain.Image, error) {
	prompt, err := BuildPanelPrompt(s.locale, description)
	if err != nil {
		return nil, domain.NewError(domain.ErrSynthesisFailed, synthesisUserText, err)
	}

	key := s.cacheKey(prompt)
	if img, ok := s.lookup(key); ok {
		slog.DebugContext(ctx, "キャッシュ済みの画像を利用します", "model", s.model)
		return img, nil
	}

	config := &genai.GenerateImagesConfig{
		NumberOfImages: imagesPerScene,
		OutputMIMEType: domain.MIMETypeJPEG,
		AspectRatio:    storyboardAspectRatio,
	}

	resp, err := s.client.GenerateImages(ctx, s.model, prompt, config)
	if err != nil {
		slog.ErrorContext(ctx, "画像生成の呼び出しに失敗しました", "model", s.model, "error", err)
		return nil, domain.NewError(domain.ErrSynthesisFailed, synthesisUserText, err)
	}

	img, err := pickImage(resp)
	if err != nil {
		slog.ErrorContext(ctx, "画像生成の応答に画像がありません", "model", s.model, "error", err)
		return nil, domain.NewError(domain.ErrSynthesisFailed, synthesisUserText, err)
	}

	img, err = s.ensureJPEG(ctx, img)
	if err != nil {
		slog.ErrorContext(ctx, "画像生成の応答が画像データではありません", "model", s.model, "error", err)
		return nil, domain.NewError(domain.ErrSynthesisFailed, synthesisUserText, err)
	}
	s.store(key, img)
	return img, nil
}

// ensureJPEG は JPEG 以外で返ってきた画像を要求どおりの形式に揃えます。
// 画像として判定できるが変換できない場合は受け取ったまま返し、
// 画像として判定できないデータはエラーにします。
func (s *ImageSynthesizer) ensureJPEG(ctx context.Context, img *domain.Image) (*domain.Image, error) {
	data, mime, err := imgutil.EnsureJPEG(img.Data, s.quality)
	if err != nil {
		if !strings.HasPrefix(mime, "image/") {
			return nil, fmt.Errorf("画像として認識できないデータです (判定: %s): %w", mime, err)
		}
		slog.WarnContext(ctx, "JPEGへの変換に失敗したため元の形式のまま返します", "mime_type", img.MIMEType, "error", err)
		if img.MIMEType == "" {
			img.MIMEType = mime
		}
		return img, nil
	}
	return &domain.Image{Data: data, MIMEType: mime}, nil
}

func (s *ImageSynthesizer) cacheKey(prompt string) string {
	sum := sha256.Sum256([]byte(s.model + "\x00" + prompt))
	return cacheKeySceneImage + hex.EncodeToString(sum[:])
}

func (s *ImageSynthesizer) cacheEnabled() bool {
	return s.cache != nil && s.ttl > 0
}

func (s *ImageSynthesizer) lookup(key string) (*domain.Image, bool) {
	if !s.cacheEnabled() {
		return nil, false
	}
	val, ok := s.cache.Get(key)
	if !ok {
		return nil, false
	}
	img, ok := val.(*domain.Image)
	if !ok || img == nil {
		return nil, false
	}
	return img.Clone(), true
}

func (s *ImageSynthesizer) store(key string, img *domain.Image) {
	if !s.cacheEnabled() {
		return
	}
	s.cache.Set(key, img.Clone(), s.ttl)
}
