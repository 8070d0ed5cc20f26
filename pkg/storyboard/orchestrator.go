package storyboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shouni/go-storyboard-kit/pkg/domain"
	"golang.org/x/time/rate"
)

var (
	// ErrEmptyScript は台本が読み込まれていない状態で生成を開始したことを表します。
	ErrEmptyScript = errors.New("script is empty")
	// ErrRunInProgress は生成中に再度 Generate が呼ばれたことを表します。
	ErrRunInProgress = errors.New("storyboard generation already in progress")
)

const (
	emptyScriptUserText      = "先に台本ファイルを読み込んでください。"
	segmentationFallbackText = "台本を解析できませんでした。"
	synthesisFallbackText    = "画像の生成に失敗しました。"
	defaultRateBurst         = 1
)

// Option は Orchestrator の任意設定です。
type Option func(*Orchestrator)

// WithObserver は状態変化の通知先を設定します。
func WithObserver(obs Observer) Option {
	return func(o *Orchestrator) { o.observer = obs }
}

// WithRateInterval は画像生成呼び出しの最小間隔を設定します。0 以下なら制限しません。
func WithRateInterval(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d > 0 {
			o.limiter = rate.NewLimiter(rate.Every(d), defaultRateBurst)
		} else {
			o.limiter = rate.NewLimiter(rate.Inf, defaultRateBurst)
		}
	}
}

// WithIDGenerator は実行IDの採番方法を差し替えます。
func WithIDGenerator(fn func() string) Option {
	return func(o *Orchestrator) {
		if fn != nil {
			o.newID = fn
		}
	}
}

// Orchestrator は Segmenter → シーンごとの Synthesizer 呼び出しを順番に実行し、
// シーン単位の進捗を保持します。画像生成は常に1件ずつ、シーン番号順に行います。
type Orchestrator struct {
	segmenter   Segmenter
	synthesizer Synthesizer
	observer    Observer
	limiter     *rate.Limiter
	newID       func() string

	running sync.Mutex // 同時に1実行のみ

	mu      sync.RWMutex
	runID   string
	state   domain.RunState
	scenes  []domain.Scene
	message string
}

// New は依存関係を注入して Orchestrator を初期化します。
func New(segmenter Segmenter, synthesizer Synthesizer, opts ...Option) (*Orchestrator, error) {
	if segmenter == nil {
		return nil, fmt.Errorf("segmenter is required")
	}
	if synthesizer == nil {
		return nil, fmt.Errorf("synthesizer is required")
	}

	o := &Orchestrator{
		segmenter:   segmenter,
		synthesizer: synthesizer,
		limiter:     rate.NewLimiter(rate.Inf, defaultRateBurst),
		newID:       uuid.NewString,
		state:       domain.RunIdle,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

// Generate は1回分のストーリーボード生成を実行します。
// セグメンテーションに失敗した場合のみエラーを返し、シーン単位の失敗は各シーンに記録されます。
func (o *Orchestrator) Generate(ctx context.Context, script string) error {
	if !o.running.TryLock() {
		return ErrRunInProgress
	}
	defer o.running.Unlock()

	if strings.TrimSpace(script) == "" {
		return domain.NewError(nil, emptyScriptUserText, ErrEmptyScript)
	}

	runID := o.newID()
	logger := slog.With("run_id", runID)

	o.update(func() {
		o.runID = runID
		o.state = domain.RunSegmenting
		o.scenes = nil
		o.message = ""
	})

	logger.InfoContext(ctx, "ストーリーボード生成を開始します")
	specs, err := o.segmenter.Segment(ctx, script)
	if err == nil {
		specs, err = orderSpecs(specs)
	}
	if err != nil {
		if !errors.Is(err, domain.ErrSegmentationFailed) {
			err = domain.NewError(domain.ErrSegmentationFailed, segmentationFallbackText, err)
		}
		logger.ErrorContext(ctx, "シーン分割に失敗したため生成を中止します", "error", err)
		o.update(func() {
			o.state = domain.RunSegmentationFailed
			o.message = domain.UserMessage(err)
		})
		return err
	}

	scenes := make([]domain.Scene, len(specs))
	for i, spec := range specs {
		scenes[i] = domain.NewScene(spec)
	}
	o.update(func() {
		o.scenes = scenes
		o.state = domain.RunGenerating
	})

	for i := range scenes {
		o.generateScene(ctx, logger, i)
	}

	o.update(func() { o.state = domain.RunComplete })
	snap := o.Snapshot()
	counts := snap.Counts()
	logger.InfoContext(ctx, "ストーリーボード生成が完了しました",
		"scenes", len(snap.Scenes),
		"done", counts[domain.SceneDone],
		"failed", counts[domain.SceneFailed])
	return nil
}

// orderSpecs はシーン番号順に安定ソートした複製を返します。
// 空の結果、1 未満の番号、重複した番号は不正として扱います。
func orderSpecs(specs []domain.SceneSpec) ([]domain.SceneSpec, error) {
	if len(specs) == 0 {
		return nil, domain.NewError(domain.ErrSegmentationFailed, segmentationFallbackText, fmt.Errorf("no scenes"))
	}
	ordered := make([]domain.SceneSpec, len(specs))
	copy(ordered, specs)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Index < ordered[j].Index })

	for i, spec := range ordered {
		if spec.Index < 1 {
			return nil, domain.NewError(domain.ErrSegmentationFailed, segmentationFallbackText,
				fmt.Errorf("invalid scene index %d", spec.Index))
		}
		if i > 0 && ordered[i-1].Index == spec.Index {
			return nil, domain.NewError(domain.ErrSegmentationFailed, segmentationFallbackText,
				fmt.Errorf("duplicate scene index %d", spec.Index))
		}
	}
	return ordered, nil
}

// generateScene は i 番目のシーンを generating にし、結果に応じて done / failed にします。
// 失敗しても後続のシーンは止めません。
func (o *Orchestrator) generateScene(ctx context.Context, logger *slog.Logger, i int) {
	var (
		description string
		index       int
		transErr    error
	)
	o.update(func() {
		sc := &o.scenes[i]
		description, index = sc.Description, sc.Index
		transErr = sc.MarkGenerating()
	})
	if transErr != nil {
		logger.ErrorContext(ctx, "シーンの状態遷移に失敗しました", "scene", index, "error", transErr)
		return
	}

	img, err := o.synthesize(ctx, description)
	if err != nil {
		logger.WarnContext(ctx, "シーン画像の生成に失敗しました", "scene", index, "error", err)
		reason := domain.UserMessage(err)
		if !errors.Is(err, domain.ErrSynthesisFailed) {
			reason = synthesisFallbackText
		}
		o.update(func() { transErr = o.scenes[i].Fail(reason) })
	} else {
		logger.InfoContext(ctx, "シーン画像を生成しました", "scene", index, "bytes", len(img.Data))
		o.update(func() { transErr = o.scenes[i].Succeed(img) })
	}
	if transErr != nil {
		logger.ErrorContext(ctx, "シーンの状態遷移に失敗しました", "scene", index, "error", transErr)
	}
}

func (o *Orchestrator) synthesize(ctx context.Context, description string) (*domain.Image, error) {
	if err := o.limiter.Wait(ctx); err != nil {
		return nil, domain.NewError(domain.ErrSynthesisFailed, synthesisFallbackText, err)
	}
	img, err := o.synthesizer.Synthesize(ctx, description)
	if err != nil {
		return nil, err
	}
	if img == nil || len(img.Data) == 0 {
		return nil, domain.NewError(domain.ErrSynthesisFailed, synthesisFallbackText, fmt.Errorf("empty image"))
	}
	return img, nil
}

// update は状態を変更し、変更後のスナップショットを Observer に通知します。
func (o *Orchestrator) update(fn func()) {
	o.mu.Lock()
	fn()
	snap := o.snapshotLocked()
	o.mu.Unlock()

	if o.observer != nil {
		o.observer.OnUpdate(snap)
	}
}

// Snapshot は現在の状態の複製を返します。
func (o *Orchestrator) Snapshot() Snapshot {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.snapshotLocked()
}

func (o *Orchestrator) snapshotLocked() Snapshot {
	scenes := make([]domain.Scene, len(o.scenes))
	for i, sc := range o.scenes {
		scenes[i] = sc.Clone()
	}
	return Snapshot{
		RunID:   o.runID,
		State:   o.state,
		Scenes:  scenes,
		Message: o.message,
	}
}
