package domain

import (
	"errors"
	"fmt"
)

// ErrInvalidTransition はシーンの状態遷移規則に反する操作を表します。
var ErrInvalidTransition = errors.New("invalid scene transition")

// SceneStatus はシーン単位の進捗状態です。
type SceneStatus string

const (
	ScenePending    SceneStatus = "pending"
	SceneGenerating SceneStatus = "generating"
	SceneDone       SceneStatus = "done"
	SceneFailed     SceneStatus = "failed"
)

// IsTerminal は done または failed のときに true を返します。
func (s SceneStatus) IsTerminal() bool {
	return s == SceneDone || s == SceneFailed
}

// SceneSpec はセグメンターが返す1シーン分の構成です。
type SceneSpec struct {
	Index       int    `json:"scene"`
	Description string `json:"description"`
}

// Scene はオーケストレーターが所有する1シーンの可変レコードです。
// 状態は保持せず、Image / Error / 生成中フラグから導出します。
type Scene struct {
	Index       int
	Description string
	Image       *Image
	Error       string

	generating bool
}

// NewScene は pending 状態のシーンを作成します。
func NewScene(spec SceneSpec) Scene {
	return Scene{Index: spec.Index, Description: spec.Description}
}

// Status は現在の状態を導出します。
func (s Scene) Status() SceneStatus {
	switch {
	case s.Image != nil:
		return SceneDone
	case s.Error != "":
		return SceneFailed
	case s.generating:
		return SceneGenerating
	default:
		return ScenePending
	}
}

// MarkGenerating は pending から generating へ遷移させます。
func (s *Scene) MarkGenerating() error {
	if st := s.Status(); st != ScenePending {
		return fmt.Errorf("%w: scene %d is %s, want %s", ErrInvalidTransition, s.Index, st, ScenePending)
	}
	s.generating = true
	return nil
}

// Succeed は generating から done へ遷移させ、画像を保持します。
func (s *Scene) Succeed(img *Image) error {
	if img == nil {
		return fmt.Errorf("%w: scene %d: image is required", ErrInvalidTransition, s.Index)
	}
	if st := s.Status(); st != SceneGenerating {
		return fmt.Errorf("%w: scene %d is %s, want %s", ErrInvalidTransition, s.Index, st, SceneGenerating)
	}
	s.generating = false
	s.Image = img
	return nil
}

// Fail は generating から failed へ遷移させ、利用者向けの理由を保持します。
func (s *Scene) Fail(reason string) error {
	if reason == "" {
		return fmt.Errorf("%w: scene %d: reason is required", ErrInvalidTransition, s.Index)
	}
	if st := s.Status(); st != SceneGenerating {
		return fmt.Errorf("%w: scene %d is %s, want %s", ErrInvalidTransition, s.Index, st, SceneGenerating)
	}
	s.generating = false
	s.Error = reason
	return nil
}

// Clone は画像バッファまで複製したコピーを返します。
func (s Scene) Clone() Scene {
	s.Image = s.Image.Clone()
	return s
}

// RunState はストーリーボード生成1回分の状態です。
type RunState string

const (
	RunIdle               RunState = "idle"
	RunSegmenting         RunState = "segmenting"
	RunSegmentationFailed RunState = "segmentation_failed"
	RunGenerating         RunState = "generating"
	RunComplete           RunState = "complete"
)

// IsTerminal は実行が終了した状態かどうかを返します。
func (s RunState) IsTerminal() bool {
	return s == RunSegmentationFailed || s == RunComplete
}
