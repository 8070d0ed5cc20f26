package storyboard

import (
	"context"
	"sync"

	"github.com/shouni/go-storyboard-kit/pkg/domain"
)

// --- Mocks ---

type mockSegmenter struct {
	specs []domain.SceneSpec
	err   error
	calls int
}

func (m *mockSegmenter) Segment(ctx context.Context, script string) ([]domain.SceneSpec, error) {
	m.calls++
	return m.specs, m.err
}

// mockSynthesizer は説明ごとの失敗を指定でき、同時実行数も記録します。
type mockSynthesizer struct {
	mu        sync.Mutex
	failOn    map[string]error
	calls     []string
	inFlight  int
	maxFlight int

	// block が設定されている場合、started に通知してから block の close を待ちます。
	started chan struct{}
	block   chan struct{}
}

func (m *mockSynthesizer) Synthesize(ctx context.Context, description string) (*domain.Image, error) {
	m.mu.Lock()
	m.calls = append(m.calls, description)
	m.inFlight++
	if m.inFlight > m.maxFlight {
		m.maxFlight = m.inFlight
	}
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		m.inFlight--
		m.mu.Unlock()
	}()

	if m.block != nil {
		m.started <- struct{}{}
		<-m.block
	}

	if err, ok := m.failOn[description]; ok {
		return nil, err
	}
	return &domain.Image{Data: []byte("jpeg:" + description), MIMEType: domain.MIMETypeJPEG}, nil
}

func (m *mockSynthesizer) callList() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

// recorder は通知されたスナップショットをすべて保持します。
type recorder struct {
	mu    sync.Mutex
	snaps []Snapshot
}

func (r *recorder) OnUpdate(snap Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snaps = append(r.snaps, snap)
}

func (r *recorder) all() []Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Snapshot(nil), r.snaps...)
}

// sceneHistory は指定シーンが観測された状態の列を、連続する重複を除いて返します。
func (r *recorder) sceneHistory(index int) []domain.SceneStatus {
	var history []domain.SceneStatus
	for _, snap := range r.all() {
		for _, sc := range snap.Scenes {
			if sc.Index != index {
				continue
			}
			st := sc.Status()
			if len(history) == 0 || history[len(history)-1] != st {
				history = append(history, st)
			}
		}
	}
	return history
}

func threeScenes() []domain.SceneSpec {
	return []domain.SceneSpec{
		{Index: 1, Description: "scene-1"},
		{Index: 2, Description: "scene-2"},
		{Index: 3, Description: "scene-3"},
	}
}
