package pipeline

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/ozoops/health5070/internal/types"
)

type fakeMedia struct {
	muxDelay time.Duration

	mu     sync.Mutex
	active int
	max    int
}

func (f *fakeMedia) ProbeDuration(context.Context, string) (time.Duration, error) {
	return 1500 * time.Millisecond, nil
}

func (f *fakeMedia) RenderScene(_ context.Context, r types.SceneRender) error {
	return os.WriteFile(r.OutPath, []byte("clip"), 0o644)
}

func (f *fakeMedia) ConcatVideo(_ context.Context, _ []string, listPath, outPath string) error {
	if err := os.WriteFile(listPath, []byte("list"), 0o644); err != nil {
		return err
	}
	return os.WriteFile(outPath, []byte("video"), 0o644)
}

func (f *fakeMedia) ConcatAudio(_ context.Context, _ []types.AudioSegment, outPath string) error {
	return os.WriteFile(outPath, []byte("audio"), 0o644)
}

func (f *fakeMedia) Mux(_ context.Context, spec types.MuxSpec) error {
	f.mu.Lock()
	f.active++
	if f.active > f.max {
		f.max = f.active
	}
	f.mu.Unlock()
	defer func() {
		f.mu.Lock()
		f.active--
		f.mu.Unlock()
	}()
	time.Sleep(f.muxDelay)
	return os.WriteFile(spec.OutPath, []byte("mp4"), 0o644)
}

func (f *fakeMedia) maxActive() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.max
}

type fakeSpeech struct{}

func (fakeSpeech) Synthesize(_ context.Context, text, _, outPath string) error {
	return os.WriteFile(outPath, []byte(text), 0o644)
}

type fakeLLM struct {
	out string
	err error
}

func (f fakeLLM) Complete(context.Context, types.Completion) (string, error) {
	return f.out, f.err
}

type fakeImages struct{ err error }

func (f fakeImages) GenerateImage(context.Context, types.ImageRequest) (string, error) {
	return "", f.err
}

type fakeFetch struct{}

func (fakeFetch) Fetch(context.Context, string) ([]byte, error) {
	return nil, fmt.Errorf("no network in tests")
}

type fakeStore struct {
	mu      sync.Mutex
	records []types.VideoRecord
}

func (f *fakeStore) InsertVideoRecord(_ context.Context, rec types.VideoRecord) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, rec)
	return fmt.Sprintf("rec-%d", len(f.records)), nil
}

type fakeArchiver struct {
	link string
	err  error
	path string
}

func (f *fakeArchiver) Archive(_ context.Context, path string) (string, error) {
	f.path = path
	return f.link, f.err
}
