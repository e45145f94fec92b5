package scene

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"os"
	"sync"
	"time"

	"github.com/ozoops/health5070/internal/types"
)

type fakeImages struct {
	mu    sync.Mutex
	err   error
	calls int
	last  types.ImageRequest
}

func (f *fakeImages) GenerateImage(_ context.Context, req types.ImageRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.last = req
	if f.err != nil {
		return "", f.err
	}
	return "https://images.example/x.png", nil
}

type fakeFetch struct {
	body []byte
	err  error
}

func (f fakeFetch) Fetch(context.Context, string) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.body, nil
}

type fakeLLM struct {
	out  string
	err  error
	last types.Completion
}

func (f *fakeLLM) Complete(_ context.Context, c types.Completion) (string, error) {
	f.last = c
	return f.out, f.err
}

type fakeSpeech struct {
	err      error
	language string
}

func (f *fakeSpeech) Synthesize(_ context.Context, text, language, outPath string) error {
	f.language = language
	if f.err != nil {
		return f.err
	}
	return os.WriteFile(outPath, []byte(text), 0o644)
}

type fakeMedia struct {
	probe    time.Duration
	probeErr error
	renders  []types.SceneRender
	render   error
}

func (f *fakeMedia) ProbeDuration(context.Context, string) (time.Duration, error) {
	return f.probe, f.probeErr
}

func (f *fakeMedia) RenderScene(_ context.Context, r types.SceneRender) error {
	f.renders = append(f.renders, r)
	return f.render
}

func (f *fakeMedia) ConcatVideo(context.Context, []string, string, string) error { return nil }

func (f *fakeMedia) ConcatAudio(context.Context, []types.AudioSegment, string) error { return nil }

func (f *fakeMedia) Mux(context.Context, types.MuxSpec) error { return nil }

var errUnavailable = errors.New("service unavailable")

func pngBytes(w, h int) []byte {
	var buf bytes.Buffer
	_ = png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h)))
	return buf.Bytes()
}
