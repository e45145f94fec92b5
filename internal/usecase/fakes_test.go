package usecase

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/ozoops/health5070/internal/types"
)

var errUnavailable = errors.New("service unavailable")

type fakeMedia struct {
	mu sync.Mutex

	probe func(path string) time.Duration

	renders     []types.SceneRender
	clips       []string
	segments    []types.AudioSegment
	mux         types.MuxSpec
	muxErr      error
	emptyOutput bool
}

func (f *fakeMedia) ProbeDuration(_ context.Context, path string) (time.Duration, error) {
	if f.probe == nil {
		return 2 * time.Second, nil
	}
	return f.probe(path), nil
}

func (f *fakeMedia) RenderScene(_ context.Context, r types.SceneRender) error {
	f.mu.Lock()
	f.renders = append(f.renders, r)
	f.mu.Unlock()
	return os.WriteFile(r.OutPath, []byte("clip"), 0o644)
}

func (f *fakeMedia) ConcatVideo(_ context.Context, clips []string, listPath, outPath string) error {
	f.clips = append([]string(nil), clips...)
	if err := os.WriteFile(listPath, []byte(strings.Join(clips, "\n")), 0o644); err != nil {
		return err
	}
	return os.WriteFile(outPath, []byte("video"), 0o644)
}

func (f *fakeMedia) ConcatAudio(_ context.Context, segs []types.AudioSegment, outPath string) error {
	f.segments = append([]types.AudioSegment(nil), segs...)
	return os.WriteFile(outPath, []byte("audio"), 0o644)
}

func (f *fakeMedia) Mux(_ context.Context, spec types.MuxSpec) error {
	f.mux = spec
	body := []byte("mp4")
	if f.emptyOutput {
		body = nil
	}
	if err := os.WriteFile(spec.OutPath, body, 0o644); err != nil {
		return err
	}
	return f.muxErr
}

type fakeSpeech struct {
	mu     sync.Mutex
	texts  []string
	failOn string
	hook   func(ctx context.Context, text string) error
}

func (f *fakeSpeech) Synthesize(ctx context.Context, text, _, outPath string) error {
	f.mu.Lock()
	f.texts = append(f.texts, text)
	f.mu.Unlock()
	if f.hook != nil {
		if err := f.hook(ctx, text); err != nil {
			return err
		}
	}
	if f.failOn != "" && text == f.failOn {
		return errUnavailable
	}
	return os.WriteFile(outPath, []byte(text), 0o644)
}

type fakeImages struct{ err error }

func (f fakeImages) GenerateImage(context.Context, types.ImageRequest) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "https://images.example/scene.png", nil
}

type fakeFetch struct{}

func (fakeFetch) Fetch(context.Context, string) ([]byte, error) {
	var buf bytes.Buffer
	_ = png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 16, 9)))
	return buf.Bytes(), nil
}

type fakeLLM struct {
	out string
	err error
}

func (f fakeLLM) Complete(context.Context, types.Completion) (string, error) {
	return f.out, f.err
}

func listDir(dir string) []string {
	entries, _ := os.ReadDir(dir)
	var names []string
	for _, e := range entries {
		names = append(names, filepath.Base(e.Name()))
	}
	return names
}
