package ports

import (
	"context"
	"time"

	"github.com/ozoops/health5070/internal/types"
)

type MediaTool interface {
	ProbeDuration(ctx context.Context, path string) (time.Duration, error)
	RenderScene(ctx context.Context, r types.SceneRender) error
	ConcatVideo(ctx context.Context, clips []string, listPath, outPath string) error
	ConcatAudio(ctx context.Context, segs []types.AudioSegment, outPath string) error
	Mux(ctx context.Context, spec types.MuxSpec) error
}

type Speech interface {
	Synthesize(ctx context.Context, text, language, outPath string) error
}

type ImageGenerator interface {
	GenerateImage(ctx context.Context, req types.ImageRequest) (string, error)
}

type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

type TextCompleter interface {
	Complete(ctx context.Context, c types.Completion) (string, error)
}

type VideoStore interface {
	InsertVideoRecord(ctx context.Context, rec types.VideoRecord) (string, error)
}

type Archiver interface {
	Archive(ctx context.Context, path string) (string, error)
}
