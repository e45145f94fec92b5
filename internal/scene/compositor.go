package scene

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/ozoops/health5070/internal/domain/timeline"
	"github.com/ozoops/health5070/internal/ports"
	"github.com/ozoops/health5070/internal/types"
)

const (
	MinZoomRate = 0.015
	MaxZoomRate = 0.03

	IntroFadeIn = 600 * time.Millisecond
	BodyFadeIn  = 250 * time.Millisecond
)

type Compositor struct {
	media  ports.MediaTool
	width  int
	height int
	fps    int

	rand func() float64
}

func NewCompositor(media ports.MediaTool, width, height, fps int) *Compositor {
	return &Compositor{media: media, width: width, height: height, fps: fps, rand: rand.Float64}
}

// ZoomRate draws the per-second zoom increment for one clip.
func (c *Compositor) ZoomRate() float64 {
	return MinZoomRate + c.rand()*(MaxZoomRate-MinZoomRate)
}

func FadeIn(kind types.SceneKind) time.Duration {
	if kind == types.SceneIntro {
		return IntroFadeIn
	}
	return BodyFadeIn
}

// Compose renders one scene clip covering exactly the frames of slot.
func (c *Compositor) Compose(ctx context.Context, kind types.SceneKind, imagePath, captionPath, outPath string, slot timeline.Slot) (types.VisualClip, error) {
	fade := FadeIn(kind)
	if fade > slot.Duration {
		fade = slot.Duration
	}
	err := c.media.RenderScene(ctx, types.SceneRender{
		ImagePath:   imagePath,
		CaptionPath: captionPath,
		OutPath:     outPath,
		Width:       c.width,
		Height:      c.height,
		FPS:         c.fps,
		Frames:      slot.Frames,
		ZoomRate:    c.ZoomRate(),
		FadeIn:      fade,
	})
	if err != nil {
		return types.VisualClip{}, fmt.Errorf("composite scene %d: %w", slot.Index, err)
	}
	return types.VisualClip{Path: outPath, Duration: slot.Duration, Frames: slot.Frames}, nil
}
