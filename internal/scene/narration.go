package scene

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ozoops/health5070/internal/ports"
	"github.com/ozoops/health5070/internal/types"
)

type Narrator struct {
	speech   ports.Speech
	media    ports.MediaTool
	language string
	log      *zap.Logger
}

func NewNarrator(speech ports.Speech, media ports.MediaTool, language string, log *zap.Logger) *Narrator {
	if language == "" {
		language = "ko"
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Narrator{speech: speech, media: media, language: language, log: log.Named("narration")}
}

// Narrate synthesizes text to outPath and measures it. The returned duration
// is the raw measurement; scene floors are applied by the caller.
func (n *Narrator) Narrate(ctx context.Context, text, outPath string) (types.NarrationClip, error) {
	if err := n.speech.Synthesize(ctx, text, n.language, outPath); err != nil {
		return types.NarrationClip{}, fmt.Errorf("synthesize narration: %w", err)
	}
	d, err := n.media.ProbeDuration(ctx, outPath)
	if err != nil {
		return types.NarrationClip{}, fmt.Errorf("measure narration: %w", err)
	}
	if d < 0 {
		return types.NarrationClip{}, fmt.Errorf("measure narration %s: negative duration %v", outPath, d)
	}
	n.log.Debug("narration ready", zap.String("path", outPath), zap.Duration("duration", d))
	return types.NarrationClip{AudioPath: outPath, Duration: d}, nil
}
