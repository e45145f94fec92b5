package ffmpeg

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ozoops/health5070/internal/types"
)

type Adapter struct {
	ffmpeg  string
	ffprobe string
}

func New(ffmpegPath, ffprobePath string) *Adapter {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	return &Adapter{ffmpeg: ffmpegPath, ffprobe: ffprobePath}
}

func (a *Adapter) RenderScene(ctx context.Context, r types.SceneRender) error {
	if r.Frames <= 0 {
		return fmt.Errorf("ffmpeg render scene: %d frames", r.Frames)
	}
	return a.run(ctx, "render scene", sceneArgs(r))
}

func (a *Adapter) ConcatVideo(ctx context.Context, clips []string, listPath, outPath string) error {
	if len(clips) == 0 {
		return fmt.Errorf("ffmpeg concat video: no clips")
	}
	if err := os.WriteFile(listPath, []byte(concatList(clips)), 0o644); err != nil {
		return fmt.Errorf("write concat list: %w", err)
	}
	return a.run(ctx, "concat video", concatArgs(listPath, outPath))
}

func (a *Adapter) ConcatAudio(ctx context.Context, segs []types.AudioSegment, outPath string) error {
	if len(segs) == 0 {
		return fmt.Errorf("ffmpeg concat audio: no segments")
	}
	args := []string{"-y"}
	for _, s := range segs {
		args = append(args, "-i", s.Path)
	}
	args = append(args,
		"-filter_complex", audioConcatFilter(segs),
		"-map", "[a]",
		"-c:a", "pcm_s16le",
		"-f", "wav",
		outPath,
	)
	return a.run(ctx, "concat audio", args)
}

func (a *Adapter) Mux(ctx context.Context, spec types.MuxSpec) error {
	return a.run(ctx, "mux", muxArgs(spec))
}

func (a *Adapter) ProbeDuration(ctx context.Context, path string) (time.Duration, error) {
	cmd := exec.CommandContext(ctx, a.ffprobe,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return 0, fmt.Errorf("ffprobe duration: %w\n%s", err, string(b))
	}
	s := strings.TrimSpace(string(b))
	sec, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", s, err)
	}
	return time.Duration(sec * float64(time.Second)), nil
}

func (a *Adapter) run(ctx context.Context, what string, args []string) error {
	cmd := exec.CommandContext(ctx, a.ffmpeg, args...)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("ffmpeg %s: %w\n%s", what, err, tail(string(b), 2000))
	}
	return nil
}

// tail returns at most the last n bytes of s, starting on a rune boundary.
func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	i := len(s) - n
	for i < len(s) && !utf8.RuneStart(s[i]) {
		i++
	}
	return s[i:]
}

func fmtSeconds(d time.Duration) string {
	sec := float64(d) / float64(time.Second)
	return strconv.FormatFloat(sec, 'f', 6, 64)
}
