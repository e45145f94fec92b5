package usecase

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ozoops/health5070/internal/domain/caption"
	"github.com/ozoops/health5070/internal/domain/script"
	"github.com/ozoops/health5070/internal/domain/timeline"
	"github.com/ozoops/health5070/internal/ports"
	"github.com/ozoops/health5070/internal/scene"
	"github.com/ozoops/health5070/internal/types"
)

type Deps struct {
	Media      ports.MediaTool
	Assets     *scene.AssetGenerator
	Narrator   *scene.Narrator
	Intro      *scene.IntroWriter
	Compositor *scene.Compositor
	Captions   *caption.Renderer
	Logger     *zap.Logger
	Now        func() time.Time
}

type Usecase struct{ d Deps }

func New(d Deps) Usecase {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	return Usecase{d: d}
}

// Encode holds the final mux parameters.
type Encode struct {
	Preset       string
	VideoBitrate string
	AudioBitrate string
	Threads      int
}

type Input struct {
	Owner  string
	Title  string
	Script string

	// OutDir receives the final video; WorkDir holds run intermediates and
	// is removed when the run ends.
	OutDir  string
	WorkDir string
	RunID   string

	Width       int
	Height      int
	FPS         int
	Concurrency int
	FadeOut     time.Duration
	Encode      Encode

	PurgeSceneImages bool

	VerifyAttempts int
	VerifyInterval time.Duration
}

func (in *Input) setDefaults() {
	if in.Width <= 0 {
		in.Width = 1280
	}
	if in.Height <= 0 {
		in.Height = 720
	}
	if in.FPS <= 0 {
		in.FPS = 30
	}
	if in.Concurrency <= 0 {
		in.Concurrency = 1
	}
	if in.FadeOut <= 0 {
		in.FadeOut = 500 * time.Millisecond
	}
	if in.Encode.Preset == "" {
		in.Encode.Preset = "medium"
	}
	if in.Encode.VideoBitrate == "" {
		in.Encode.VideoBitrate = "3000k"
	}
	if in.Encode.AudioBitrate == "" {
		in.Encode.AudioBitrate = "192k"
	}
	if in.Encode.Threads <= 0 {
		in.Encode.Threads = 4
	}
	if in.VerifyAttempts <= 0 {
		in.VerifyAttempts = 10
	}
	if in.VerifyInterval <= 0 {
		in.VerifyInterval = 500 * time.Millisecond
	}
}

// plan is one scene moving through prefetch and composition.
type plan struct {
	seq    int
	index  int
	kind   types.SceneKind
	text   string
	prompt string

	ready     chan struct{}
	err       error
	narration types.NarrationClip
	image     types.Outcome[types.SceneAsset]
}

// Run produces one narrated video from a title and script. Intermediates are
// removed on every exit path; on failure no partial output is left behind.
func (u Usecase) Run(ctx context.Context, in Input) (res types.VideoProductionResult, err error) {
	in.setDefaults()
	log := u.d.Logger.With(zap.String("owner", in.Owner), zap.String("run", in.RunID))
	started := u.d.Now()

	sentences, err := script.SplitSentences(in.Script)
	if err != nil {
		log.Error("script has no sentences", zap.Error(err))
		return res, fmt.Errorf("split script: %w", err)
	}
	if err := os.MkdirAll(in.OutDir, 0o755); err != nil {
		return res, fmt.Errorf("create out dir: %w", err)
	}
	ws, err := newWorkspace(in.WorkDir)
	if err != nil {
		return res, err
	}

	var output string
	defer func() {
		for _, cerr := range ws.cleanup(in.PurgeSceneImages) {
			log.Warn("cleanup failed", zap.Error(cerr))
		}
		if err != nil && output != "" {
			if rerr := os.Remove(output); rerr != nil && !errors.Is(rerr, os.ErrNotExist) {
				log.Warn("remove failed output", zap.String("path", output), zap.Error(rerr))
			}
		}
		if err != nil && ctx.Err() != nil && !errors.Is(err, ErrCancelled) {
			err = cancelled(ctx)
		}
	}()

	log.Info("production started", zap.Int("sentences", len(sentences)))

	intro := u.d.Intro.Write(ctx, in.Title)
	res.RunID = in.RunID
	res.IntroText = intro.Value
	res.IntroFallback = intro.UsedFallback
	if ctx.Err() != nil {
		return res, cancelled(ctx)
	}

	plans := make([]*plan, 0, len(sentences)+1)
	plans = append(plans, &plan{seq: 0, index: scene.IntroIndex, kind: types.SceneIntro, text: intro.Value, prompt: in.Title, ready: make(chan struct{})})
	for i, s := range sentences {
		plans = append(plans, &plan{seq: i + 1, index: i, kind: types.SceneBody, text: s, prompt: s, ready: make(chan struct{})})
	}

	pctx, cancel := context.WithCancel(ctx)
	g, gctx := errgroup.WithContext(pctx)
	g.SetLimit(in.Concurrency)
	launched := make(chan struct{})
	go func() {
		defer close(launched)
		for _, p := range plans {
			p := p
			g.Go(func() error {
				defer close(p.ready)
				p.err = u.prepare(gctx, in, ws, p)
				return p.err
			})
		}
	}()
	stopPrefetch := func() {
		cancel()
		<-launched
		_ = g.Wait()
	}

	track := timeline.NewTrack(in.FPS)
	clips := make([]string, 0, len(plans))
	segments := make([]types.AudioSegment, 0, len(plans))
	for _, p := range plans {
		select {
		case <-p.ready:
		case <-ctx.Done():
			stopPrefetch()
			return res, cancelled(ctx)
		}
		if ctx.Err() != nil {
			stopPrefetch()
			return res, cancelled(ctx)
		}
		if p.err != nil {
			// A later scene may have failed first and cancelled this one.
			cancel()
			<-launched
			if gerr := g.Wait(); gerr != nil {
				return res, gerr
			}
			return res, p.err
		}
		if p.kind == types.SceneIntro && p.narration.Duration <= 0 {
			stopPrefetch()
			return res, fmt.Errorf("intro narration has zero duration")
		}

		slot := track.Append(timeline.SceneDuration(p.kind, p.narration.Duration))
		capPath := ws.file(fmt.Sprintf("caption_%02d.png", p.seq))
		if err := u.d.Captions.WritePNG(p.text, capPath); err != nil {
			stopPrefetch()
			return res, fmt.Errorf("scene %d caption: %w", p.seq, err)
		}
		clip, err := u.d.Compositor.Compose(ctx, p.kind, p.image.Value.ImagePath, capPath, ws.file(fmt.Sprintf("clip_%02d.mp4", p.seq)), slot)
		if err != nil {
			stopPrefetch()
			return res, fmt.Errorf("scene %d: %w", p.seq, err)
		}
		clips = append(clips, clip.Path)
		segments = append(segments, types.AudioSegment{Path: p.narration.AudioPath, Duration: slot.Duration})
		res.Scenes = append(res.Scenes, types.SceneReport{
			Index:         p.seq,
			Kind:          p.kind.String(),
			Text:          p.text,
			ImagePath:     p.image.Value.ImagePath,
			ImageFallback: p.image.UsedFallback,
			Narration:     p.narration.Duration,
			Duration:      slot.Duration,
			Frames:        slot.Frames,
		})
		log.Debug("scene composed", zap.Int("scene", p.seq), zap.Int("frames", slot.Frames), zap.Duration("duration", slot.Duration))
	}
	cancel()
	<-launched
	if err := g.Wait(); err != nil {
		return res, err
	}

	videoTrack := ws.file("video.mp4")
	if err := u.d.Media.ConcatVideo(ctx, clips, ws.file("clips.txt"), videoTrack); err != nil {
		return res, fmt.Errorf("concatenate scenes: %w", err)
	}
	audioTrack := ws.file("narration.wav")
	if err := u.d.Media.ConcatAudio(ctx, segments, audioTrack); err != nil {
		return res, fmt.Errorf("concatenate narration: %w", err)
	}
	if ctx.Err() != nil {
		return res, cancelled(ctx)
	}

	final := filepath.Join(in.OutDir, fmt.Sprintf("video_%s_%s_%s.mp4", scene.FileToken(in.Owner), started.Format("20060102_150405"), shortID(in.RunID)))
	partial := final + ".partial"
	output = partial
	if err := u.d.Media.Mux(ctx, types.MuxSpec{
		VideoPath:    videoTrack,
		AudioPath:    audioTrack,
		OutPath:      partial,
		Duration:     track.Duration(),
		FadeOut:      in.FadeOut,
		Width:        in.Width,
		Height:       in.Height,
		FPS:          in.FPS,
		Preset:       in.Encode.Preset,
		VideoBitrate: in.Encode.VideoBitrate,
		AudioBitrate: in.Encode.AudioBitrate,
		Threads:      in.Encode.Threads,
	}); err != nil {
		return res, fmt.Errorf("encode final video: %w", err)
	}
	if ctx.Err() != nil {
		return res, cancelled(ctx)
	}
	if err := os.Rename(partial, final); err != nil {
		return res, fmt.Errorf("publish final video: %w", err)
	}
	output = final
	if err := verify(ctx, final, in.VerifyAttempts, in.VerifyInterval); err != nil {
		return res, err
	}

	res.FinalVideoPath = final
	res.Duration = track.Duration()
	log.Info("production finished",
		zap.String("video", final),
		zap.Duration("duration", res.Duration),
		zap.Int("scenes", len(res.Scenes)),
		zap.Duration("elapsed", u.d.Now().Sub(started)))
	return res, nil
}

// prepare synthesizes and measures narration, then fetches the scene image.
func (u Usecase) prepare(ctx context.Context, in Input, ws *workspace, p *plan) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	name := fmt.Sprintf("scene_audio_%s_%02d.mp3", scene.FileToken(in.Owner), p.index)
	if p.kind == types.SceneIntro {
		name = fmt.Sprintf("intro_audio_%s.mp3", scene.FileToken(in.Owner))
	}
	clip, err := u.d.Narrator.Narrate(ctx, p.text, ws.file(name))
	if err != nil {
		return fmt.Errorf("scene %d: %w", p.seq, err)
	}
	p.narration = clip
	p.image = u.d.Assets.GenerateSceneImage(ctx, p.prompt, in.Owner, p.index)
	ws.image(p.image.Value.ImagePath)
	return nil
}

func verify(ctx context.Context, path string, attempts int, interval time.Duration) error {
	for i := 0; i < attempts; i++ {
		if fi, err := os.Stat(path); err == nil && fi.Size() > 0 {
			return nil
		}
		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return cancelled(ctx)
		case <-time.After(interval):
		}
	}
	return fmt.Errorf("%w: %s", ErrWriteVerification, path)
}

func cancelled(ctx context.Context) error {
	return fmt.Errorf("%w: %w", ErrCancelled, context.Cause(ctx))
}

func shortID(id string) string {
	if len(id) > 6 {
		return id[:6]
	}
	if id == "" {
		return "run"
	}
	return id
}
