package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ozoops/health5070/internal/domain/caption"
	"github.com/ozoops/health5070/internal/ports"
	"github.com/ozoops/health5070/internal/ports/adapters/cmdtts"
	"github.com/ozoops/health5070/internal/ports/adapters/drive"
	"github.com/ozoops/health5070/internal/ports/adapters/ffmpeg"
	"github.com/ozoops/health5070/internal/ports/adapters/httpfetch"
	"github.com/ozoops/health5070/internal/ports/adapters/openaiapi"
	"github.com/ozoops/health5070/internal/ports/adapters/recordstore"
	"github.com/ozoops/health5070/internal/scene"
	"github.com/ozoops/health5070/internal/types"
	"github.com/ozoops/health5070/internal/usecase"
)

var ErrEmptyOwner = errors.New("owner is empty")

// Adapters are the external services a Producer talks to. Archiver may be
// nil.
type Adapters struct {
	Media    ports.MediaTool
	LLM      ports.TextCompleter
	Images   ports.ImageGenerator
	Fetch    ports.Fetcher
	Speech   ports.Speech
	Store    ports.VideoStore
	Archiver ports.Archiver
}

// Production is a finished video together with its stored record.
type Production struct {
	Result      types.VideoProductionResult `json:"result"`
	RecordID    string                      `json:"record_id"`
	ArchiveLink string                      `json:"archive_link,omitempty"`
}

type Producer struct {
	cfg     Config
	log     *zap.Logger
	ad      Adapters
	uc      usecase.Usecase
	scripts *scene.ScriptWriter

	mu     sync.Mutex
	owners map[string]*ownerLock

	newID func() string
	now   func() time.Time
}

// BuildAdapters constructs the production adapters described by cfg.
func BuildAdapters(ctx context.Context, cfg Config) (Adapters, error) {
	ai := openaiapi.New(openaiapi.Config{
		APIKey:       cfg.OpenAI.APIKey,
		BaseURL:      cfg.OpenAI.BaseURL,
		ChatModel:    cfg.OpenAI.ChatModel,
		ImageModel:   cfg.OpenAI.ImageModel,
		ImageSize:    cfg.OpenAI.ImageSize,
		ImageQuality: cfg.OpenAI.ImageQuality,
		SpeechModel:  cfg.TTS.Model,
		Voice:        cfg.TTS.Voice,
	})
	ad := Adapters{
		Media:  ffmpeg.New(cfg.FFmpegPath, cfg.FFprobePath),
		LLM:    ai,
		Images: ai,
		Fetch:  httpfetch.New(nil),
		Speech: ai,
		Store:  recordstore.New(cfg.Store.Path),
	}
	if cfg.TTS.Provider == TTSCommand {
		ad.Speech = cmdtts.New(cfg.TTS.Command, cfg.TTS.Args, cfg.TTS.Voice)
	}
	if cfg.Drive.Enabled {
		arch, err := drive.New(ctx, cfg.Drive.CredentialsFile, cfg.Drive.FolderID)
		if err != nil {
			return Adapters{}, err
		}
		ad.Archiver = arch.WithLogger(cfg.Logger)
	}
	return ad, nil
}

// New validates cfg and wires a Producer over the production adapters.
func New(ctx context.Context, cfg Config) (*Producer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	ad, err := BuildAdapters(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return NewWithAdapters(cfg, ad), nil
}

// NewWithAdapters wires a Producer over ad without validating cfg.
func NewWithAdapters(cfg Config, ad Adapters) *Producer {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	fonts := cfg.Fonts
	if len(fonts) == 0 {
		fonts = caption.DefaultFonts()
	}
	captions := caption.New(caption.DefaultStyle(cfg.Width, cfg.Height), fonts)
	if captions.FontPath() == "" {
		log.Warn("no caption font found, using built-in bitmap face")
	} else {
		log.Debug("caption font", zap.String("path", captions.FontPath()))
	}

	uc := usecase.New(usecase.Deps{
		Media: ad.Media,
		Assets: scene.NewAssetGenerator(ad.Images, ad.Fetch, scene.AssetConfig{
			Dir:     cfg.OutDir,
			Width:   cfg.Width,
			Height:  cfg.Height,
			Size:    cfg.OpenAI.ImageSize,
			Quality: cfg.OpenAI.ImageQuality,
			Retry:   cfg.ImageRetry,
			Logger:  log,
		}),
		Narrator:   scene.NewNarrator(ad.Speech, ad.Media, cfg.Language, log),
		Intro:      scene.NewIntroWriter(ad.LLM, log),
		Compositor: scene.NewCompositor(ad.Media, cfg.Width, cfg.Height, cfg.FPS),
		Captions:   captions,
		Logger:     log,
	})

	return &Producer{
		cfg:     cfg,
		log:     log,
		ad:      ad,
		uc:      uc,
		scripts: scene.NewScriptWriter(ad.LLM),
		owners:  map[string]*ownerLock{},
		newID:   uuid.NewString,
		now:     time.Now,
	}
}

// ProduceVideo renders one video for owner. Runs for the same owner are
// serialised; runs for different owners proceed in parallel.
func (p *Producer) ProduceVideo(ctx context.Context, owner, title, script string) (types.VideoProductionResult, error) {
	owner = strings.TrimSpace(owner)
	if owner == "" {
		return types.VideoProductionResult{}, ErrEmptyOwner
	}
	unlock, err := p.lockOwner(ctx, owner)
	if err != nil {
		return types.VideoProductionResult{}, err
	}
	defer unlock()

	runID := strings.ReplaceAll(p.newID(), "-", "")
	workDir := buildRunWorkDir(p.workRoot(), owner, runID, p.now().UTC())
	p.log.Info("run workspace", zap.String("owner", owner), zap.String("dir", workDir))

	return p.uc.Run(ctx, usecase.Input{
		Owner:            owner,
		Title:            title,
		Script:           script,
		OutDir:           p.cfg.OutDir,
		WorkDir:          workDir,
		RunID:            runID,
		Width:            p.cfg.Width,
		Height:           p.cfg.Height,
		FPS:              p.cfg.FPS,
		Concurrency:      p.cfg.Concurrency,
		PurgeSceneImages: p.cfg.PurgeSceneImages,
		FadeOut:          p.cfg.Encode.FadeOut,
		Encode: usecase.Encode{
			Preset:       p.cfg.Encode.Preset,
			VideoBitrate: p.cfg.Encode.VideoBitrate,
			AudioBitrate: p.cfg.Encode.AudioBitrate,
			Threads:      p.cfg.Encode.Threads,
		},
	})
}

// ProduceAndRecord renders a video, archives it when an archiver is
// configured, and stores its record. A failed run stores nothing; a failed
// archive is logged and the record is stored without a link.
func (p *Producer) ProduceAndRecord(ctx context.Context, owner, title, script string) (Production, error) {
	res, err := p.ProduceVideo(ctx, owner, title, script)
	if err != nil {
		return Production{}, err
	}
	out := Production{Result: res}

	if p.ad.Archiver != nil {
		link, err := p.ad.Archiver.Archive(ctx, res.FinalVideoPath)
		if err != nil {
			p.log.Warn("archive failed", zap.String("video", res.FinalVideoPath), zap.Error(err))
		} else {
			out.ArchiveLink = link
			p.log.Info("video archived", zap.String("link", link))
		}
	}

	if p.ad.Store == nil {
		return out, nil
	}
	id, err := p.ad.Store.InsertVideoRecord(ctx, types.VideoRecord{
		Owner:            strings.TrimSpace(owner),
		Title:            title,
		Script:           script,
		VideoPath:        res.FinalVideoPath,
		ArchiveLink:      out.ArchiveLink,
		ProductionStatus: types.StatusCompleted,
	})
	if err != nil {
		return out, fmt.Errorf("record video: %w", err)
	}
	out.RecordID = id
	p.log.Info("video recorded", zap.String("id", id), zap.String("video", res.FinalVideoPath))
	return out, nil
}

// WriteScript turns article text into a narration script.
func (p *Producer) WriteScript(ctx context.Context, article string) (string, error) {
	return p.scripts.Write(ctx, article)
}

// ownerLock is a one-slot semaphore shared by the runs of one owner. refs
// counts holders and waiters; the entry is dropped when it reaches zero.
type ownerLock struct {
	slot chan struct{}
	refs int
}

func (p *Producer) lockOwner(ctx context.Context, owner string) (func(), error) {
	p.mu.Lock()
	l, ok := p.owners[owner]
	if !ok {
		l = &ownerLock{slot: make(chan struct{}, 1)}
		p.owners[owner] = l
	}
	l.refs++
	p.mu.Unlock()

	select {
	case l.slot <- struct{}{}:
		return func() {
			<-l.slot
			p.releaseOwner(owner, l)
		}, nil
	case <-ctx.Done():
		p.releaseOwner(owner, l)
		return nil, fmt.Errorf("%w: %w", usecase.ErrCancelled, ctx.Err())
	}
}

func (p *Producer) releaseOwner(owner string, l *ownerLock) {
	p.mu.Lock()
	defer p.mu.Unlock()
	l.refs--
	if l.refs == 0 {
		delete(p.owners, owner)
	}
}

func (p *Producer) workRoot() string {
	if p.cfg.WorkDir == "" {
		return ".cache"
	}
	return p.cfg.WorkDir
}

func buildRunWorkDir(root, owner, runID string, now time.Time) string {
	name := normalizePathSegment(owner)
	if name == "" {
		name = "owner"
	}
	ts := now.UTC().Format("20060102-150405Z")
	suffix := hash(owner + "|" + runID)[:6]
	return filepath.Join(root, "runs", fmt.Sprintf("%s-%s-%s", name, ts, suffix))
}

func normalizePathSegment(s string) string {
	var b strings.Builder
	prevDash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			b.WriteRune(r)
			prevDash = false
		default:
			if !prevDash {
				b.WriteByte('-')
				prevDash = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}

func hash(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])[:12]
}

// ensure adapters implement ports
var (
	_ ports.MediaTool      = (*ffmpeg.Adapter)(nil)
	_ ports.TextCompleter  = (*openaiapi.Adapter)(nil)
	_ ports.ImageGenerator = (*openaiapi.Adapter)(nil)
	_ ports.Speech         = (*openaiapi.Adapter)(nil)
	_ ports.Speech         = (*cmdtts.Adapter)(nil)
	_ ports.Fetcher        = (*httpfetch.Adapter)(nil)
	_ ports.VideoStore     = (*recordstore.Store)(nil)
	_ ports.Archiver       = (*drive.Adapter)(nil)
)
