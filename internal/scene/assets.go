package scene

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/fogleman/gg"
	"go.uber.org/zap"
	_ "golang.org/x/image/webp"

	"github.com/ozoops/health5070/internal/ports"
	"github.com/ozoops/health5070/internal/retry"
	"github.com/ozoops/health5070/internal/types"
)

// IntroIndex is the image index reserved for the intro scene.
const IntroIndex = 999

type AssetConfig struct {
	Dir     string
	Width   int
	Height  int
	Size    string
	Quality string
	Retry   retry.Policy
	Logger  *zap.Logger
}

// AssetGenerator produces one illustration per scene. It never fails: when
// generation is exhausted a flat-color image is written instead.
type AssetGenerator struct {
	images ports.ImageGenerator
	fetch  ports.Fetcher
	cfg    AssetConfig
	log    *zap.Logger

	color func() color.RGBA
}

func NewAssetGenerator(images ports.ImageGenerator, fetch ports.Fetcher, cfg AssetConfig) *AssetGenerator {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &AssetGenerator{
		images: images,
		fetch:  fetch,
		cfg:    cfg,
		log:    log.Named("assets"),
		color:  randomColor,
	}
}

// Generate writes an AI illustration for prompt to outPath and reports
// whether it succeeded within the retry policy.
func (g *AssetGenerator) Generate(ctx context.Context, prompt, outPath string) bool {
	if g.images == nil || g.fetch == nil {
		return false
	}
	err := g.cfg.Retry.Do(ctx, func(int) error {
		url, err := g.images.GenerateImage(ctx, types.ImageRequest{
			Prompt:  imagePrompt(prompt),
			Size:    g.cfg.Size,
			Quality: g.cfg.Quality,
		})
		if err != nil {
			return err
		}
		b, err := g.fetch.Fetch(ctx, url)
		if err != nil {
			return err
		}
		if _, _, err := image.DecodeConfig(bytes.NewReader(b)); err != nil {
			return fmt.Errorf("decode image: %w", err)
		}
		return writeFile(outPath, b)
	}, func(attempt int, err error) {
		g.log.Warn("image attempt failed", zap.Int("attempt", attempt), zap.Error(err))
	})
	if err != nil {
		g.log.Warn("image generation gave up", zap.String("path", outPath), zap.Error(err))
		return false
	}
	g.log.Debug("image saved", zap.String("path", outPath))
	return true
}

func (g *AssetGenerator) GenerateSceneImage(ctx context.Context, prompt, owner string, index int) types.Outcome[types.SceneAsset] {
	token := FileToken(owner)
	out := filepath.Join(g.cfg.Dir, fmt.Sprintf("scene_%s_%02d.png", token, index))
	if g.Generate(ctx, prompt, out) {
		return types.Outcome[types.SceneAsset]{Value: types.SceneAsset{ImagePath: out}}
	}

	fb := filepath.Join(g.cfg.Dir, fmt.Sprintf("scene_fallback_%s_%02d.png", token, index))
	if err := writeFlatPNG(fb, g.cfg.Width, g.cfg.Height, g.color()); err != nil {
		g.log.Error("write fallback image", zap.String("path", fb), zap.Error(err))
	} else {
		g.log.Info("using fallback image", zap.Int("scene", index), zap.String("path", fb))
	}
	return types.Outcome[types.SceneAsset]{
		Value:        types.SceneAsset{ImagePath: fb, IsFallback: true},
		UsedFallback: true,
	}
}

func randomColor() color.RGBA {
	return color.RGBA{R: uint8(rand.Intn(256)), G: uint8(rand.Intn(256)), B: uint8(rand.Intn(256)), A: 255}
}

func writeFlatPNG(path string, w, h int, c color.RGBA) error {
	if w <= 0 || h <= 0 {
		return fmt.Errorf("fallback image size %dx%d", w, h)
	}
	dc := gg.NewContext(w, h)
	dc.SetColor(c)
	dc.Clear()

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return err
	}
	return writeFile(path, buf.Bytes())
}

// writeFile replaces path via a temp file so readers never see a partial image.
func writeFile(path string, b []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// FileToken turns an owner identifier into a filename-safe token.
func FileToken(s string) string {
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
	out := strings.Trim(b.String(), "-")
	if out == "" {
		return "anon"
	}
	return out
}
