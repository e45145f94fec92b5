package caption

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/opentype"
)

// DefaultFonts lists bold Korean-capable faces for the current platform, in
// preference order.
func DefaultFonts() []string {
	if runtime.GOOS == "windows" {
		dir := filepath.Join(os.Getenv("WINDIR"), "Fonts")
		if os.Getenv("WINDIR") == "" {
			dir = `C:\Windows\Fonts`
		}
		return []string{
			filepath.Join(dir, "NanumGothicBold.ttf"),
			filepath.Join(dir, "malgunbd.ttf"),
		}
	}
	return []string{
		"/usr/share/fonts/truetype/nanum/NanumGothicBold.ttf",
		"/usr/share/fonts/opentype/noto/NotoSansCJK-Bold.ttc",
		"/usr/share/fonts/opentype/noto/NotoSansCJK-Regular.ttc",
		"/System/Library/Fonts/AppleSDGothicNeo.ttc",
	}
}

// probeFace returns the first candidate that parses, or the built-in bitmap
// face with an empty path.
func probeFace(candidates []string, size float64) (font.Face, string) {
	for _, p := range candidates {
		if strings.TrimSpace(p) == "" {
			continue
		}
		f, err := loadFace(p, size)
		if err != nil {
			continue
		}
		return f, p
	}
	return basicfont.Face7x13, ""
}

func loadFace(path string, size float64) (font.Face, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f *opentype.Font
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ttc", ".otc":
		coll, err := opentype.ParseCollection(b)
		if err != nil {
			return nil, fmt.Errorf("parse font collection %s: %w", path, err)
		}
		f, err = coll.Font(0)
		if err != nil {
			return nil, fmt.Errorf("font 0 of %s: %w", path, err)
		}
	default:
		f, err = opentype.Parse(b)
		if err != nil {
			return nil, fmt.Errorf("parse font %s: %w", path, err)
		}
	}
	return opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
}
