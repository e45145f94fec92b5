package caption

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"sync"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"
)

type Style struct {
	Width       int
	Height      int
	FontSize    float64
	MaxChars    int
	Margin      int
	LineSpacing int
	BottomPad   int
	PadX        int
	PadY        int
	Radius      int
	BoxAlpha    uint8
}

func DefaultStyle(width, height int) Style {
	return Style{
		Width:       width,
		Height:      height,
		FontSize:    36,
		MaxChars:    30,
		Margin:      60,
		LineSpacing: 12,
		BottomPad:   80,
		PadX:        28,
		PadY:        24,
		Radius:      24,
		BoxAlpha:    180,
	}
}

// Renderer rasterizes caption overlays. The font is chosen once in New.
type Renderer struct {
	style    Style
	fontPath string

	mu   sync.Mutex
	face font.Face
}

func New(style Style, fonts []string) *Renderer {
	face, path := probeFace(fonts, style.FontSize)
	return &Renderer{style: style, face: face, fontPath: path}
}

// FontPath is the selected font file, or "" for the built-in face.
func (r *Renderer) FontPath() string { return r.fontPath }

type Layout struct {
	Box        image.Rectangle
	Lines      []string
	LineWidths []int
	LineHeight int
	Ascent     int
}

func (r *Renderer) Layout(text string) Layout {
	r.mu.Lock()
	defer r.mu.Unlock()
	dc := gg.NewContext(1, 1)
	dc.SetFontFace(r.face)
	return r.layout(dc, text)
}

// layout wraps text by character count, then rewraps any line still wider
// than the box allows at word boundaries.
func (r *Renderer) layout(dc *gg.Context, text string) Layout {
	s := r.style
	maxW := float64(s.Width - 2*s.Margin - 2*s.PadX)
	var lines []string
	for _, ln := range Wrap(text, s.MaxChars) {
		if ln == "" || maxW <= 0 {
			lines = append(lines, ln)
			continue
		}
		if w, _ := dc.MeasureString(ln); w <= maxW {
			lines = append(lines, ln)
			continue
		}
		lines = append(lines, dc.WordWrap(ln, maxW)...)
	}

	m := r.face.Metrics()
	l := Layout{
		Lines:      lines,
		LineHeight: (m.Ascent + m.Descent).Ceil(),
		Ascent:     m.Ascent.Ceil(),
	}
	if len(lines) == 0 {
		return l
	}

	textW := 0
	for _, ln := range lines {
		w, _ := dc.MeasureString(ln)
		lw := int(math.Ceil(w))
		l.LineWidths = append(l.LineWidths, lw)
		textW = max(textW, lw)
	}
	textH := len(lines)*l.LineHeight + (len(lines)-1)*s.LineSpacing

	boxW := min(textW+2*s.PadX, s.Width-2*s.Margin)
	boxH := textH + 2*s.PadY
	x0 := (s.Width - boxW) / 2
	y1 := s.Height - s.BottomPad
	l.Box = image.Rect(x0, y1-boxH, x0+boxW, y1)
	return l
}

// Render returns a frame-sized RGBA overlay: transparent except for a rounded
// translucent box near the bottom with centered white text.
func (r *Renderer) Render(text string) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, r.style.Width, r.style.Height))
	r.draw(gg.NewContextForRGBA(img), text)
	return img
}

func (r *Renderer) WritePNG(text, path string) error {
	dc := gg.NewContext(r.style.Width, r.style.Height)
	r.draw(dc, text)
	if err := dc.SavePNG(path); err != nil {
		return fmt.Errorf("write caption %s: %w", path, err)
	}
	return nil
}

func (r *Renderer) draw(dc *gg.Context, text string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := r.style
	dc.SetFontFace(r.face)
	l := r.layout(dc, text)
	if len(l.Lines) == 0 {
		return
	}

	radius := float64(min(s.Radius, l.Box.Dx()/2, l.Box.Dy()/2))
	dc.DrawRoundedRectangle(float64(l.Box.Min.X), float64(l.Box.Min.Y), float64(l.Box.Dx()), float64(l.Box.Dy()), radius)
	dc.SetRGBA255(0, 0, 0, int(s.BoxAlpha))
	dc.Fill()

	dc.SetColor(color.White)
	y := l.Box.Min.Y + s.PadY
	for i, ln := range l.Lines {
		x := l.Box.Min.X + (l.Box.Dx()-l.LineWidths[i])/2
		dc.DrawString(ln, float64(x), float64(y+l.Ascent))
		y += l.LineHeight + s.LineSpacing
	}
}
