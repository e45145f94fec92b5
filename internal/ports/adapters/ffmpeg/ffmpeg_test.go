package ffmpeg

import (
	"context"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/ozoops/health5070/internal/types"
)

func TestSceneArgs(t *testing.T) {
	args := sceneArgs(types.SceneRender{
		ImagePath:   "/tmp/scene.png",
		CaptionPath: "/tmp/cap.png",
		OutPath:     "/tmp/clip.mp4",
		Width:       1280,
		Height:      720,
		FPS:         30,
		Frames:      75,
		ZoomRate:    0.02,
		FadeIn:      250 * time.Millisecond,
	})
	joined := strings.Join(args, " ")

	for _, want := range []string{"zoompan", "1+0.02000*on/30", "s=1280x720", "overlay", "fade", "t=in", "format=yuv420p", "/tmp/cap.png", "-loop 1"} {
		if !strings.Contains(joined, want) {
			t.Fatalf("expected args to contain %q\nargs: %s", want, joined)
		}
	}
	if !hasPair(args, "-frames:v", "75") {
		t.Fatalf("expected -frames:v 75, got %s", joined)
	}
	if args[len(args)-1] != "/tmp/clip.mp4" && !strings.Contains(joined, "/tmp/clip.mp4") {
		t.Fatalf("expected output path in args: %s", joined)
	}
}

func TestSceneArgs_NoCaptionNoFade(t *testing.T) {
	joined := strings.Join(sceneArgs(types.SceneRender{
		ImagePath: "a.png", OutPath: "b.mp4", Width: 64, Height: 36, FPS: 30, Frames: 10, ZoomRate: 0.015,
	}), " ")
	if strings.Contains(joined, "overlay") || strings.Contains(joined, "fade") {
		t.Fatalf("unexpected overlay/fade: %s", joined)
	}
}

func TestConcatList_QuotesPaths(t *testing.T) {
	got := concatList([]string{"/w/a.mp4", "/w/it's.mp4"})
	want := "file '/w/a.mp4'\nfile '/w/it'\\''s.mp4'\n"
	if got != want {
		t.Fatalf("concatList = %q, want %q", got, want)
	}
}

func TestAudioConcatFilter(t *testing.T) {
	got := audioConcatFilter([]types.AudioSegment{
		{Path: "a.mp3", Duration: 2 * time.Second},
		{Path: "b.mp3", Duration: 1800 * time.Millisecond},
	})
	for _, want := range []string{
		"[0:a]aformat=sample_rates=44100:channel_layouts=stereo,apad=whole_dur=2.000000,atrim=duration=2.000000,asetpts=PTS-STARTPTS[a0];",
		"[1:a]aformat=sample_rates=44100:channel_layouts=stereo,apad=whole_dur=1.800000,atrim=duration=1.800000,asetpts=PTS-STARTPTS[a1];",
		"[a0][a1]concat=n=2:v=0:a=1[a]",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("expected filter to contain %q\nfilter: %s", want, got)
		}
	}
}

func TestMuxArgs(t *testing.T) {
	args := muxArgs(types.MuxSpec{
		VideoPath: "v.mp4",
		AudioPath: "a.wav",
		OutPath:   "out.mp4.partial",
		Duration:  10 * time.Second,
		FadeOut:   500 * time.Millisecond,
		Width:     1280,
		Height:    720,
		FPS:       30,
		Threads:   4,
	})
	joined := strings.Join(args, " ")
	for _, want := range []string{"fade=t=out:st=9.500000:d=0.500000", "afade=t=out:st=9.500000", "+faststart"} {
		if !strings.Contains(joined, want) {
			t.Fatalf("expected args to contain %q\nargs: %s", want, joined)
		}
	}
	for _, kv := range [][2]string{
		{"-preset", "medium"}, {"-b:v", "3000k"}, {"-threads", "4"}, {"-r", "30"},
		{"-c:v", "libx264"}, {"-c:a", "aac"}, {"-f", "mp4"}, {"-t", "10.000000"},
	} {
		if !hasPair(args, kv[0], kv[1]) {
			t.Fatalf("expected %s %s in %s", kv[0], kv[1], joined)
		}
	}
	if args[len(args)-1] != "out.mp4.partial" {
		t.Fatalf("output must be last arg: %s", joined)
	}
}

func TestRenderScene_RejectsZeroFrames(t *testing.T) {
	a := New("/nonexistent/ffmpeg", "")
	if err := a.RenderScene(context.Background(), types.SceneRender{}); err == nil {
		t.Fatalf("expected error for zero frames")
	}
}

func TestConcat_RejectsEmpty(t *testing.T) {
	a := New("", "")
	if err := a.ConcatVideo(context.Background(), nil, "l.txt", "o.mp4"); err == nil {
		t.Fatalf("expected error for no clips")
	}
	if err := a.ConcatAudio(context.Background(), nil, "o.wav"); err == nil {
		t.Fatalf("expected error for no segments")
	}
}

func hasPair(args []string, k, v string) bool {
	for i := 0; i+1 < len(args); i++ {
		if args[i] == k && args[i+1] == v {
			return true
		}
	}
	return false
}

func TestTail_KeepsRunesWhole(t *testing.T) {
	tests := []struct {
		name string
		in   string
		n    int
		want string
	}{
		{"short", "ok", 10, "ok"},
		{"ascii", "abcdef", 3, "def"},
		{"on boundary", "x/건강.mp3", 7, "강.mp3"},
		{"cut inside hangul", "x/건강.mp3", 8, "강.mp3"},
		{"only continuation bytes left", "건", 2, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tail(tt.in, tt.n)
			if got != tt.want || !utf8.ValidString(got) {
				t.Fatalf("tail(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
			}
		})
	}
}
