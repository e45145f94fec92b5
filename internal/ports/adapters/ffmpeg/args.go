package ffmpeg

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	ffmpeggo "github.com/u2takey/ffmpeg-go"

	"github.com/ozoops/health5070/internal/types"
)

// sceneArgs builds a silent clip: the background is upscaled, then zoomed
// continuously from the center at 1+rate*t and sampled down to the frame
// size; the caption PNG is looped on top for the whole clip.
func sceneArgs(r types.SceneRender) []string {
	fps := strconv.Itoa(r.FPS)
	zoom := fmt.Sprintf("1+%s*on/%d", strconv.FormatFloat(r.ZoomRate, 'f', 5, 64), r.FPS)

	bg := ffmpeggo.Input(r.ImagePath).
		Filter("scale", ffmpeggo.Args{}, ffmpeggo.KwArgs{"w": 2 * r.Width, "h": 2 * r.Height}).
		Filter("zoompan", ffmpeggo.Args{}, ffmpeggo.KwArgs{
			"z":   zoom,
			"x":   "iw/2-(iw/zoom/2)",
			"y":   "ih/2-(ih/zoom/2)",
			"d":   r.Frames,
			"s":   fmt.Sprintf("%dx%d", r.Width, r.Height),
			"fps": fps,
		})

	v := bg
	if r.CaptionPath != "" {
		caption := ffmpeggo.Input(r.CaptionPath, ffmpeggo.KwArgs{"loop": 1, "framerate": fps})
		v = ffmpeggo.Filter([]*ffmpeggo.Stream{bg, caption}, "overlay", ffmpeggo.Args{},
			ffmpeggo.KwArgs{"x": 0, "y": 0, "shortest": 1})
	}
	if r.FadeIn > 0 {
		v = v.Filter("fade", ffmpeggo.Args{}, ffmpeggo.KwArgs{"t": "in", "st": 0, "d": fmtSeconds(r.FadeIn)})
	}
	v = v.Filter("format", ffmpeggo.Args{"yuv420p"})

	return v.Output(r.OutPath, ffmpeggo.KwArgs{
		"frames:v": r.Frames,
		"r":        fps,
		"c:v":      "libx264",
		"preset":   "veryfast",
		"crf":      18,
	}).OverWriteOutput().GetArgs()
}

func concatArgs(listPath, outPath string) []string {
	return ffmpeggo.Input(listPath, ffmpeggo.KwArgs{"f": "concat", "safe": 0}).
		Output(outPath, ffmpeggo.KwArgs{"c": "copy"}).
		OverWriteOutput().
		GetArgs()
}

func concatList(clips []string) string {
	var b strings.Builder
	for _, c := range clips {
		if abs, err := filepath.Abs(c); err == nil {
			c = abs
		}
		c = strings.ReplaceAll(filepath.ToSlash(c), "'", `'\''`)
		fmt.Fprintf(&b, "file '%s'\n", c)
	}
	return b.String()
}

// audioConcatFilter pads or trims every narration to its slot so the audio
// track lines up with the video scene boundaries.
func audioConcatFilter(segs []types.AudioSegment) string {
	var b strings.Builder
	for i, s := range segs {
		d := fmtSeconds(s.Duration)
		fmt.Fprintf(&b,
			"[%d:a]aformat=sample_rates=44100:channel_layouts=stereo,apad=whole_dur=%s,atrim=duration=%s,asetpts=PTS-STARTPTS[a%d];",
			i, d, d, i)
	}
	for i := range segs {
		fmt.Fprintf(&b, "[a%d]", i)
	}
	fmt.Fprintf(&b, "concat=n=%d:v=0:a=1[a]", len(segs))
	return b.String()
}

func muxArgs(s types.MuxSpec) []string {
	fadeStart := s.Duration - s.FadeOut
	if fadeStart < 0 {
		fadeStart = 0
	}
	vf := fmt.Sprintf("scale=%d:%d,fps=%d", s.Width, s.Height, s.FPS)
	af := "anull"
	if s.FadeOut > 0 {
		vf += fmt.Sprintf(",fade=t=out:st=%s:d=%s", fmtSeconds(fadeStart), fmtSeconds(s.FadeOut))
		af = fmt.Sprintf("afade=t=out:st=%s:d=%s", fmtSeconds(fadeStart), fmtSeconds(s.FadeOut))
	}
	vf += ",format=yuv420p"

	args := []string{
		"-y",
		"-i", s.VideoPath,
		"-i", s.AudioPath,
		"-map", "0:v:0",
		"-map", "1:a:0",
		"-vf", vf,
		"-af", af,
		"-c:v", "libx264",
		"-preset", orDefault(s.Preset, "medium"),
		"-b:v", orDefault(s.VideoBitrate, "3000k"),
		"-r", strconv.Itoa(s.FPS),
		"-c:a", "aac",
		"-b:a", orDefault(s.AudioBitrate, "192k"),
	}
	if s.Threads > 0 {
		args = append(args, "-threads", strconv.Itoa(s.Threads))
	}
	if s.Duration > 0 {
		args = append(args, "-t", fmtSeconds(s.Duration))
	}
	return append(args, "-movflags", "+faststart", "-f", "mp4", s.OutPath)
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
