//go:build integration

package itest

import (
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

type streamInfo struct {
	VideoCodec string
	AudioCodec string
	Width      int
	Height     int
	FrameRate  string
	Frames     int
}

func probeDurationSeconds(mp4Path string) (float64, error) {
	cmd := exec.Command("ffprobe",
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		mp4Path,
	)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return 0, fmt.Errorf("ffprobe: %w\n%s", err, string(b))
	}
	s := strings.TrimSpace(string(b))
	sec, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", s, err)
	}
	return sec, nil
}

func probeStreams(mp4Path string) (streamInfo, error) {
	cmd := exec.Command("ffprobe",
		"-v", "error",
		"-count_frames",
		"-show_streams",
		"-of", "json",
		mp4Path,
	)
	b, err := cmd.Output()
	if err != nil {
		return streamInfo{}, fmt.Errorf("ffprobe streams: %w", err)
	}
	doc := gjson.ParseBytes(b)
	video := doc.Get(`streams.#(codec_type=="video")`)
	audio := doc.Get(`streams.#(codec_type=="audio")`)
	if !video.Exists() {
		return streamInfo{}, fmt.Errorf("no video stream in %s", mp4Path)
	}
	return streamInfo{
		VideoCodec: video.Get("codec_name").String(),
		AudioCodec: audio.Get("codec_name").String(),
		Width:      int(video.Get("width").Int()),
		Height:     int(video.Get("height").Int()),
		FrameRate:  video.Get("r_frame_rate").String(),
		Frames:     int(video.Get("nb_read_frames").Int()),
	}, nil
}
