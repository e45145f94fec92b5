package types

import "time"

// ScriptInput is one production request.
type ScriptInput struct {
	Owner  string `json:"owner"`
	Title  string `json:"title"`
	Script string `json:"script"`
}

// Outcome is the result of a step that masks failures with a fallback value.
type Outcome[T any] struct {
	Value        T
	UsedFallback bool
}

type SceneKind int

const (
	SceneIntro SceneKind = iota
	SceneBody
)

func (k SceneKind) String() string {
	if k == SceneIntro {
		return "intro"
	}
	return "body"
}

type SceneAsset struct {
	ImagePath  string
	IsFallback bool
}

type NarrationClip struct {
	AudioPath string
	Duration  time.Duration
}

type VisualClip struct {
	Path     string
	Duration time.Duration
	Frames   int
}

type Completion struct {
	System      string
	User        string
	Temperature float64
	MaxTokens   int
}

type ImageRequest struct {
	Prompt  string
	Size    string
	Quality string
}

// SceneRender describes one silent scene clip: a zooming background with a
// static caption overlay and a fade-in.
type SceneRender struct {
	ImagePath   string
	CaptionPath string
	OutPath     string
	Width       int
	Height      int
	FPS         int
	Frames      int
	ZoomRate    float64
	FadeIn      time.Duration
}

type AudioSegment struct {
	Path     string
	Duration time.Duration
}

type MuxSpec struct {
	VideoPath    string
	AudioPath    string
	OutPath      string
	Duration     time.Duration
	FadeOut      time.Duration
	Width        int
	Height       int
	FPS          int
	Preset       string
	VideoBitrate string
	AudioBitrate string
	Threads      int
}

type SceneReport struct {
	Index         int           `json:"index"`
	Kind          string        `json:"kind"`
	Text          string        `json:"text"`
	ImagePath     string        `json:"image_path"`
	ImageFallback bool          `json:"image_fallback"`
	Narration     time.Duration `json:"narration"`
	Duration      time.Duration `json:"duration"`
	Frames        int           `json:"frames"`
}

type VideoProductionResult struct {
	RunID          string        `json:"run_id"`
	FinalVideoPath string        `json:"final_video_path"`
	Duration       time.Duration `json:"duration"`
	IntroText      string        `json:"intro_text"`
	IntroFallback  bool          `json:"intro_fallback"`
	Scenes         []SceneReport `json:"scenes"`
}

type VideoRecord struct {
	ID               string    `json:"id"`
	Owner            string    `json:"article_id"`
	Title            string    `json:"video_title"`
	Script           string    `json:"script"`
	Thumbnail        string    `json:"thumbnail,omitempty"`
	ScriptImage      string    `json:"script_image,omitempty"`
	VideoPath        string    `json:"video_path"`
	ArchiveLink      string    `json:"archive_link,omitempty"`
	ProductionStatus string    `json:"production_status"`
	CreatedDate      time.Time `json:"created_date"`
	ViewCount        int       `json:"view_count"`
}

const StatusCompleted = "completed"
