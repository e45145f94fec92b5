package timeline

import (
	"math"
	"time"

	"github.com/ozoops/health5070/internal/types"
)

// BodyFloor is the shortest a sentence scene may last.
const BodyFloor = 1800 * time.Millisecond

// SceneDuration returns how long a scene is held on screen for its measured
// narration: body scenes are floored, the intro is not.
func SceneDuration(kind types.SceneKind, measured time.Duration) time.Duration {
	if kind == types.SceneBody && measured < BodyFloor {
		return BodyFloor
	}
	return measured
}

type Slot struct {
	Index    int
	Start    time.Duration
	Frames   int
	Duration time.Duration
}

// Track lays scenes end to end on a fixed frame grid. Each boundary is the
// rounded frame of the exact cumulative duration, so the track never drifts
// more than half a frame from the exact sum.
type Track struct {
	fps    int
	exact  time.Duration
	frames int
	slots  []Slot
}

func NewTrack(fps int) *Track {
	if fps <= 0 {
		fps = 30
	}
	return &Track{fps: fps}
}

func (t *Track) Append(d time.Duration) Slot {
	start := t.frames
	t.exact += d
	end := t.frameAt(t.exact)
	if end <= start {
		end = start + 1
	}
	s := Slot{
		Index:    len(t.slots),
		Start:    FrameDuration(start, t.fps),
		Frames:   end - start,
		Duration: FrameDuration(end-start, t.fps),
	}
	t.frames = end
	t.slots = append(t.slots, s)
	return s
}

func (t *Track) frameAt(d time.Duration) int {
	return int(math.Round(d.Seconds() * float64(t.fps)))
}

func (t *Track) Frames() int             { return t.frames }
func (t *Track) Duration() time.Duration { return FrameDuration(t.frames, t.fps) }
func (t *Track) Exact() time.Duration    { return t.exact }

func (t *Track) Slots() []Slot {
	out := make([]Slot, len(t.slots))
	copy(out, t.slots)
	return out
}

func FrameDuration(frames, fps int) time.Duration {
	return time.Duration(frames) * time.Second / time.Duration(fps)
}
