package cmdtts

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Placeholders substituted in Args.
const (
	Text     = "{text}"
	Language = "{lang}"
	Output   = "{out}"
)

// Adapter runs an external speech binary once per sentence.
type Adapter struct {
	bin  string
	args []string
}

// New builds an adapter for bin. With no args, presets for gtts-cli and
// edge-tts are used; any other binary gets "--text {text} --output {out}".
func New(bin string, args []string, voice string) *Adapter {
	if bin == "" {
		bin = "gtts-cli"
	}
	if len(args) == 0 {
		args = presetArgs(bin, voice)
	}
	return &Adapter{bin: bin, args: args}
}

func presetArgs(bin, voice string) []string {
	switch base := strings.TrimSuffix(baseName(bin), ".exe"); base {
	case "gtts-cli":
		return []string{"--lang", Language, "--output", Output, Text}
	case "edge-tts":
		if voice == "" {
			voice = "ko-KR-SunHiNeural"
		}
		return []string{"--voice", voice, "--text", Text, "--write-media", Output}
	default:
		return []string{"--text", Text, "--output", Output}
	}
}

func baseName(p string) string {
	if i := strings.LastIndexAny(p, `/\`); i >= 0 {
		return p[i+1:]
	}
	return p
}

func (a *Adapter) Synthesize(ctx context.Context, text, language, outPath string) error {
	r := strings.NewReplacer(Text, text, Language, language, Output, outPath)
	args := make([]string, len(a.args))
	for i, s := range a.args {
		args[i] = r.Replace(s)
	}

	cmd := exec.CommandContext(ctx, a.bin, args...)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("tts %s failed: %w\n%s", a.bin, err, string(b))
	}

	st, err := os.Stat(outPath)
	if err != nil {
		return fmt.Errorf("tts output: %w", err)
	}
	if st.Size() == 0 {
		return fmt.Errorf("tts output %s is empty", outPath)
	}
	return nil
}
