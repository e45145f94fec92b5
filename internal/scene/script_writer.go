package scene

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ozoops/health5070/internal/domain/script"
	"github.com/ozoops/health5070/internal/ports"
	"github.com/ozoops/health5070/internal/types"
)

// MaxArticleRunes bounds how much article text is sent for summarization.
const MaxArticleRunes = 300000

var ErrScriptGeneration = errors.New("script generation failed")

// ScriptWriter condenses an article into a short Korean narration script.
type ScriptWriter struct {
	llm ports.TextCompleter
}

func NewScriptWriter(llm ports.TextCompleter) *ScriptWriter {
	return &ScriptWriter{llm: llm}
}

func (w *ScriptWriter) Write(ctx context.Context, article string) (string, error) {
	article = strings.TrimSpace(article)
	if article == "" {
		return "", fmt.Errorf("%w: article is empty", ErrScriptGeneration)
	}
	out, err := w.llm.Complete(ctx, types.Completion{
		User:        scriptPrompt(script.Trim(article, MaxArticleRunes)),
		Temperature: 0.7,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrScriptGeneration, err)
	}
	out = script.Flatten(out)
	if out == "" {
		return "", fmt.Errorf("%w: empty script", ErrScriptGeneration)
	}
	return out, nil
}
