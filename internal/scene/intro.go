package scene

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/ozoops/health5070/internal/ports"
	"github.com/ozoops/health5070/internal/types"
)

type IntroWriter struct {
	llm ports.TextCompleter
	log *zap.Logger
}

func NewIntroWriter(llm ports.TextCompleter, log *zap.Logger) *IntroWriter {
	if log == nil {
		log = zap.NewNop()
	}
	return &IntroWriter{llm: llm, log: log.Named("intro")}
}

// Write returns an opening line for title, or title itself when the
// completion fails or comes back blank.
func (w *IntroWriter) Write(ctx context.Context, title string) types.Outcome[string] {
	fallback := types.Outcome[string]{Value: title, UsedFallback: true}
	if w.llm == nil {
		return fallback
	}
	out, err := w.llm.Complete(ctx, types.Completion{
		System:      introSystem,
		User:        introUser(title),
		Temperature: 0.7,
		MaxTokens:   100,
	})
	if err != nil {
		w.log.Warn("intro generation failed, using title", zap.String("title", title), zap.Error(err))
		return fallback
	}
	out = strings.TrimSpace(out)
	if out == "" {
		w.log.Warn("intro generation returned nothing, using title", zap.String("title", title))
		return fallback
	}
	w.log.Info("intro generated", zap.String("intro", out))
	return types.Outcome[string]{Value: out}
}
