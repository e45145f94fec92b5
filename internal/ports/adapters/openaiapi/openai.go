package openaiapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/ozoops/health5070/internal/types"
)

const (
	requestTimeout = 90 * time.Second
	speechTimeout  = 2 * time.Minute
)

type Config struct {
	APIKey       string
	BaseURL      string
	ChatModel    string
	ImageModel   string
	ImageSize    string
	ImageQuality string
	SpeechModel  string
	Voice        string
	HTTPClient   *http.Client
}

// Adapter serves chat completion, image generation and speech synthesis
// from one OpenAI client.
type Adapter struct {
	client openai.Client
	cfg    Config
}

func New(cfg Config) *Adapter {
	if cfg.ChatModel == "" {
		cfg.ChatModel = "gpt-3.5-turbo"
	}
	if cfg.ImageModel == "" {
		cfg.ImageModel = "dall-e-3"
	}
	if cfg.ImageSize == "" {
		cfg.ImageSize = "1792x1024"
	}
	if cfg.ImageQuality == "" {
		cfg.ImageQuality = "standard"
	}
	if cfg.SpeechModel == "" {
		cfg.SpeechModel = "tts-1"
	}
	if cfg.Voice == "" {
		cfg.Voice = "alloy"
	}
	cfg.BaseURL = normalizeBaseURL(cfg.BaseURL) + "/"

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(cfg.BaseURL),
		option.WithMaxRetries(0),
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	}
	return &Adapter{client: openai.NewClient(opts...), cfg: cfg}
}

func (a *Adapter) Complete(ctx context.Context, c types.Completion) (string, error) {
	reqCtx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	var msgs []openai.ChatCompletionMessageParamUnion
	if strings.TrimSpace(c.System) != "" {
		msgs = append(msgs, openai.SystemMessage(c.System))
	}
	msgs = append(msgs, openai.UserMessage(c.User))

	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(a.cfg.ChatModel),
		Messages:    msgs,
		Temperature: openai.Float(c.Temperature),
	}
	if c.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(c.MaxTokens))
	}

	resp, err := a.client.Chat.Completions.New(reqCtx, params)
	if err != nil {
		return "", a.wrap(reqCtx, "chat completion", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai chat completion: no choices")
	}
	out := strings.TrimSpace(resp.Choices[0].Message.Content)
	if out == "" {
		return "", errors.New("openai chat completion: empty content")
	}
	return out, nil
}

func (a *Adapter) GenerateImage(ctx context.Context, req types.ImageRequest) (string, error) {
	reqCtx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	size, quality := req.Size, req.Quality
	if size == "" {
		size = a.cfg.ImageSize
	}
	if quality == "" {
		quality = a.cfg.ImageQuality
	}

	resp, err := a.client.Images.Generate(reqCtx, openai.ImageGenerateParams{
		Prompt:         req.Prompt,
		Model:          openai.ImageModel(a.cfg.ImageModel),
		N:              openai.Int(1),
		Size:           openai.ImageGenerateParamsSize(size),
		Quality:        openai.ImageGenerateParamsQuality(quality),
		ResponseFormat: openai.ImageGenerateParamsResponseFormat("url"),
	})
	if err != nil {
		return "", a.wrap(reqCtx, "image generation", err)
	}
	if len(resp.Data) == 0 || strings.TrimSpace(resp.Data[0].URL) == "" {
		return "", errors.New("openai image generation: no image url")
	}
	return resp.Data[0].URL, nil
}

// Synthesize writes an mp3 of text to outPath. The model detects the
// language from the text itself.
func (a *Adapter) Synthesize(ctx context.Context, text, _ string, outPath string) error {
	reqCtx, cancel := context.WithTimeout(ctx, speechTimeout)
	defer cancel()

	resp, err := a.client.Audio.Speech.New(reqCtx, openai.AudioSpeechNewParams{
		Input:          text,
		Model:          openai.SpeechModel(a.cfg.SpeechModel),
		Voice:          openai.AudioSpeechNewParamsVoice(a.cfg.Voice),
		ResponseFormat: openai.AudioSpeechNewParamsResponseFormat("mp3"),
	})
	if err != nil {
		return a.wrap(reqCtx, "speech", err)
	}
	defer resp.Body.Close()

	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create speech file: %w", err)
	}
	n, err := io.Copy(f, resp.Body)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("write speech file: %w", err)
	}
	if n == 0 {
		return errors.New("openai speech: empty audio")
	}
	return nil
}

func (a *Adapter) wrap(reqCtx context.Context, what string, err error) error {
	if errors.Is(reqCtx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("openai %s timeout (model=%s): %w", what, a.modelFor(what), context.DeadlineExceeded)
	}
	if errors.Is(err, context.Canceled) {
		return fmt.Errorf("openai %s: %w", what, context.Canceled)
	}
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return fmt.Errorf("openai %s status %d: %s", what, apiErr.StatusCode,
			truncate(redactSecrets(apiErr.Error(), a.cfg.APIKey), 400))
	}
	return fmt.Errorf("openai %s: %s", what, truncate(redactSecrets(err.Error(), a.cfg.APIKey), 400))
}

func (a *Adapter) modelFor(what string) string {
	switch what {
	case "image generation":
		return a.cfg.ImageModel
	case "speech":
		return a.cfg.SpeechModel
	default:
		return a.cfg.ChatModel
	}
}
