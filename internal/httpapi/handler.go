package httpapi

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/ozoops/health5070/internal/pipeline"
	"github.com/ozoops/health5070/internal/scene"
	"github.com/ozoops/health5070/internal/types"
	"github.com/ozoops/health5070/internal/usecase"
)

// Producer is the part of pipeline.Producer the HTTP routes drive.
type Producer interface {
	ProduceAndRecord(ctx context.Context, owner, title, script string) (pipeline.Production, error)
	WriteScript(ctx context.Context, article string) (string, error)
}

// RecordLister lists stored video records. Optional.
type RecordLister interface {
	List(ctx context.Context) ([]types.VideoRecord, error)
}

type Handler struct {
	prod    Producer
	records RecordLister
	log     *zap.Logger
	timeout time.Duration
}

// NewHandler builds the routes. A zero timeout leaves requests unbounded.
func NewHandler(prod Producer, records RecordLister, log *zap.Logger, timeout time.Duration) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{prod: prod, records: records, log: log, timeout: timeout}
}

// Register registers routes to app.
func (h *Handler) Register(app *fiber.App) {
	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	app.Post("/videos", h.produce)
	app.Get("/videos", h.list)
	app.Post("/scripts", h.script)
}

// NewApp returns a fiber app with h registered and JSON error bodies.
func NewApp(h *Handler) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "health5070",
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
	})
	h.Register(app)
	return app
}

type scriptRequest struct {
	Article string `json:"article"`
}

func (h *Handler) produce(c *fiber.Ctx) error {
	var req types.ScriptInput
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body: "+err.Error())
	}
	if strings.TrimSpace(req.Owner) == "" || strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Script) == "" {
		return fiber.NewError(fiber.StatusBadRequest, "owner, title and script are required")
	}

	ctx, cancel := h.context(c)
	defer cancel()
	h.log.Info("produce requested", zap.String("owner", req.Owner), zap.String("title", req.Title))
	out, err := h.prod.ProduceAndRecord(ctx, req.Owner, req.Title, req.Script)
	if err != nil {
		h.log.Error("produce failed", zap.String("owner", req.Owner), zap.Error(err))
		return fiber.NewError(statusFor(err), err.Error())
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

func (h *Handler) list(c *fiber.Ctx) error {
	if h.records == nil {
		return fiber.NewError(fiber.StatusNotImplemented, "record listing is not configured")
	}
	recs, err := h.records.List(c.UserContext())
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	if owner := c.Query("owner"); owner != "" {
		filtered := recs[:0]
		for _, r := range recs {
			if r.Owner == owner {
				filtered = append(filtered, r)
			}
		}
		recs = filtered
	}
	if recs == nil {
		recs = []types.VideoRecord{}
	}
	return c.JSON(recs)
}

func (h *Handler) script(c *fiber.Ctx) error {
	var req scriptRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body: "+err.Error())
	}
	if strings.TrimSpace(req.Article) == "" {
		return fiber.NewError(fiber.StatusBadRequest, "article is required")
	}
	ctx, cancel := h.context(c)
	defer cancel()
	s, err := h.prod.WriteScript(ctx, req.Article)
	if err != nil {
		return fiber.NewError(statusFor(err), err.Error())
	}
	return c.JSON(fiber.Map{"script": s})
}

func (h *Handler) context(c *fiber.Ctx) (context.Context, context.CancelFunc) {
	if h.timeout > 0 {
		return context.WithTimeout(c.UserContext(), h.timeout)
	}
	return context.WithCancel(c.UserContext())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, usecase.ErrUnsplittableScript), errors.Is(err, pipeline.ErrEmptyOwner):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, usecase.ErrCancelled):
		return fiber.StatusServiceUnavailable
	case errors.Is(err, scene.ErrScriptGeneration):
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	return c.Status(code).JSON(fiber.Map{"error": err.Error()})
}
