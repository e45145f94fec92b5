package usecase

import (
	"errors"

	"github.com/ozoops/health5070/internal/domain/script"
)

var (
	ErrUnsplittableScript = script.ErrUnsplittable
	ErrCancelled          = errors.New("video production cancelled")
	ErrWriteVerification  = errors.New("output video missing or empty after write")
)
