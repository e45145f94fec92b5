package recordstore

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ozoops/health5070/internal/types"
)

// Store keeps video records as JSON lines in a single file.
type Store struct {
	path string
	now  func() time.Time

	mu sync.Mutex
}

func New(path string) *Store {
	if path == "" {
		path = filepath.Join("generated_videos", "videos.jsonl")
	}
	return &Store{path: path, now: time.Now}
}

func (s *Store) Path() string { return s.path }

func (s *Store) InsertVideoRecord(ctx context.Context, rec types.VideoRecord) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.ProductionStatus == "" {
		rec.ProductionStatus = types.StatusCompleted
	}
	if rec.CreatedDate.IsZero() {
		rec.CreatedDate = s.now().UTC()
	}

	b, err := json.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("marshal video record: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return "", err
	}
	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("open record store: %w", err)
	}
	if _, err := f.Write(append(b, '\n')); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("append video record: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return rec.ID, nil
}

// List returns all records, oldest first. A missing file is an empty store.
func (s *Store) List(ctx context.Context) ([]types.VideoRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []types.VideoRecord
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), 16<<20)
	for line := 1; sc.Scan(); line++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if len(sc.Bytes()) == 0 {
			continue
		}
		var rec types.VideoRecord
		if err := json.Unmarshal(sc.Bytes(), &rec); err != nil {
			return nil, fmt.Errorf("%s:%d: %w", s.path, line, err)
		}
		out = append(out, rec)
	}
	return out, sc.Err()
}
