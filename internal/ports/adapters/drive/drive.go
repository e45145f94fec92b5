package drive

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"golang.org/x/oauth2/google"
	gdrive "google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// Adapter archives finished videos to a Google Drive folder.
type Adapter struct {
	srv      *gdrive.Service
	folderID string
	log      *zap.Logger
}

// New authenticates with a service-account or authorized-user JSON file.
func New(ctx context.Context, credentialsFile, folderID string) (*Adapter, error) {
	b, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("read drive credentials: %w", err)
	}
	creds, err := google.CredentialsFromJSON(ctx, b, gdrive.DriveFileScope)
	if err != nil {
		return nil, fmt.Errorf("parse drive credentials: %w", err)
	}
	srv, err := gdrive.NewService(ctx, option.WithCredentials(creds))
	if err != nil {
		return nil, fmt.Errorf("drive service: %w", err)
	}
	return NewWithService(srv, folderID), nil
}

func NewWithService(srv *gdrive.Service, folderID string) *Adapter {
	return &Adapter{srv: srv, folderID: folderID, log: zap.NewNop()}
}

// WithLogger sets the logger used to report links that could not be read
// back after upload.
func (a *Adapter) WithLogger(log *zap.Logger) *Adapter {
	if log != nil {
		a.log = log.Named("drive")
	}
	return a
}

// Archive uploads path and returns its web link, or "drive:<id>" when the
// link cannot be read back.
func (a *Adapter) Archive(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	name := filepath.Base(path)
	mimeType := mime.TypeByExtension(filepath.Ext(name))
	if mimeType == "" {
		mimeType = "video/mp4"
	}
	file := &gdrive.File{Name: name, MimeType: mimeType}
	if a.folderID != "" {
		file.Parents = []string{a.folderID}
	}

	created, err := a.srv.Files.Create(file).
		Context(ctx).
		Media(f, googleapi.ChunkSize(8*1024*1024)).
		Do()
	if err != nil {
		return "", fmt.Errorf("drive upload: %w", err)
	}

	fallback := "drive:" + created.Id
	got, err := a.srv.Files.Get(created.Id).Fields("id,webViewLink").Context(ctx).Do()
	if err != nil {
		a.log.Warn("read back drive link", zap.String("id", created.Id), zap.Error(err))
		return fallback, nil
	}
	if got.WebViewLink == "" {
		a.log.Warn("drive file has no web link", zap.String("id", created.Id))
		return fallback, nil
	}
	return got.WebViewLink, nil
}
