package providers

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"fmd/internal/structures"
)

// UploadProviderInterface stores an opaque blob and returns a URL the
// dashboard can render. The original delegated this to a hosted image
// service; locally the blobs land in a served directory.
type UploadProviderInterface interface {
	SaveBlob(data []byte, ext string) (string, error)
}

type UploadProvider struct {
	dir     string
	baseURL string
}

func NewUploadProvider(conf *structures.Config, logger Logger) (UploadProviderInterface, error) {
	if err := os.MkdirAll(conf.Uploads.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("cannot create uploads dir: %w", err)
	}
	baseURL := conf.Uploads.BaseURL
	if baseURL == "" {
		baseURL = "/uploads"
	}
	logger.Infof(TypeApp, "Uploads stored in %s", conf.Uploads.Dir)
	return &UploadProvider{dir: conf.Uploads.Dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

func (p *UploadProvider) SaveBlob(data []byte, ext string) (string, error) {
	if ext == "" || !strings.HasPrefix(ext, ".") {
		ext = ".bin"
	}
	name := uuid.NewString() + ext
	if err := os.WriteFile(filepath.Join(p.dir, name), data, 0o644); err != nil {
		return "", err
	}
	return p.baseURL + "/" + name, nil
}
