package media

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/rpypty/galleria/internal/domain/storage"
	"github.com/rpypty/galleria/pkg/logger"
)

// Service proxies file bytes from the external store. store may be nil
// when no storage backend is configured.
type Service struct {
	store storage.Client
	log   logger.Logger
}

func NewService(store storage.Client, log logger.Logger) *Service {
	return &Service{store: store, log: log}
}

func (s *Service) Available() bool {
	return s.store != nil
}

// Download fetches the full byte content of one upstream file.
func (s *Service) Download(ctx context.Context, fileID string) ([]byte, error) {
	if s.store == nil {
		return nil, ErrUnavailable
	}
	data, err := s.store.Download(ctx, fileID)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", fileID, err)
	}
	return data, nil
}

// BuildZip fetches each file and assembles an in-memory zip archive.
// A file that fails to download or turns out empty is logged and
// skipped; one bad file does not abort the batch. Entry names come from
// the upstream stored name with a fallback of image_<fileID>.jpg, and
// duplicates get a " (n)" suffix before the extension. When not a
// single file made it into the archive, ErrNoContent is returned.
func (s *Service) BuildZip(ctx context.Context, fileIDs []string) ([]byte, error) {
	if s.store == nil {
		return nil, ErrUnavailable
	}

	var buffer bytes.Buffer
	archive := zip.NewWriter(&buffer)
	seen := make(map[string]int, len(fileIDs))
	included := 0

	for _, fileID := range fileIDs {
		data, err := s.store.Download(ctx, fileID)
		if err != nil {
			s.log.BusinessError("media: skipping file in zip batch", err, "file_id", fileID)
			continue
		}
		if len(data) == 0 {
			s.log.Warn("media: skipping empty file in zip batch", "file_id", fileID)
			continue
		}

		name, err := s.store.FileName(ctx, fileID)
		if err != nil || strings.TrimSpace(name) == "" {
			name = "image_" + fileID + ".jpg"
		}

		entry, err := archive.Create(uniqueName(seen, name))
		if err != nil {
			s.log.InternalError("media: create zip entry failed", err, "file_id", fileID)
			continue
		}
		if _, err := entry.Write(data); err != nil {
			return nil, fmt.Errorf("write zip entry for %s: %w", fileID, err)
		}
		included++
	}

	if err := archive.Close(); err != nil {
		return nil, fmt.Errorf("close zip archive: %w", err)
	}
	if included == 0 {
		return nil, ErrNoContent
	}

	s.log.Info("media: zip batch assembled", "requested", len(fileIDs), "included", included)
	return buffer.Bytes(), nil
}

// uniqueName returns name unchanged on first sight and "name (n)" for
// repeats, keeping the extension in place.
func uniqueName(seen map[string]int, name string) string {
	count := seen[name]
	seen[name] = count + 1
	if count == 0 {
		return name
	}
	ext := path.Ext(name)
	return fmt.Sprintf("%s (%d)%s", strings.TrimSuffix(name, ext), count, ext)
}
