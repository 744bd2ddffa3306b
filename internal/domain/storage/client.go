package storage

import "context"

// FolderMimeType is the type marker the upstream store uses for folders.
const FolderMimeType = "application/vnd.google-apps.folder"

// File is the minimal descriptor of an upstream file.
type File struct {
	ID       string
	Name     string
	MimeType string
}

// ChildPage is one page of a folder's children. An empty NextPageToken
// means the listing is complete.
type ChildPage struct {
	Files         []File
	NextPageToken string
}

// Client is the narrow capability surface the crawler and the media
// proxy need from the external store. Implementations must honor the
// passed context for cancellation and timeouts.
type Client interface {
	ListChildren(ctx context.Context, folderID, pageToken string) (ChildPage, error)
	Download(ctx context.Context, fileID string) ([]byte, error)
	FileName(ctx context.Context, fileID string) (string, error)
}

var imageMimePrefixes = []string{
	"image/jpeg",
	"image/png",
	"image/gif",
	"image/webp",
	"image/bmp",
	"image/tiff",
	"image/svg+xml",
}

// IsImage reports whether a MIME type belongs to the recognized image
// formats. Matching is by prefix, so parameterized types like
// "image/jpeg; charset=binary" are accepted too.
func IsImage(mimeType string) bool {
	for _, prefix := range imageMimePrefixes {
		if len(mimeType) >= len(prefix) && mimeType[:len(prefix)] == prefix {
			return true
		}
	}
	return false
}
