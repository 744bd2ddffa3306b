package storage

import (
	"context"
	"fmt"
)

// frame tracks the crawl position inside one folder: the entries of the
// current page still to be scanned, and the token for the next page.
type frame struct {
	folderID  string
	pageToken string
	pending   []File
	fetched   bool
}

// ListImages walks the folder tree rooted at folderID and returns every
// image file found, depth-first: a subfolder encountered in a page is
// fully expanded before the remaining entries of that page are scanned.
// Folders and non-image MIME types are excluded. An empty folder yields
// an empty slice. Any upstream error aborts the whole crawl.
//
// The traversal uses an explicit stack so hierarchy depth is not bounded
// by the call stack. Cyclic parentage upstream is not detected; the store
// is trusted to be a tree.
func ListImages(ctx context.Context, client Client, folderID string) ([]File, error) {
	var images []File

	stack := []*frame{{folderID: folderID}}
	for len(stack) > 0 {
		top := stack[len(stack)-1]

		if len(top.pending) == 0 {
			if top.fetched && top.pageToken == "" {
				stack = stack[:len(stack)-1]
				continue
			}

			page, err := client.ListChildren(ctx, top.folderID, top.pageToken)
			if err != nil {
				return nil, fmt.Errorf("list children of %s: %w", top.folderID, err)
			}
			top.fetched = true
			top.pageToken = page.NextPageToken
			top.pending = page.Files
			continue
		}

		next := top.pending[0]
		top.pending = top.pending[1:]

		if next.MimeType == FolderMimeType {
			stack = append(stack, &frame{folderID: next.ID})
			continue
		}
		if IsImage(next.MimeType) {
			images = append(images, next)
		}
	}

	return images, nil
}
