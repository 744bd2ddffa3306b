// Package drive implements the storage.Client capability interface on
// top of the Google Drive v3 API using a service-account credentials
// file with read-only scope.
package drive

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rpypty/galleria/internal/config"
	"github.com/rpypty/galleria/internal/domain/storage"
	driveapi "google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

const (
	defaultCallTimeout = 30 * time.Second
	defaultPageSize    = 100
	listFields         = "nextPageToken, files(id, name, mimeType)"
)

type Client struct {
	service  *driveapi.Service
	timeout  time.Duration
	pageSize int64
}

func NewClient(ctx context.Context, cfg config.DriveConfig) (*Client, error) {
	service, err := driveapi.NewService(ctx,
		option.WithCredentialsFile(cfg.CredentialsPath),
		option.WithScopes(driveapi.DriveReadonlyScope),
		option.WithUserAgent(cfg.ApplicationName),
	)
	if err != nil {
		return nil, fmt.Errorf("init drive service: %w", err)
	}

	timeout := cfg.CallTimeout
	if timeout <= 0 {
		timeout = defaultCallTimeout
	}
	pageSize := int64(cfg.PageSize)
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}

	return &Client{service: service, timeout: timeout, pageSize: pageSize}, nil
}

func (c *Client) ListChildren(ctx context.Context, folderID, pageToken string) (storage.ChildPage, error) {
	ctx, cancel := c.callContext(ctx)
	defer cancel()

	call := c.service.Files.List().
		Q(fmt.Sprintf("'%s' in parents and trashed=false", folderID)).
		Fields(listFields).
		PageSize(c.pageSize).
		Context(ctx)
	if pageToken != "" {
		call = call.PageToken(pageToken)
	}

	result, err := call.Do()
	if err != nil {
		return storage.ChildPage{}, fmt.Errorf("list folder %s: %w", folderID, err)
	}

	files := make([]storage.File, 0, len(result.Files))
	for _, file := range result.Files {
		files = append(files, storage.File{
			ID:       file.Id,
			Name:     file.Name,
			MimeType: file.MimeType,
		})
	}

	return storage.ChildPage{
		Files:         files,
		NextPageToken: result.NextPageToken,
	}, nil
}

func (c *Client) Download(ctx context.Context, fileID string) ([]byte, error) {
	ctx, cancel := c.callContext(ctx)
	defer cancel()

	response, err := c.service.Files.Get(fileID).Context(ctx).Download()
	if err != nil {
		return nil, fmt.Errorf("download file %s: %w", fileID, err)
	}
	defer response.Body.Close()

	data, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, fmt.Errorf("read file %s: %w", fileID, err)
	}
	return data, nil
}

func (c *Client) FileName(ctx context.Context, fileID string) (string, error) {
	ctx, cancel := c.callContext(ctx)
	defer cancel()

	file, err := c.service.Files.Get(fileID).Fields("name").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("get file name %s: %w", fileID, err)
	}
	return file.Name, nil
}

func (c *Client) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, c.timeout)
}
