// Package media abstracts the external hosting service that stores uploaded
// avatars, cover images, videos, and thumbnails.
package media

import (
	"context"
	"errors"
)

// ErrUploadFailed indicates the hosting service rejected or lost an upload.
var ErrUploadFailed = errors.New("media upload failed")

// Asset describes a stored media object. Duration is only populated for
// backends that can probe it and is otherwise zero.
type Asset struct {
	URL      string
	Size     int64
	Duration float64
}

// Store uploads local files to the hosting service and deletes them by URL.
type Store interface {
	Upload(ctx context.Context, localPath string) (Asset, error)
	DeleteByURL(ctx context.Context, url string) error
}
