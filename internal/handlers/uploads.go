package handlers

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"github.com/satwikgupta/backend-project/internal/media"
)

const maxUploadMemory = 32 << 20

// spoolUploads parses the multipart form, spools every received file to the
// temp directory, and validates the set against the endpoint's descriptor.
// The returned cleanup removes any spooled files still on disk; it is safe
// to call after successful uploads.
func spoolUploads(r *http.Request, tempDir string, d media.Descriptor) (map[string][]media.FileRef, func(), error) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", media.ErrInvalidUpload, err)
	}

	var spooled []string
	cleanup := func() {
		for _, path := range spooled {
			_ = os.Remove(path)
		}
	}

	files := make(map[string][]media.FileRef)
	if r.MultipartForm != nil {
		for field, headers := range r.MultipartForm.File {
			for _, header := range headers {
				ref, err := spoolFile(header, tempDir)
				if err != nil {
					cleanup()
					return nil, nil, err
				}
				spooled = append(spooled, ref.Path)
				files[field] = append(files[field], ref)
			}
		}
	}

	accepted, err := d.Validate(files)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	return accepted, cleanup, nil
}

func spoolFile(header *multipart.FileHeader, tempDir string) (media.FileRef, error) {
	src, err := header.Open()
	if err != nil {
		return media.FileRef{}, fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	dst, err := os.CreateTemp(tempDir, "upload-*"+filepath.Ext(header.Filename))
	if err != nil {
		return media.FileRef{}, fmt.Errorf("spool upload: %w", err)
	}
	defer dst.Close()

	size, err := io.Copy(dst, src)
	if err != nil {
		_ = os.Remove(dst.Name())
		return media.FileRef{}, fmt.Errorf("spool upload: %w", err)
	}

	return media.FileRef{Path: dst.Name(), Size: size}, nil
}
