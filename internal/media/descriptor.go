package media

import (
	"errors"
	"fmt"
)

// ErrInvalidUpload indicates a multipart request does not satisfy the
// endpoint's declared upload descriptor.
var ErrInvalidUpload = errors.New("invalid upload")

// FileRef points at a request file already spooled to local disk.
type FileRef struct {
	Path string
	Size int64
}

// FieldSpec declares the constraints for one upload field of an endpoint.
type FieldSpec struct {
	Name     string
	Required bool
	MaxCount int
}

// Descriptor declares every upload field an endpoint accepts. It is checked
// before any business logic runs, replacing ad-hoc optional-field access on
// the raw request.
type Descriptor struct {
	Fields []FieldSpec
}

// Validate checks the received files against the descriptor and returns the
// accepted subset keyed by field name. Unknown fields, missing required
// fields, and over-count fields are rejected.
func (d Descriptor) Validate(files map[string][]FileRef) (map[string][]FileRef, error) {
	specs := make(map[string]FieldSpec, len(d.Fields))
	for _, spec := range d.Fields {
		specs[spec.Name] = spec
	}

	for name := range files {
		if _, ok := specs[name]; !ok {
			return nil, fmt.Errorf("%w: unexpected field %q", ErrInvalidUpload, name)
		}
	}

	accepted := make(map[string][]FileRef, len(files))
	for _, spec := range d.Fields {
		received := files[spec.Name]
		if len(received) == 0 {
			if spec.Required {
				return nil, fmt.Errorf("%w: field %q is required", ErrInvalidUpload, spec.Name)
			}
			continue
		}

		maxCount := spec.MaxCount
		if maxCount == 0 {
			maxCount = 1
		}
		if len(received) > maxCount {
			return nil, fmt.Errorf("%w: field %q accepts at most %d file(s), got %d", ErrInvalidUpload, spec.Name, maxCount, len(received))
		}

		for _, ref := range received {
			if ref.Path == "" {
				return nil, fmt.Errorf("%w: field %q has no stored file", ErrInvalidUpload, spec.Name)
			}
		}
		accepted[spec.Name] = received
	}

	return accepted, nil
}

// First returns the single accepted file for a field, if present.
func First(files map[string][]FileRef, field string) (FileRef, bool) {
	refs := files[field]
	if len(refs) == 0 {
		return FileRef{}, false
	}
	return refs[0], true
}
