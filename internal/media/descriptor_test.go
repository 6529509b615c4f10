package media

import (
	"errors"
	"testing"
)

var registerDescriptor = Descriptor{Fields: []FieldSpec{
	{Name: "avatar", Required: true, MaxCount: 1},
	{Name: "coverImage", MaxCount: 1},
}}

func TestDescriptorValidateAccepts(t *testing.T) {
	files := map[string][]FileRef{
		"avatar":     {{Path: "/tmp/avatar.png", Size: 10}},
		"coverImage": {{Path: "/tmp/cover.png", Size: 20}},
	}

	accepted, err := registerDescriptor.Validate(files)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if len(accepted) != 2 {
		t.Fatalf("expected both fields accepted, got %+v", accepted)
	}

	ref, ok := First(accepted, "avatar")
	if !ok || ref.Path != "/tmp/avatar.png" {
		t.Fatalf("unexpected avatar ref: %+v", ref)
	}
}

func TestDescriptorValidateOptionalMayBeAbsent(t *testing.T) {
	accepted, err := registerDescriptor.Validate(map[string][]FileRef{
		"avatar": {{Path: "/tmp/avatar.png"}},
	})
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if _, ok := First(accepted, "coverImage"); ok {
		t.Fatal("coverImage should be absent")
	}
}

func TestDescriptorValidateRejects(t *testing.T) {
	cases := map[string]map[string][]FileRef{
		"missing required": {},
		"unknown field": {
			"avatar":  {{Path: "/tmp/a.png"}},
			"payload": {{Path: "/tmp/x.bin"}},
		},
		"too many files": {
			"avatar": {{Path: "/tmp/a.png"}, {Path: "/tmp/b.png"}},
		},
		"empty path": {
			"avatar": {{Path: ""}},
		},
	}

	for name, files := range cases {
		if _, err := registerDescriptor.Validate(files); !errors.Is(err, ErrInvalidUpload) {
			t.Fatalf("%s: expected ErrInvalidUpload, got %v", name, err)
		}
	}
}
