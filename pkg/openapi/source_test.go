package openapi_test

import (
	"testing"

	"github.com/goliatone/go-formbind/pkg/openapi"
)

func TestSourceConstructors(t *testing.T) {
	cases := []struct {
		name     string
		source   openapi.Source
		kind     openapi.SourceKind
		location string
	}{
		{
			name:     "file paths are cleaned",
			source:   openapi.SourceFromFile("./specs//api.json"),
			kind:     openapi.SourceKindFile,
			location: "specs/api.json",
		},
		{
			name:     "fs names pass through",
			source:   openapi.SourceFromFS("specs/api.json"),
			kind:     openapi.SourceKindFS,
			location: "specs/api.json",
		},
		{
			name:     "urls pass through",
			source:   openapi.SourceFromURL("https://example.com/spec.json"),
			kind:     openapi.SourceKindURL,
			location: "https://example.com/spec.json",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.source.Kind(); got != tc.kind {
				t.Errorf("Kind() = %q, want %q", got, tc.kind)
			}
			if got := tc.source.Location(); got != tc.location {
				t.Errorf("Location() = %q, want %q", got, tc.location)
			}
		})
	}
}

func TestSourceFromURLRejectsBadInput(t *testing.T) {
	for _, raw := range []string{"", "not a url"} {
		t.Run(raw, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Errorf("SourceFromURL(%q) did not panic", raw)
				}
			}()
			openapi.SourceFromURL(raw)
		})
	}
}
