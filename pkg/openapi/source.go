package openapi

import (
	"fmt"
	"net/url"
	"path/filepath"
)

// source is the one concrete Source implementation; the kind tells the
// loader which modality to use and the location is whatever that modality
// needs (a cleaned path, an fs.FS entry name, or a raw URL).
type source struct {
	kind     SourceKind
	location string
}

func (s source) Kind() SourceKind { return s.kind }

func (s source) Location() string { return s.location }

// SourceFromFile describes an OpenAPI document on disk.
func SourceFromFile(path string) Source {
	return source{kind: SourceKindFile, location: filepath.Clean(path)}
}

// SourceFromFS describes a document addressed by name inside the loader's
// configured fs.FS.
func SourceFromFS(name string) Source {
	return source{kind: SourceKindFS, location: name}
}

// SourceFromURL describes a document served over HTTP(S). The URL is checked
// eagerly: sources are normally built from static configuration, so a bad
// URL panics rather than deferring the failure to load time.
func SourceFromURL(raw string) Source {
	if raw == "" {
		panic("openapi: empty URL source")
	}
	if _, err := url.ParseRequestURI(raw); err != nil {
		panic(fmt.Sprintf("openapi: invalid URL %q: %v", raw, err))
	}
	return source{kind: SourceKindURL, location: raw}
}
