package openapi

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// Loader reads OpenAPI documents from disk, an fs.FS or the embedded
// contract.
type Loader struct {
	fs fs.FS
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithFileSystem injects an fs.FS for SourceFromFS sources.
func WithFileSystem(files fs.FS) LoaderOption {
	return func(l *Loader) {
		l.fs = files
	}
}

// NewLoader returns a Loader.
func NewLoader(options ...LoaderOption) *Loader {
	l := &Loader{}
	for _, opt := range options {
		if opt != nil {
			opt(l)
		}
	}
	return l
}

// Load fetches a document from src.
func (l *Loader) Load(ctx context.Context, src Source) (Document, error) {
	if src == nil {
		return Document{}, errors.New("openapi loader: source is nil")
	}
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}

	var (
		data []byte
		err  error
	)
	switch src.Kind() {
	case SourceKindFile:
		data, err = os.ReadFile(src.Location())
	case SourceKindFS:
		if l.fs == nil {
			return Document{}, errors.New("openapi loader: no filesystem configured")
		}
		data, err = fs.ReadFile(l.fs, src.Location())
	case SourceKindEmbedded:
		if src.Location() != ContactLocation {
			return Document{}, fmt.Errorf("openapi loader: unknown embedded document %q", src.Location())
		}
		data = contactYAML
	default:
		err = fmt.Errorf("openapi loader: unsupported source kind %q", src.Kind())
	}
	if err != nil {
		return Document{}, fmt.Errorf("openapi loader: read %s: %w", src.Location(), err)
	}
	return NewDocument(src, data)
}
