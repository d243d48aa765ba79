// Package qsource adapts externally scraped interview material into raw
// question batches. Scraping itself happens outside the pipeline; these
// sources only read what a scraper already produced.
package qsource

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/AlexOliinyk1/careerintel/pkg/question"
)

// Source yields one batch of raw questions per fetch.
type Source interface {
	Name() string
	Fetch(ctx context.Context) ([]question.Raw, error)
}

// File reads a JSON array of raw questions, the hand-off format external
// scrapers write.
type File struct {
	name string
	path string
}

// NewFile creates a file source. The name attributes questions that carry
// no source of their own.
func NewFile(name, path string) *File {
	if name == "" {
		name = "file"
	}
	return &File{name: name, path: path}
}

func (f *File) Name() string { return f.name }

// Fetch reads the whole batch.
func (f *File) Fetch(ctx context.Context) ([]question.Raw, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("read batch %s: %w", f.path, err)
	}

	var raws []question.Raw
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, fmt.Errorf("parse batch %s: %w", f.path, err)
	}

	for i := range raws {
		if raws[i].Source == "" {
			raws[i].Source = f.name
		}
	}
	return raws, nil
}
