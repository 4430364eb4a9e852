package internal

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/lychee-technology/nilability"
)

// RecordSource yields the raw record documents of one metadata snapshot.
type RecordSource interface {
	ReadDocuments(ctx context.Context) ([]RawDocument, error)
	Describe() string
}

// FileRecordSource reads one record document per *.json file in a directory.
type FileRecordSource struct {
	dir string
}

func NewFileRecordSource(dir string) *FileRecordSource {
	return &FileRecordSource{dir: dir}
}

func (s *FileRecordSource) Describe() string {
	return "file://" + s.dir
}

// ReadDocuments returns documents sorted by file name so loads are deterministic.
func (s *FileRecordSource) ReadDocuments(ctx context.Context) ([]RawDocument, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nilability.NewSnapshotNotFoundError(s.dir, err)
		}
		return nil, nilability.NewSourceUnavailableError(s.Describe(), fmt.Errorf("read schema dir: %w", err))
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	docs := make([]RawDocument, 0, len(names))
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		path := filepath.Join(s.dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, nilability.NewSourceUnavailableError(s.Describe(), fmt.Errorf("read record document %s: %w", path, err))
		}
		docs = append(docs, RawDocument{Source: path, Data: data})
	}
	return docs, nil
}
