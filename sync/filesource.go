// ABOUTME: File-backed source adapter reading records from a JSON export
// ABOUTME: Used for fixture-driven jobs and local testing of full passes
package sync

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
)

// FileSource serves records from a JSON export on disk. The file holds an
// array of objects with "id" and "fields" keys. The file is re-read on every
// page so an updated export is picked up by the next pass without a restart.
type FileSource struct {
	Path       string
	SourceName string
	PageSize   int
}

// NewFileSource creates a file source over the given export.
func NewFileSource(path, sourceName string) *FileSource {
	return &FileSource{Path: path, SourceName: sourceName, PageSize: 100}
}

func (f *FileSource) Name() string {
	return f.SourceName
}

type fileRecord struct {
	ID     string            `json:"id"`
	Fields map[string]string `json:"fields"`
}

func (f *FileSource) load() ([]RemoteRecord, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read source export %s: %w", f.Path, err)
	}

	var raw []fileRecord
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse source export %s: %w", f.Path, err)
	}

	records := make([]RemoteRecord, 0, len(raw))
	for _, r := range raw {
		encoded, err := json.Marshal(r)
		if err != nil {
			return nil, fmt.Errorf("failed to encode record %s: %w", r.ID, err)
		}
		records = append(records, RemoteRecord{ID: r.ID, Fields: r.Fields, Raw: encoded})
	}
	return records, nil
}

// FetchPage pages through the export. The page token is the offset of the
// next record, empty when exhausted.
func (f *FileSource) FetchPage(ctx context.Context, pageToken string) ([]RemoteRecord, string, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}

	records, err := f.load()
	if err != nil {
		return nil, "", err
	}

	offset := 0
	if pageToken != "" {
		offset, err = strconv.Atoi(pageToken)
		if err != nil {
			return nil, "", fmt.Errorf("invalid page token %q: %w", pageToken, err)
		}
	}
	if offset >= len(records) {
		return nil, "", nil
	}

	size := f.PageSize
	if size <= 0 {
		size = 100
	}
	end := offset + size
	next := ""
	if end < len(records) {
		next = strconv.Itoa(end)
	} else {
		end = len(records)
	}

	return records[offset:end], next, nil
}

// FetchByID returns the record with the given id, or nil when absent.
func (f *FileSource) FetchByID(ctx context.Context, remoteID string) (*RemoteRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	records, err := f.load()
	if err != nil {
		return nil, err
	}
	for i := range records {
		if records[i].ID == remoteID {
			return &records[i], nil
		}
	}
	return nil, nil
}
