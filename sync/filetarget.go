// ABOUTME: File-backed target adapter writing linked records to a JSON export
// ABOUTME: The write side of cross-system linking for file-based systems
package sync

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	gosync "sync"

	"github.com/google/uuid"
)

// FileTarget is a Target over a JSON export on disk: creates append new
// records, patches update fields in place. The whole file is rewritten on
// each write, serialized by a mutex, so one FileTarget instance must own
// its path.
type FileTarget struct {
	Path       string
	SystemName string

	mu gosync.Mutex
}

// NewFileTarget creates a file target over the given export.
func NewFileTarget(path, systemName string) *FileTarget {
	return &FileTarget{Path: path, SystemName: systemName}
}

func (f *FileTarget) Name() string {
	return f.SystemName
}

func (f *FileTarget) load() ([]fileRecord, error) {
	data, err := os.ReadFile(f.Path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read target export %s: %w", f.Path, err)
	}

	var records []fileRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse target export %s: %w", f.Path, err)
	}
	return records, nil
}

func (f *FileTarget) save(records []fileRecord) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode target export: %w", err)
	}
	if err := os.WriteFile(f.Path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write target export %s: %w", f.Path, err)
	}
	return nil
}

// Create appends a new record and returns its generated id.
func (f *FileTarget) Create(ctx context.Context, fields map[string]string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	records, err := f.load()
	if err != nil {
		return "", err
	}

	id := uuid.New().String()
	records = append(records, fileRecord{ID: id, Fields: fields})
	if err := f.save(records); err != nil {
		return "", err
	}
	return id, nil
}

// Patch merges updates into the record with the given id. Patching an id
// that does not exist is an error, not an upsert.
func (f *FileTarget) Patch(ctx context.Context, remoteID string, updates map[string]string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	records, err := f.load()
	if err != nil {
		return err
	}

	for i := range records {
		if records[i].ID != remoteID {
			continue
		}
		if records[i].Fields == nil {
			records[i].Fields = make(map[string]string)
		}
		for field, value := range updates {
			records[i].Fields[field] = value
		}
		return f.save(records)
	}

	return fmt.Errorf("target record %s: %w", remoteID, ErrNotFound)
}
