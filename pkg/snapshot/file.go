package snapshot

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/vango-dev/inplace/internal/errors"
)

// FileStore stores snapshots in a local directory.
type FileStore struct {
	dir string
}

// NewFileStore creates a FileStore, creating dir if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.New(errors.CodeSnapshotWrite).Wrap(err)
	}
	return &FileStore{dir: dir}, nil
}

// Dir returns the store directory.
func (s *FileStore) Dir() string { return s.dir }

// Save writes the markup and metadata files of snap.
func (s *FileStore) Save(_ context.Context, snap *Snapshot) (string, error) {
	snap, err := prepare(snap)
	if err != nil {
		return "", err
	}
	meta, err := encodeMeta(snap)
	if err != nil {
		return "", err
	}

	markupPath := filepath.Join(s.dir, snap.ID+markupExt)
	if err := os.WriteFile(markupPath, []byte(snap.Markup), 0644); err != nil {
		return "", errors.New(errors.CodeSnapshotWrite).Wrap(err)
	}
	if err := os.WriteFile(filepath.Join(s.dir, snap.ID+metaExt), meta, 0644); err != nil {
		os.Remove(markupPath)
		return "", errors.New(errors.CodeSnapshotWrite).Wrap(err)
	}
	return snap.ID, nil
}

// Load reads the snapshot with the given id.
func (s *FileStore) Load(_ context.Context, id string) (*Snapshot, error) {
	if err := validID(id); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(s.dir, id+metaExt))
	if err != nil {
		return nil, errors.New(errors.CodeSnapshotNotFound).WithDetailf("snapshot %s", id).Wrap(err)
	}
	doc, err := decodeMeta(data)
	if err != nil {
		return nil, err
	}
	markup, err := os.ReadFile(filepath.Join(s.dir, id+markupExt))
	if err != nil {
		return nil, errors.New(errors.CodeSnapshotNotFound).WithDetailf("snapshot %s markup", id).Wrap(err)
	}
	return &Snapshot{Meta: doc.Meta, Markup: string(markup), State: doc.State}, nil
}

// List returns the metadata of every snapshot in the directory.
func (s *FileStore) List(_ context.Context) ([]Meta, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, errors.New(errors.CodeSnapshotNotFound).Wrap(err)
	}
	var metas []Meta
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, metaExt) {
			continue
		}
		if validID(strings.TrimSuffix(name, metaExt)) != nil {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.dir, name))
		if err != nil {
			continue
		}
		doc, err := decodeMeta(data)
		if err != nil {
			continue
		}
		metas = append(metas, doc.Meta)
	}
	sortMetas(metas)
	return metas, nil
}
