package snapshot

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/vango-dev/inplace/internal/errors"
)

// Snapshot is the markup of a live structure and the state behind it.
type Snapshot struct {
	Meta
	Markup string
	State  map[string]any
}

// Meta describes a stored snapshot.
type Meta struct {
	ID        string    `json:"id" yaml:"id"`
	Name      string    `json:"name,omitempty" yaml:"name,omitempty"`
	CreatedAt time.Time `json:"createdAt" yaml:"createdAt"`
	Size      int       `json:"size" yaml:"size"`
}

// New creates a snapshot with a fresh id.
func New(name, markup string, state map[string]any) *Snapshot {
	return &Snapshot{
		Meta: Meta{
			ID:        uuid.NewString(),
			Name:      name,
			CreatedAt: time.Now().UTC().Truncate(time.Second),
			Size:      len(markup),
		},
		Markup: markup,
		State:  state,
	}
}

// Store persists snapshots.
type Store interface {
	// Save stores snap and returns its id.
	Save(ctx context.Context, snap *Snapshot) (string, error)

	// Load returns the snapshot with the given id.
	Load(ctx context.Context, id string) (*Snapshot, error)

	// List returns the metadata of every stored snapshot, oldest first.
	List(ctx context.Context) ([]Meta, error)
}

const (
	markupExt = ".html"
	metaExt   = ".yaml"
)

// document is the YAML form of a snapshot's metadata and state.
type document struct {
	Meta  `yaml:",inline"`
	State map[string]any `yaml:"state,omitempty"`
}

func prepare(snap *Snapshot) (*Snapshot, error) {
	if snap == nil {
		return nil, errors.New(errors.CodeSnapshotWrite).WithDetail("nil snapshot")
	}
	if snap.ID == "" {
		snap.ID = uuid.NewString()
	} else if _, err := uuid.Parse(snap.ID); err != nil {
		return nil, errors.New(errors.CodeSnapshotWrite).
			WithDetailf("invalid snapshot id %q", snap.ID).Wrap(err)
	}
	if snap.CreatedAt.IsZero() {
		snap.CreatedAt = time.Now().UTC().Truncate(time.Second)
	}
	snap.Size = len(snap.Markup)
	return snap, nil
}

func encodeMeta(snap *Snapshot) ([]byte, error) {
	data, err := yaml.Marshal(document{Meta: snap.Meta, State: snap.State})
	if err != nil {
		return nil, errors.New(errors.CodeSnapshotWrite).Wrap(err)
	}
	return data, nil
}

func decodeMeta(data []byte) (document, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return doc, errors.New(errors.CodeSnapshotNotFound).
			WithDetail("corrupt snapshot metadata").Wrap(err)
	}
	return doc, nil
}

// validID rejects ids that could escape the store's namespace.
func validID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return errors.New(errors.CodeSnapshotNotFound).WithDetailf("invalid snapshot id %q", id)
	}
	return nil
}

func sortMetas(metas []Meta) {
	sort.Slice(metas, func(i, j int) bool {
		if metas[i].CreatedAt.Equal(metas[j].CreatedAt) {
			return metas[i].ID < metas[j].ID
		}
		return metas[i].CreatedAt.Before(metas[j].CreatedAt)
	})
}
