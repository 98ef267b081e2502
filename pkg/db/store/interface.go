package store

import (
	"context"
	"iter"

	"github.com/mwantia/pastebox/pkg/db/models"
)

// PasteStore defines the interface for paste store operations
type PasteStore interface {
	// Lifecycle
	Connect(ctx context.Context) error
	Close() error
	Migrate(ctx context.Context) error
	Health(ctx context.Context) error

	// Paste operations
	CreatePaste(ctx context.Context, value []byte) (int64, error)
	GetPaste(ctx context.Context, id int64) (*models.Paste, error)
	FindPasteByValue(ctx context.Context, value []byte) (*models.Paste, error)
	TouchPaste(ctx context.Context, id int64) error
	UpdatePaste(ctx context.Context, id int64, value []byte) error
	ListPastes(ctx context.Context, opts ListOptions) iter.Seq2[models.Paste, error]
	SearchPastes(ctx context.Context, query string, opts ListOptions) iter.Seq2[models.Paste, error]
	DeletePaste(ctx context.Context, id int64) error
	CapturePaste(ctx context.Context, value []byte, names []string, reuse bool) (int64, bool, error)
	ReplacePaste(ctx context.Context, id int64, value []byte, names []string) error

	// Tag operations
	GetOrCreateTag(ctx context.Context, name string) (int64, error)
	GetTag(ctx context.Context, id int64) (*models.Tag, error)
	FindTagByName(ctx context.Context, name string) (*models.Tag, error)
	ListTags(ctx context.Context) ([]models.Tag, error)
	ListTagsForPaste(ctx context.Context, pasteID int64) ([]models.Tag, error)
	TagNamesForPastes(ctx context.Context, pasteIDs []int64) (map[int64][]string, error)
	DeleteTag(ctx context.Context, id int64) error
	PruneOrphanTags(ctx context.Context) (int64, error)

	// Association operations
	AttachTag(ctx context.Context, pasteID, tagID int64) error
	DetachTag(ctx context.Context, pasteID, tagID int64) error
	ReorderTags(ctx context.Context, pasteID int64, tagIDs []int64) error
	SetTags(ctx context.Context, pasteID int64, tagIDs []int64) error
}

// ListOptions controls ordering and paging of paste listings. A zero Limit
// means no limit.
type ListOptions struct {
	OrderBy    models.PasteOrder
	Descending bool
	Limit      int
	Offset     int
}
