package models

import "time"

// Paste is one captured clipboard payload
type Paste struct {
	ID         int64     `gorm:"column:id;primaryKey"`
	Value      []byte    `gorm:"column:value;type:blob;not null"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime:false"`
	LastUsedAt time.Time `gorm:"column:last_used_at"`
}

func (Paste) TableName() string {
	return "paste"
}

// PasteWithTags is a paste together with its tag names in seq_id order
type PasteWithTags struct {
	Paste

	Tags []string
}

// PasteOrder selects the timestamp column a paste listing is sorted by
type PasteOrder string

const (
	OrderByCreatedAt  PasteOrder = "created_at"
	OrderByLastUsedAt PasteOrder = "last_used_at"
)

// Valid reports whether o is a known ordering column.
func (o PasteOrder) Valid() bool {
	return o == OrderByCreatedAt || o == OrderByLastUsedAt
}
