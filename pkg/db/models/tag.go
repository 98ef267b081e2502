package models

import "time"

// Tag is a named label, unique by name
type Tag struct {
	ID        int64     `gorm:"column:id;primaryKey"`
	Name      string    `gorm:"column:name;type:text;not null;uniqueIndex"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime:false"`
}

func (Tag) TableName() string {
	return "tag"
}

// PasteTag links a paste to a tag; SeqID ranks the tag within the paste
type PasteTag struct {
	PasteID int64 `gorm:"column:paste_id;primaryKey;autoIncrement:false"`
	TagID   int64 `gorm:"column:tag_id;primaryKey;autoIncrement:false"`
	SeqID   int64 `gorm:"column:seq_id;not null"`
}

func (PasteTag) TableName() string {
	return "paste_tag"
}
