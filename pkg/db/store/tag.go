package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/mwantia/pastebox/pkg/db/models"
)

// Tag operations

// GetOrCreateTag returns the id of the tag named name, creating it when
// missing. Concurrent callers racing on the same new name all receive the id
// of the single row the unique constraint lets through.
func (s *SQLiteStore) GetOrCreateTag(ctx context.Context, name string) (int64, error) {
	if len(name) == 0 {
		return 0, fmt.Errorf("%w: tag name must not be empty", ErrValidation)
	}

	existing, err := s.FindTagByName(ctx, name)
	if err == nil {
		return existing.ID, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return 0, err
	}

	tag := models.Tag{
		Name:      name,
		CreatedAt: s.now(),
	}
	err = s.run(ctx, "create tag", func(db *gorm.DB) error {
		return db.Create(&tag).Error
	})
	if err == nil {
		return tag.ID, nil
	}
	if !isUniqueViolation(err) {
		if isCheckViolation(err) {
			return 0, fmt.Errorf("%w: %v", ErrValidation, err)
		}
		return 0, err
	}

	s.log.Debug("Tag '%s' was created concurrently, resolving existing row", name)

	existing, err = s.FindTagByName(ctx, name)
	if err != nil {
		return 0, err
	}
	return existing.ID, nil
}

func (s *SQLiteStore) GetTag(ctx context.Context, id int64) (*models.Tag, error) {
	var tag models.Tag
	err := s.run(ctx, "get tag", func(db *gorm.DB) error {
		return db.Where("id = ?", id).First(&tag).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: tag %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &tag, nil
}

// FindTagByName looks a tag up by exact, case-sensitive name.
func (s *SQLiteStore) FindTagByName(ctx context.Context, name string) (*models.Tag, error) {
	var tag models.Tag
	err := s.run(ctx, "find tag", func(db *gorm.DB) error {
		return db.Where("name = ?", name).First(&tag).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: tag '%s'", ErrNotFound, name)
	}
	if err != nil {
		return nil, err
	}
	return &tag, nil
}

// ListTags returns every tag ordered by name.
func (s *SQLiteStore) ListTags(ctx context.Context) ([]models.Tag, error) {
	var tags []models.Tag
	err := s.run(ctx, "list tags", func(db *gorm.DB) error {
		return db.Order("name ASC").Find(&tags).Error
	})
	return tags, err
}

// ListTagsForPaste returns the tags of a paste in ascending seq_id order.
func (s *SQLiteStore) ListTagsForPaste(ctx context.Context, pasteID int64) ([]models.Tag, error) {
	var tags []models.Tag
	err := s.transaction(ctx, "list paste tags", func(tx *gorm.DB) error {
		ok, err := exists(tx, &models.Paste{}, pasteID)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: paste %d", ErrNotFound, pasteID)
		}

		return tx.Model(&models.Tag{}).
			Select("tag.*").
			Joins("JOIN paste_tag ON paste_tag.tag_id = tag.id").
			Where("paste_tag.paste_id = ?", pasteID).
			Order("paste_tag.seq_id ASC, tag.id ASC").
			Find(&tags).Error
	})
	if err != nil {
		return nil, err
	}
	return tags, nil
}

// tagNameChunk bounds the ids bound into a single IN list, far below
// SQLite's host parameter limit.
const tagNameChunk = 500

// TagNamesForPastes returns the ordered tag names of each given paste.
// Pastes without tags are absent from the result.
func (s *SQLiteStore) TagNamesForPastes(ctx context.Context, pasteIDs []int64) (map[int64][]string, error) {
	result := make(map[int64][]string, len(pasteIDs))

	for start := 0; start < len(pasteIDs); start += tagNameChunk {
		chunk := pasteIDs[start:min(start+tagNameChunk, len(pasteIDs))]

		var rows []struct {
			PasteID int64
			Name    string
		}
		err := s.run(ctx, "list tag names", func(db *gorm.DB) error {
			return db.Model(&models.PasteTag{}).
				Select("paste_tag.paste_id AS paste_id, tag.name AS name").
				Joins("JOIN tag ON tag.id = paste_tag.tag_id").
				Where("paste_tag.paste_id IN ?", chunk).
				Order("paste_tag.paste_id ASC, paste_tag.seq_id ASC, tag.id ASC").
				Scan(&rows).Error
		})
		if err != nil {
			return nil, err
		}

		for _, row := range rows {
			result[row.PasteID] = append(result[row.PasteID], row.Name)
		}
	}
	return result, nil
}

// DeleteTag removes a tag; it disappears from every paste by cascade.
func (s *SQLiteStore) DeleteTag(ctx context.Context, id int64) error {
	var affected int64
	err := s.run(ctx, "delete tag", func(db *gorm.DB) error {
		result := db.Where("id = ?", id).Delete(&models.Tag{})
		affected = result.RowsAffected
		return result.Error
	})
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%w: tag %d", ErrNotFound, id)
	}
	return nil
}

// PruneOrphanTags deletes tags no longer attached to any paste.
func (s *SQLiteStore) PruneOrphanTags(ctx context.Context) (int64, error) {
	var affected int64
	err := s.run(ctx, "prune tags", func(db *gorm.DB) error {
		result := db.Where("id NOT IN (SELECT tag_id FROM paste_tag)").Delete(&models.Tag{})
		affected = result.RowsAffected
		return result.Error
	})
	return affected, err
}
