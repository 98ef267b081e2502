package store

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"strings"

	"gorm.io/gorm"

	"github.com/mwantia/pastebox/pkg/db/models"
)

// Paste operations

func (s *SQLiteStore) CreatePaste(ctx context.Context, value []byte) (int64, error) {
	if len(value) == 0 {
		return 0, fmt.Errorf("%w: paste value must not be empty", ErrValidation)
	}

	now := s.now()
	paste := models.Paste{
		Value:      value,
		CreatedAt:  now,
		LastUsedAt: now,
	}

	err := s.run(ctx, "create paste", func(db *gorm.DB) error {
		return db.Create(&paste).Error
	})
	if err != nil {
		if isCheckViolation(err) {
			return 0, fmt.Errorf("%w: %v", ErrValidation, err)
		}
		return 0, err
	}

	return paste.ID, nil
}

func (s *SQLiteStore) GetPaste(ctx context.Context, id int64) (*models.Paste, error) {
	var paste models.Paste
	err := s.run(ctx, "get paste", func(db *gorm.DB) error {
		return db.Where("id = ?", id).First(&paste).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: paste %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &paste, nil
}

// FindPasteByValue returns the most recently used paste with exactly value.
func (s *SQLiteStore) FindPasteByValue(ctx context.Context, value []byte) (*models.Paste, error) {
	if len(value) == 0 {
		return nil, fmt.Errorf("%w: paste value must not be empty", ErrValidation)
	}

	var paste models.Paste
	err := s.run(ctx, "find paste", func(db *gorm.DB) error {
		return db.Where("value = ?", value).
			Order("last_used_at DESC, id DESC").
			First(&paste).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: paste with matching value", ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &paste, nil
}

func (s *SQLiteStore) TouchPaste(ctx context.Context, id int64) error {
	now := s.now()

	var affected int64
	err := s.run(ctx, "touch paste", func(db *gorm.DB) error {
		result := db.Model(&models.Paste{}).Where("id = ?", id).Update("last_used_at", now)
		affected = result.RowsAffected
		return result.Error
	})
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%w: paste %d", ErrNotFound, id)
	}
	return nil
}

// UpdatePaste replaces the content of a paste. Timestamps are left untouched.
func (s *SQLiteStore) UpdatePaste(ctx context.Context, id int64, value []byte) error {
	if len(value) == 0 {
		return fmt.Errorf("%w: paste value must not be empty", ErrValidation)
	}

	var affected int64
	err := s.run(ctx, "update paste", func(db *gorm.DB) error {
		result := db.Model(&models.Paste{}).Where("id = ?", id).Update("value", value)
		affected = result.RowsAffected
		return result.Error
	})
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%w: paste %d", ErrNotFound, id)
	}
	return nil
}

// DeletePaste removes a paste; its associations are removed by cascade.
func (s *SQLiteStore) DeletePaste(ctx context.Context, id int64) error {
	var affected int64
	err := s.run(ctx, "delete paste", func(db *gorm.DB) error {
		result := db.Where("id = ?", id).Delete(&models.Paste{})
		affected = result.RowsAffected
		return result.Error
	})
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%w: paste %d", ErrNotFound, id)
	}
	return nil
}

// ListPastes returns a lazy sequence over all pastes. Every range over the
// sequence queries the store again, page by page.
func (s *SQLiteStore) ListPastes(ctx context.Context, opts ListOptions) iter.Seq2[models.Paste, error] {
	return s.pastes(ctx, "list pastes", opts, func(db *gorm.DB) *gorm.DB {
		return db
	})
}

// SearchPastes is ListPastes restricted to pastes whose content or any
// attached tag name contains query. An empty query matches everything.
// Without an explicit order the most recently used pastes come first.
func (s *SQLiteStore) SearchPastes(ctx context.Context, query string, opts ListOptions) iter.Seq2[models.Paste, error] {
	if opts.OrderBy == "" {
		opts.OrderBy = models.OrderByLastUsedAt
		opts.Descending = true
	}

	if query == "" {
		return s.ListPastes(ctx, opts)
	}

	pattern := "%" + escapeLike(query) + "%"
	return s.pastes(ctx, "search pastes", opts, func(db *gorm.DB) *gorm.DB {
		return db.Where(`CAST(paste.value AS TEXT) LIKE ? ESCAPE '\' OR EXISTS (
			SELECT 1 FROM paste_tag
			JOIN tag ON tag.id = paste_tag.tag_id
			WHERE paste_tag.paste_id = paste.id AND tag.name LIKE ? ESCAPE '\')`, pattern, pattern)
	})
}

func (s *SQLiteStore) pastes(ctx context.Context, op string, opts ListOptions, filter func(*gorm.DB) *gorm.DB) iter.Seq2[models.Paste, error] {
	return func(yield func(models.Paste, error) bool) {
		order, err := opts.orderClause()
		if err != nil {
			yield(models.Paste{}, err)
			return
		}

		offset := opts.Offset
		remaining := opts.Limit

		for {
			size := s.cfg.PageSize
			if remaining > 0 && remaining < size {
				size = remaining
			}

			var page []models.Paste
			err := s.run(ctx, op, func(db *gorm.DB) error {
				return filter(db.Model(&models.Paste{})).
					Order(order).
					Limit(size).
					Offset(offset).
					Find(&page).Error
			})
			if err != nil {
				yield(models.Paste{}, err)
				return
			}

			for _, paste := range page {
				if !yield(paste, nil) {
					return
				}
			}

			if len(page) < size {
				return
			}

			offset += len(page)
			if remaining > 0 {
				remaining -= len(page)
				if remaining == 0 {
					return
				}
			}
		}
	}
}

func (opts ListOptions) orderClause() (string, error) {
	if opts.Limit < 0 || opts.Offset < 0 {
		return "", fmt.Errorf("%w: limit and offset must not be negative", ErrValidation)
	}

	column := opts.OrderBy
	if column == "" {
		column = models.OrderByCreatedAt
	}
	if !column.Valid() {
		return "", fmt.Errorf("%w: unknown paste ordering '%s'", ErrValidation, column)
	}

	direction := "ASC"
	if opts.Descending {
		direction = "DESC"
	}
	return fmt.Sprintf("paste.%s %s, paste.id %s", column, direction, direction), nil
}

// CollectPastes drains seq into a slice, stopping at the first error.
func CollectPastes(seq iter.Seq2[models.Paste, error]) ([]models.Paste, error) {
	var pastes []models.Paste
	for paste, err := range seq {
		if err != nil {
			return nil, err
		}
		pastes = append(pastes, paste)
	}
	return pastes, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// CapturePaste stores value and appends the named tags in one transaction,
// creating missing tags. With reuse set, the most recently used paste holding
// exactly value is touched instead of storing a copy, and only names it does
// not carry yet are appended. The second result reports reuse.
func (s *SQLiteStore) CapturePaste(ctx context.Context, value []byte, names []string, reuse bool) (int64, bool, error) {
	if len(value) == 0 {
		return 0, false, fmt.Errorf("%w: paste value must not be empty", ErrValidation)
	}
	if err := requireNames(names); err != nil {
		return 0, false, err
	}

	now := s.now()

	var id int64
	var reused bool
	err := s.transaction(ctx, "capture paste", func(tx *gorm.DB) error {
		id, reused = 0, false

		if reuse {
			var existing models.Paste
			err := tx.Where("value = ?", value).Order("last_used_at DESC, id DESC").First(&existing).Error
			switch {
			case err == nil:
				id, reused = existing.ID, true
				if err := tx.Model(&models.Paste{}).Where("id = ?", id).Update("last_used_at", now).Error; err != nil {
					return err
				}
			case !errors.Is(err, gorm.ErrRecordNotFound):
				return err
			}
		}

		if !reused {
			paste := models.Paste{Value: value, CreatedAt: now, LastUsedAt: now}
			if err := tx.Create(&paste).Error; err != nil {
				return err
			}
			id = paste.ID
		}

		tagIDs, err := tagIDsByName(tx, names, now)
		if err != nil {
			return err
		}
		return appendTags(tx, id, tagIDs)
	})
	if err != nil {
		if isCheckViolation(err) {
			return 0, false, fmt.Errorf("%w: %v", ErrValidation, err)
		}
		return 0, false, err
	}

	return id, reused, nil
}

// ReplacePaste replaces the content and the whole ordered tag list of a paste
// in one transaction, creating missing tags.
func (s *SQLiteStore) ReplacePaste(ctx context.Context, id int64, value []byte, names []string) error {
	if len(value) == 0 {
		return fmt.Errorf("%w: paste value must not be empty", ErrValidation)
	}
	if err := requireNames(names); err != nil {
		return err
	}
	if err := requireDistinctNames(names); err != nil {
		return err
	}

	now := s.now()
	err := s.transaction(ctx, "replace paste", func(tx *gorm.DB) error {
		result := tx.Model(&models.Paste{}).Where("id = ?", id).Update("value", value)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("%w: paste %d", ErrNotFound, id)
		}

		tagIDs, err := tagIDsByName(tx, names, now)
		if err != nil {
			return err
		}

		if err := tx.Where("paste_id = ?", id).Delete(&models.PasteTag{}).Error; err != nil {
			return err
		}
		return appendTags(tx, id, tagIDs)
	})
	if err != nil && isCheckViolation(err) {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return err
}
