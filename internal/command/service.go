package command

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	config "github.com/mwantia/pastebox/internal/config/server"
	"github.com/mwantia/pastebox/pkg/db/models"
	"github.com/mwantia/pastebox/pkg/db/store"
	"github.com/mwantia/pastebox/pkg/log"
)

// Config controls the behavior layered on top of the store.
type Config struct {
	// Normalize trims and lower-cases tag names before they reach the store.
	Normalize bool
	// PruneOrphans removes tags left without pastes after a deletion or edit.
	PruneOrphans bool
	// Dedupe touches an identical existing paste instead of storing a copy.
	Dedupe bool
}

func ConfigFromServer(cfg *config.BaseServerConfig) Config {
	return Config{
		Normalize:    cfg.Tags.Normalize,
		PruneOrphans: cfg.Tags.PruneOrphans,
		Dedupe:       cfg.Capture.Dedupe,
	}
}

// Service is the command surface used by the shell, the capture watcher and
// the CLI. It holds no UI state.
type Service struct {
	Log log.LoggerService `fabric:"logger:command"`

	store store.PasteStore
	cfg   Config
}

func NewService(s store.PasteStore, cfg Config) *Service {
	return &Service{
		Log:   log.NewLoggerServiceWithWriter("command", config.LogServerConfig{Level: "ERROR"}, io.Discard),
		store: s,
		cfg:   cfg,
	}
}

// Capture stores content, trimmed of surrounding whitespace, and attaches
// tags in the given order in one store transaction. With Dedupe enabled an
// identical paste is touched and reused.
func (s *Service) Capture(ctx context.Context, content []byte, tags ...string) (int64, error) {
	names, err := s.tagNames(tags)
	if err != nil {
		return 0, err
	}

	content = bytes.TrimSpace(content)
	id, reused, err := s.store.CapturePaste(ctx, content, names, s.cfg.Dedupe)
	if err != nil {
		return 0, err
	}

	if reused {
		s.Log.Debug("Reused paste %d for identical content", id)
		return id, nil
	}

	s.Log.Debug("Captured paste %d (%d bytes, %d tags)", id, len(content), len(names))
	return id, nil
}

// Recall lists pastes with their tags. A non-empty filter matches content or
// tag names. Without an explicit order the most recently used come first.
func (s *Service) Recall(ctx context.Context, filter string, opts store.ListOptions) ([]models.PasteWithTags, error) {
	if opts.OrderBy == "" {
		opts.OrderBy = models.OrderByLastUsedAt
		opts.Descending = true
	}

	seq := s.store.ListPastes(ctx, opts)
	if filter != "" {
		seq = s.store.SearchPastes(ctx, filter, opts)
	}

	pastes, err := store.CollectPastes(seq)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(pastes))
	for _, p := range pastes {
		ids = append(ids, p.ID)
	}

	tags, err := s.store.TagNamesForPastes(ctx, ids)
	if err != nil {
		return nil, err
	}

	result := make([]models.PasteWithTags, 0, len(pastes))
	for _, p := range pastes {
		result = append(result, models.PasteWithTags{Paste: p, Tags: tags[p.ID]})
	}
	return result, nil
}

// Use marks a paste as used and returns it.
func (s *Service) Use(ctx context.Context, id int64) (*models.Paste, error) {
	if err := s.store.TouchPaste(ctx, id); err != nil {
		return nil, err
	}
	return s.store.GetPaste(ctx, id)
}

// Tag attaches the named tag, creating it if needed, and returns its id.
func (s *Service) Tag(ctx context.Context, pasteID int64, name string) (int64, error) {
	name, err := s.tagName(name)
	if err != nil {
		return 0, err
	}

	tagID, err := s.store.GetOrCreateTag(ctx, name)
	if err != nil {
		return 0, err
	}

	if err := s.store.AttachTag(ctx, pasteID, tagID); err != nil {
		return 0, err
	}
	return tagID, nil
}

func (s *Service) Untag(ctx context.Context, pasteID int64, name string) error {
	name, err := s.tagName(name)
	if err != nil {
		return err
	}

	tag, err := s.store.FindTagByName(ctx, name)
	if err != nil {
		return err
	}
	return s.store.DetachTag(ctx, pasteID, tag.ID)
}

// ReorderTags orders the tags of a paste by name. names must be exactly the
// attached tags.
func (s *Service) ReorderTags(ctx context.Context, pasteID int64, names []string) error {
	names, err := s.tagNames(names)
	if err != nil {
		return err
	}

	ids := make([]int64, 0, len(names))
	for _, name := range names {
		tag, err := s.store.FindTagByName(ctx, name)
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("%w: tag '%s' is not attached to paste %d", store.ErrValidation, name, pasteID)
		}
		if err != nil {
			return err
		}
		ids = append(ids, tag.ID)
	}

	return s.store.ReorderTags(ctx, pasteID, ids)
}

// SetTags replaces the tags of a paste with names in order.
func (s *Service) SetTags(ctx context.Context, pasteID int64, names []string) error {
	names, err := s.tagNames(names)
	if err != nil {
		return err
	}

	ids := make([]int64, 0, len(names))
	for _, name := range names {
		id, err := s.store.GetOrCreateTag(ctx, name)
		if err != nil {
			return err
		}
		ids = append(ids, id)
	}

	if err := s.store.SetTags(ctx, pasteID, ids); err != nil {
		return err
	}
	return s.prune(ctx)
}

// EditPaste replaces the content and the tags of a paste as one change.
func (s *Service) EditPaste(ctx context.Context, id int64, content []byte, names []string) error {
	names, err := s.tagNames(names)
	if err != nil {
		return err
	}

	if err := s.store.ReplacePaste(ctx, id, bytes.TrimSpace(content), names); err != nil {
		return err
	}
	return s.prune(ctx)
}

func (s *Service) DeletePaste(ctx context.Context, id int64) error {
	if err := s.store.DeletePaste(ctx, id); err != nil {
		return err
	}
	return s.prune(ctx)
}

func (s *Service) DeleteTag(ctx context.Context, id int64) error {
	return s.store.DeleteTag(ctx, id)
}

func (s *Service) ListTags(ctx context.Context) ([]models.Tag, error) {
	return s.store.ListTags(ctx)
}

func (s *Service) prune(ctx context.Context) error {
	if !s.cfg.PruneOrphans {
		return nil
	}

	pruned, err := s.store.PruneOrphanTags(ctx)
	if err != nil {
		return fmt.Errorf("failed to prune orphaned tags: %w", err)
	}
	if pruned > 0 {
		s.Log.Debug("Pruned %d orphaned tags", pruned)
	}
	return nil
}

// NormalizeTag trims and lower-cases a tag name.
func NormalizeTag(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func (s *Service) tagName(name string) (string, error) {
	if s.cfg.Normalize {
		name = NormalizeTag(name)
	}
	if name == "" {
		return "", fmt.Errorf("%w: tag name must not be empty", store.ErrValidation)
	}
	return name, nil
}

func (s *Service) tagNames(names []string) ([]string, error) {
	result := make([]string, 0, len(names))
	for _, name := range names {
		n, err := s.tagName(name)
		if err != nil {
			return nil, err
		}
		result = append(result, n)
	}
	return result, nil
}
