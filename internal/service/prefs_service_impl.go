package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/alexanderramin/hrdesk/internal/catalog"
	"github.com/alexanderramin/hrdesk/internal/filter"
	"github.com/alexanderramin/hrdesk/internal/repository"
	"go.uber.org/zap"
)

type prefsService struct {
	kv  repository.KVRepo
	log *zap.Logger
}

// NewPrefsService stores per-screen filters and form drafts in kv.
func NewPrefsService(kv repository.KVRepo, log *zap.Logger) PrefsService {
	if log == nil {
		log = zap.NewNop()
	}
	return &prefsService{kv: kv, log: log.Named("prefs")}
}

// FiltersKey is the storage key of a screen's applied filters.
func FiltersKey(screen catalog.Screen) string {
	if screen.StorageKey != "" {
		return screen.StorageKey
	}
	return screen.Name + ".filters"
}

// DraftKey is the storage key of a screen's last form values.
func DraftKey(screen catalog.Screen) string {
	if screen.FormKey != "" {
		return screen.FormKey
	}
	return screen.Name + ".form"
}

// LoadFilters returns the last applied filters, or the schema defaults when
// none were saved. A corrupt entry is logged and treated as absent.
func (s *prefsService) LoadFilters(ctx context.Context, screen catalog.Screen) (filter.Values, error) {
	var saved filter.Values
	err := repository.GetJSON(ctx, s.kv, FiltersKey(screen), &saved)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return screen.Filters.Defaults(), nil
	case err != nil:
		if ctx.Err() != nil {
			return nil, err
		}
		s.log.Warn("discarding stored filters", zap.String("screen", screen.Name), zap.Error(err))
		return screen.Filters.Defaults(), nil
	}
	return filter.Normalize(screen.Filters, saved), nil
}

func (s *prefsService) SaveFilters(ctx context.Context, screen catalog.Screen, v filter.Values) error {
	if err := repository.SetJSON(ctx, s.kv, FiltersKey(screen), filter.Normalize(screen.Filters, v)); err != nil {
		return fmt.Errorf("saving filters for %s: %w", screen.Name, err)
	}
	return nil
}

// LoadDraft returns the last form values, or an empty map.
func (s *prefsService) LoadDraft(ctx context.Context, screen catalog.Screen) (map[string]string, error) {
	values := map[string]string{}
	err := repository.GetJSON(ctx, s.kv, DraftKey(screen), &values)
	if errors.Is(err, repository.ErrNotFound) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading draft for %s: %w", screen.Name, err)
	}
	return values, nil
}

func (s *prefsService) SaveDraft(ctx context.Context, screen catalog.Screen, values map[string]string) error {
	if err := repository.SetJSON(ctx, s.kv, DraftKey(screen), values); err != nil {
		return fmt.Errorf("saving draft for %s: %w", screen.Name, err)
	}
	return nil
}

func (s *prefsService) ClearDraft(ctx context.Context, screen catalog.Screen) error {
	return s.kv.Delete(ctx, DraftKey(screen))
}

// MaxHistory is the number of command bar lines kept.
const MaxHistory = 500

// LoadHistory returns the stored command bar lines, oldest first. A corrupt
// entry is logged and treated as empty.
func (s *prefsService) LoadHistory(ctx context.Context) ([]string, error) {
	var lines []string
	err := repository.GetJSON(ctx, s.kv, repository.KeyCommandHistory, &lines)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return nil, nil
	case err != nil:
		if ctx.Err() != nil {
			return nil, err
		}
		s.log.Warn("discarding stored command history", zap.Error(err))
		return nil, nil
	}
	return lines, nil
}

// AppendHistory stores line after the existing history. Blank lines are
// ignored and only the newest MaxHistory lines are kept.
func (s *prefsService) AppendHistory(ctx context.Context, line string) error {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}
	lines, err := s.LoadHistory(ctx)
	if err != nil {
		return err
	}
	lines = append(lines, line)
	if len(lines) > MaxHistory {
		lines = lines[len(lines)-MaxHistory:]
	}
	if err := repository.SetJSON(ctx, s.kv, repository.KeyCommandHistory, lines); err != nil {
		return fmt.Errorf("saving command history: %w", err)
	}
	return nil
}
