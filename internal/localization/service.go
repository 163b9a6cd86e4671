package localization

import (
	"errors"
	"fmt"

	"kvloc/internal/table"

	"github.com/rs/zerolog/log"
)

// Service is the entry point editors and commands use to load, reconcile and
// save string tables.
type Service struct {
	store  *table.Store
	source string
}

// NewService creates a service over a table store. source names the language
// other tables are reconciled against.
func NewService(store *table.Store, source string) *Service {
	return &Service{store: store, source: source}
}

// LoadTable reads a single language table. Localized holds the file value;
// English is filled only for the source language.
func (s *Service) LoadTable(category, language string) ([]table.Record, error) {
	entries, err := s.store.Read(category, language)
	records := make([]table.Record, 0, len(entries))
	for _, e := range entries {
		r := table.Record{ID: e.ID}
		if e.Value != nil {
			r.Localized = *e.Value
		}
		if language == s.source {
			r.English = r.Localized
		}
		records = append(records, r)
	}
	if err != nil {
		return records, fmt.Errorf("load %s/%s: %w", language, category, err)
	}
	return records, nil
}

// Load joins the service's source language with target.
func (s *Service) Load(category, target string) ([]table.Record, error) {
	return s.MergeAndLoad(category, s.source, target)
}

// MergeAndLoad reads the source and target tables of a category and joins
// them. A target language without a file for the category merges as empty.
// When either file is malformed the records recovered so far are merged and
// returned together with the error.
func (s *Service) MergeAndLoad(category, source, target string) ([]table.Record, error) {
	english, srcErr := s.store.Read(category, source)
	if srcErr != nil && !errors.Is(srcErr, table.ErrMalformedFile) {
		return nil, fmt.Errorf("load source %s/%s: %w", source, category, srcErr)
	}

	localized, tgtErr := s.store.Read(category, target)
	if errors.Is(tgtErr, table.ErrMissingFile) {
		log.Info().Str("category", category).Str("language", target).Msg("No target file yet, treating every record as untranslated")
		tgtErr = nil
	} else if tgtErr != nil && !errors.Is(tgtErr, table.ErrMalformedFile) {
		return nil, fmt.Errorf("load target %s/%s: %w", target, category, tgtErr)
	}

	records := Merge(english, localized)
	if err := errors.Join(srcErr, tgtErr); err != nil {
		return records, fmt.Errorf("merge %s/%s: %w", target, category, err)
	}
	return records, nil
}

// SaveTable writes records back to the language file, keeping a backup.
func (s *Service) SaveTable(category, language string, records []table.Record, skipUntranslated bool) error {
	if err := s.store.Write(category, language, records, skipUntranslated); err != nil {
		return fmt.Errorf("save %s/%s: %w", language, category, err)
	}
	return nil
}
