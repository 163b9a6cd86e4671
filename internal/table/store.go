package table

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"kvloc/internal/keyvalues"

	"github.com/rs/zerolog/log"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var (
	ErrMissingFile   = errors.New("language file not found")
	ErrMalformedFile = errors.New("malformed language file")
	ErrUnencodable   = errors.New("value cannot be stored")
)

// Store reads and writes the language files under a game root.
// Writes to the same file must be serialized by the caller.
type Store struct {
	root string
}

// NewStore creates a store rooted at the game directory.
func NewStore(root string) *Store {
	return &Store{root: root}
}

// Path returns the file backing a (category, language) table.
func (s *Store) Path(category, language string) string {
	return Path(s.root, language, category)
}

// Read parses one language file. A malformed file yields the entries parsed
// before the error together with an error wrapping ErrMalformedFile and the
// *keyvalues.SyntaxError.
func (s *Store) Read(category, language string) ([]Entry, error) {
	path := s.Path(category, language)

	src, err := readText(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrMissingFile, path)
		}
		return nil, fmt.Errorf("read language file: %w", err)
	}

	entries, err := ParseEntries(path, src)
	if err != nil {
		ev := log.Warn().Err(err).Str("file", path).Int("recovered", len(entries))
		var se *keyvalues.SyntaxError
		if errors.As(err, &se) {
			ev = ev.Int("line", se.Line)
			if se.Char != 0 {
				ev = ev.Str("char", string(se.Char))
			}
		}
		ev.Msg("Language file did not parse cleanly")
		return entries, fmt.Errorf("%w: %w", ErrMalformedFile, err)
	}

	log.Debug().Str("file", path).Int("entries", len(entries)).Msg("Read language file")
	return entries, nil
}

// Write replaces a language file with one line per record. The previous file
// is kept as a .bak sibling, replacing any older backup. With skipUntranslated
// set, records whose localized text equals the english text byte for byte are
// left out. Records are checked before the current file is touched.
func (s *Store) Write(category, language string, records []Record, skipUntranslated bool) error {
	path := s.Path(category, language)

	if err := checkEncodable(records, skipUntranslated); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create language directory: %w", err)
	}

	backup := path + BackupSuffix
	if err := os.Remove(backup); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove backup: %w", err)
	}
	if err := os.Rename(path, backup); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("back up language file: %w", err)
	}

	written, err := writeRecords(path, records, skipUntranslated)
	if err != nil {
		return err
	}

	log.Info().
		Str("file", path).
		Int("written", written).
		Int("skipped", len(records)-written).
		Msg("Wrote language file")
	return nil
}

// skipRecord reports whether a record is left out of a written file.
func skipRecord(r Record, skipUntranslated bool) bool {
	return r.ID == "" || (skipUntranslated && r.English == r.Localized)
}

// checkEncodable rejects values whose encoded form ends in a backslash. The
// closing quote would read back as an escaped quote and swallow the records
// that follow.
func checkEncodable(records []Record, skipUntranslated bool) error {
	for _, r := range records {
		if skipRecord(r, skipUntranslated) {
			continue
		}
		if strings.HasSuffix(keyvalues.Encode(r.Localized), `\`) {
			return fmt.Errorf("%w: record %s ends with a backslash", ErrUnencodable, r.ID)
		}
	}
	return nil
}

func writeRecords(path string, records []Record, skipUntranslated bool) (written int, err error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("create language file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close language file: %w", cerr)
		}
	}()

	w := bufio.NewWriter(f)
	for _, r := range records {
		if skipRecord(r, skipUntranslated) {
			if r.ID == "" {
				log.Warn().Str("file", path).Msg("Skipping record without ID")
			}
			continue
		}
		if _, err := fmt.Fprintf(w, "%s\t\t\"%s\";\n", r.ID, keyvalues.Encode(r.Localized)); err != nil {
			return written, fmt.Errorf("write record %s: %w", r.ID, err)
		}
		written++
	}

	if err := w.Flush(); err != nil {
		return written, fmt.Errorf("flush language file: %w", err)
	}
	return written, nil
}

// readText loads a whole file as characters. A UTF-8 or UTF-16 byte order
// mark selects the encoding and is dropped; UTF-8 is assumed otherwise.
func readText(path string) ([]rune, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := transform.NewReader(f, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return []rune(string(data)), nil
}
