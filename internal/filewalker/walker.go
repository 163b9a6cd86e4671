package filewalker

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"kvloc/internal/table"

	"github.com/rs/zerolog/log"
)

// Walker discovers languages and categories under a game root.
type Walker struct {
	source string
}

// NewWalker creates a Walker that treats source as the reference language.
func NewWalker(source string) *Walker {
	return &Walker{source: source}
}

// FileEntry represents a discovered language file.
type FileEntry struct {
	Path     string
	Language string
	Category string
}

// Languages lists the candidate target languages, sorted. Folders whose
// language name ends with the source language are excluded.
func (w *Walker) Languages(root string) ([]string, error) {
	dir := filepath.Join(root, table.ResourcesDir)
	items, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list language folders: %w", err)
	}

	var langs []string
	for _, it := range items {
		name := it.Name()
		if !it.IsDir() || !strings.HasPrefix(name, table.LanguagePrefix) {
			continue
		}
		lang := strings.TrimPrefix(name, table.LanguagePrefix)
		if lang == "" || strings.HasSuffix(lang, w.source) {
			continue
		}
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	return langs, nil
}

// Categories lists the category names found in the source language folder, sorted.
func (w *Walker) Categories(root string) ([]string, error) {
	items, err := os.ReadDir(table.LanguageDir(root, w.source))
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}

	var cats []string
	for _, it := range items {
		if it.IsDir() || !strings.EqualFold(filepath.Ext(it.Name()), table.FileExt) {
			continue
		}
		cats = append(cats, strings.TrimSuffix(it.Name(), filepath.Ext(it.Name())))
	}
	sort.Strings(cats)
	return cats, nil
}

// Walk discovers every language file under root, the source language included.
func (w *Walker) Walk(root string) ([]FileEntry, error) {
	resources := filepath.Join(root, table.ResourcesDir)
	info, err := os.Stat(resources)
	if err != nil {
		return nil, fmt.Errorf("stat resources: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("resources is not a directory: %s", resources)
	}

	var entries []FileEntry

	err = filepath.WalkDir(resources, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			log.Warn().Err(err).Str("path", path).Msg("Error walking path")
			return nil
		}

		rel, relErr := filepath.Rel(resources, path)
		if relErr != nil {
			return nil
		}
		parts := strings.Split(rel, string(filepath.Separator))

		if d.IsDir() {
			// only resources/text_*/ is searched
			if len(parts) == 1 && rel != "." && !strings.HasPrefix(parts[0], table.LanguagePrefix) {
				return filepath.SkipDir
			}
			if len(parts) > 1 {
				return filepath.SkipDir
			}
			return nil
		}

		if len(parts) != 2 || !strings.EqualFold(filepath.Ext(path), table.FileExt) {
			return nil
		}

		entries = append(entries, FileEntry{
			Path:     path,
			Language: strings.TrimPrefix(parts[0], table.LanguagePrefix),
			Category: strings.TrimSuffix(parts[1], filepath.Ext(parts[1])),
		})
		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("walk resources: %w", err)
	}

	log.Debug().Int("count", len(entries)).Str("root", root).Msg("Discovered language files")
	return entries, nil
}

// Orphans lists target language files whose category has no source language
// file. Merging never reads them, so their records are invisible to every
// other command.
func (w *Walker) Orphans(root string) ([]FileEntry, error) {
	entries, err := w.Walk(root)
	if err != nil {
		return nil, err
	}

	sources := make(map[string]bool)
	for _, e := range entries {
		if e.Language == w.source {
			sources[e.Category] = true
		}
	}

	var orphans []FileEntry
	for _, e := range entries {
		if e.Language == "" || strings.HasSuffix(e.Language, w.source) {
			continue
		}
		if !sources[e.Category] {
			orphans = append(orphans, e)
		}
	}
	sort.Slice(orphans, func(i, j int) bool {
		if orphans[i].Language != orphans[j].Language {
			return orphans[i].Language < orphans[j].Language
		}
		return orphans[i].Category < orphans[j].Category
	})
	return orphans, nil
}
