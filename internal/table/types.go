package table

import "path/filepath"

// On-disk layout: {root}/resources/text_{language}/{category}.txt
const (
	ResourcesDir   = "resources"
	LanguagePrefix = "text_"
	FileExt        = ".txt"
	BackupSuffix   = ".bak"

	// SourceLanguage is the language every other table is reconciled against.
	SourceLanguage = "english"
)

// Entry is one (ID, value) pair as it appears in a language file.
// Value is nil when the ID token was not followed by a string.
type Entry struct {
	ID    string
	Value *string
}

// Record is a row joined across the source and target tables.
// Only Localized is meant to be edited.
type Record struct {
	ID        string `json:"id"`
	English   string `json:"english"`
	Localized string `json:"localized"`
}

// LanguageDir returns the folder holding every category of a language.
func LanguageDir(root, language string) string {
	return filepath.Join(root, ResourcesDir, LanguagePrefix+language)
}

// Path returns the file backing a (language, category) table.
func Path(root, language, category string) string {
	return filepath.Join(LanguageDir(root, language), category+FileExt)
}
