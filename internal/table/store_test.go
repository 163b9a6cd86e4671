package table

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"kvloc/internal/keyvalues"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFixture(t *testing.T, root, language, category, content string) string {
	t.Helper()
	path := Path(root, language, category)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestStorePath(t *testing.T) {
	s := NewStore("/game")
	assert.Equal(t, filepath.Join("/game", "resources", "text_french", "menu.txt"), s.Path("menu", "french"))
}

func TestStoreRead(t *testing.T) {
	root := t.TempDir()
	writeFixture(t, root, "english", "menu", "// menu strings\nMENU_START\t\t\"Start\";\nMENU_QUIT\t\t\"Quit \\\"now\\\"\";\n")

	entries, err := NewStore(root).Read("menu", "english")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "MENU_START", entries[0].ID)
	assert.Equal(t, "Start", *entries[0].Value)
	assert.Equal(t, `Quit "now"`, *entries[1].Value)
}

func TestStoreReadBOM(t *testing.T) {
	root := t.TempDir()
	writeFixture(t, root, "english", "menu", "\xEF\xBB\xBFK\t\t\"v\";\n")

	entries, err := NewStore(root).Read("menu", "english")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "K", entries[0].ID)
}

func TestStoreReadMissing(t *testing.T) {
	_, err := NewStore(t.TempDir()).Read("menu", "french")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingFile))
}

func TestStoreReadMalformed(t *testing.T) {
	root := t.TempDir()
	writeFixture(t, root, "french", "menu", "A\t\t\"un\";\n}\nB\t\t\"deux\";\n")

	entries, err := NewStore(root).Read("menu", "french")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformedFile))
	assert.True(t, errors.Is(err, keyvalues.ErrUnexpectedChar))

	var se *keyvalues.SyntaxError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, 2, se.Line)
	assert.Len(t, entries, 1)
}

func TestStoreWrite(t *testing.T) {
	root := t.TempDir()
	s := NewStore(root)
	path := writeFixture(t, root, "french", "menu", "OLD\t\t\"old\";\n")

	records := []Record{
		{ID: "A", English: "Yes", Localized: "Oui"},
		{ID: "B", English: "Tab\there", Localized: "Tab\tici \"x\"\n"},
	}
	require.NoError(t, s.Write("menu", "french", records, false))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "A\t\t\"Oui\";\nB\t\t\"Tab\\tici \\\"x\\\"\\n\";\n", string(data))

	backup, err := os.ReadFile(path + BackupSuffix)
	require.NoError(t, err)
	assert.Equal(t, "OLD\t\t\"old\";\n", string(backup))
}

func TestStoreWriteReplacesBackup(t *testing.T) {
	root := t.TempDir()
	s := NewStore(root)
	path := writeFixture(t, root, "french", "menu", "V1\t\t\"1\";\n")

	require.NoError(t, s.Write("menu", "french", []Record{{ID: "V2", Localized: "2"}}, false))
	require.NoError(t, s.Write("menu", "french", []Record{{ID: "V3", Localized: "3"}}, false))

	backup, err := os.ReadFile(path + BackupSuffix)
	require.NoError(t, err)
	assert.Equal(t, "V2\t\t\"2\";\n", string(backup))
}

func TestStoreWriteNewLanguage(t *testing.T) {
	root := t.TempDir()
	s := NewStore(root)

	require.NoError(t, s.Write("menu", "german", []Record{{ID: "A", English: "Yes", Localized: "Ja"}}, false))

	entries, err := s.Read("menu", "german")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Ja", *entries[0].Value)
	assert.NoFileExists(t, s.Path("menu", "german")+BackupSuffix)
}

func TestStoreWriteTrailingBackslash(t *testing.T) {
	root := t.TempDir()
	s := NewStore(root)
	path := writeFixture(t, root, "french", "menu", "P\t\t\"old\";\nQ\t\t\"y\";\n")

	records := []Record{
		{ID: "P", English: "Path", Localized: `C:\`},
		{ID: "Q", English: "y", Localized: "y"},
	}
	err := s.Write("menu", "french", records, false)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnencodable))
	assert.Contains(t, err.Error(), "record P")

	// the current file is left alone and no backup is taken
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "P\t\t\"old\";\nQ\t\t\"y\";\n", string(data))
	assert.NoFileExists(t, path+BackupSuffix)
}

func TestStoreWriteTrailingBackslashSkipped(t *testing.T) {
	root := t.TempDir()
	s := NewStore(root)

	records := []Record{
		{ID: "A", English: "Oui", Localized: "Oui"},
		{ID: "P", English: `C:\`, Localized: `C:\`},
	}
	require.NoError(t, s.Write("menu", "french", records, true))

	entries, err := s.Read("menu", "french")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestStoreWriteSkipUntranslated(t *testing.T) {
	root := t.TempDir()
	s := NewStore(root)

	records := []Record{
		{ID: "A", English: "Yes", Localized: "Oui"},
		{ID: "B", English: "No", Localized: "No"},
		// punctuation counts as localized for display but is still dropped here
		{ID: "C", English: "...", Localized: "..."},
		{ID: "", English: "orphan", Localized: "orphelin"},
	}
	require.NoError(t, s.Write("menu", "french", records, true))

	entries, err := s.Read("menu", "french")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "A", entries[0].ID)
}

func TestStoreRoundTrip(t *testing.T) {
	root := t.TempDir()
	s := NewStore(root)
	writeFixture(t, root, "french", "menu",
		"/* header */\nA  \"Oui\" ;\n// note\nB\t\"multi\\nline\\t\\\"q\\\"\";\nC \"\";\n")

	first, err := s.Read("menu", "french")
	require.NoError(t, err)

	records := make([]Record, 0, len(first))
	for _, e := range first {
		records = append(records, Record{ID: e.ID, Localized: *e.Value})
	}
	require.NoError(t, s.Write("menu", "french", records, false))

	second, err := s.Read("menu", "french")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
