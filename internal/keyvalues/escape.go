package keyvalues

import "strings"

// Decode converts the on-disk form of a quoted string into its in-memory value.
// Only \" \t \n \r are recognised; a doubled backslash is left as-is.
func Decode(s string) string {
	s = strings.ReplaceAll(s, `\"`, `"`)
	s = strings.ReplaceAll(s, `\t`, "\t")
	s = strings.ReplaceAll(s, `\n`, "\n")
	s = strings.ReplaceAll(s, `\r`, "\r")
	return s
}

// Encode is the inverse of Decode, applied when writing a value back to disk.
func Encode(s string) string {
	s = strings.ReplaceAll(s, "\r", `\r`)
	s = strings.ReplaceAll(s, "\n", `\n`)
	s = strings.ReplaceAll(s, "\t", `\t`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return s
}
