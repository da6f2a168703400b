package util

import "strings"

// dirNameReplacer maps characters that are invalid in directory names to
// visually close full-width substitutes, so titles stay readable instead
// of collapsing into dashes. Path separators become spaces.
var dirNameReplacer = strings.NewReplacer(
	"\\", " ",
	"/", " ",
	":", "：",
	"*", "⭐",
	"?", "？",
	"\"", "'",
	"<", "《",
	">", "》",
	"|", "丨",
	"\x00", " ",
)

// SanitizeDirName rewrites a single rendered path level into a string that
// is safe to use as a directory name on any filesystem.
func SanitizeDirName(name string) string {
	return strings.TrimSpace(dirNameReplacer.Replace(name))
}

// JoinSanitized sanitizes each rendered template level and drops levels
// that end up empty, returning the surviving directory names in order.
func JoinSanitized(segments []string) []string {
	out := make([]string, 0, len(segments))
	for _, seg := range segments {
		if name := SanitizeDirName(seg); name != "" {
			out = append(out, name)
		}
	}
	return out
}
