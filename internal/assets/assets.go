// Package assets loads optional glyphs that decorate button labels. Every
// asset is optional; a missing one leaves the plain text label.
package assets

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
)

// Icons holds the glyphs the UI knows about. Empty means not available.
type Icons struct {
	Check    string
	Trash    string
	Calendar string
}

// LoadIcons reads check.txt, trash.txt and calendar.txt from dir.
func LoadIcons(dir string) Icons {
	return Icons{
		Check:    Load(dir, "check"),
		Trash:    Load(dir, "trash"),
		Calendar: Load(dir, "calendar"),
	}
}

// Load returns the first non-blank line of dir/name.txt, or "" when the file
// is absent or unreadable.
func Load(dir, name string) string {
	if dir == "" || name == "" {
		return ""
	}
	f, err := os.Open(filepath.Join(dir, name+".txt"))
	if err != nil {
		return ""
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			return line
		}
	}
	return ""
}

// Label prefixes text with glyph when one was loaded.
func Label(glyph, text string) string {
	if glyph == "" {
		return text
	}
	return glyph + " " + text
}
