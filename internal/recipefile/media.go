package recipefile

import (
	"path"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Media file extensions.
const (
	ExtImage = "jpg"
	ExtAudio = "opus"
)

// Slug lower-cases name, Unicode aware, and replaces spaces with underscores.
func Slug(name string) string {
	lowered := cases.Lower(language.Und).String(strings.TrimSpace(name))
	return strings.ReplaceAll(lowered, " ", "_")
}

// MediaPath is the slash-separated path of a record's media file relative
// to the media root: <stem>/<slug>.<ext>.
func MediaPath(stem, name, ext string) string {
	return path.Join(stem, Slug(name)+"."+ext)
}
