package composer

import (
	"path"
	"regexp"
	"strings"
)

// trailingID matches the numeric suffix some hosts append to filenames,
// e.g. "daily_wisdom-193847561".
var trailingID = regexp.MustCompile(`-\d+$`)

// DeriveTitle turns a source video URL or path into a human-readable title,
// later reused as the publish caption. Idempotent on already-clean names.
func DeriveTitle(source string) string {
	base := path.Base(source)
	if i := strings.IndexByte(base, '?'); i >= 0 {
		base = base[:i]
	}
	base = strings.TrimSuffix(base, path.Ext(base))

	name := trailingID.ReplaceAllString(base, "")
	name = strings.ReplaceAll(name, "_", " ")
	name = strings.ReplaceAll(name, "—", "-")
	return strings.TrimSpace(name)
}

// MergedFileName builds the local output filename for a source video key.
// The basename is kept whole, trailing numeric ID included, so two sources
// that differ only in that ID never map to the same merged object.
func MergedFileName(source string) string {
	base := path.Base(source)
	if i := strings.IndexByte(base, '?'); i >= 0 {
		base = base[:i]
	}
	base = strings.TrimSuffix(base, path.Ext(base))
	base = strings.ReplaceAll(base, " ", "_")
	return "merged_" + base + ".mp4"
}
