package slug

import (
	"regexp"
	"strings"
)

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// folding maps the accented Latin letters common in destination and
// package names to ASCII.
var folding = strings.NewReplacer(
	"à", "a", "á", "a", "â", "a", "ã", "a", "ä", "a", "å", "a",
	"ç", "c", "è", "e", "é", "e", "ê", "e", "ë", "e",
	"ì", "i", "í", "i", "î", "i", "ï", "i", "ı", "i",
	"ñ", "n", "ò", "o", "ó", "o", "ô", "o", "õ", "o", "ö", "o", "ø", "o",
	"ù", "u", "ú", "u", "û", "u", "ü", "u", "ý", "y", "ÿ", "y",
	"ğ", "g", "ş", "s", "ß", "ss", "&", " and ",
)

// Generate turns a display name into a lowercase, hyphen-separated slug.
//
//	Generate("Forest & Wildlife")  // "forest-and-wildlife"
//	Generate("Zürich Old Town")    // "zurich-old-town"
func Generate(name string) string {
	s := folding.Replace(strings.ToLower(strings.TrimSpace(name)))
	s = nonAlnum.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
