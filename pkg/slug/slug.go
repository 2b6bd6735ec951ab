package slug

import (
	"regexp"
	"strings"
)

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// folds maps the accented letters seen in catalog names to ASCII.
var folds = strings.NewReplacer(
	"ă", "a", "â", "a", "î", "i", "ș", "s", "ş", "s", "ț", "t", "ţ", "t",
	"á", "a", "à", "a", "ä", "a", "é", "e", "è", "e", "ë", "e", "í", "i",
	"ó", "o", "ö", "o", "ú", "u", "ü", "u", "ç", "c", "ñ", "n",
)

// Generate derives the URL-friendly key used to deduplicate category names.
//
//	"Home & Garden"   -> "home-garden"
//	"Îngrijire Față"  -> "ingrijire-fata"
func Generate(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = folds.Replace(s)
	s = nonAlnum.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
