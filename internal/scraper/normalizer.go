package scraper

import "strings"

// DefaultCityAliases maps the source site's city codes to canonical
// registry names. The publication abbreviates the large cities; smaller
// ones already appear under their canonical spelling.
func DefaultCityAliases() map[string]string {
	return map[string]string{
		"TANA":         "Antananarivo",
		"ANTSIRABE":    "Antsirabe",
		"FIANARANTSOA": "Fianarantsoa",
		"TAMATAVE":     "Toamasina",
		"DIEGO":        "Antsiranana",
		"TULEAR":       "Toliara",
		"MAJUNGA":      "Mahajanga",
	}
}

// Normalizer maps raw city tokens to canonical city names.
type Normalizer struct {
	aliases map[string]string
}

// NewNormalizer creates a normalizer over the given alias table.
// Lookup is case-insensitive; unknown tokens pass through verbatim so
// cities the source already spells canonically keep working.
func NewNormalizer(aliases map[string]string) *Normalizer {
	upper := make(map[string]string, len(aliases))
	for alias, name := range aliases {
		upper[strings.ToUpper(alias)] = name
	}
	return &Normalizer{aliases: upper}
}

// Normalize returns the canonical city name for a raw token.
func (n *Normalizer) Normalize(token string) string {
	if name, ok := n.aliases[strings.ToUpper(token)]; ok {
		return name
	}
	return token
}
