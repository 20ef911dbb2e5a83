package domain

import "strings"

type Language string

const (
	Arabic  Language = "ar"
	English Language = "en"
	French  Language = "fr"

	DefaultLanguage = Arabic
)

// ParseLanguage accepts "en", "fr-FR", "ar_MA" and the like. Anything it does
// not recognise maps to DefaultLanguage.
func ParseLanguage(s string) Language {
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) > 2 {
		s = s[:2]
	}
	switch Language(s) {
	case Arabic, English, French:
		return Language(s)
	default:
		return DefaultLanguage
	}
}
