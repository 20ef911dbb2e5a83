package http

import (
	"net/http"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"golang.org/x/text/language"
)

// The first entry is what an unmatched request falls back to.
var languageMatcher = language.NewMatcher([]language.Tag{
	language.Arabic,
	language.English,
	language.French,
})

// requestLanguage prefers the lang query parameter over Accept-Language.
func requestLanguage(r *http.Request) domain.Language {
	if q := r.URL.Query().Get("lang"); q != "" {
		return domain.ParseLanguage(q)
	}
	tag, _ := language.MatchStrings(languageMatcher, r.Header.Get("Accept-Language"))
	base, _ := tag.Base()
	return domain.ParseLanguage(base.String())
}
