// Package i18n registers the UI strings with golang.org/x/text/message and
// hands out printers per locale.
package i18n

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Message keys.
const (
	KeyFavoritesAdd    = "favorites.add"
	KeyFavoritesRemove = "favorites.remove"
	KeyFavoritesButton = "button.favorites"
	KeyBackButton      = "button.back"
	KeyClearButton     = "button.clear"
	KeyStatus          = "card.status"
	KeySpecies         = "card.species"
	KeyGender          = "card.gender"
	KeyOrigin          = "card.origin"
	KeyEpisodes        = "card.episodes"
	KeyFavoritesEmpty  = "favorites.empty"
)

// DefaultLocale is used when no locale is configured.
const DefaultLocale = "en-US"

var (
	english = language.MustParse("en-US")
	russian = language.MustParse("ru-RU")

	// Supported lists the locales with a full catalog.
	Supported = []language.Tag{english, russian}

	matcher = language.NewMatcher(Supported)
)

// Printer returns a printer for the closest supported locale.
func Printer(locale string) *message.Printer {
	return message.NewPrinter(Match(locale))
}

// Match maps a locale string onto a supported tag; unknown or empty input
// falls back to en-US.
func Match(locale string) language.Tag {
	locale = strings.TrimSpace(locale)
	if locale == "" {
		return english
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return english
	}
	_, idx, _ := matcher.Match(tag)
	return Supported[idx]
}

// Validate reports whether locale parses as a BCP 47 tag.
func Validate(locale string) error {
	if _, err := language.Parse(locale); err != nil {
		return fmt.Errorf("invalid locale %q: %w", locale, err)
	}
	return nil
}
