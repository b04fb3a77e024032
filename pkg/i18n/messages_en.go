package i18n

import "golang.org/x/text/message"

func init() {
	lang := english

	message.SetString(lang, KeyFavoritesAdd, "Add to favorites")
	message.SetString(lang, KeyFavoritesRemove, "Remove from favorites")
	message.SetString(lang, KeyFavoritesButton, "Favorites")
	message.SetString(lang, KeyBackButton, "Back")
	message.SetString(lang, KeyClearButton, "Clear storage")
	message.SetString(lang, KeyFavoritesEmpty, "No favorites yet")

	message.SetString(lang, KeyStatus, "Status: %s")
	message.SetString(lang, KeySpecies, "Species: %s")
	message.SetString(lang, KeyGender, "Gender: %s")
	message.SetString(lang, KeyOrigin, "Origin: %s")
	message.SetString(lang, KeyEpisodes, "Episodes: %d")
}
