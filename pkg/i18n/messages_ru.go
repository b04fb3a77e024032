package i18n

import "golang.org/x/text/message"

func init() {
	lang := russian

	message.SetString(lang, KeyFavoritesAdd, "Добавить в избранное")
	message.SetString(lang, KeyFavoritesRemove, "Убрать из избранного")
	message.SetString(lang, KeyFavoritesButton, "Избранное")
	message.SetString(lang, KeyBackButton, "Назад")
	message.SetString(lang, KeyClearButton, "Очистить Local Storage")
	message.SetString(lang, KeyFavoritesEmpty, "Избранных персонажей пока нет")

	message.SetString(lang, KeyStatus, "Статус: %s")
	message.SetString(lang, KeySpecies, "Вид: %s")
	message.SetString(lang, KeyGender, "Пол: %s")
	message.SetString(lang, KeyOrigin, "Происхождение: %s")
	message.SetString(lang, KeyEpisodes, "Эпизодов: %d")
}
