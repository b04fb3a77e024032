package view

import (
	"github.com/Sternrassler/character-browser/pkg/dom"
	"github.com/Sternrassler/character-browser/pkg/events"
	"github.com/Sternrassler/character-browser/pkg/i18n"
	"github.com/Sternrassler/character-browser/pkg/render"
	"golang.org/x/net/html"
)

// Element ids of the page skeleton.
const (
	IDCharacters      = "characters-container"
	IDPagination      = "pagination-container"
	IDFavorites       = "favorite-characters-container"
	IDFavoritesButton = "favoriteButton"
	IDBackButton      = "backButton"
	IDClearButton     = "clearLocalStorageButton"
)

// NewDocument builds the page skeleton: the three buttons and the three
// containers the browser renders into.
func NewDocument(r *render.Renderer) *html.Node {
	doc := &html.Node{Type: html.DocumentNode}
	root := dom.Element("html")
	head := dom.Append(dom.Element("head"),
		dom.Element("meta", "charset", "utf-8"),
		dom.Append(dom.Element("title"), dom.TextNode("Characters")),
	)
	body := dom.Element("body")
	dom.Append(doc, dom.Append(root, head, body))

	favButton := button(IDFavoritesButton, r.Label(i18n.KeyFavoritesButton), events.ShowFavorites)
	backButton := button(IDBackButton, r.Label(i18n.KeyBackButton), events.Back)
	clearButton := button(IDClearButton, r.Label(i18n.KeyClearButton), events.ClearStorage)

	dom.Append(body,
		dom.Append(dom.Element("nav"), favButton, backButton, clearButton),
		dom.Element("div", "id", IDCharacters, "class", "characters-grid"),
		dom.Element("div", "id", IDPagination, "class", "pagination"),
		dom.Element("div", "id", IDFavorites, "class", "characters-grid"),
	)
	return doc
}

func button(id, label, event string) *html.Node {
	b := dom.Element("button", "id", id)
	events.Bind(b, event, "")
	b.AppendChild(dom.TextNode(label))
	return b
}
