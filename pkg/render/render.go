// Package render writes characters and pagination controls into DOM
// containers.
package render

import (
	"strconv"

	"github.com/Sternrassler/character-browser/pkg/dom"
	"github.com/Sternrassler/character-browser/pkg/events"
	"github.com/Sternrassler/character-browser/pkg/favorites"
	"github.com/Sternrassler/character-browser/pkg/i18n"
	"github.com/Sternrassler/character-browser/pkg/model"
	"github.com/Sternrassler/character-browser/pkg/pagination"
	"golang.org/x/net/html"
	"golang.org/x/text/message"
)

// CSS classes of rendered elements.
const (
	ClassCard     = "character-card"
	ClassToggle   = "add-button"
	ClassActive   = "active"
	ClassEllipsis = "dots"
)

// Ellipsis is the text of the gap marker in the page controls.
const Ellipsis = "..."

// Renderer turns model data into DOM nodes with localized labels.
type Renderer struct {
	p *message.Printer
}

// New creates a renderer printing labels with p. A nil printer uses the
// default locale.
func New(p *message.Printer) *Renderer {
	if p == nil {
		p = i18n.Printer(i18n.DefaultLocale)
	}
	return &Renderer{p: p}
}

// Label returns the localized string for key.
func (r *Renderer) Label(key string, args ...any) string {
	return r.p.Sprintf(key, args...)
}

// RenderCharacters replaces the children of container with one card per
// character.
func (r *Renderer) RenderCharacters(container *html.Node, chars []model.Character, favs *favorites.Set) {
	dom.ClearChildren(container)
	for _, c := range chars {
		container.AppendChild(r.Card(c, favs))
	}
}

// Card builds the card of one character.
func (r *Renderer) Card(c model.Character, favs *favorites.Set) *html.Node {
	id := strconv.Itoa(c.ID)

	card := dom.Element("div", "class", ClassCard, "data-id", id)
	dom.Append(card,
		dom.Element("img", "src", c.Image, "alt", c.Name),
		dom.Append(dom.Element("h2"), dom.TextNode(c.Name)),
		line(r.Label(i18n.KeyStatus, c.Status)),
		line(r.Label(i18n.KeySpecies, c.Species)),
		line(r.Label(i18n.KeyGender, c.Gender)),
		line(r.Label(i18n.KeyOrigin, c.Origin.Name)),
		line(r.Label(i18n.KeyEpisodes, c.EpisodeCount())),
	)

	btn := dom.Element("button", "class", ClassToggle)
	events.Bind(btn, events.ToggleFavorite, id)
	r.UpdateToggle(btn, favs)
	card.AppendChild(btn)

	return card
}

// UpdateToggle relabels a favorite toggle after its character was added
// to or removed from favs.
func (r *Renderer) UpdateToggle(button *html.Node, favs *favorites.Set) {
	id, err := strconv.Atoi(attr(button, events.AttrValue))
	if err != nil {
		return
	}
	label := r.Label(i18n.KeyFavoritesAdd)
	if favs != nil && favs.Contains(id) {
		label = r.Label(i18n.KeyFavoritesRemove)
	}
	dom.SetText(button, label)
}

// UpdateToggles relabels every toggle for id under root.
func (r *Renderer) UpdateToggles(root *html.Node, id int, favs *favorites.Set) {
	value := strconv.Itoa(id)
	for _, btn := range dom.FindAll(root, dom.ByClass(ClassToggle)) {
		if attr(btn, events.AttrValue) == value {
			r.UpdateToggle(btn, favs)
		}
	}
}

// RenderPagination replaces the children of container with the page
// controls: << < [...] pages [...] > >>. The current page carries the
// active class.
func (r *Renderer) RenderPagination(container *html.Node, w pagination.Window, current int) {
	dom.ClearChildren(container)

	container.AppendChild(control("<<", events.PageFirst, ""))
	container.AppendChild(control("<", events.PagePrev, ""))

	if w.LeadingEllipsis {
		container.AppendChild(dots())
	}
	for _, n := range w.Pages {
		num := strconv.Itoa(n)
		span := dom.Element("span")
		if n == current {
			dom.SetAttr(span, "class", ClassActive)
		}
		events.Bind(span, events.PageGoto, num)
		span.AppendChild(dom.TextNode(num))
		container.AppendChild(span)
	}
	if w.TrailingEllipsis {
		container.AppendChild(dots())
	}

	container.AppendChild(control(">", events.PageNext, ""))
	container.AppendChild(control(">>", events.PageLast, ""))
}

func control(label, event, value string) *html.Node {
	btn := dom.Element("button")
	events.Bind(btn, event, value)
	btn.AppendChild(dom.TextNode(label))
	return btn
}

func dots() *html.Node {
	return dom.Append(dom.Element("span", "class", ClassEllipsis), dom.TextNode(Ellipsis))
}

func line(text string) *html.Node {
	return dom.Append(dom.Element("p"), dom.TextNode(text))
}

func attr(n *html.Node, key string) string {
	v, _ := dom.Attr(n, key)
	return v
}
