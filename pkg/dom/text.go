package dom

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// RenderText writes a plain text view of n for terminals. Hidden subtrees
// and images are skipped, block elements start new lines, buttons are
// shown as [label] and elements of class "active" as *label*.
func RenderText(w io.Writer, n *html.Node) error {
	t := &textWriter{}
	t.node(n)
	t.flush()
	_, err := io.WriteString(w, strings.Join(t.lines, "\n")+"\n")
	return err
}

// TextString returns RenderText output as a string.
func TextString(n *html.Node) string {
	var b strings.Builder
	_ = RenderText(&b, n)
	return b.String()
}

type textWriter struct {
	lines []string
	cur   []string
}

func (t *textWriter) flush() {
	if len(t.cur) > 0 {
		t.lines = append(t.lines, strings.Join(t.cur, " "))
		t.cur = nil
	}
}

func (t *textWriter) word(s string) {
	if s = strings.Join(strings.Fields(s), " "); s != "" {
		t.cur = append(t.cur, s)
	}
}

func (t *textWriter) node(n *html.Node) {
	switch n.Type {
	case html.TextNode:
		t.word(n.Data)
		return
	case html.ElementNode:
	default:
		t.children(n)
		return
	}

	if !Visible(n) {
		return
	}

	switch n.DataAtom {
	case atom.Img, atom.Script, atom.Style, atom.Head:
		return
	case atom.Button:
		t.word(fmt.Sprintf("[%s]", strings.TrimSpace(TextContent(n))))
		return
	}

	if HasClass(n, "active") {
		t.word(fmt.Sprintf("*%s*", strings.TrimSpace(TextContent(n))))
		return
	}

	block := isBlock(n.DataAtom)
	if block {
		t.flush()
	}
	t.children(n)
	if block {
		t.flush()
	}
}

func (t *textWriter) children(n *html.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		t.node(c)
	}
}

func isBlock(a atom.Atom) bool {
	switch a {
	case atom.Div, atom.P, atom.H1, atom.H2, atom.H3, atom.Section,
		atom.Main, atom.Nav, atom.Ul, atom.Li, atom.Body, atom.Html:
		return true
	}
	return false
}
