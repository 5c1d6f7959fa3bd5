package dom

import (
	"strings"

	"golang.org/x/net/html"
)

// RenderIndent serialises node with one element per line, nested elements
// indented by indent. Elements without element children stay on one line.
// The output adds whitespace text and is meant for reading, not mounting.
func RenderIndent(node *html.Node, indent string) (string, error) {
	var b strings.Builder
	if node != nil {
		if err := writeIndented(&b, node, indent, 0); err != nil {
			return "", err
		}
	}
	return b.String(), nil
}

func writeIndented(b *strings.Builder, n *html.Node, indent string, depth int) error {
	pad := strings.Repeat(indent, depth)

	if n.Type != html.ElementNode || len(ElementChildren(n)) == 0 {
		if n.Type == html.TextNode && strings.TrimSpace(n.Data) == "" {
			return nil
		}
		s, err := Render(n)
		if err != nil {
			return err
		}
		b.WriteString(pad + s + "\n")
		return nil
	}

	shallow := &html.Node{Type: n.Type, Data: n.Data, DataAtom: n.DataAtom, Namespace: n.Namespace, Attr: n.Attr}
	s, err := Render(shallow)
	if err != nil {
		return err
	}
	closing := "</" + n.Data + ">"
	b.WriteString(pad + strings.TrimSuffix(s, closing) + "\n")
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := writeIndented(b, c, indent, depth+1); err != nil {
			return err
		}
	}
	b.WriteString(pad + closing + "\n")
	return nil
}
