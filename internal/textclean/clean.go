// Package textclean turns markup-laden job descriptions into plain text.
package textclean

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Clean strips markup from s and returns its visible text, one block per line.
//
// The first pass drops real tags and decodes entities. Descriptions that were
// HTML-escaped before being embedded come out of that pass as markup again, so
// the second pass parses the result once more and keeps only the visible text
// nodes.
func Clean(s string) string {
	return visibleText(stripTags(s))
}

func stripTags(s string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return s
	}
	return doc.Text()
}

func visibleText(s string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return strings.TrimSpace(s)
	}

	var lines []string
	for _, n := range doc.Nodes {
		collectText(n, &lines)
	}
	return strings.Join(lines, "\n")
}

func collectText(n *html.Node, out *[]string) {
	switch n.Type {
	case html.TextNode:
		if t := strings.TrimSpace(n.Data); t != "" {
			*out = append(*out, t)
		}
		return
	case html.ElementNode:
		switch n.Data {
		case "script", "style", "template":
			return
		}
	case html.CommentNode, html.DoctypeNode:
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, out)
	}
}
