package parser

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Anchor is an <a> element. HasHref is false when the element carries no href attribute.
type Anchor struct {
	Href    string
	HasHref bool
}

// ParseAnchors returns the anchors of an HTML document in document order.
// Hrefs are trimmed but otherwise left as written.
func ParseAnchors(body []byte) ([]Anchor, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	anchors := []Anchor{}
	doc.Find("a").Each(func(_ int, selection *goquery.Selection) {
		href, ok := selection.Attr("href")
		anchors = append(anchors, Anchor{
			Href:    strings.TrimSpace(href),
			HasHref: ok,
		})
	})

	return anchors, nil
}
