package html

import (
	"bytes"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"
	xhtml "golang.org/x/net/html"
)

// FlattenText returns the text nodes under sel joined by single spaces.
func FlattenText(sel *goquery.Selection) string {
	var parts []string
	var walk func(n *xhtml.Node)
	walk = func(n *xhtml.Node) {
		if n.Type == xhtml.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				parts = append(parts, t)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range sel.Nodes {
		walk(n)
	}
	return strings.Join(strings.Fields(strings.Join(parts, " ")), " ")
}

// ExtractTitle はページタイトルを取得します。readabilityで取れなければgoqueryで<title>等を探す
func ExtractTitle(body []byte, pageURL string) string {
	var parsed *url.URL
	if pageURL != "" {
		if u, err := url.Parse(pageURL); err == nil {
			parsed = u
		}
	}

	article, err := readability.FromReader(bytes.NewReader(body), parsed)
	if err == nil {
		if title := strings.TrimSpace(article.Title); title != "" {
			return title
		}
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return ""
	}
	if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
		return title
	}
	if title := strings.TrimSpace(doc.Find("h1").First().Text()); title != "" {
		return title
	}
	if title, ok := doc.Find("meta[property='og:title']").Attr("content"); ok {
		return strings.TrimSpace(title)
	}
	return ""
}
