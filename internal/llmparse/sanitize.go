// Package llmparse extracts admission records from pages the rule parser
// cannot handle, by sending per-table chunks to a language model. The
// admission type is never trusted to the model: it is resolved from context
// text deterministically and injected into the model's output.
package llmparse

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	commentRE    = regexp.MustCompile(`(?s)<!--.*?-->`)
	hspaceRE     = regexp.MustCompile(`[ \t]+`)
	blankLinesRE = regexp.MustCompile(`\n{2,}`)
)

// strippedAttrs are styling/layout attributes that carry no content signal.
// Removing them (plus every data-* attribute) typically shrinks a source
// page by a large factor and keeps model context on actual table content.
var strippedAttrs = map[string]bool{
	"style": true, "class": true, "id": true, "valign": true, "align": true,
	"width": true, "height": true, "bgcolor": true, "border": true,
	"cellpadding": true, "cellspacing": true, "color": true, "face": true,
}

// Sanitize aggressively strips non-content markup from an HTML document:
// head/style/script blocks, comments, styling attributes, data-* attributes,
// non-breaking spaces. Table structure (colspan/rowspan) survives.
func Sanitize(html string) string {
	html = commentRE.ReplaceAllString(html, "")

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return html
	}

	doc.Find("head,style,script,link,meta,iframe,noscript,img").Remove()

	doc.Find("*").Each(func(_ int, sel *goquery.Selection) {
		node := sel.Get(0)
		kept := node.Attr[:0]
		for _, a := range node.Attr {
			if strippedAttrs[a.Key] || strings.HasPrefix(a.Key, "data-") {
				continue
			}
			kept = append(kept, a)
		}
		node.Attr = kept
	})

	out, err := doc.Find("body").Html()
	if err != nil || strings.TrimSpace(out) == "" {
		out, _ = doc.Html()
	}

	out = strings.ReplaceAll(out, "&nbsp;", " ")
	out = strings.ReplaceAll(out, " ", " ")
	out = hspaceRE.ReplaceAllString(out, " ")
	out = blankLinesRE.ReplaceAllString(out, "\n")
	return strings.TrimSpace(out)
}
