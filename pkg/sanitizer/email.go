// Package sanitizer provides bluemonday policies for outgoing email HTML.
package sanitizer

import (
	"regexp"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	emailPolicy *bluemonday.Policy
	emailOnce   sync.Once

	colorValue  = regexp.MustCompile(`^(#[0-9a-fA-F]{3,8}|[a-zA-Z]+|rgba?\([0-9.,%\s]+\))$`)
	lengthValue = regexp.MustCompile(`^(auto|0|-?[0-9.]+(px|em|rem|%|pt)?)(\s+(auto|0|-?[0-9.]+(px|em|rem|%|pt)?)){0,3}$`)
	fontFamily  = regexp.MustCompile(`^[a-zA-Z0-9\s,'"-]+$`)
)

// EmailPolicy allows the markup mail clients render: table layouts, images,
// links and a small set of inline styles. Scripts, forms, event handlers and
// javascript: URLs are removed.
//
// The policy is built once and shared; bluemonday policies are safe for
// concurrent Sanitize calls.
func EmailPolicy() *bluemonday.Policy {
	emailOnce.Do(func() {
		p := bluemonday.UGCPolicy()

		p.AllowElements("center", "font", "span", "div", "hr")
		p.AllowAttrs("align", "valign", "width", "height", "bgcolor", "border",
			"cellpadding", "cellspacing").OnElements("table", "tr", "td", "th", "img", "div")
		p.AllowAttrs("color", "face", "size").OnElements("font")
		p.AllowAttrs("target").Matching(regexp.MustCompile(`^_blank$`)).OnElements("a")

		p.AllowStyles("color", "background-color", "border-color").Matching(colorValue).Globally()
		p.AllowStyles("width", "max-width", "height", "padding", "margin", "border-radius",
			"font-size", "line-height").Matching(lengthValue).Globally()
		p.AllowStyles("font-family").Matching(fontFamily).Globally()
		p.AllowStyles("font-weight").MatchingEnum("normal", "bold", "400", "600", "700").Globally()
		p.AllowStyles("text-align").MatchingEnum("left", "center", "right", "justify").Globally()
		p.AllowStyles("text-decoration").MatchingEnum("none", "underline").Globally()
		p.AllowStyles("display").MatchingEnum("block", "inline-block", "none").Globally()

		p.AddTargetBlankToFullyQualifiedLinks(true)

		emailPolicy = p
	})
	return emailPolicy
}
