// Package markup reduces page HTML to the body content worth reading.
package markup

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
)

const truncationNotice = "\n<!-- truncated -->"

var ErrNoBody = errors.New("document has no body")

type Config struct {
	DropTags         []string
	DropAttrs        []string
	DropAttrPrefixes []string
	// MaxBytes caps the rendered output. Zero disables truncation.
	MaxBytes   int
	AttrFilter func(attr html.Attribute) bool
}

func DefaultConfig() Config {
	return Config{
		DropTags: []string{
			"script", "style", "noscript", "svg", "iframe",
			"link", "meta", "head", "title", "template",
		},
		DropAttrs: []string{
			"style", "srcset", "sizes", "loading", "decoding", "fetchpriority", "tabindex",
		},
		DropAttrPrefixes: []string{"data-", "aria-", "on"},
		MaxBytes:         130_000,
	}
}

type Cleaner struct {
	cfg Config
}

func NewCleaner(cfg Config) *Cleaner {
	return &Cleaner{cfg: cfg}
}

// Clean parses rawHTML and renders its body without comments, dropped tags and
// dropped attributes.
func (c *Cleaner) Clean(rawHTML string) (string, error) {
	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	body := findBody(doc)
	if body == nil {
		return "", ErrNoBody
	}

	c.clean(body)

	var sb strings.Builder
	if err := html.Render(&sb, body); err != nil {
		return "", fmt.Errorf("render html: %w", err)
	}
	return truncate(sb.String(), c.cfg.MaxBytes), nil
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if body := findBody(child); body != nil {
			return body
		}
	}
	return nil
}

func (c *Cleaner) clean(n *html.Node) {
	switch {
	case n.Type == html.CommentNode:
		n.Parent.RemoveChild(n)
		return
	case n.Type != html.ElementNode:
		return
	case slices.Contains(c.cfg.DropTags, n.Data):
		n.Parent.RemoveChild(n)
		return
	}

	kept := n.Attr[:0]
	for _, attr := range n.Attr {
		if !c.dropAttr(attr) {
			kept = append(kept, attr)
		}
	}
	n.Attr = kept

	for child := n.FirstChild; child != nil; {
		next := child.NextSibling
		c.clean(child)
		child = next
	}
}

func (c *Cleaner) dropAttr(attr html.Attribute) bool {
	if slices.Contains(c.cfg.DropAttrs, attr.Key) {
		return true
	}
	for _, prefix := range c.cfg.DropAttrPrefixes {
		if strings.HasPrefix(attr.Key, prefix) {
			return true
		}
	}
	return c.cfg.AttrFilter != nil && c.cfg.AttrFilter(attr)
}

// truncate cuts s to at most maxBytes without splitting a rune.
func truncate(s string, maxBytes int) string {
	if maxBytes <= 0 || len(s) <= maxBytes {
		return s
	}
	cut := maxBytes
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + truncationNotice
}
