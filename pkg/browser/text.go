package browser

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// Text is the readable text of a page with its metadata.
type Text struct {
	Title       string
	Description string
	Text        string
	Truncated   bool
}

// extractText parses rawHTML and returns its visible text, one line per
// block element. maxLength <= 0 means no limit.
func extractText(rawHTML string, maxLength int) (*Text, error) {
	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	result := &Text{
		Title:       findTitle(doc),
		Description: findMetaDescription(doc),
	}

	w := &textWriter{max: maxLength}
	w.walk(doc)
	result.Text = strings.TrimSpace(w.b.String())
	result.Truncated = w.truncated
	return result, nil
}

type textWriter struct {
	b         strings.Builder
	max       int
	truncated bool
	// pendingSpace and pendingBreak are separators owed before the next word
	pendingSpace bool
	pendingBreak bool
}

func (w *textWriter) walk(n *html.Node) {
	if w.truncated {
		return
	}
	switch n.Type {
	case html.CommentNode:
		return
	case html.TextNode:
		w.text(n.Data)
		return
	case html.ElementNode:
		tag := strings.ToLower(n.Data)
		if hiddenElement(tag) {
			return
		}
		if tag == "br" {
			w.pendingBreak = true
			return
		}
		block := blockElement(tag)
		if block {
			w.pendingBreak = true
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			w.walk(c)
		}
		if block {
			w.pendingBreak = true
		}
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		w.walk(c)
	}
}

func (w *textWriter) text(data string) {
	if len(data) > 0 && isSpace(data[0]) {
		w.pendingSpace = true
	}
	for i, word := range strings.Fields(data) {
		if i > 0 {
			w.pendingSpace = true
		}
		if !w.word(word) {
			return
		}
	}
	if len(data) > 0 && isSpace(data[len(data)-1]) {
		w.pendingSpace = true
	}
}

// word appends one word and its separator. It reports false once the limit
// is reached.
func (w *textWriter) word(word string) bool {
	var sep string
	if w.b.Len() > 0 {
		switch {
		case w.pendingBreak:
			sep = "\n"
		case w.pendingSpace:
			sep = " "
		}
	}
	w.pendingBreak, w.pendingSpace = false, false

	if w.max > 0 && w.b.Len()+len(sep)+len(word) > w.max {
		w.b.WriteString(sep)
		remaining := w.max - w.b.Len()
		if remaining > 0 {
			w.b.WriteString(word[:remaining])
		}
		w.b.WriteString("...")
		w.truncated = true
		return false
	}
	w.b.WriteString(sep)
	w.b.WriteString(word)
	return true
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\n' || c == '\t' || c == '\r' || c == '\f'
}

func hiddenElement(tag string) bool {
	switch tag {
	case "head", "script", "style", "noscript", "template", "iframe", "object", "embed", "svg":
		return true
	}
	return false
}

func blockElement(tag string) bool {
	switch tag {
	case "address", "article", "aside", "blockquote", "dd", "div", "dl", "dt",
		"fieldset", "figcaption", "figure", "footer", "form", "h1", "h2", "h3",
		"h4", "h5", "h6", "header", "hr", "li", "main", "nav", "ol", "p", "pre",
		"section", "table", "tr", "td", "th", "ul":
		return true
	}
	return false
}

func findTitle(doc *html.Node) string {
	var title string
	var traverse func(*html.Node)
	traverse = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "title" {
			if n.FirstChild != nil && n.FirstChild.Type == html.TextNode {
				title = strings.TrimSpace(n.FirstChild.Data)
			}
			return
		}
		for c := n.FirstChild; c != nil && title == ""; c = c.NextSibling {
			traverse(c)
		}
	}
	traverse(doc)
	return title
}

func findMetaDescription(doc *html.Node) string {
	var description string
	var traverse func(*html.Node)
	traverse = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "meta" {
			var isDescription bool
			var content string
			for _, attr := range n.Attr {
				switch {
				case attr.Key == "name" && strings.EqualFold(attr.Val, "description"):
					isDescription = true
				case attr.Key == "content":
					content = attr.Val
				}
			}
			if isDescription {
				description = strings.TrimSpace(content)
			}
			return
		}
		for c := n.FirstChild; c != nil && description == ""; c = c.NextSibling {
			traverse(c)
		}
	}
	traverse(doc)
	return description
}
