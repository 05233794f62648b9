package article

import (
	"html"
	"strconv"
	"strings"
	"unicode/utf8"

	nethtml "golang.org/x/net/html"
)

var blockElements = map[string]struct{}{
	"p": {}, "div": {}, "section": {}, "article": {}, "blockquote": {},
	"ul": {}, "ol": {}, "li": {}, "pre": {}, "hr": {},
	"h1": {}, "h2": {}, "h3": {}, "h4": {}, "h5": {}, "h6": {},
	"script": {}, "style": {}, "noscript": {}, "img": {},
}

func isBlockElement(tag string) bool {
	_, ok := blockElements[strings.ToLower(tag)]
	return ok
}

func hasBlockChild(node *nethtml.Node) bool {
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == nethtml.ElementNode && isBlockElement(child.Data) {
			return true
		}
	}
	return false
}

func elementChildren(node *nethtml.Node) []*nethtml.Node {
	out := make([]*nethtml.Node, 0, 4)
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		out = append(out, child)
	}
	return out
}

func findBodyNode(node *nethtml.Node) *nethtml.Node {
	if node.Type == nethtml.ElementNode && node.Data == "body" {
		return node
	}
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		if body := findBodyNode(child); body != nil {
			return body
		}
	}
	return nil
}

func nodeAttr(node *nethtml.Node, name string) string {
	for _, attr := range node.Attr {
		if strings.EqualFold(attr.Key, name) {
			return attr.Val
		}
	}
	return ""
}

func collectRawText(node *nethtml.Node) string {
	var sb strings.Builder
	var walk func(*nethtml.Node)
	walk = func(n *nethtml.Node) {
		if n.Type == nethtml.TextNode {
			sb.WriteString(n.Data)
			return
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(node)
	return sb.String()
}

// normalizeInlineText collapses runs of whitespace while keeping explicit
// newlines (from <br>) as line breaks.
func normalizeInlineText(raw string) string {
	raw = html.UnescapeString(raw)
	segments := strings.Split(raw, "\n")
	for i, segment := range segments {
		segments[i] = strings.Join(strings.Fields(segment), " ")
	}
	out := strings.Join(segments, "\n")
	out = strings.Trim(out, "\n")
	return strings.TrimSpace(out)
}

func wrapText(text string, width int) []string {
	if width < 1 {
		width = 1
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	lines := make([]string, 0, 8)
	for _, paragraph := range strings.Split(text, "\n") {
		words := strings.Fields(paragraph)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}
		current := words[0]
		for _, word := range words[1:] {
			if utf8.RuneCountInString(current)+1+utf8.RuneCountInString(word) <= width {
				current += " " + word
				continue
			}
			lines = append(lines, current)
			current = word
		}
		lines = append(lines, current)
	}
	return lines
}

func trimBlankLines(lines []string) []string {
	start := 0
	for start < len(lines) && strings.TrimSpace(lines[start]) == "" {
		start++
	}
	end := len(lines)
	for end > start && strings.TrimSpace(lines[end-1]) == "" {
		end--
	}
	return lines[start:end]
}

func itoa(n int) string {
	return strconv.Itoa(n)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
