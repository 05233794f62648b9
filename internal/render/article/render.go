// Package article renders a post's body, usually pre-sanitized discussion
// HTML, into wrapped terminal lines for the detail pane.
package article

import (
	"html"
	"strings"
	"unicode/utf8"

	nethtml "golang.org/x/net/html"

	"github.com/glabrego/postdeck/internal/post"
)

const quotePrefix = "│ "

// ContentLines renders the detail body for p at the given width. Comment
// HTML wins over the summary text; plain-text bodies are wrapped as-is.
func ContentLines(p post.Post, width int) []string {
	body := strings.TrimSpace(p.Body())
	if body == "" {
		return nil
	}
	if !strings.Contains(body, "<") {
		return wrapText(html.UnescapeString(body), width)
	}
	lines := renderFragmentLines(body, width)
	if len(lines) > 0 {
		return lines
	}
	return wrapText(strings.TrimSpace(html.UnescapeString(body)), width)
}

func renderFragmentLines(raw string, width int) []string {
	doc, err := nethtml.Parse(strings.NewReader("<html><body>" + raw + "</body></html>"))
	if err != nil {
		return nil
	}
	body := findBodyNode(doc)
	if body == nil {
		return nil
	}
	r := renderer{width: maxInt(1, width)}
	return trimBlankLines(r.renderNodes(elementChildren(body), 0))
}

type renderer struct {
	width int
}

func (r renderer) renderNodes(nodes []*nethtml.Node, listDepth int) []string {
	lines := make([]string, 0, len(nodes)*2)
	inlineParts := make([]string, 0, 4)
	flushInline := func() {
		text := normalizeInlineText(strings.Join(inlineParts, " "))
		inlineParts = inlineParts[:0]
		if text == "" {
			return
		}
		block := wrapText(text, r.width)
		if len(block) == 0 {
			return
		}
		if len(lines) > 0 && lines[len(lines)-1] != "" {
			lines = append(lines, "")
		}
		lines = append(lines, block...)
	}

	for _, node := range nodes {
		switch node.Type {
		case nethtml.TextNode:
			inlineParts = append(inlineParts, node.Data)
		case nethtml.ElementNode:
			if isBlockElement(node.Data) {
				flushInline()
				block := r.renderBlock(node, listDepth)
				if len(block) == 0 {
					continue
				}
				if len(lines) > 0 && lines[len(lines)-1] != "" {
					lines = append(lines, "")
				}
				lines = append(lines, block...)
				continue
			}
			inlineParts = append(inlineParts, r.renderInlineNode(node))
		}
	}
	flushInline()
	return trimBlankLines(lines)
}

func (r renderer) renderBlock(node *nethtml.Node, listDepth int) []string {
	switch strings.ToLower(node.Data) {
	case "script", "style", "noscript", "img":
		return nil
	case "p", "div", "section", "article":
		if hasBlockChild(node) {
			return r.renderNodes(elementChildren(node), listDepth)
		}
		if text := normalizeInlineText(r.renderInlineChildren(node)); text != "" {
			return wrapText(text, r.width)
		}
		return r.renderNodes(elementChildren(node), listDepth)
	case "blockquote":
		inner := r.renderNodes(elementChildren(node), listDepth)
		if len(inner) == 0 {
			text := normalizeInlineText(r.renderInlineChildren(node))
			if text == "" {
				return nil
			}
			inner = wrapText(text, maxInt(1, r.width-utf8.RuneCountInString(quotePrefix)))
		}
		out := make([]string, 0, len(inner))
		for _, line := range inner {
			if strings.TrimSpace(line) == "" {
				out = append(out, "")
				continue
			}
			out = append(out, quotePrefix+line)
		}
		return out
	case "ul":
		return r.renderList(node, false, listDepth+1)
	case "ol":
		return r.renderList(node, true, listDepth+1)
	case "pre":
		text := strings.ReplaceAll(collectRawText(node), "\r\n", "\n")
		rawLines := strings.Split(strings.Trim(text, "\n"), "\n")
		out := make([]string, 0, len(rawLines))
		for _, line := range rawLines {
			out = append(out, "    "+strings.TrimRight(line, " \t"))
		}
		return out
	case "hr":
		return []string{strings.Repeat("─", minInt(r.width, 20))}
	case "h1", "h2", "h3", "h4", "h5", "h6":
		text := normalizeInlineText(r.renderInlineChildren(node))
		if text == "" {
			return nil
		}
		return wrapText("# "+text, r.width)
	default:
		return r.renderNodes(elementChildren(node), listDepth)
	}
}

func (r renderer) renderList(node *nethtml.Node, ordered bool, depth int) []string {
	indent := strings.Repeat("  ", maxInt(0, depth-1))
	lines := make([]string, 0, 8)
	counter := 0
	for _, child := range elementChildren(node) {
		if child.Type != nethtml.ElementNode || !strings.EqualFold(child.Data, "li") {
			continue
		}
		counter++
		marker := indent + "• "
		if ordered {
			marker = indent + itoa(counter) + ". "
		}
		cont := strings.Repeat(" ", utf8.RuneCountInString(marker))

		if hasBlockChild(child) {
			inner := r.renderNodes(elementChildren(child), depth)
			for i, line := range inner {
				if i == 0 {
					lines = append(lines, marker+line)
					continue
				}
				if strings.TrimSpace(line) == "" {
					lines = append(lines, "")
					continue
				}
				lines = append(lines, cont+line)
			}
			continue
		}

		text := normalizeInlineText(r.renderInlineChildren(child))
		if text == "" {
			continue
		}
		wrapped := wrapText(text, maxInt(1, r.width-utf8.RuneCountInString(marker)))
		for i, line := range wrapped {
			if i == 0 {
				lines = append(lines, marker+line)
			} else {
				lines = append(lines, cont+line)
			}
		}
	}
	return lines
}

func (r renderer) renderInlineChildren(node *nethtml.Node) string {
	parts := make([]string, 0, 4)
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		parts = append(parts, r.renderInlineNode(child))
	}
	return strings.Join(parts, " ")
}

func (r renderer) renderInlineNode(node *nethtml.Node) string {
	if node == nil {
		return ""
	}
	switch node.Type {
	case nethtml.TextNode:
		return node.Data
	case nethtml.ElementNode:
		switch strings.ToLower(node.Data) {
		case "script", "style", "noscript", "img":
			return ""
		case "br":
			return "\n"
		case "a":
			text := normalizeInlineText(r.renderInlineChildren(node))
			href := strings.TrimSpace(nodeAttr(node, "href"))
			switch {
			case href == "":
				return text
			case text == "":
				return href
			case strings.EqualFold(text, href):
				return href
			default:
				return text + " (" + href + ")"
			}
		case "code", "kbd", "samp":
			text := normalizeInlineText(r.renderInlineChildren(node))
			if text == "" {
				return ""
			}
			return "`" + text + "`"
		default:
			return r.renderInlineChildren(node)
		}
	default:
		return ""
	}
}
