package htmlutil

import (
	"bytes"
	"html"
	"strings"
	"unicode"

	"storefront-harvester/lib/textutil"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
	nethtml "golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// GetText concatenates every text node under node, like the DOM's textContent.
func GetText(node *nethtml.Node) string {
	var buffer bytes.Buffer
	getTextRecursive(node, &buffer, false)
	return buffer.String()
}

// VisibleText approximates the DOM's innerText for every node of the selection: text inside
// script, style, noscript and template elements is skipped, and text nodes are separated by
// whitespace so adjacent inline elements don't run into each other. The result is
// whitespace-collapsed.
func VisibleText(sel *goquery.Selection) string {
	var buffer bytes.Buffer
	for _, n := range sel.Nodes {
		getTextRecursive(n, &buffer, true)
		buffer.WriteByte(' ')
	}
	return textutil.CollapseSpace(buffer.String())
}

func getTextRecursive(node *nethtml.Node, buffer *bytes.Buffer, visibleOnly bool) {
	if node == nil {
		return
	}
	if node.Type == nethtml.TextNode {
		buffer.WriteString(node.Data)
		if visibleOnly {
			buffer.WriteByte(' ')
		}
		return
	}
	if visibleOnly && node.Type == nethtml.ElementNode {
		switch node.DataAtom {
		case atom.Script, atom.Style, atom.Noscript, atom.Template:
			return
		}
	}
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		getTextRecursive(child, buffer, visibleOnly)
	}
}

var strictPolicy = bluemonday.StrictPolicy()

// PlainText turns a string scraped out of markup (attribute values, meta content) into
// presentable text: tags are stripped, entities decoded, non-printable runes dropped and
// whitespace collapsed.
func PlainText(s string) string {
	if s == "" {
		return ""
	}
	if strings.ContainsAny(s, "<>") {
		s = strictPolicy.Sanitize(s)
	}
	s = html.UnescapeString(s)
	s = removeNonPrintable(s)
	return textutil.CollapseSpace(s)
}

func removeNonPrintable(s string) string {
	newStr := strings.Builder{}
	for _, c := range s {
		if unicode.IsPrint(c) || unicode.IsSpace(c) {
			newStr.WriteRune(c)
		}
	}
	return newStr.String()
}
