package htmlutil

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

func parse(t testing.TB, markup string) *goquery.Document {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	require.NoError(t, err)
	return doc
}

func TestVisibleText(t *testing.T) {
	doc := parse(t, `<div class="card">
		<script>var price = "$999.00";</script>
		<style>.x{}</style>
		<span>Cute Sticker</span><span>$3.59</span><span>12 sold</span>
	</div>`)

	require.Equal(t, "Cute Sticker $3.59 12 sold", VisibleText(doc.Find("div.card")))
}

func TestGetText(t *testing.T) {
	doc := parse(t, `<p>Hello <b>world</b></p>`)
	require.Equal(t, "Hello world", GetText(doc.Find("p").Nodes[0]))
}

func TestPlainText(t *testing.T) {
	table := []struct {
		input    string
		expected string
	}{
		{input: "", expected: ""},
		{input: "Tom &amp; Jerry", expected: "Tom & Jerry"},
		{input: "Cat&#39;s  Mug\n", expected: "Cat's Mug"},
		{input: "<b>Bold</b> title", expected: "Bold title"},
		{input: "&lt;3 stickers", expected: "<3 stickers"},
	}

	for _, row := range table {
		require.Equal(t, row.expected, PlainText(row.input), row.input)
	}
}
