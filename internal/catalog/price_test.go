package catalog

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFormatPrice(t *testing.T) {
	table := []struct {
		input    string
		expected string
	}{
		{input: "$3.59", expected: "$3.59"},
		{input: "$3.5", expected: "$3.50"},
		{input: "USD 12", expected: "$12.00"},
		{input: "1,299.00", expected: "$1299.00"},
		{input: " $ 7 ", expected: "$7.00"},
		{input: "free", expected: ""},
		{input: "", expected: ""},
	}

	for _, row := range table {
		require.Equal(t, row.expected, FormatPrice(row.input), row.input)
	}
}

func TestGuessPrice(t *testing.T) {
	table := []struct {
		input    string
		expected string
	}{
		{input: "Cute Sticker $3.59 12 sold", expected: "$3.59"},
		{input: "Pin USD 12 shipping $2", expected: "$2.00"},
		{input: "Pin usd12.5", expected: "$12.50"},
		{input: "Pin USD 8", expected: "$8.00"},
		{input: "sold out", expected: ""},
		{input: "", expected: ""},
	}

	for _, row := range table {
		require.Equal(t, row.expected, GuessPrice(row.input), row.input)
	}
}

func TestDollarPrice(t *testing.T) {
	require.Equal(t, "$5.00", DollarPrice("Add to cart $5"))
	require.Equal(t, "", DollarPrice("USD 5"))
}
