package catalog

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	dollarRegex = regexp.MustCompile(`\$\s?(\d+(?:\.\d{1,2})?)`)
	usdRegex    = regexp.MustCompile(`(?i)\bUSD\s?(\d+(?:\.\d{1,2})?)\b`)
	amountRegex = regexp.MustCompile(`\d+(?:\.\d+)?`)
)

// FormatPrice turns a scraped price ("$3.5", "USD 12", "1,299.00") into "$X.XX".
// Text without any amount in it yields "".
func FormatPrice(raw string) string {
	raw = strings.ReplaceAll(raw, ",", "")
	amount := amountRegex.FindString(raw)
	if amount == "" {
		return ""
	}
	value, err := strconv.ParseFloat(amount, 64)
	if err != nil {
		return ""
	}
	return fmt.Sprintf("$%.2f", value)
}

// GuessPrice searches unstructured text for a "$" amount, then a "USD" amount, and returns
// the first hit formatted. Unrelated amounts near the product get picked up too, there is
// no way to tell them apart from the text alone.
func GuessPrice(text string) string {
	if m := dollarRegex.FindStringSubmatch(text); m != nil {
		return FormatPrice(m[1])
	}
	if m := usdRegex.FindStringSubmatch(text); m != nil {
		return FormatPrice(m[1])
	}
	return ""
}

// DollarPrice is GuessPrice restricted to "$" amounts, product pages always render those.
func DollarPrice(text string) string {
	if m := dollarRegex.FindStringSubmatch(text); m != nil {
		return FormatPrice(m[1])
	}
	return ""
}
