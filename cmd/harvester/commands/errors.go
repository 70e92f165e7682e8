package commands

import (
	"fmt"
	"strings"

	"storefront-harvester/internal/storefront"
)

func errUnknownStorefront(name string) error {
	if suggestion, ok := storefront.Suggest(name); ok {
		return fmt.Errorf("%q is not a storefront, did you mean %q?", name, suggestion)
	}
	return fmt.Errorf("%q is not a storefront, expected one of: %s", name, strings.Join(storefront.Names(), ", "))
}
