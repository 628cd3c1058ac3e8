package network

import (
	"errors"
	"fmt"
)

// ErrUnknownLayout is returned for layout names the viewer does not offer.
var ErrUnknownLayout = errors.New("unknown layout")

// Layout names offered by the viewer. Force-directed layouts run in the browser.
const (
	LayoutFCoSE        = "fcose"
	LayoutCoSE         = "cose"
	LayoutGrid         = "grid"
	LayoutCircle       = "circle"
	LayoutConcentric   = "concentric"
	LayoutBreadthFirst = "breadthfirst"
)

// DefaultLayout is applied on load and after filtering.
const DefaultLayout = LayoutFCoSE

var layouts = []string{
	LayoutFCoSE, LayoutCoSE, LayoutGrid, LayoutCircle, LayoutConcentric, LayoutBreadthFirst,
}

// Layouts lists the supported layout names.
func Layouts() []string {
	return append([]string(nil), layouts...)
}

// ValidateLayout checks that name is a supported layout.
func ValidateLayout(name string) error {
	for _, l := range layouts {
		if l == name {
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrUnknownLayout, name)
}
