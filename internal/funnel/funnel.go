// Package funnel normalizes sales funnel identifiers.
package funnel

import (
	"strings"

	"github.com/gosimple/slug"
)

// Normalize turns a funnel id into its canonical slug form, e.g.
// "Enfinitus Website" becomes "enfinitus-website".
func Normalize(id string) string {
	id = strings.TrimSpace(id)
	if id == "" {
		return ""
	}
	return slug.Make(id)
}
