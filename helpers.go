package letterpress

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/eringen/letterpress/newsletter"
)

// Slugify converts a title to a file name friendly slug.
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	prev := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			prev = false
		default:
			if !prev && b.Len() > 0 {
				b.WriteByte('-')
				prev = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}

// ExportFilename is the file name a newsletter is saved under, for example
// "weekly-digest-12.html". The id keeps names unique across equal titles.
func ExportFilename(n newsletter.Newsletter) string {
	slug := Slugify(n.Title)
	if slug == "" {
		slug = "newsletter"
	}
	return fmt.Sprintf("%s-%d.html", slug, n.ID)
}

// paramID parses a positive integer path parameter.
func paramID(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, &newsletter.ValidationError{Field: name, Reason: "must be a positive integer"}
	}
	return id, nil
}
