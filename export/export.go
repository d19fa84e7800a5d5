// Package export renders a newsletter and its posts into a standalone,
// email-client friendly HTML document.
//
// Titles, contents, hero and footer text are written verbatim so editors can
// use inline markup. Callers must not pass untrusted text.
package export

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"

	"github.com/eringen/letterpress/newsletter"
)

const (
	DefaultLang  = "en"
	DefaultTitle = "Newsletter"
)

type options struct {
	lang  string
	title string
}

// Option customizes the document shell.
type Option func(*options)

// WithLang sets the lang attribute of the document.
func WithLang(lang string) Option {
	return func(o *options) {
		if lang != "" {
			o.lang = lang
		}
	}
}

// WithTitle sets the <title> of the document.
func WithTitle(title string) Option {
	return func(o *options) {
		if title != "" {
			o.title = title
		}
	}
}

// Document validates n and posts and returns a component that writes the
// full HTML document. Posts are rendered in the order given.
func Document(n newsletter.Newsletter, posts []newsletter.Post, opts ...Option) (templ.Component, error) {
	o := options{lang: DefaultLang, title: DefaultTitle}
	for _, opt := range opts {
		opt(&o)
	}
	if err := check(n, posts); err != nil {
		return nil, err
	}

	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var buf bytes.Buffer
		writeDocument(&buf, o, n, posts)
		_, err := w.Write(buf.Bytes())
		return err
	}), nil
}

// Render is Document written to a string.
func Render(n newsletter.Newsletter, posts []newsletter.Post, opts ...Option) (string, error) {
	doc, err := Document(n, posts, opts...)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	if err := doc.Render(context.Background(), &sb); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func check(n newsletter.Newsletter, posts []newsletter.Post) error {
	if err := checkImage("header_logo", n.HeaderLogo); err != nil {
		return err
	}
	if err := checkImage("hero_image", n.HeroImage); err != nil {
		return err
	}
	for i, p := range posts {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("post %d: %w", i, err)
		}
		if err := checkImage("image", p.Primary().Image); err != nil {
			return fmt.Errorf("post %d: %w", i, err)
		}
		if s, ok := p.Secondary(); ok {
			if err := checkImage("image2", s.Image); err != nil {
				return fmt.Errorf("post %d: %w", i, err)
			}
		}
	}
	return nil
}

// checkImage checks the data URI syntax without decoding; payloads were decoded when
// the image entered the system.
func checkImage(field string, img newsletter.Image) error {
	if img.IsZero() || strings.HasPrefix(img.MIMEType(), "image/") {
		return nil
	}
	return &newsletter.ValidationError{Field: field, Reason: "image must be an inline data URI"}
}

func writeDocument(buf *bytes.Buffer, o options, n newsletter.Newsletter, posts []newsletter.Post) {
	lang := templ.EscapeString(o.lang)

	buf.WriteString("<!doctype html>\n<html lang=\"" + lang + "\">\n<head>\n")
	buf.WriteString("  <meta charset=\"utf-8\">\n")
	buf.WriteString("  <meta name=\"viewport\" content=\"width=device-width, initial-scale=1\">\n")
	buf.WriteString("  <title>" + templ.EscapeString(o.title) + "</title>\n")
	buf.WriteString(stylesheet)
	buf.WriteString("</head>\n<body class=\"body\">\n")
	buf.WriteString("  <center role=\"article\" aria-roledescription=\"email\" lang=\"" + lang + "\" class=\"center-role\">\n")
	buf.WriteString("    <table role=\"presentation\" cellpadding=\"0\" cellspacing=\"0\" border=\"0\" width=\"100%\">\n")
	buf.WriteString("      <tr>\n        <td align=\"center\">\n")
	buf.WriteString("          <table role=\"presentation\" cellpadding=\"0\" cellspacing=\"0\" border=\"0\" width=\"600\" class=\"container\">\n")

	writeHeader(buf, n)
	for _, p := range posts {
		writePost(buf, p)
	}
	writeFooter(buf, n)

	buf.WriteString("          </table>\n        </td>\n      </tr>\n    </table>\n  </center>\n</body>\n</html>\n")
}

func writeHeader(buf *bytes.Buffer, n newsletter.Newsletter) {
	buf.WriteString("            <tr>\n              <td class=\"header\">\n")
	if !n.HeaderLogo.IsZero() {
		buf.WriteString("                <img src=\"" + n.HeaderLogo.String() + "\" class=\"logo\" alt=\"Logo\" style=\"max-width: 200px;\">\n")
	}
	buf.WriteString("              </td>\n            </tr>\n")

	buf.WriteString("            <tr>\n              <td class=\"hero\">\n")
	if !n.HeroImage.IsZero() {
		buf.WriteString("                <img src=\"" + n.HeroImage.String() + "\" class=\"hero-img\" alt=\"Hero\">\n")
	}
	buf.WriteString("              </td>\n            </tr>\n")

	if n.HeroTitle != "" {
		buf.WriteString("            <tr><td class=\"title\">" + n.HeroTitle + "</td></tr>\n")
	}
	if n.HeroSubtitle != "" {
		buf.WriteString("            <tr><td class=\"text\">" + n.HeroSubtitle + "</td></tr>\n")
	}
}

func writeFooter(buf *bytes.Buffer, n newsletter.Newsletter) {
	buf.WriteString("            <tr>\n              <td class=\"footer\">\n")
	buf.WriteString("                " + n.FooterText + "\n")
	buf.WriteString("              </td>\n            </tr>\n")
}
