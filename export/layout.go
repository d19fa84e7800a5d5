package export

import (
	"bytes"
	"strconv"

	"github.com/a-h/templ"

	"github.com/eringen/letterpress/newsletter"
)

// Full-width images are declared at the container width minus its padding.
const (
	fullImageWidth  = 552
	fullImageHeight = 300
	fullImageAlt    = "Article"
)

const tableOpen = "                <table role=\"presentation\" cellpadding=\"0\" cellspacing=\"0\" border=\"0\" width=\"100%\">\n"

func writePost(buf *bytes.Buffer, p newsletter.Post) {
	switch l := p.Layout.(type) {
	case newsletter.Double:
		writeColumns(buf, l.StackWidth, func() {
			writeColumnImage(buf, l.Slot.Image)
		}, func() {
			writeColumnText(buf, l.Slot)
		})
	case newsletter.SinglePair:
		writeColumns(buf, l.StackWidth, func() {
			writeColumnImage(buf, l.Left.Image)
			writeColumnText(buf, l.Left)
		}, func() {
			writeColumnImage(buf, l.Right.Image)
			writeColumnText(buf, l.Right)
		})
	case newsletter.FullWidth:
		writeFullWidth(buf, l.Slot)
	}
}

// writeColumns emits a two-cell row whose widths add up to 100%.
func writeColumns(buf *bytes.Buffer, leftWidth int, left, right func()) {
	rightWidth := 100 - leftWidth

	buf.WriteString("            <tr>\n              <td class=\"p16 two-columns\">\n")
	buf.WriteString(tableOpen)
	buf.WriteString("                  <tr>\n")
	buf.WriteString("                    <td class=\"stack\" width=\"" + strconv.Itoa(leftWidth) + "%\" valign=\"top\">\n")
	left()
	buf.WriteString("                    </td>\n")
	buf.WriteString("                    <td class=\"stack\" width=\"" + strconv.Itoa(rightWidth) + "%\" valign=\"top\" style=\"padding-left: 12px;\">\n")
	right()
	buf.WriteString("                    </td>\n")
	buf.WriteString("                  </tr>\n                </table>\n              </td>\n            </tr>\n")
}

func writeColumnImage(buf *bytes.Buffer, img newsletter.Image) {
	if img.IsZero() {
		return
	}
	buf.WriteString("                      <img src=\"" + img.String() + "\" class=\"column-img\" style=\"width:100%; height:auto; display:block;\">\n")
}

func writeColumnText(buf *bytes.Buffer, s newsletter.Slot) {
	buf.WriteString("                      <div class=\"column-title\">" + s.Title + "</div>\n")
	buf.WriteString("                      <div class=\"column-text\">" + s.Content + "</div>\n")
}

func writeFullWidth(buf *bytes.Buffer, s newsletter.Slot) {
	buf.WriteString("            <tr>\n              <td class=\"full-width-article\" style=\"padding:0 24px 24px 24px;\">\n")
	buf.WriteString(tableOpen)
	buf.WriteString("                  <tr>\n                    <td valign=\"top\">\n")
	if !s.Image.IsZero() {
		alt := s.Title
		if alt == "" {
			alt = fullImageAlt
		}
		buf.WriteString("                      <img src=\"" + s.Image.String() + "\"" +
			" width=\"" + strconv.Itoa(fullImageWidth) + "\" height=\"" + strconv.Itoa(fullImageHeight) + "\"" +
			" alt=\"" + templ.EscapeString(alt) + "\" class=\"full-width-img\" style=\"width:100%; height:auto; display:block;\">\n")
	}
	buf.WriteString("                      <div class=\"full-width-title\" style=\"font-family:Arial,Helvetica,sans-serif; font-size:20px; line-height:1.35; color:#111111; padding-top:12px; font-weight:bold;\">" + s.Title + "</div>\n")
	buf.WriteString("                      <div class=\"full-width-text\" style=\"font-family:Arial,Helvetica,sans-serif; font-size:15px; line-height:1.55; color:#333333; padding-top:8px; text-align:justify;\">" + s.Content + "</div>\n")
	buf.WriteString("                    </td>\n                  </tr>\n                </table>\n              </td>\n            </tr>\n")
}
