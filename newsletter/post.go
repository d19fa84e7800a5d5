package newsletter

import (
	"fmt"
	"strings"
)

// LayoutKind names one of the three post layouts.
type LayoutKind string

const (
	LayoutDouble     LayoutKind = "double"      // image left, text right
	LayoutSinglePair LayoutKind = "single-pair" // two image+text blocks side by side
	LayoutFullWidth  LayoutKind = "full-width"  // one image+text block across the container
)

const (
	DefaultStackWidth = 50
	MinStackWidth     = 1
	MaxStackWidth     = 99
	// FullStackWidth is the fixed left-column width of full-width posts.
	FullStackWidth = 100
)

// Slot is one image + title + content block.
type Slot struct {
	Title   string
	Content string
	Image   Image
}

// IsZero reports whether the slot carries no content at all.
func (s Slot) IsZero() bool {
	return s.Title == "" && s.Content == "" && s.Image.IsZero()
}

// Layout is the closed set of post layouts: Double, SinglePair and FullWidth.
type Layout interface {
	Kind() LayoutKind
	sealed()
}

// Double renders Slot's image in the left column and its text in the right.
type Double struct {
	Slot       Slot
	StackWidth int
}

// SinglePair renders two independent slots side by side.
type SinglePair struct {
	Left       Slot
	Right      Slot
	StackWidth int
}

// FullWidth renders Slot stacked vertically across the whole container.
type FullWidth struct {
	Slot Slot
}

func (Double) Kind() LayoutKind     { return LayoutDouble }
func (SinglePair) Kind() LayoutKind { return LayoutSinglePair }
func (FullWidth) Kind() LayoutKind  { return LayoutFullWidth }

func (Double) sealed()     {}
func (SinglePair) sealed() {}
func (FullWidth) sealed()  {}

// Post is one content block of a newsletter.
type Post struct {
	ID           int64
	NewsletterID int64
	Position     int
	Layout       Layout
}

// Primary returns the slot shown first (left, or the only one).
func (p Post) Primary() Slot {
	switch l := p.Layout.(type) {
	case Double:
		return l.Slot
	case SinglePair:
		return l.Left
	case FullWidth:
		return l.Slot
	}
	return Slot{}
}

// Secondary returns the right-hand slot of a single-pair post.
func (p Post) Secondary() (Slot, bool) {
	if l, ok := p.Layout.(SinglePair); ok {
		return l.Right, true
	}
	return Slot{}, false
}

// StackWidth returns the left column width in percent.
func (p Post) StackWidth() int {
	switch l := p.Layout.(type) {
	case Double:
		return l.StackWidth
	case SinglePair:
		return l.StackWidth
	}
	return FullStackWidth
}

// Validate checks the structural invariants of an already constructed post.
// Image payloads are not decoded.
func (p Post) Validate() error {
	switch l := p.Layout.(type) {
	case Double:
		return checkStackWidth(l.StackWidth)
	case SinglePair:
		if err := checkStackWidth(l.StackWidth); err != nil {
			return err
		}
		if l.Right.IsZero() {
			return invalid("title2", "single-pair posts need a second block")
		}
		return nil
	case FullWidth:
		return nil
	case nil:
		return invalid("layout", "is required")
	}
	return invalid("layout", fmt.Sprintf("unknown layout %q", p.Layout.Kind()))
}

func checkStackWidth(w int) error {
	if w < MinStackWidth || w > MaxStackWidth {
		return invalid("stack_width", fmt.Sprintf("must be between %d and %d", MinStackWidth, MaxStackWidth))
	}
	return nil
}

// PostFields is the flat, storage and wire friendly shape of a post.
// The secondary slot fields are nil unless the layout is single-pair.
type PostFields struct {
	Layout     string
	Title      string
	Content    string
	Image      string
	Title2     *string
	Content2   *string
	Image2     *string
	StackWidth int
}

// NewPost validates f and builds a post, including a check that every image
// is a well-formed data URI.
func NewPost(newsletterID int64, position int, f PostFields) (Post, error) {
	layout, err := f.Build()
	if err != nil {
		return Post{}, err
	}
	if _, err := ParseImage(f.Image); err != nil {
		return Post{}, invalid("image", err.Error())
	}
	if f.Image2 != nil {
		if _, err := ParseImage(*f.Image2); err != nil {
			return Post{}, invalid("image2", err.Error())
		}
	}
	return Post{NewsletterID: newsletterID, Position: position, Layout: layout}, nil
}

// Build normalizes f into a Layout, reporting the first violated constraint.
// A zero StackWidth means DefaultStackWidth; full-width posts ignore it.
func (f PostFields) Build() (Layout, error) {
	kind := LayoutKind(strings.TrimSpace(f.Layout))
	switch kind {
	case LayoutDouble, LayoutSinglePair, LayoutFullWidth:
	case "":
		return nil, invalid("layout", "is required")
	default:
		return nil, invalid("layout", fmt.Sprintf("unknown layout %q", f.Layout))
	}

	width := f.StackWidth
	if width == 0 {
		width = DefaultStackWidth
	}
	if kind != LayoutFullWidth {
		if err := checkStackWidth(width); err != nil {
			return nil, err
		}
	}

	primary := Slot{Title: f.Title, Content: f.Content, Image: Image(strings.TrimSpace(f.Image))}
	secondary := Slot{Title: deref(f.Title2), Content: deref(f.Content2), Image: Image(strings.TrimSpace(deref(f.Image2)))}

	switch kind {
	case LayoutDouble:
		if !secondary.IsZero() {
			return nil, invalid("title2", "only single-pair posts have a second block")
		}
		return Double{Slot: primary, StackWidth: width}, nil
	case LayoutFullWidth:
		if !secondary.IsZero() {
			return nil, invalid("title2", "only single-pair posts have a second block")
		}
		return FullWidth{Slot: primary}, nil
	default:
		if secondary.IsZero() {
			return nil, invalid("title2", "single-pair posts need a second block")
		}
		return SinglePair{Left: primary, Right: secondary, StackWidth: width}, nil
	}
}

// Fields flattens p back into PostFields.
func (p Post) Fields() PostFields {
	s := p.Primary()
	f := PostFields{
		Title:      s.Title,
		Content:    s.Content,
		Image:      string(s.Image),
		StackWidth: p.StackWidth(),
	}
	if p.Layout != nil {
		f.Layout = string(p.Layout.Kind())
	}
	if r, ok := p.Secondary(); ok {
		title, content, image := r.Title, r.Content, string(r.Image)
		f.Title2, f.Content2, f.Image2 = &title, &content, &image
	}
	return f
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
