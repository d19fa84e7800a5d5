// Package newsletter defines newsletters, the posts they are composed of, and
// the persistence contract the rest of letterpress is written against.
package newsletter

import (
	"strings"
	"time"
)

// Status is the publication state of a newsletter.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
)

// DuplicateSuffix is appended to the title of a duplicated newsletter.
const DuplicateSuffix = " (Copy)"

// ParseStatus validates a status string.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusDraft, StatusPublished:
		return Status(s), nil
	}
	return "", invalid("status", "must be draft or published")
}

// Newsletter is a single issue and the header, hero and footer content that
// surrounds its posts.
type Newsletter struct {
	ID           int64
	Title        string
	Status       Status
	HeaderLogo   Image
	HeroImage    Image
	HeroTitle    string
	HeroSubtitle string
	FooterText   string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	PublishedAt  *time.Time
}

// Fields holds the user-editable content of a newsletter.
type Fields struct {
	Title        string
	HeaderLogo   string
	HeroImage    string
	HeroTitle    string
	HeroSubtitle string
	FooterText   string
}

// New returns an unsaved draft newsletter.
func New(title string, now time.Time) (Newsletter, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return Newsletter{}, invalid("title", "is required")
	}
	return Newsletter{
		Title:     title,
		Status:    StatusDraft,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Update replaces every editable field. On error n is left untouched.
func (n *Newsletter) Update(f Fields, now time.Time) error {
	title := strings.TrimSpace(f.Title)
	if title == "" {
		return invalid("title", "is required")
	}
	logo, err := ParseImage(f.HeaderLogo)
	if err != nil {
		return invalid("header_logo", err.Error())
	}
	hero, err := ParseImage(f.HeroImage)
	if err != nil {
		return invalid("hero_image", err.Error())
	}
	n.Title = title
	n.HeaderLogo = logo
	n.HeroImage = hero
	n.HeroTitle = f.HeroTitle
	n.HeroSubtitle = f.HeroSubtitle
	n.FooterText = f.FooterText
	n.UpdatedAt = now
	return nil
}

// SetStatus moves the newsletter to s. Publishing stamps PublishedAt;
// returning to draft clears it. Re-publishing an already published
// newsletter refreshes the stamp.
func (n *Newsletter) SetStatus(s Status, now time.Time) {
	n.Status = s
	switch s {
	case StatusPublished:
		t := now
		n.PublishedAt = &t
	case StatusDraft:
		n.PublishedAt = nil
	}
	n.UpdatedAt = now
}

// Duplicate returns an unsaved draft copy of n with the title suffixed and
// fresh timestamps.
func (n Newsletter) Duplicate(now time.Time) Newsletter {
	c := n
	c.ID = 0
	c.Title = n.Title + DuplicateSuffix
	c.Status = StatusDraft
	c.PublishedAt = nil
	c.CreatedAt = now
	c.UpdatedAt = now
	return c
}

// Summary is the list view of a newsletter.
type Summary struct {
	ID          int64
	Title       string
	Status      Status
	CreatedAt   time.Time
	UpdatedAt   time.Time
	PublishedAt *time.Time
}
