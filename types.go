package letterpress

import (
	"time"

	"github.com/eringen/letterpress/newsletter"
)

// Request bodies. Structural rules live in the newsletter package; tags here
// only reject malformed payloads early.

type createNewsletterRequest struct {
	Title string `json:"title" validate:"required,max=300"`
}

type updateNewsletterRequest struct {
	Title        string  `json:"title" validate:"required,max=300"`
	Status       *string `json:"status" validate:"omitempty,oneof=draft published"`
	HeaderLogo   string  `json:"header_logo"`
	HeroImage    string  `json:"hero_image"`
	HeroTitle    string  `json:"hero_title"`
	HeroSubtitle string  `json:"hero_subtitle"`
	FooterText   string  `json:"footer_text"`
}

type postRequest struct {
	Layout     string  `json:"layout" validate:"required,oneof=double single-pair full-width"`
	Title      string  `json:"title"`
	Content    string  `json:"content"`
	Image      string  `json:"image"`
	Title2     *string `json:"title2"`
	Content2   *string `json:"content2"`
	Image2     *string `json:"image2"`
	StackWidth int     `json:"stack_width" validate:"gte=0,lte=100"`
	Position   *int    `json:"position" validate:"omitempty,gte=0"`
}

func (r postRequest) fields() newsletter.PostFields {
	return newsletter.PostFields{
		Layout:     r.Layout,
		Title:      r.Title,
		Content:    r.Content,
		Image:      r.Image,
		Title2:     r.Title2,
		Content2:   r.Content2,
		Image2:     r.Image2,
		StackWidth: r.StackWidth,
	}
}

type moveRequest struct {
	Direction string `json:"direction" validate:"required,oneof=up down"`
}

type imageDataRequest struct {
	ImageData string `json:"imageData" validate:"required"`
}

// Responses.

type newsletterResponse struct {
	ID           int64      `json:"id"`
	Title        string     `json:"title"`
	Status       string     `json:"status"`
	HeaderLogo   string     `json:"header_logo"`
	HeroImage    string     `json:"hero_image"`
	HeroTitle    string     `json:"hero_title"`
	HeroSubtitle string     `json:"hero_subtitle"`
	FooterText   string     `json:"footer_text"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	PublishedAt  *time.Time `json:"published_at"`
}

func newNewsletterResponse(n newsletter.Newsletter) newsletterResponse {
	return newsletterResponse{
		ID:           n.ID,
		Title:        n.Title,
		Status:       string(n.Status),
		HeaderLogo:   n.HeaderLogo.String(),
		HeroImage:    n.HeroImage.String(),
		HeroTitle:    n.HeroTitle,
		HeroSubtitle: n.HeroSubtitle,
		FooterText:   n.FooterText,
		CreatedAt:    n.CreatedAt,
		UpdatedAt:    n.UpdatedAt,
		PublishedAt:  n.PublishedAt,
	}
}

type summaryResponse struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	PublishedAt *time.Time `json:"published_at"`
}

func newSummaryResponses(list []newsletter.Summary) []summaryResponse {
	out := make([]summaryResponse, 0, len(list))
	for _, s := range list {
		out = append(out, summaryResponse{
			ID:          s.ID,
			Title:       s.Title,
			Status:      string(s.Status),
			CreatedAt:   s.CreatedAt,
			UpdatedAt:   s.UpdatedAt,
			PublishedAt: s.PublishedAt,
		})
	}
	return out
}

type postResponse struct {
	ID           int64   `json:"id"`
	NewsletterID int64   `json:"newsletter_id"`
	Position     int     `json:"position"`
	Layout       string  `json:"layout"`
	Title        string  `json:"title"`
	Content      string  `json:"content"`
	Image        string  `json:"image"`
	Title2       *string `json:"title2,omitempty"`
	Content2     *string `json:"content2,omitempty"`
	Image2       *string `json:"image2,omitempty"`
	StackWidth   int     `json:"stack_width"`
}

func newPostResponse(p newsletter.Post) postResponse {
	f := p.Fields()
	return postResponse{
		ID:           p.ID,
		NewsletterID: p.NewsletterID,
		Position:     p.Position,
		Layout:       f.Layout,
		Title:        f.Title,
		Content:      f.Content,
		Image:        f.Image,
		Title2:       f.Title2,
		Content2:     f.Content2,
		Image2:       f.Image2,
		StackWidth:   f.StackWidth,
	}
}

func newPostResponses(posts []newsletter.Post) []postResponse {
	out := make([]postResponse, 0, len(posts))
	for _, p := range posts {
		out = append(out, newPostResponse(p))
	}
	return out
}

// workspaceResponse is a newsletter together with its ordered posts.
type workspaceResponse struct {
	newsletterResponse
	Posts []postResponse `json:"posts"`
}

func newWorkspaceResponse(ws newsletter.Workspace) workspaceResponse {
	return workspaceResponse{
		newsletterResponse: newNewsletterResponse(ws.Newsletter),
		Posts:              newPostResponses(ws.Posts),
	}
}

type imageResponse struct {
	DataURI  string `json:"data_uri"`
	MIMEType string `json:"mime_type"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Size     int    `json:"size"`
}

type exportFileResponse struct {
	Message string `json:"message"`
	Path    string `json:"path"`
	Bytes   int    `json:"bytes"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}
