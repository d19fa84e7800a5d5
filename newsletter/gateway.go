package newsletter

import (
	"context"
	"fmt"
)

// Gateway is the durable store for newsletters and posts.
//
// Lookups of unknown ids return a *NotFoundError; store failures are reported
// as *PersistenceError. SaveNewsletter and SavePost insert when the id is zero
// (assigning it) and update otherwise.
type Gateway interface {
	LoadNewsletter(ctx context.Context, id int64) (Newsletter, error)
	ListNewsletters(ctx context.Context) ([]Summary, error)
	// LoadPosts returns the posts of a newsletter sorted by position. Equal
	// positions fall back to insertion order.
	LoadPosts(ctx context.Context, newsletterID int64) ([]Post, error)
	SaveNewsletter(ctx context.Context, n *Newsletter) error
	SavePost(ctx context.Context, p *Post) error
	DeleteNewsletter(ctx context.Context, id int64) error
	DeletePost(ctx context.Context, id int64) error
	// DuplicateNewsletter deep-copies a newsletter and all of its posts.
	DuplicateNewsletter(ctx context.Context, id int64) (Newsletter, error)
}

// Workspace is a snapshot of one newsletter and its posts in render order.
// It is what the editor works on and what gets exported.
type Workspace struct {
	Newsletter Newsletter
	Posts      []Post
}

// LoadWorkspace reads a newsletter and its posts from gw.
func LoadWorkspace(ctx context.Context, gw Gateway, id int64) (Workspace, error) {
	n, err := gw.LoadNewsletter(ctx, id)
	if err != nil {
		return Workspace{}, err
	}
	posts, err := gw.LoadPosts(ctx, id)
	if err != nil {
		return Workspace{}, fmt.Errorf("load posts of newsletter %d: %w", id, err)
	}
	return Workspace{Newsletter: n, Posts: posts}, nil
}
