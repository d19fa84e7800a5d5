// Package ordering moves posts up and down within a newsletter by exchanging
// the stored positions of two neighbours.
package ordering

import (
	"context"
	"fmt"
	"sort"

	"github.com/eringen/letterpress/newsletter"
)

// Direction is the way a post moves in the list.
type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
)

// ParseDirection validates a direction string.
func ParseDirection(s string) (Direction, error) {
	switch Direction(s) {
	case Up, Down:
		return Direction(s), nil
	}
	return "", &newsletter.ValidationError{Field: "direction", Reason: "must be up or down"}
}

// Move is a pending position exchange. A and B already carry their new
// positions; nothing has been stored yet.
type Move struct {
	A newsletter.Post
	B newsletter.Post
}

// MoveUp swaps the post at index with its predecessor. It reports false when
// the post is already first, index is out of range, or both posts share a
// position, since exchanging equal positions changes nothing.
func MoveUp(posts []newsletter.Post, index int) (Move, bool) {
	if index <= 0 || index >= len(posts) {
		return Move{}, false
	}
	return swap(posts[index], posts[index-1])
}

// MoveDown swaps the post at index with its successor. It reports false in
// the same cases as MoveUp, with "last" in place of "first".
func MoveDown(posts []newsletter.Post, index int) (Move, bool) {
	if index < 0 || index >= len(posts)-1 {
		return Move{}, false
	}
	return swap(posts[index], posts[index+1])
}

func swap(a, b newsletter.Post) (Move, bool) {
	if a.Position == b.Position {
		return Move{}, false
	}
	a.Position, b.Position = b.Position, a.Position
	return Move{A: a, B: b}, true
}

// MoveByID finds postID in posts (which must be in render order) and plans a
// move in direction d. A post that is already at the edge, or whose neighbour
// has the same position, yields ok == false and no error.
func MoveByID(posts []newsletter.Post, postID int64, d Direction) (m Move, ok bool, err error) {
	for i, p := range posts {
		if p.ID != postID {
			continue
		}
		switch d {
		case Up:
			m, ok = MoveUp(posts, i)
		case Down:
			m, ok = MoveDown(posts, i)
		default:
			return Move{}, false, &newsletter.ValidationError{Field: "direction", Reason: "must be up or down"}
		}
		return m, ok, nil
	}
	return Move{}, false, &newsletter.NotFoundError{Kind: "post", ID: postID}
}

// ApplyTo returns a copy of posts with the move applied and re-sorted by
// position. Ties keep their input order.
func (m Move) ApplyTo(posts []newsletter.Post) []newsletter.Post {
	out := make([]newsletter.Post, len(posts))
	copy(out, posts)
	for i := range out {
		switch out[i].ID {
		case m.A.ID:
			out[i] = m.A
		case m.B.ID:
			out[i] = m.B
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out
}

// PostSaver persists a single post.
type PostSaver interface {
	SavePost(ctx context.Context, p *newsletter.Post) error
}

// Swapper is implemented by stores that can exchange two positions
// atomically.
type Swapper interface {
	SwapPositions(ctx context.Context, a, b *newsletter.Post) error
}

// Apply persists m. Stores implementing Swapper write both posts in one
// transaction. Otherwise the posts are saved one after the other; if the
// second save fails the first is not undone and a
// *newsletter.PartialOrderingError is returned.
func Apply(ctx context.Context, store PostSaver, m Move) error {
	if s, ok := store.(Swapper); ok {
		if err := s.SwapPositions(ctx, &m.A, &m.B); err != nil {
			return fmt.Errorf("swap posts %d and %d: %w", m.A.ID, m.B.ID, err)
		}
		return nil
	}

	if err := store.SavePost(ctx, &m.A); err != nil {
		return fmt.Errorf("save post %d: %w", m.A.ID, err)
	}
	if err := store.SavePost(ctx, &m.B); err != nil {
		return &newsletter.PartialOrderingError{Saved: m.A.ID, Failed: m.B.ID, Err: err}
	}
	return nil
}
