package letterpress

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/eringen/letterpress/newsletter"
	"github.com/eringen/letterpress/ordering"
)

// handleCreatePost appends a post to a newsletter unless the request names a
// position.
func (a *App) handleCreatePost(c echo.Context) error {
	newsletterID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req postRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	var position int
	if req.Position != nil {
		position = *req.Position
	} else if position, err = a.Store.NextPosition(ctx, newsletterID); err != nil {
		return err
	}

	p, err := newsletter.NewPost(newsletterID, position, req.fields())
	if err != nil {
		return err
	}
	if err := a.Store.SavePost(ctx, &p); err != nil {
		return err
	}
	a.Cache.Invalidate(newsletterID)
	return c.JSON(http.StatusCreated, newPostResponse(p))
}

func (a *App) handleUpdatePost(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req postRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	existing, err := a.Store.LoadPost(ctx, id)
	if err != nil {
		return err
	}
	position := existing.Position
	if req.Position != nil {
		position = *req.Position
	}

	p, err := newsletter.NewPost(existing.NewsletterID, position, req.fields())
	if err != nil {
		return err
	}
	p.ID = id
	if err := a.Store.SavePost(ctx, &p); err != nil {
		return err
	}
	a.Cache.Invalidate(p.NewsletterID)
	return c.JSON(http.StatusOK, newPostResponse(p))
}

func (a *App) handleDeletePost(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	p, err := a.Store.LoadPost(ctx, id)
	if err != nil {
		return err
	}
	if err := a.Store.DeletePost(ctx, id); err != nil {
		return err
	}
	a.Cache.Invalidate(p.NewsletterID)
	return c.JSON(http.StatusOK, messageResponse{Message: "post deleted"})
}

// handleMovePost swaps a post with its neighbour and returns the posts of the
// newsletter in their new order. Moving past either end changes nothing.
func (a *App) handleMovePost(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req moveRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	dir, err := ordering.ParseDirection(req.Direction)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	p, err := a.Store.LoadPost(ctx, id)
	if err != nil {
		return err
	}
	posts, err := a.Store.LoadPosts(ctx, p.NewsletterID)
	if err != nil {
		return err
	}
	m, ok, err := ordering.MoveByID(posts, id, dir)
	if err != nil {
		return err
	}
	if ok {
		if err := ordering.Apply(ctx, a.Store, m); err != nil {
			return err
		}
		a.Cache.Invalidate(p.NewsletterID)
		if posts, err = a.Store.LoadPosts(ctx, p.NewsletterID); err != nil {
			return err
		}
	}
	return c.JSON(http.StatusOK, newPostResponses(posts))
}
