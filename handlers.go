package letterpress

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/eringen/letterpress/newsletter"
)

func (a *App) handleHealth(c echo.Context) error {
	if err := a.Store.Ping(c.Request().Context()); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (a *App) handleListNewsletters(c echo.Context) error {
	list, err := a.Store.ListNewsletters(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newSummaryResponses(list))
}

func (a *App) handleCreateNewsletter(c echo.Context) error {
	var req createNewsletterRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	n, err := newsletter.New(req.Title, time.Now().UTC())
	if err != nil {
		return err
	}
	if err := a.Store.SaveNewsletter(c.Request().Context(), &n); err != nil {
		return err
	}
	a.logger.Info().Int64("newsletter_id", n.ID).Msg("newsletter created")
	return c.JSON(http.StatusCreated, newNewsletterResponse(n))
}

// handleGetNewsletter returns a newsletter with its posts and makes it the
// current newsletter of the editing session.
func (a *App) handleGetNewsletter(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	ws, err := newsletter.LoadWorkspace(c.Request().Context(), a.Store, id)
	if err != nil {
		return err
	}
	if err := setCurrentNewsletter(c, id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newWorkspaceResponse(ws))
}

func (a *App) handleUpdateNewsletter(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req updateNewsletterRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	n, err := a.Store.LoadNewsletter(ctx, id)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	if err := n.Update(newsletter.Fields{
		Title:        req.Title,
		HeaderLogo:   req.HeaderLogo,
		HeroImage:    req.HeroImage,
		HeroTitle:    req.HeroTitle,
		HeroSubtitle: req.HeroSubtitle,
		FooterText:   req.FooterText,
	}, now); err != nil {
		return err
	}
	if req.Status != nil {
		status, err := newsletter.ParseStatus(*req.Status)
		if err != nil {
			return err
		}
		n.SetStatus(status, now)
	}
	if err := a.Store.SaveNewsletter(ctx, &n); err != nil {
		return err
	}
	a.Cache.Invalidate(id)
	return c.JSON(http.StatusOK, newNewsletterResponse(n))
}

func (a *App) handleDeleteNewsletter(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := a.Store.DeleteNewsletter(c.Request().Context(), id); err != nil {
		return err
	}
	a.Cache.Invalidate(id)
	if err := clearCurrentNewsletter(c, id); err != nil {
		return err
	}
	a.logger.Info().Int64("newsletter_id", id).Msg("newsletter deleted")
	return c.JSON(http.StatusOK, messageResponse{Message: "newsletter deleted"})
}

func (a *App) handleDuplicateNewsletter(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	dup, err := a.Store.DuplicateNewsletter(c.Request().Context(), id)
	if err != nil {
		return err
	}
	a.logger.Info().Int64("source_id", id).Int64("newsletter_id", dup.ID).Msg("newsletter duplicated")
	return c.JSON(http.StatusCreated, newNewsletterResponse(dup))
}

// handleWorkspace returns the newsletter the session is currently editing.
func (a *App) handleWorkspace(c echo.Context) error {
	id, ok := currentNewsletter(c)
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "no newsletter is open in this session")
	}
	ws, err := newsletter.LoadWorkspace(c.Request().Context(), a.Store, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newWorkspaceResponse(ws))
}

func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return err
	}
	return c.Validate(req)
}

// httpErrorHandler maps domain errors to JSON responses.
func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code, body := errorStatus(err)
	if code >= 500 {
		a.logger.Error().Err(err).
			Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
			Str("uri", c.Request().RequestURI).
			Msg("server error")
	}

	var werr error
	if c.Request().Method == http.MethodHead {
		werr = c.NoContent(code)
	} else {
		werr = c.JSON(code, body)
	}
	if werr != nil {
		a.logger.Error().Err(werr).Msg("write error response")
	}
}

func errorStatus(err error) (int, errorResponse) {
	var (
		ve *newsletter.ValidationError
		pe *newsletter.PartialOrderingError
		he *echo.HTTPError
	)
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest, errorResponse{Error: ve.Error(), Field: ve.Field}
	case errors.As(err, &pe):
		return http.StatusConflict, errorResponse{Error: pe.Error()}
	case errors.Is(err, newsletter.ErrNotFound):
		return http.StatusNotFound, errorResponse{Error: err.Error()}
	case errors.As(err, &he):
		msg := http.StatusText(he.Code)
		if he.Message != nil {
			msg = fmt.Sprint(he.Message)
		}
		return he.Code, errorResponse{Error: msg}
	}
	return http.StatusInternalServerError, errorResponse{Error: http.StatusText(http.StatusInternalServerError)}
}
