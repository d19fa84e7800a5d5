package letterpress

import (
	"net/http"
	"strings"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/nrednav/cuid2"
)

const (
	sessionName          = "letterpress_session"
	currentNewsletterKey = "current_newsletter"
)

func (a *App) setupMiddleware() {
	e := a.Echo

	e.HideBanner = true
	e.HidePort = true
	e.Logger.SetLevel(log.INFO)
	e.HTTPErrorHandler = a.httpErrorHandler
	e.Validator = newRequestValidator()

	e.IPExtractor = echo.ExtractIPFromXFFHeader(
		echo.TrustLoopback(true),
		echo.TrustLinkLocal(false),
		echo.TrustPrivateNet(true),
	)

	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: func() string {
			return cuid2.Generate()
		},
	}))

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			ev := a.logger.Info()
			if v.Error != nil {
				ev = a.logger.Warn().Err(v.Error)
			}
			ev.Str("request_id", v.RequestID).
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Msg("request")
			return nil
		},
	}))

	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit(a.Config.BodyLimit))

	if a.registry != nil {
		e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
			Subsystem:  "letterpress",
			Registerer: a.registry,
			Skipper: func(c echo.Context) bool {
				return c.Path() == "/healthz"
			},
		}))
	}

	e.Use(middleware.GzipWithConfig(middleware.GzipConfig{
		Level: 5,
	}))

	e.Use(middleware.SecureWithConfig(middleware.SecureConfig{
		XSSProtection:         "1; mode=block",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "SAMEORIGIN",
		ReferrerPolicy:        "strict-origin-when-cross-origin",
		ContentSecurityPolicy: "default-src 'self'; style-src 'self' 'unsafe-inline'; img-src 'self' data:",
		HSTSMaxAge:            31536000,
	}))

	origins := a.Config.CORSOrigins
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     origins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderXRequestID},
		AllowCredentials: len(origins) > 0 && origins[0] != "*",
	}))

	e.Use(session.Middleware(a.newSessionStore()))

	e.Use(cacheControlMiddleware)
}

func cacheControlMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if strings.HasPrefix(c.Request().URL.Path, "/api/") {
			c.Response().Header().Set("Cache-Control", "no-store")
		}
		return next(c)
	}
}

func (a *App) newSessionStore() *sessions.CookieStore {
	store := sessions.NewCookieStore([]byte(a.Config.SessionSecret))
	store.Options = &sessions.Options{
		Path:     "/",
		HttpOnly: true,
		MaxAge:   60 * 60 * 24 * 7,
		SameSite: http.SameSiteLaxMode,
		Secure:   a.Config.CookieSecure,
	}
	return store
}

// currentNewsletter returns the newsletter this editing session last opened.
func currentNewsletter(c echo.Context) (int64, bool) {
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return 0, false
	}
	id, ok := sess.Values[currentNewsletterKey].(int64)
	return id, ok && id > 0
}

// setCurrentNewsletter records id in the session. A cookie that no longer
// decodes, for example one signed with a previous secret, is replaced.
func setCurrentNewsletter(c echo.Context, id int64) error {
	sess, err := session.Get(sessionName, c)
	if sess == nil {
		return err
	}
	sess.Values[currentNewsletterKey] = id
	return sess.Save(c.Request(), c.Response())
}

// clearCurrentNewsletter forgets id if it is the session's current newsletter.
func clearCurrentNewsletter(c echo.Context, id int64) error {
	cur, ok := currentNewsletter(c)
	if !ok || cur != id {
		return nil
	}
	sess, err := session.Get(sessionName, c)
	if sess == nil {
		return err
	}
	delete(sess.Values, currentNewsletterKey)
	return sess.Save(c.Request(), c.Response())
}
