package blogcms

import (
	"crypto/sha256"
	"net/http"
	"time"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/eringen/blogcms/auth"
)

const (
	sessionName       = "blog_session"
	sessionUserKey    = "user"
	sessionExpiresKey = "expires"
	userContextKey    = "session_user"
)

// newSessionStore derives separate signing and encryption keys from the
// configured secret.
func (a *App) newSessionStore() *sessions.CookieStore {
	hashKey := sha256.Sum256([]byte("blogcms-hash:" + a.Config.SessionSecret))
	blockKey := sha256.Sum256([]byte("blogcms-block:" + a.Config.SessionSecret))
	store := sessions.NewCookieStore(hashKey[:], blockKey[:])
	store.Options = &sessions.Options{
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   a.Config.CookieSecure,
	}
	store.MaxAge(int(a.Config.SessionDuration.Seconds()))
	return store
}

// loadSession puts the signed-in user into the request context and renews
// the session when less than SessionActiveDuration is left. Expired or
// unreadable sessions are treated as anonymous.
func (a *App) loadSession(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		sess, err := session.Get(sessionName, c)
		if err != nil {
			return next(c)
		}
		user, ok := sess.Values[sessionUserKey].(auth.SessionUser)
		if !ok {
			return next(c)
		}
		expires, _ := sess.Values[sessionExpiresKey].(int64)
		now := a.now()
		left := time.Unix(expires, 0).Sub(now)
		if left <= 0 {
			if err := clearSession(c); err != nil {
				c.Logger().Warnf("clear expired session: %v", err)
			}
			return next(c)
		}
		if left < a.Config.SessionActiveDuration {
			sess.Values[sessionExpiresKey] = now.Add(a.Config.SessionActiveDuration).Unix()
			sess.Options.MaxAge = int(a.Config.SessionActiveDuration.Seconds())
			if err := sess.Save(c.Request(), c.Response()); err != nil {
				c.Logger().Warnf("renew session: %v", err)
			}
		}
		c.Set(userContextKey, &user)
		return next(c)
	}
}

// requireLogin redirects anonymous requests to the login page.
func requireLogin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if currentUser(c) == nil {
			return c.Redirect(http.StatusFound, "/login")
		}
		return next(c)
	}
}

// currentUser returns the session snapshot, or nil for anonymous requests.
func currentUser(c echo.Context) *auth.SessionUser {
	u, _ := c.Get(userContextKey).(*auth.SessionUser)
	return u
}

func (a *App) setSessionUser(c echo.Context, user auth.SessionUser) error {
	sess, err := session.Get(sessionName, c)
	if err != nil && sess == nil {
		return err
	}
	sess.Values[sessionUserKey] = user
	sess.Values[sessionExpiresKey] = a.now().Add(a.Config.SessionDuration).Unix()
	sess.Options.MaxAge = int(a.Config.SessionDuration.Seconds())
	return sess.Save(c.Request(), c.Response())
}

func clearSession(c echo.Context) error {
	sess, err := session.Get(sessionName, c)
	if err != nil && sess == nil {
		return err
	}
	sess.Values = map[interface{}]interface{}{}
	sess.Options.MaxAge = -1
	return sess.Save(c.Request(), c.Response())
}

// CsrfToken extracts the CSRF token from the Echo context.
func CsrfToken(c echo.Context) string {
	token, _ := c.Get(middleware.DefaultCSRFConfig.ContextKey).(string)
	return token
}
