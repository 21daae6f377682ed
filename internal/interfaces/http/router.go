package http

import (
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/garyjia/billed/internal/application/port"
	"github.com/garyjia/billed/internal/domain/entity"
	"github.com/garyjia/billed/internal/domain/route"
	"github.com/garyjia/billed/internal/interfaces/http/view"
)

const userContextKey = "billed.user"

// Authorizer decides whether a user may reach a route
type Authorizer interface {
	Allowed(user entity.User, r route.Route, action string) (bool, error)
}

// Router mounts views into the layout and gates access to routes
type Router struct {
	renderer *view.Renderer
	authz    Authorizer
	sessions *SessionCodec
	logger   Logger
}

// NewRouter creates a Router
func NewRouter(renderer *view.Renderer, authz Authorizer, sessions *SessionCodec, logger Logger) *Router {
	return &Router{
		renderer: renderer,
		authz:    authz,
		sessions: sessions,
		logger:   logger,
	}
}

// Mount writes the layout for r with body inside #root
func (rt *Router) Mount(c *gin.Context, r route.Route, status int, body template.HTML) {
	user, _ := UserFrom(c)

	c.Status(status)
	c.Header("Content-Type", "text/html; charset=utf-8")
	if err := rt.renderer.Layout(c.Writer, view.NewLayoutData(r, user, body)); err != nil {
		rt.logger.Error("Failed to render layout", "error", err, "route", r.String())
	}
}

// MountError renders the error view for r with message shown as is
func (rt *Router) MountError(c *gin.Context, r route.Route, status int, message string) {
	body, err := rt.renderer.Error(message)
	if err != nil {
		rt.logger.Error("Failed to render error page", "error", err)
		c.String(http.StatusInternalServerError, message)
		return
	}
	rt.Mount(c, r, status, body)
}

// Guard requires a session user allowed to perform action on r. Without a
// session the request is sent to the login page.
func (rt *Router) Guard(r route.Route, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := rt.sessions.Read(c)
		if err != nil {
			redirect(c, route.Login)
			c.Abort()
			return
		}

		allowed, err := rt.authz.Allowed(user, r, action)
		if err != nil {
			rt.logger.Error("Authorization check failed", "error", err, "route", r.String())
			rt.MountError(c, r, http.StatusInternalServerError, "Erreur 500")
			c.Abort()
			return
		}
		if !allowed {
			rt.logger.Info("Access denied", "email", user.Email, "type", string(user.Type), "route", r.String())
			c.Set(userContextKey, user)
			rt.MountError(c, r, http.StatusForbidden, "Erreur 403")
			c.Abort()
			return
		}

		c.Set(userContextKey, user)
		c.Next()
	}
}

// RequireUser only requires a valid session
func (rt *Router) RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := rt.sessions.Read(c)
		if err != nil {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		c.Set(userContextKey, user)
		c.Next()
	}
}

// UserFrom returns the session user set by Guard
func UserFrom(c *gin.Context) (entity.User, bool) {
	v, ok := c.Get(userContextKey)
	if !ok {
		return entity.User{}, false
	}
	user, ok := v.(entity.User)
	return user, ok
}

// requestNavigator records the route a container navigated to during one
// request. The last navigation wins.
type requestNavigator struct {
	target *route.Route
}

func (n *requestNavigator) Navigate(r route.Route) {
	n.target = &r
}

// Redirect answers with 303 to the recorded route. It reports false when
// nothing was recorded.
func (n *requestNavigator) Redirect(c *gin.Context) bool {
	if n.target == nil {
		return false
	}
	redirect(c, *n.target)
	return true
}

func redirect(c *gin.Context, r route.Route) {
	c.Redirect(http.StatusSeeOther, r.Path())
}

// modalPresenter keeps what the container asked the modal to show
type modalPresenter struct {
	content *port.ModalContent
}

func (m *modalPresenter) Show(content port.ModalContent) {
	m.content = &content
}

// attrIcon is a receipt icon rebuilt from request parameters
type attrIcon map[string]string

func (a attrIcon) Attr(name string) string {
	return a[name]
}
