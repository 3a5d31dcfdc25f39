package router // package router defines how HTTP routes are registered

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/fishcamp/internal/config"
	"github.com/iliyamo/fishcamp/internal/handler"
	"github.com/iliyamo/fishcamp/internal/middleware"
	"github.com/iliyamo/fishcamp/internal/repository"
	"github.com/iliyamo/fishcamp/internal/utils"
	"github.com/iliyamo/fishcamp/internal/view"
)

// Deps carries everything the routes need.  Redis may be nil, which turns
// the cache and the rate limiter into no-ops.
type Deps struct {
	Config    config.Config
	Store     *repository.Store
	Handler   *handler.CampgroundHandler
	Redis     *redis.Client
	Cache     config.CacheConfig
	RateLimit config.RateLimitConfig
}

// RegisterRoutes installs the global middleware, the campground and review
// routes, the health check, static assets and the not-found fallback.
func RegisterRoutes(e *echo.Echo, d Deps) {
	// HTML forms can only POST; ?_method=PUT|DELETE selects the real route.
	e.Pre(echomw.MethodOverrideWithConfig(echomw.MethodOverrideConfig{
		Getter: echomw.MethodFromQuery("_method"),
	}))
	e.Use(echomw.Logger())
	e.Use(echomw.Recover())

	e.GET("/", func(c echo.Context) error { return c.Redirect(http.StatusFound, "/campgrounds") })
	e.GET("/healthz", handler.Health(d.Store))
	e.StaticFS("/static", view.StaticFS())

	RegisterCampgrounds(e, d)
	if d.Config.IsDev() {
		RegisterDev(e, d)
	}

	e.RouteNotFound("/*", handler.NotFound)
}

// RegisterCampgrounds registers the campground and nested review routes
// behind the response cache and the rate limiter.
func RegisterCampgrounds(e *echo.Echo, d Deps) {
	h := d.Handler
	g := e.Group("/campgrounds",
		middleware.NewTokenBucket(d.RateLimit, d.Redis),
		middleware.NewRedisCache(d.Cache, d.Redis),
	)
	// Group middleware installs echo's own catch-all; keep ours.
	g.RouteNotFound("/*", handler.NotFound)

	g.GET("", h.Index)
	g.POST("", h.Create)
	// "new" is registered before :id so it is never taken for an id.
	g.GET("/new", h.New)
	g.GET("/:id", h.Show)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
	g.GET("/:id/edit", h.Edit)

	// ---- Reviews ----
	g.POST("/:id/reviews", h.CreateReview)
	g.DELETE("/:id/reviews/:reviewId", h.DeleteReview)
}

// RegisterDev registers development helpers.  When a JWT secret is
// configured they also require an ADMIN token.
func RegisterDev(e *echo.Echo, d Deps) {
	mws := []echo.MiddlewareFunc{}
	if d.Config.JWTSecret != "" {
		mws = append(mws, middleware.JWTAuth(d.Config.JWTSecret), middleware.RequireRole(utils.RoleAdmin))
	}
	mws = append(mws, middleware.InvalidateCache(d.Cache, d.Redis))
	e.GET("/makecampground", d.Handler.MakeCampground, mws...)
}
