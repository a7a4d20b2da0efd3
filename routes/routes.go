package routes

import (
	"log/slog"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"eventhub/middlewares"
	"eventhub/models"
	"eventhub/roles"
	"eventhub/session"
	"eventhub/utils"
	"eventhub/views"
)

// Limits configures the three token-bucket tiers.
type Limits struct {
	Global middlewares.LimiterConfig // per IP, every route
	Auth   middlewares.LimiterConfig // per IP, sign-up and sign-in
	User   middlewares.LimiterConfig // per user, authenticated routes
}

func DefaultLimits() Limits {
	return Limits{
		Global: middlewares.LimiterConfig{RPS: 20, Burst: 40, IdleTTL: 3 * time.Minute},
		Auth:   middlewares.LimiterConfig{RPS: 0.5, Burst: 2, IdleTTL: 10 * time.Minute},
		User:   middlewares.LimiterConfig{RPS: 5, Burst: 10, IdleTTL: 10 * time.Minute},
	}
}

type Deps struct {
	Users    models.UserRepository
	Events   models.EventRepository
	Regs     models.RegistrationRepository
	Roles    *roles.Resolver
	Sessions *session.Provider
	Views    *views.Renderer
	Redis    *redis.Client
	Inv      *utils.CacheInvalidator

	CacheTTL     time.Duration
	DailyQuota   int
	PreviewLimit int
	Limits       Limits
	Log          *slog.Logger
}

type deps struct{ Deps }

// RegisterRoutes mounts the API on server. The returned func stops the
// rate limiter sweepers.
func RegisterRoutes(server *gin.Engine, in Deps) func() {
	if in.Log == nil {
		in.Log = slog.Default()
	}
	d := &deps{in}

	globalLimiter := middlewares.NewRateLimiter(in.Limits.Global)
	authLimiter := middlewares.NewRateLimiter(in.Limits.Auth)
	userLimiter := middlewares.NewRateLimiter(in.Limits.User)

	server.Use(globalLimiter.Middleware(func(c *gin.Context) string {
		return "ip:" + c.ClientIP()
	}))

	// ===== Auth =====
	a := server.Group("/auth")
	a.POST("/signup",
		authLimiter.Middleware(func(c *gin.Context) string { return "signup:" + c.ClientIP() }),
		d.signup,
	)
	a.POST("/signin",
		authLimiter.Middleware(func(c *gin.Context) string { return "signin:" + c.ClientIP() }),
		d.signin,
	)
	a.POST("/signout", middlewares.Authenticate(d.Sessions), d.signout)
	a.POST("/refresh", middlewares.Authenticate(d.Sessions), d.refresh)
	a.GET("/session", middlewares.OptionalAuth(d.Sessions), d.currentSession)
	a.GET("/session/ws", middlewares.OptionalAuth(d.Sessions), d.sessionFeed)

	// ===== Public catalog =====
	cache := middlewares.ResponseCache(d.Redis, d.CacheTTL)
	server.GET("/events", cache, d.getEvents)
	server.GET("/events/:id", cache, d.getEvent)
	server.GET("/events/:id/registrations/count", d.registrationCount)

	// ===== Signed in =====
	auth := server.Group("/")
	auth.Use(middlewares.Authenticate(d.Sessions))
	auth.Use(userLimiter.Middleware(func(c *gin.Context) string {
		return "u:" + middlewares.UserID(c)
	}))
	auth.Use(middlewares.DailyUserQuota(d.Redis, d.DailyQuota))

	organiser := middlewares.RequireRole(d.Roles, models.RoleOrganiser)
	auth.POST("/events", organiser, d.createEvent)
	auth.PUT("/events/:id", organiser, d.updateEvent)
	auth.DELETE("/events/:id", organiser, d.deleteEvent)
	auth.POST("/events/:id/register", d.registerForEvent)
	auth.DELETE("/events/:id/register", d.cancelRegistration)
	auth.GET("/events/:id/registration", d.registrationStatus)

	// ===== Views =====
	v := server.Group("/views")
	v.GET("/home", d.home)
	v.GET("/events/:id", middlewares.OptionalAuth(d.Sessions), d.eventDetail)
	v.GET("/dashboard", middlewares.RequireSession(d.Sessions, SignInPath), d.dashboard)

	return func() {
		globalLimiter.Close()
		authLimiter.Close()
		userLimiter.Close()
	}
}

// SignInPath is where visitors without a session are sent.
const SignInPath = "/auth"

func (d *deps) purgeEvent(c *gin.Context, id string) {
	if d.Inv == nil {
		return
	}
	d.Inv.PurgeEventsList(c.Request.Context())
	d.Inv.PurgeEventItem(c.Request.Context(), id)
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
