package middlewares

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"eventhub/models"
	"eventhub/roles"
	"eventhub/session"
	"eventhub/utils"
)

const (
	ctxUserID = "userId"
	ctxClaims = "claims"
	ctxToken  = "token"
)

// bearer accepts "Bearer <jwt>" and a bare token.
func bearer(c *gin.Context) string {
	h := strings.TrimSpace(c.GetHeader("Authorization"))
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return h
}

func resolve(c *gin.Context, p *session.Provider) error {
	raw := bearer(c)
	if raw == "" {
		return utils.ErrBadToken
	}
	claims, err := p.Resolve(c.Request.Context(), raw)
	if err != nil {
		return err
	}
	c.Set(ctxUserID, claims.UserID)
	c.Set(ctxClaims, claims)
	c.Set(ctxToken, raw)
	return nil
}

// Unauthenticated reports whether err means the token itself is no good.
func Unauthenticated(err error) bool {
	return errors.Is(err, utils.ErrBadToken) || errors.Is(err, session.ErrRevoked)
}

// Unavailable answers a session lookup that failed for a reason other than
// the token itself.
func Unavailable(c *gin.Context) {
	utils.Abort(c, http.StatusServiceUnavailable, utils.Notification{
		Kind: utils.KindNetwork, Title: "Service unavailable", Message: "Could not verify your session. Try again later.",
	})
}

// Authenticate rejects requests without a live session.
func Authenticate(p *session.Provider) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := resolve(c, p); err != nil {
			if Unauthenticated(err) {
				utils.Abort(c, http.StatusUnauthorized, utils.Notification{
					Kind: utils.KindAuth, Title: "Sign in required", Message: "Please sign in to continue.",
				})
				return
			}
			Unavailable(c)
			return
		}
		c.Next()
	}
}

// OptionalAuth attaches the session when there is a valid one and otherwise
// lets the request through anonymously. A lookup that could not complete is
// not the same as no session.
func OptionalAuth(p *session.Provider) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := resolve(c, p); err != nil && !Unauthenticated(err) {
			Unavailable(c)
			return
		}
		c.Next()
	}
}

// RequireSession sends visitors without a session to the sign-in page
// before the handler fetches anything.
func RequireSession(p *session.Provider, signIn string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := resolve(c, p); err != nil {
			if !Unauthenticated(err) {
				Unavailable(c)
				return
			}
			c.Header("Location", signIn)
			c.AbortWithStatusJSON(http.StatusSeeOther, gin.H{"redirect": signIn})
			return
		}
		c.Next()
	}
}

// RequireRole must run after Authenticate.
func RequireRole(r *roles.Resolver, want models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		if r.Resolve(c.Request.Context(), c.GetString(ctxUserID)) != want {
			utils.Abort(c, http.StatusForbidden, utils.Notification{
				Kind: utils.KindAuth, Title: "Not allowed", Message: "Only " + string(want) + "s can do this.",
			})
			return
		}
		c.Next()
	}
}

// Viewer is the signed-in identity, or nil.
func Viewer(c *gin.Context) *models.User {
	claims := Claims(c)
	if claims == nil {
		return nil
	}
	u := session.IdentityOf(claims)
	return &u
}

func Claims(c *gin.Context) *utils.Claims {
	v, ok := c.Get(ctxClaims)
	if !ok {
		return nil
	}
	claims, _ := v.(*utils.Claims)
	return claims
}

func Token(c *gin.Context) string { return c.GetString(ctxToken) }

func UserID(c *gin.Context) string { return c.GetString(ctxUserID) }
