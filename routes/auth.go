package routes

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"eventhub/middlewares"
	"eventhub/models"
	"eventhub/utils"
)

// POST /auth/signup
func (d *deps) signup(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=6"`
		FullName string `json:"full_name" binding:"required"`
		Role     string `json:"role"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Email, a password of at least 6 characters and your full name are required.")
		return
	}
	if len(req.Password) > utils.MaxPasswordBytes {
		badRequest(c, "Password is too long.")
		return
	}
	role, ok := models.ParseRole(req.Role)
	if !ok {
		badRequest(c, "Role must be attendee or organiser.")
		return
	}

	u := models.User{Email: normalizeEmail(req.Email), FullName: req.FullName, Password: req.Password}
	if err := d.Users.Create(c.Request.Context(), &u, role); err != nil {
		d.fail(c, err, "signup")
		return
	}
	s, err := d.Sessions.SignIn(c.Request.Context(), u)
	if err != nil {
		d.fail(c, err, "signup")
		return
	}
	d.Log.InfoContext(c.Request.Context(), "user signed up", "user", u.ID, "role", role)
	utils.Notify(c, http.StatusCreated, utils.Notification{
		Title: "Account created!", Message: "Welcome to EventHub. You can now start exploring events.",
	}, gin.H{"message": "user created successfully", "role": role, "session": s})
}

// POST /auth/signin
func (d *deps) signin(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Email and password are required.")
		return
	}

	u, err := d.Users.ValidateCredentials(c.Request.Context(), normalizeEmail(req.Email), req.Password)
	if err != nil {
		d.fail(c, err, "signin")
		return
	}
	s, err := d.Sessions.SignIn(c.Request.Context(), u)
	if err != nil {
		d.fail(c, err, "signin")
		return
	}
	utils.Notify(c, http.StatusOK, utils.Notification{
		Title: "Welcome back!", Message: "Successfully signed in.",
	}, gin.H{"message": "Login successful!", "session": s})
}

// POST /auth/signout
func (d *deps) signout(c *gin.Context) {
	if err := d.Sessions.SignOut(c.Request.Context(), middlewares.Claims(c)); err != nil {
		d.fail(c, err, "signout")
		return
	}
	utils.Notify(c, http.StatusOK, utils.Notification{
		Title: "Signed out", Message: "You have been successfully signed out.",
	}, gin.H{"message": "Signed out."})
}

// POST /auth/refresh
func (d *deps) refresh(c *gin.Context) {
	s, err := d.Sessions.Refresh(c.Request.Context(), middlewares.Claims(c))
	if err != nil {
		d.fail(c, err, "refresh")
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": s})
}

// GET /auth/session answers null when there is no live session. The user
// comes from the store so profile edits show up without a new token.
func (d *deps) currentSession(c *gin.Context) {
	claims := middlewares.Claims(c)
	if claims == nil {
		c.JSON(http.StatusOK, gin.H{"session": nil})
		return
	}
	u, err := d.Users.GetByID(c.Request.Context(), claims.UserID)
	if errors.Is(err, models.ErrNotFound) {
		c.JSON(http.StatusOK, gin.H{"session": nil})
		return
	}
	if err != nil {
		d.fail(c, err, "session")
		return
	}
	s := d.Sessions.Current(middlewares.Token(c), claims)
	s.User = u
	c.JSON(http.StatusOK, gin.H{"session": s})
}
