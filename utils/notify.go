package utils

import "github.com/gin-gonic/gin"

// Kinds of user-facing failure. Every one is shown the same way: a
// dismissible notification with a readable message.
const (
	KindAuth    = "auth"
	KindData    = "data"
	KindNetwork = "network"
)

type Notification struct {
	Kind    string `json:"kind,omitempty"`
	Title   string `json:"title"`
	Message string `json:"message"`
}

func Abort(c *gin.Context, status int, n Notification) {
	AbortWith(c, status, n, nil)
}

// AbortWith is Abort with extra fields next to the notification.
func AbortWith(c *gin.Context, status int, n Notification, body gin.H) {
	if body == nil {
		body = gin.H{}
	}
	body["notification"] = n
	c.AbortWithStatusJSON(status, body)
}

func Notify(c *gin.Context, status int, n Notification, body gin.H) {
	if body == nil {
		body = gin.H{}
	}
	body["notification"] = n
	c.JSON(status, body)
}
