package routes

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"

	"eventhub/models"
	"eventhub/utils"
)

// classify maps an error to a status and the notification the client shows.
func classify(err error) (int, utils.Notification) {
	var netErr net.Error
	switch {
	case errors.Is(err, models.ErrInvalidCredentials):
		return http.StatusUnauthorized, utils.Notification{
			Kind: utils.KindAuth, Title: "Sign in failed", Message: "Invalid email or password.",
		}
	case errors.Is(err, models.ErrEmailTaken):
		return http.StatusConflict, utils.Notification{
			Kind: utils.KindAuth, Title: "Sign up failed", Message: "An account with this email already exists.",
		}
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound, utils.Notification{
			Kind: utils.KindData, Title: "Not found", Message: "The requested item does not exist.",
		}
	case errors.Is(err, models.ErrAlreadyRegistered):
		return http.StatusConflict, utils.Notification{
			Kind: utils.KindData, Title: "Already registered", Message: "You are already registered for this event.",
		}
	case errors.Is(err, models.ErrNotRegistered):
		return http.StatusNotFound, utils.Notification{
			Kind: utils.KindData, Title: "Not registered", Message: "You are not registered for this event.",
		}
	case errors.Is(err, models.ErrEventFull):
		return http.StatusConflict, utils.Notification{
			Kind: utils.KindData, Title: "Event full", Message: "This event has reached its capacity.",
		}
	case errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled),
		errors.As(err, &netErr),
		mongo.IsNetworkError(err),
		mongo.IsTimeout(err):
		return http.StatusServiceUnavailable, utils.Notification{
			Kind: utils.KindNetwork, Title: "Service unavailable", Message: "Could not reach the server. Try again later.",
		}
	}
	return http.StatusInternalServerError, utils.Notification{
		Kind: utils.KindNetwork, Title: "Request failed", Message: "Something went wrong. Try again later.",
	}
}

// fail logs err and aborts with its notification.
func (d *deps) fail(c *gin.Context, err error, op string) {
	d.failWith(c, err, op, nil)
}

func (d *deps) failWith(c *gin.Context, err error, op string, body gin.H) {
	status, n := classify(err)
	if status >= http.StatusInternalServerError {
		d.Log.ErrorContext(c.Request.Context(), op+" failed", "err", err, "path", c.Request.URL.Path)
	}
	_ = c.Error(err)
	utils.AbortWith(c, status, n, body)
}

func badRequest(c *gin.Context, msg string) {
	utils.Abort(c, http.StatusBadRequest, utils.Notification{
		Kind: utils.KindData, Title: "Invalid request", Message: msg,
	})
}
