package routes

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"eventhub/middlewares"
	"eventhub/session"
	"eventhub/utils"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// origins are enforced by the CORS layer
	CheckOrigin: func(r *http.Request) bool { return true },
}

// GET /auth/session/ws streams the changes to the caller's session, starting
// with the current one. Browsers cannot set headers on a websocket
// handshake, so the token may also come as ?token=.
func (d *deps) sessionFeed(c *gin.Context) {
	claims, raw := middlewares.Claims(c), middlewares.Token(c)
	if claims == nil {
		if q := c.Query("token"); q != "" {
			resolved, err := d.Sessions.Resolve(c.Request.Context(), q)
			switch {
			case err == nil:
				claims, raw = resolved, q
			case !middlewares.Unauthenticated(err):
				middlewares.Unavailable(c)
				return
			}
		}
	}
	if claims == nil {
		utils.Abort(c, http.StatusUnauthorized, utils.Notification{
			Kind: utils.KindAuth, Title: "Sign in required", Message: "Please sign in to continue.",
		})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		d.Log.WarnContext(c.Request.Context(), "websocket upgrade failed", "err", err)
		return
	}
	defer conn.Close()

	changes, unsubscribe := d.Sessions.Hub().Subscribe(claims.UserID, claims.ID)
	defer unsubscribe()

	current := d.Sessions.Current(raw, claims)
	if err := writeChange(conn, session.Change{Kind: session.InitialSession, Session: &current, At: time.Now().UTC()}); err != nil {
		return
	}

	// The read side only watches for the client going away.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		conn.SetReadLimit(512)
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-gone:
			return
		case ch, ok := <-changes:
			if !ok {
				_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
				return
			}
			if err := writeChange(conn, ch); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func writeChange(conn *websocket.Conn, ch session.Change) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(ch)
}
