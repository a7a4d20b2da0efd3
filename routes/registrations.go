package routes

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"eventhub/middlewares"
	"eventhub/models"
	"eventhub/utils"
	"eventhub/views"
)

// registrationState is what the detail page needs after a write. Counts
// are re-read from the ledger, never adjusted locally.
type registrationState struct {
	EventID           string        `json:"event_id"`
	RegistrationCount int           `json:"registration_count"`
	IsFull            bool          `json:"is_full"`
	IsRegistered      bool          `json:"is_registered"`
	Button            views.Button  `json:"button"`
	Action            *views.Action `json:"action"`
}

func stateOf(f views.Facts) registrationState {
	return registrationState{
		EventID:           f.Event.ID,
		RegistrationCount: f.Count,
		IsFull:            f.Event.IsFull(f.Count),
		IsRegistered:      f.Registered,
		Button:            f.Button,
		Action:            f.Button.Action(f.Event.ID),
	}
}

// press moves the button through ev and runs write while it is in the
// registering state. A failed write settles the button back and returns it
// with the error; on success the settled button is returned.
func (d *deps) press(c *gin.Context, f views.Facts, ev views.ActionEvent, op string, write func(context.Context) error) (views.Button, bool) {
	full := f.Event.IsFull(f.Count)
	pending := f.Button.Next(ev, full)
	if err := write(c.Request.Context()); err != nil {
		settled := pending.Next(views.EventFailed, full || errors.Is(err, models.ErrEventFull))
		d.failWith(c, err, op, gin.H{"button": settled, "action": settled.Action(f.Event.ID)})
		return settled, false
	}
	return pending.Next(views.EventSucceeded, full), true
}

// settle builds the response from a fresh read. The ledger wins when someone
// else changed the event in between.
func (d *deps) settle(c *gin.Context, settled views.Button, after views.Facts) registrationState {
	if after.Button != settled {
		d.Log.DebugContext(c.Request.Context(), "button moved by a concurrent write",
			"event", after.Event.ID, "expected", settled.State, "got", after.Button.State)
	}
	return stateOf(after)
}

func organiserOwnEvent(c *gin.Context) {
	utils.Abort(c, http.StatusForbidden, utils.Notification{
		Kind: utils.KindAuth, Title: "Not allowed", Message: "You're the organiser of this event.",
	})
}

/* --------------- Registrations ------------------ */

// POST /events/:id/register
func (d *deps) registerForEvent(c *gin.Context) {
	ctx := c.Request.Context()
	viewer := middlewares.Viewer(c)

	f, err := d.Views.Facts(ctx, c.Param("id"), viewer)
	if err != nil {
		d.fail(c, err, "register")
		return
	}
	if !f.Button.Allows(views.EventRegister) {
		switch f.Button.State {
		case views.StateOrganiser:
			organiserOwnEvent(c)
		case views.StateRegistered:
			d.fail(c, models.ErrAlreadyRegistered, "register")
		default:
			d.fail(c, models.ErrEventFull, "register")
		}
		return
	}

	settled, ok := d.press(c, f, views.EventRegister, "register", func(ctx context.Context) error {
		return d.Regs.Register(ctx, f.Event.ID, viewer.ID, f.Event.MaxAttendees)
	})
	if !ok {
		return
	}

	after, err := d.Views.Facts(ctx, f.Event.ID, viewer)
	if err != nil {
		d.fail(c, err, "register")
		return
	}
	utils.Notify(c, http.StatusCreated, utils.Notification{
		Title: "Successfully registered!", Message: "You're all set for this event.",
	}, gin.H{"message": "Registered!", "registration": d.settle(c, settled, after)})
}

// DELETE /events/:id/register
func (d *deps) cancelRegistration(c *gin.Context) {
	ctx := c.Request.Context()
	viewer := middlewares.Viewer(c)

	f, err := d.Views.Facts(ctx, c.Param("id"), viewer)
	if err != nil {
		d.fail(c, err, "unregister")
		return
	}
	if !f.Button.Allows(views.EventUnregister) {
		if f.Button.State == views.StateOrganiser {
			organiserOwnEvent(c)
			return
		}
		d.fail(c, models.ErrNotRegistered, "unregister")
		return
	}

	settled, ok := d.press(c, f, views.EventUnregister, "unregister", func(ctx context.Context) error {
		return d.Regs.Unregister(ctx, f.Event.ID, viewer.ID)
	})
	if !ok {
		return
	}

	after, err := d.Views.Facts(ctx, f.Event.ID, viewer)
	if err != nil {
		d.fail(c, err, "unregister")
		return
	}
	utils.Notify(c, http.StatusOK, utils.Notification{
		Title: "Unregistered", Message: "You've been unregistered from this event.",
	}, gin.H{"message": "Cancelled!", "registration": d.settle(c, settled, after)})
}

// GET /events/:id/registrations/count
func (d *deps) registrationCount(c *gin.Context) {
	ctx := c.Request.Context()
	e, err := d.Events.GetByID(ctx, c.Param("id"))
	if err != nil {
		d.fail(c, err, "count registrations")
		return
	}
	n, err := d.Regs.CountFor(ctx, e.ID)
	if err != nil {
		d.fail(c, err, "count registrations")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"event_id":      e.ID,
		"count":         n,
		"max_attendees": e.MaxAttendees,
		"is_full":       e.IsFull(n),
	})
}

// GET /events/:id/registration reports the caller's membership. Not being
// registered is a normal answer.
func (d *deps) registrationStatus(c *gin.Context) {
	ok, err := d.Regs.IsRegistered(c.Request.Context(), c.Param("id"), middlewares.UserID(c))
	if err != nil {
		d.fail(c, err, "registration status")
		return
	}
	c.JSON(http.StatusOK, gin.H{"event_id": c.Param("id"), "registered": ok})
}
