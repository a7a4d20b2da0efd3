package routes

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"eventhub/middlewares"
	"eventhub/models"
	"eventhub/utils"
)

type eventInput struct {
	Title        string    `json:"title"`
	Description  *string   `json:"description"`
	EventImage   *string   `json:"event_image"`
	StartDate    time.Time `json:"start_date"`
	EndDate      time.Time `json:"end_date"`
	Location     string    `json:"location"`
	MaxAttendees *int      `json:"max_attendees"`
}

// validate returns the message to show, or "".
func (in *eventInput) validate() string {
	in.Title = strings.TrimSpace(in.Title)
	in.Location = strings.TrimSpace(in.Location)
	switch {
	case in.Title == "":
		return "Title is required."
	case in.Location == "":
		return "Location is required."
	case in.StartDate.IsZero() || in.EndDate.IsZero():
		return "Start and end dates are required."
	case !in.EndDate.After(in.StartDate):
		return "The event must end after it starts."
	case in.MaxAttendees != nil && *in.MaxAttendees < 1:
		return "Capacity must be at least 1."
	}
	return ""
}

func (in eventInput) apply(e *models.Event) {
	e.Title = in.Title
	e.Description = blankToNil(in.Description)
	e.EventImage = blankToNil(in.EventImage)
	e.StartDate = in.StartDate.UTC()
	e.EndDate = in.EndDate.UTC()
	e.Location = in.Location
	e.MaxAttendees = in.MaxAttendees
}

func blankToNil(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	return s
}

/* -------------------- Events -------------------- */

// GET /events?limit=&organiser=
func (d *deps) getEvents(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			badRequest(c, "limit must be a non-negative number.")
			return
		}
		limit = n
	}

	var (
		events []models.Event
		err    error
	)
	if org := c.Query("organiser"); org != "" {
		events, err = d.Events.ListByOrganiser(c.Request.Context(), org)
		if err == nil && limit > 0 && len(events) > limit {
			events = events[:limit]
		}
	} else {
		events, err = d.Events.ListUpcoming(c.Request.Context(), limit)
	}
	if err != nil {
		d.fail(c, err, "list events")
		return
	}
	c.JSON(http.StatusOK, events)
}

// GET /events/:id
func (d *deps) getEvent(c *gin.Context) {
	e, err := d.Events.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		d.fail(c, err, "get event")
		return
	}
	c.JSON(http.StatusOK, e)
}

// POST /events
func (d *deps) createEvent(c *gin.Context) {
	var in eventInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "Could not parse request data.")
		return
	}
	if msg := in.validate(); msg != "" {
		badRequest(c, msg)
		return
	}

	e := models.Event{
		ID:          uuid.NewString(),
		OrganiserID: middlewares.UserID(c),
		CreatedAt:   time.Now().UTC(),
	}
	in.apply(&e)
	if err := d.Events.Create(c.Request.Context(), &e); err != nil {
		d.fail(c, err, "create event")
		return
	}
	d.purgeEvent(c, e.ID)

	c.JSON(http.StatusCreated, gin.H{"message": "event created!", "event": e})
}

// ownedEvent loads :id and aborts unless the caller organises it.
func (d *deps) ownedEvent(c *gin.Context) (models.Event, bool) {
	e, err := d.Events.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		d.fail(c, err, "get event")
		return models.Event{}, false
	}
	if e.OrganiserID != middlewares.UserID(c) {
		utils.Abort(c, http.StatusForbidden, utils.Notification{
			Kind: utils.KindAuth, Title: "Not allowed", Message: "Only the event's organiser can change it.",
		})
		return models.Event{}, false
	}
	return e, true
}

// PUT /events/:id
func (d *deps) updateEvent(c *gin.Context) {
	e, ok := d.ownedEvent(c)
	if !ok {
		return
	}

	var in eventInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "Could not parse request data.")
		return
	}
	if msg := in.validate(); msg != "" {
		badRequest(c, msg)
		return
	}
	in.apply(&e)

	if err := d.Events.Update(c.Request.Context(), &e); err != nil {
		d.fail(c, err, "update event")
		return
	}
	d.purgeEvent(c, e.ID)

	c.JSON(http.StatusOK, gin.H{"message": "Event updated successfully!", "event": e})
}

// DELETE /events/:id
func (d *deps) deleteEvent(c *gin.Context) {
	e, ok := d.ownedEvent(c)
	if !ok {
		return
	}
	// registrations go first so a failure leaves the event in place to retry
	if err := d.Regs.DeleteForEvent(c.Request.Context(), e.ID); err != nil {
		d.fail(c, err, "clear registrations")
		return
	}
	if err := d.Events.Delete(c.Request.Context(), e.ID); err != nil {
		d.fail(c, err, "delete event")
		return
	}
	d.purgeEvent(c, e.ID)

	c.JSON(http.StatusOK, gin.H{"message": "Event deleted successfully!"})
}
