package routes

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventhub/models"
)

func eventBody() map[string]any {
	return map[string]any{
		"title":         "Go Meetup",
		"description":   "Talks and pizza",
		"start_date":    "2026-12-01T18:00:00Z",
		"end_date":      "2026-12-01T21:00:00Z",
		"location":      "Hall 1",
		"max_attendees": 40,
	}
}

func TestCreateEvent_OrganiserOnly(t *testing.T) {
	ts := setup(t)
	att, _ := ts.signUp(t, "att@example.com", "attendee")
	org, orgID := ts.signUp(t, "org@example.com", "organiser")

	assert.Equal(t, http.StatusUnauthorized, ts.do(http.MethodPost, "/events", eventBody(), "").Code)
	w := ts.do(http.MethodPost, "/events", eventBody(), att)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "auth", notificationOf(t, w).Kind)

	w = ts.do(http.MethodPost, "/events", eventBody(), org)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var out struct {
		Event models.Event `json:"event"`
	}
	decode(t, w, &out)
	assert.NotEmpty(t, out.Event.ID)
	assert.Equal(t, orgID, out.Event.OrganiserID)
	require.NotNil(t, out.Event.MaxAttendees)
	assert.Equal(t, 40, *out.Event.MaxAttendees)

	stored, err := ts.events.GetByID(context.Background(), out.Event.ID)
	require.NoError(t, err)
	assert.Equal(t, "Go Meetup", stored.Title)
}

func TestCreateEvent_Validation(t *testing.T) {
	ts := setup(t)
	org, _ := ts.signUp(t, "org@example.com", "organiser")

	for name, mutate := range map[string]func(map[string]any){
		"no title":     func(b map[string]any) { b["title"] = "  " },
		"no location":  func(b map[string]any) { delete(b, "location") },
		"ends early":   func(b map[string]any) { b["end_date"] = "2026-12-01T17:00:00Z" },
		"zero cap":     func(b map[string]any) { b["max_attendees"] = 0 },
		"missing date": func(b map[string]any) { delete(b, "start_date") },
	} {
		b := eventBody()
		mutate(b)
		w := ts.do(http.MethodPost, "/events", b, org)
		assert.Equal(t, http.StatusBadRequest, w.Code, name)
	}
}

func TestUpdateDeleteEvent_OwnerOnly(t *testing.T) {
	ts := setup(t)
	org, orgID := ts.signUp(t, "org@example.com", "organiser")
	other, _ := ts.signUp(t, "other@example.com", "organiser")
	att, attID := ts.signUp(t, "att@example.com", "attendee")
	require.NoError(t, ts.events.Create(context.Background(), ptr(anEvent("e1", orgID, nil))))

	b := eventBody()
	b["title"] = "Renamed"
	assert.Equal(t, http.StatusForbidden, ts.do(http.MethodPut, "/events/e1", b, other).Code)
	assert.Equal(t, http.StatusNotFound, ts.do(http.MethodPut, "/events/missing", b, org).Code)

	w := ts.do(http.MethodPut, "/events/e1", b, org)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	e, _ := ts.events.GetByID(context.Background(), "e1")
	assert.Equal(t, "Renamed", e.Title)
	assert.Equal(t, orgID, e.OrganiserID)

	require.Equal(t, http.StatusCreated, ts.do(http.MethodPost, "/events/e1/register", nil, att).Code)

	assert.Equal(t, http.StatusForbidden, ts.do(http.MethodDelete, "/events/e1", nil, other).Code)
	require.Equal(t, http.StatusOK, ts.do(http.MethodDelete, "/events/e1", nil, org).Code)
	_, err := ts.events.GetByID(context.Background(), "e1")
	assert.ErrorIs(t, err, models.ErrNotFound)
	ok, _ := ts.regs.IsRegistered(context.Background(), "e1", attID)
	assert.False(t, ok, "registrations survive event deletion")
}

func TestDeleteEvent_KeepsEventWhenRegistrationsStay(t *testing.T) {
	ts := setup(t)
	org, orgID := ts.signUp(t, "org@example.com", "organiser")
	att, attID := ts.signUp(t, "att@example.com", "attendee")
	require.NoError(t, ts.events.Create(context.Background(), ptr(anEvent("e1", orgID, nil))))
	require.Equal(t, http.StatusCreated, ts.do(http.MethodPost, "/events/e1/register", nil, att).Code)

	ts.regs.FailNext = errors.New("ledger down")
	w := ts.do(http.MethodDelete, "/events/e1", nil, org)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "network", notificationOf(t, w).Kind)

	_, err := ts.events.GetByID(context.Background(), "e1")
	require.NoError(t, err, "event deleted with its registrations still in place")
	ok, _ := ts.regs.IsRegistered(context.Background(), "e1", attID)
	assert.True(t, ok)

	// the organiser can retry
	require.Equal(t, http.StatusOK, ts.do(http.MethodDelete, "/events/e1", nil, org).Code)
	_, err = ts.events.GetByID(context.Background(), "e1")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestGetEvents_ListAndFilter(t *testing.T) {
	a := anEvent("a", "o1", nil)
	b := anEvent("b", "o2", nil)
	b.StartDate = a.StartDate.Add(-1)
	ts := setup(t, a, b)

	w := ts.do(http.MethodGet, "/events", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var all []models.Event
	decode(t, w, &all)
	require.Len(t, all, 2)
	assert.Equal(t, "b", all[0].ID)

	w = ts.do(http.MethodGet, "/events?organiser=o1", nil, "")
	var mine []models.Event
	decode(t, w, &mine)
	require.Len(t, mine, 1)
	assert.Equal(t, "a", mine[0].ID)

	w = ts.do(http.MethodGet, "/events?limit=1", nil, "")
	var one []models.Event
	decode(t, w, &one)
	assert.Len(t, one, 1)

	assert.Equal(t, http.StatusBadRequest, ts.do(http.MethodGet, "/events?limit=-1", nil, "").Code)
}

func TestGetEvent_NotFound(t *testing.T) {
	ts := setup(t)
	w := ts.do(http.MethodGet, "/events/nope", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	n := notificationOf(t, w)
	assert.Equal(t, "data", n.Kind)
	assert.Equal(t, "Not found", n.Title)
}

func TestEvents_CachedAndPurgedOnWrite(t *testing.T) {
	ts := setup(t)
	org, _ := ts.signUp(t, "org@example.com", "organiser")

	assert.Equal(t, "MISS", ts.do(http.MethodGet, "/events", nil, "").Header().Get("X-Cache"))
	w := ts.do(http.MethodGet, "/events", nil, "")
	assert.Equal(t, "HIT", w.Header().Get("X-Cache"))
	assert.JSONEq(t, `[]`, w.Body.String())

	require.Equal(t, http.StatusCreated, ts.do(http.MethodPost, "/events", eventBody(), org).Code)

	w = ts.do(http.MethodGet, "/events", nil, "")
	assert.Equal(t, "MISS", w.Header().Get("X-Cache"))
	var list []models.Event
	decode(t, w, &list)
	assert.Len(t, list, 1)
}

func TestEvents_StoreTimeoutIsNetworkError(t *testing.T) {
	ts := setup(t)
	ts.events.Err = context.DeadlineExceeded

	w := ts.do(http.MethodGet, "/events", nil, "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "network", notificationOf(t, w).Kind)
}

func ptr[T any](v T) *T { return &v }
