package views

import (
	"strings"
	"testing"
	"time"

	"eventhub/models"
)

func TestFormatDate(t *testing.T) {
	ts := time.Date(2026, time.October, 18, 15, 4, 0, 0, time.UTC)
	if got := FormatDate(ts); got != "October 18th, 2026" {
		t.Fatalf("got %q", got)
	}
	if got := FormatDateTime(ts); got != "October 18th, 2026 at 3:04 PM" {
		t.Fatalf("got %q", got)
	}
	if got := FormatDate(ts.AddDate(0, 0, -17)); got != "October 1st, 2026" {
		t.Fatalf("got %q", got)
	}
}

func TestNewCard(t *testing.T) {
	desc, img := "Talks", "https://img.test/a.png"
	e := models.Event{
		ID: "e1", Title: "GoCon", Description: &desc, EventImage: &img,
		StartDate: time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC), Location: "Berlin",
		MaxAttendees: intp(50),
	}

	c := NewCard(e, 12, true)
	if c.Description != "Talks" || c.Image != img || c.ImagePlaceholder {
		t.Fatalf("unexpected card %+v", c)
	}
	if c.Date != "March 2nd, 2026" || c.Attendance != "12 / 50 attendees" || c.Href != "/event/e1" || !c.Registered {
		t.Fatalf("unexpected card %+v", c)
	}
}

func TestNewCard_Fallbacks(t *testing.T) {
	e := models.Event{ID: "e2", Title: "Meetup"}
	c := NewCard(e, 3, false)
	if c.Description != "No description available" {
		t.Fatalf("description %q", c.Description)
	}
	if !c.ImagePlaceholder || !strings.HasPrefix(c.Image, "/assets/") {
		t.Fatalf("image %q", c.Image)
	}
	if c.Attendance != "" {
		t.Fatalf("attendance shown without capacity: %q", c.Attendance)
	}
	if again := NewCard(e, 0, false); again.Image != c.Image {
		t.Fatalf("placeholder not stable: %q vs %q", again.Image, c.Image)
	}
}

func TestNewSection_Empty(t *testing.T) {
	s := newSection("Discover", nil, EmptyView{Message: "nothing"})
	if s.Cards == nil || len(s.Cards) != 0 || s.Empty == nil || s.Empty.Message != "nothing" {
		t.Fatalf("unexpected section %+v", s)
	}
	s = newSection("Discover", []Card{{ID: "x"}}, EmptyView{Message: "nothing"})
	if s.Empty != nil {
		t.Fatalf("non-empty section carries empty view")
	}
}
