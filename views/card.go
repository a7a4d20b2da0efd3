package views

import (
	"fmt"

	"eventhub/models"
)

const noDescription = "No description available"

type Card struct {
	ID               string `json:"id"`
	Title            string `json:"title"`
	Description      string `json:"description"`
	Image            string `json:"image"`
	ImagePlaceholder bool   `json:"image_placeholder"`
	Date             string `json:"date"`
	Location         string `json:"location"`
	Attendance       string `json:"attendance,omitempty"`
	Registered       bool   `json:"registered"`
	Href             string `json:"href"`
}

func NewCard(e models.Event, count int, registered bool) Card {
	c := Card{
		ID:          e.ID,
		Title:       e.Title,
		Description: noDescription,
		Date:        FormatDate(e.StartDate),
		Location:    e.Location,
		Registered:  registered,
		Href:        "/event/" + e.ID,
	}
	if e.Description != nil && *e.Description != "" {
		c.Description = *e.Description
	}
	if e.EventImage != nil && *e.EventImage != "" {
		c.Image = *e.EventImage
	} else {
		c.Image = placeholderImage(e.ID)
		c.ImagePlaceholder = true
	}
	if e.MaxAttendees != nil {
		c.Attendance = fmt.Sprintf("%d / %d attendees", count, *e.MaxAttendees)
	}
	return c
}

// Section is a titled list of cards with the message shown when it is empty.
type Section struct {
	Title string     `json:"title"`
	Cards []Card     `json:"cards"`
	Empty *EmptyView `json:"empty,omitempty"`
}

type EmptyView struct {
	Message     string `json:"message"`
	Hint        string `json:"hint,omitempty"`
	ActionLabel string `json:"action_label,omitempty"`
	ActionHref  string `json:"action_href,omitempty"`
}

func newSection(title string, cards []Card, empty EmptyView) Section {
	s := Section{Title: title, Cards: cards}
	if s.Cards == nil {
		s.Cards = []Card{}
	}
	if len(s.Cards) == 0 {
		s.Empty = &empty
	}
	return s
}
