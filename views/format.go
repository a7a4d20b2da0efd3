package views

import (
	"fmt"
	"hash/fnv"
	"time"

	"github.com/dustin/go-humanize"
)

// FormatDate renders t like "October 18th, 2026".
func FormatDate(t time.Time) string {
	return fmt.Sprintf("%s %s, %d", t.Month(), humanize.Ordinal(t.Day()), t.Year())
}

// FormatDateTime renders t like "October 18th, 2026 at 3:04 PM".
func FormatDateTime(t time.Time) string {
	return FormatDate(t) + " at " + t.Format("3:04 PM")
}

var placeholderImages = []string{
	"/assets/event-tech.jpg",
	"/assets/event-workshop.jpg",
	"/assets/event-networking.jpg",
}

// placeholderImage picks a stable stock image for an event without one.
func placeholderImage(eventID string) string {
	h := fnv.New32a()
	h.Write([]byte(eventID))
	return placeholderImages[h.Sum32()%uint32(len(placeholderImages))]
}
