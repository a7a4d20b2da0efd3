// Package views composes catalog, ledger and role data into the JSON view
// models the client renders: cards, the event detail page and dashboards.
package views

import (
	"context"
	"fmt"

	"eventhub/models"
	"eventhub/roles"
)

type Renderer struct {
	events models.EventRepository
	regs   models.RegistrationRepository
	roles  *roles.Resolver
}

func NewRenderer(events models.EventRepository, regs models.RegistrationRepository, rr *roles.Resolver) *Renderer {
	return &Renderer{events: events, regs: regs, roles: rr}
}

type Home struct {
	Featured Section `json:"featured"`
}

func (r *Renderer) Home(ctx context.Context, limit int) (Home, error) {
	events, err := r.events.ListUpcoming(ctx, limit)
	if err != nil {
		return Home{}, err
	}
	cards, err := r.cards(ctx, events, nil)
	if err != nil {
		return Home{}, err
	}
	return Home{Featured: newSection("Featured Events", cards, EmptyView{
		Message: "No events available at the moment.",
	})}, nil
}

type Detail struct {
	Event             models.Event `json:"event"`
	Image             string       `json:"image,omitempty"`
	Starts            string       `json:"starts"`
	Ends              string       `json:"ends"`
	RegistrationCount int          `json:"registration_count"`
	Attendance        string       `json:"attendance,omitempty"`
	IsFull            bool         `json:"is_full"`
	IsRegistered      bool         `json:"is_registered"`
	Badges            []string     `json:"badges"`
	Button            Button       `json:"button"`
	Action            *Action      `json:"action"`
}

// Facts are the live numbers the detail page and the register handler
// both decide on.
type Facts struct {
	Event      models.Event
	Count      int
	Registered bool
	Button     Button
}

// Facts loads the event, its count and the viewer's membership.
// viewer is nil for anonymous requests.
func (r *Renderer) Facts(ctx context.Context, eventID string, viewer *models.User) (Facts, error) {
	e, err := r.events.GetByID(ctx, eventID)
	if err != nil {
		return Facts{}, err
	}
	count, err := r.regs.CountFor(ctx, eventID)
	if err != nil {
		return Facts{}, err
	}
	registered := false
	if viewer != nil {
		if registered, err = r.regs.IsRegistered(ctx, eventID, viewer.ID); err != nil {
			return Facts{}, err
		}
	}
	return Facts{
		Event:      e,
		Count:      count,
		Registered: registered,
		Button:     InitialButton(viewer, e, registered, count),
	}, nil
}

func (r *Renderer) EventDetail(ctx context.Context, eventID string, viewer *models.User) (Detail, error) {
	f, err := r.Facts(ctx, eventID, viewer)
	if err != nil {
		return Detail{}, err
	}
	return NewDetail(f), nil
}

func NewDetail(f Facts) Detail {
	e := f.Event
	d := Detail{
		Event:             e,
		Starts:            FormatDateTime(e.StartDate),
		Ends:              FormatDateTime(e.EndDate),
		RegistrationCount: f.Count,
		IsFull:            e.IsFull(f.Count),
		IsRegistered:      f.Registered,
		Badges:            []string{},
		Button:            f.Button,
		Action:            f.Button.Action(e.ID),
	}
	if e.EventImage != nil {
		d.Image = *e.EventImage
	}
	if e.MaxAttendees != nil {
		d.Attendance = fmt.Sprintf("%d / %d registered", f.Count, *e.MaxAttendees)
	}
	if f.Registered {
		d.Badges = append(d.Badges, "Registered")
	}
	if f.Button.State == StateOrganiser {
		d.Badges = append(d.Badges, "You're the organiser")
	}
	return d
}

// Dashboard is a tagged variant: exactly one of Attendee or Organiser is
// set, matching Kind.
type Dashboard struct {
	Kind      models.Role    `json:"kind"`
	Attendee  *AttendeeView  `json:"attendee,omitempty"`
	Organiser *OrganiserView `json:"organiser,omitempty"`
}

type AttendeeView struct {
	Title      string  `json:"title"`
	Subtitle   string  `json:"subtitle"`
	Registered Section `json:"registered"`
	Available  Section `json:"available"`
}

type OrganiserStats struct {
	TotalEvents        int `json:"total_events"`
	TotalRegistrations int `json:"total_registrations"`
}

type OrganiserView struct {
	Title      string         `json:"title"`
	Subtitle   string         `json:"subtitle"`
	Stats      OrganiserStats `json:"stats"`
	Events     Section        `json:"events"`
	CreateHref string         `json:"create_href"`
}

func (r *Renderer) Dashboard(ctx context.Context, viewer models.User) (Dashboard, error) {
	if r.roles.Resolve(ctx, viewer.ID) == models.RoleOrganiser {
		v, err := r.organiserView(ctx, viewer)
		if err != nil {
			return Dashboard{}, err
		}
		return Dashboard{Kind: models.RoleOrganiser, Organiser: v}, nil
	}
	v, err := r.attendeeView(ctx, viewer)
	if err != nil {
		return Dashboard{}, err
	}
	return Dashboard{Kind: models.RoleAttendee, Attendee: v}, nil
}

func (r *Renderer) organiserView(ctx context.Context, viewer models.User) (*OrganiserView, error) {
	events, err := r.events.ListByOrganiser(ctx, viewer.ID)
	if err != nil {
		return nil, err
	}
	ids := eventIDs(events)
	total, err := r.regs.CountForMany(ctx, ids)
	if err != nil {
		return nil, err
	}
	cards, err := r.cards(ctx, events, nil)
	if err != nil {
		return nil, err
	}
	return &OrganiserView{
		Title:    "Organiser Dashboard",
		Subtitle: "Manage your events and track attendee registrations",
		Stats:    OrganiserStats{TotalEvents: len(events), TotalRegistrations: total},
		Events: newSection("Your Events", cards, EmptyView{
			Message:     "You haven't created any events yet.",
			ActionLabel: "Create Your First Event",
			ActionHref:  "/create-event",
		}),
		CreateHref: "/create-event",
	}, nil
}

func (r *Renderer) attendeeView(ctx context.Context, viewer models.User) (*AttendeeView, error) {
	ids, err := r.regs.EventIDsFor(ctx, viewer.ID)
	if err != nil {
		return nil, err
	}
	mine := make(map[string]bool, len(ids))
	for _, id := range ids {
		mine[id] = true
	}

	all, err := r.events.ListUpcoming(ctx, 0)
	if err != nil {
		return nil, err
	}
	cards, err := r.cards(ctx, all, mine)
	if err != nil {
		return nil, err
	}

	var registered, available []Card
	for _, c := range cards {
		if c.Registered {
			registered = append(registered, c)
		} else {
			available = append(available, c)
		}
	}
	return &AttendeeView{
		Title:    "My Dashboard",
		Subtitle: "Manage your event registrations and discover new events",
		Registered: newSection("My Events", registered, EmptyView{
			Message: "You haven't registered for any events yet.",
			Hint:    "Check out the Discover tab to find exciting events!",
		}),
		Available: newSection("Discover", available, EmptyView{
			Message: "No events available at the moment.",
		}),
	}, nil
}

// cards builds one card per event with a single count query for the lot.
func (r *Renderer) cards(ctx context.Context, events []models.Event, registered map[string]bool) ([]Card, error) {
	counts, err := r.regs.CountsFor(ctx, eventIDs(events))
	if err != nil {
		return nil, err
	}
	out := make([]Card, 0, len(events))
	for _, e := range events {
		out = append(out, NewCard(e, counts[e.ID], registered[e.ID]))
	}
	return out, nil
}

func eventIDs(events []models.Event) []string {
	ids := make([]string, len(events))
	for i, e := range events {
		ids[i] = e.ID
	}
	return ids
}
