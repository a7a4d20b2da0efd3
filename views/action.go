package views

import (
	"net/http"

	"eventhub/models"
)

// ActionState is the state of the register/unregister button on the event
// detail page.
type ActionState string

const (
	StateSignedOut     ActionState = "signed_out"
	StateNotRegistered ActionState = "not_registered"
	StateFull          ActionState = "full"
	StateRegistering   ActionState = "registering"
	StateRegistered    ActionState = "registered"
	StateOrganiser     ActionState = "organiser"
)

type ActionEvent string

const (
	EventSignIn     ActionEvent = "sign_in"
	EventSignOut    ActionEvent = "sign_out"
	EventRegister   ActionEvent = "register"
	EventUnregister ActionEvent = "unregister"
	EventSucceeded  ActionEvent = "succeeded"
	EventFailed     ActionEvent = "failed"
)

// Button is the action state plus the request in flight while registering.
type Button struct {
	State   ActionState `json:"state"`
	Pending ActionEvent `json:"pending,omitempty"`
}

// InitialButton derives the button for a viewer (nil when signed out).
func InitialButton(viewer *models.User, e models.Event, registered bool, count int) Button {
	switch {
	case viewer == nil:
		return Button{State: StateSignedOut}
	case viewer.ID == e.OrganiserID:
		return Button{State: StateOrganiser}
	case registered:
		return Button{State: StateRegistered}
	case e.IsFull(count):
		return Button{State: StateFull}
	}
	return Button{State: StateNotRegistered}
}

// Next applies ev. full is whether the event is at capacity at the time of
// the event. Transitions not listed leave the button unchanged.
func (b Button) Next(ev ActionEvent, full bool) Button {
	if b.State == StateOrganiser {
		return b
	}
	if ev == EventSignOut {
		return Button{State: StateSignedOut}
	}

	switch b.State {
	case StateSignedOut:
		if ev == EventSignIn {
			return openState(full)
		}
	case StateNotRegistered:
		if ev == EventRegister {
			return Button{State: StateRegistering, Pending: EventRegister}
		}
	case StateRegistered:
		if ev == EventUnregister {
			return Button{State: StateRegistering, Pending: EventUnregister}
		}
	case StateRegistering:
		switch {
		case ev == EventSucceeded && b.Pending == EventRegister:
			return Button{State: StateRegistered}
		case ev == EventSucceeded && b.Pending == EventUnregister:
			return Button{State: StateNotRegistered}
		case ev == EventFailed && b.Pending == EventRegister:
			return openState(full)
		case ev == EventFailed && b.Pending == EventUnregister:
			return Button{State: StateRegistered}
		}
	}
	return b
}

func openState(full bool) Button {
	if full {
		return Button{State: StateFull}
	}
	return Button{State: StateNotRegistered}
}

// Allows reports whether ev may be sent from the current state.
func (b Button) Allows(ev ActionEvent) bool {
	switch ev {
	case EventRegister:
		return b.State == StateNotRegistered
	case EventUnregister:
		return b.State == StateRegistered
	}
	return false
}

type Action struct {
	State   ActionState `json:"state"`
	Label   string      `json:"label"`
	Enabled bool        `json:"enabled"`
	Method  string      `json:"method,omitempty"`
	Href    string      `json:"href,omitempty"`
}

// Action renders the button for eventID; organisers get no action.
func (b Button) Action(eventID string) *Action {
	register := "/events/" + eventID + "/register"
	switch b.State {
	case StateSignedOut:
		return &Action{State: b.State, Label: "Sign In to Register", Enabled: true, Method: http.MethodGet, Href: "/auth"}
	case StateNotRegistered:
		return &Action{State: b.State, Label: "Register for Event", Enabled: true, Method: http.MethodPost, Href: register}
	case StateFull:
		return &Action{State: b.State, Label: "Event Full"}
	case StateRegistered:
		return &Action{State: b.State, Label: "Unregister", Enabled: true, Method: http.MethodDelete, Href: register}
	case StateRegistering:
		return &Action{State: b.State, Label: "Processing..."}
	}
	return nil
}
