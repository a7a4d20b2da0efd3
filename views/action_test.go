package views

import (
	"net/http"
	"testing"

	"eventhub/models"
)

func intp(n int) *int { return &n }

func TestInitialButton(t *testing.T) {
	org := models.User{ID: "org"}
	att := models.User{ID: "att"}
	e := models.Event{ID: "e1", OrganiserID: "org", MaxAttendees: intp(2)}

	cases := []struct {
		name       string
		viewer     *models.User
		registered bool
		count      int
		want       ActionState
	}{
		{"anonymous", nil, false, 0, StateSignedOut},
		{"organiser own event", &org, false, 2, StateOrganiser},
		{"registered even when full", &att, true, 2, StateRegistered},
		{"full", &att, false, 2, StateFull},
		{"open", &att, false, 1, StateNotRegistered},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := InitialButton(tc.viewer, e, tc.registered, tc.count).State; got != tc.want {
				t.Fatalf("got %s, want %s", got, tc.want)
			}
		})
	}
}

func TestButtonTransitions(t *testing.T) {
	cases := []struct {
		from Button
		ev   ActionEvent
		full bool
		want Button
	}{
		{Button{State: StateSignedOut}, EventSignIn, false, Button{State: StateNotRegistered}},
		{Button{State: StateSignedOut}, EventSignIn, true, Button{State: StateFull}},
		{Button{State: StateNotRegistered}, EventRegister, false, Button{State: StateRegistering, Pending: EventRegister}},
		{Button{State: StateRegistering, Pending: EventRegister}, EventSucceeded, false, Button{State: StateRegistered}},
		{Button{State: StateRegistering, Pending: EventRegister}, EventFailed, true, Button{State: StateFull}},
		{Button{State: StateRegistering, Pending: EventRegister}, EventFailed, false, Button{State: StateNotRegistered}},
		{Button{State: StateRegistered}, EventUnregister, true, Button{State: StateRegistering, Pending: EventUnregister}},
		{Button{State: StateRegistering, Pending: EventUnregister}, EventSucceeded, false, Button{State: StateNotRegistered}},
		{Button{State: StateRegistering, Pending: EventUnregister}, EventFailed, false, Button{State: StateRegistered}},
		{Button{State: StateFull}, EventRegister, true, Button{State: StateFull}},
		{Button{State: StateRegistered}, EventSignOut, false, Button{State: StateSignedOut}},
		{Button{State: StateOrganiser}, EventSignOut, false, Button{State: StateOrganiser}},
		{Button{State: StateOrganiser}, EventRegister, false, Button{State: StateOrganiser}},
		{Button{State: StateRegistering, Pending: EventRegister}, EventRegister, false, Button{State: StateRegistering, Pending: EventRegister}},
	}
	for _, tc := range cases {
		if got := tc.from.Next(tc.ev, tc.full); got != tc.want {
			t.Errorf("%+v --%s--> %+v, want %+v", tc.from, tc.ev, got, tc.want)
		}
	}
}

func TestButtonAction(t *testing.T) {
	if a := (Button{State: StateOrganiser}).Action("e1"); a != nil {
		t.Fatalf("organiser should get no action, got %+v", a)
	}

	a := Button{State: StateNotRegistered}.Action("e1")
	if !a.Enabled || a.Method != http.MethodPost || a.Href != "/events/e1/register" || a.Label != "Register for Event" {
		t.Fatalf("unexpected register action %+v", a)
	}
	if a := (Button{State: StateFull}).Action("e1"); a.Enabled || a.Label != "Event Full" {
		t.Fatalf("full must be disabled, got %+v", a)
	}
	if a := (Button{State: StateRegistering}).Action("e1"); a.Enabled || a.Label != "Processing..." {
		t.Fatalf("in flight must be disabled, got %+v", a)
	}
	if a := (Button{State: StateSignedOut}).Action("e1"); a.Href != "/auth" || a.Label != "Sign In to Register" {
		t.Fatalf("unexpected signed-out action %+v", a)
	}
	if a := (Button{State: StateRegistered}).Action("e1"); a.Method != http.MethodDelete || a.Label != "Unregister" {
		t.Fatalf("unexpected unregister action %+v", a)
	}
}

func TestButtonAllows(t *testing.T) {
	if !(Button{State: StateNotRegistered}).Allows(EventRegister) {
		t.Fatal("open event should allow register")
	}
	for _, s := range []ActionState{StateFull, StateRegistered, StateRegistering, StateOrganiser, StateSignedOut} {
		if (Button{State: s}).Allows(EventRegister) {
			t.Fatalf("%s should not allow register", s)
		}
	}
	if !(Button{State: StateRegistered}).Allows(EventUnregister) {
		t.Fatal("registered should allow unregister")
	}
}
