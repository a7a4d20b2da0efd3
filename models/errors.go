package models

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid login credentials")
	ErrAlreadyRegistered  = errors.New("already registered for this event")
	ErrNotRegistered      = errors.New("not registered for this event")
	ErrEventFull          = errors.New("event is full")
)
