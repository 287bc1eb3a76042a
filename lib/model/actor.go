package model

import (
	"fmt"
	"time"
)

const (
	MaxActorNameLength  = 255
	MaxActorEmailLength = 320
)

// Actor is a Git identity: an author or a committer at a point in time.
type Actor struct {
	name      string
	email     string
	timestamp time.Time
}

func NewActor(name string, email string, timestamp time.Time) (*Actor, error) {
	v := newValidator("Actor")

	name, err := normalizeText(name, MaxActorNameLength)
	v.field("name", err)

	// Git accepts malformed emails, so only the size is checked.
	email, err = normalizeText(email, MaxActorEmailLength)
	v.field("email", err)

	if timestamp.IsZero() {
		v.field("timestamp", ErrMissing)
	}

	if v.failed() {
		return nil, v.err()
	}

	return &Actor{
		name:      name,
		email:     lowercase(email),
		timestamp: timestamp,
	}, nil
}

func (a *Actor) Name() string {
	return a.name
}

func (a *Actor) Email() string {
	return a.email
}

func (a *Actor) Timestamp() time.Time {
	return a.timestamp
}

func (a *Actor) Equal(o *Actor) bool {
	if a == nil || o == nil {
		return a == o
	}

	return a.name == o.name && a.email == o.email && a.timestamp.Equal(o.timestamp)
}

// String returns the actor the way Git writes it in commit headers.
func (a *Actor) String() string {
	return fmt.Sprintf("%v <%v> %v %v", a.name, a.email, a.timestamp.Unix(), a.timestamp.Format("-0700"))
}

func (a *Actor) GoString() string {
	return fmt.Sprintf("Actor(name=%q, email=%q, timestamp=%v)",
		a.name, a.email, a.timestamp.Format(time.RFC3339Nano))
}
