// Package login defines the narrow interface to the external authentication
// step. The portal itself only ever sees the resulting cookie; how that
// cookie is obtained (interactive browser, paste, test stub) is up to the
// Performer implementation.
package login

import (
	"context"
	"errors"
	"strings"

	"github.com/diego-devita/stopweb/internal/config"
)

// ErrInvalidSession marks a login attempt that produced no usable cookie.
var ErrInvalidSession = errors.New("login produced no usable session")

// Credentials are the portal account credentials.
type Credentials struct {
	Username string
	Password string
}

// Step names a stage of the login flow, reported through the progress
// callback so the CLI can narrate what is happening.
type Step string

const (
	StepStarted       Step = "started"
	StepSubmitting    Step = "submitting"
	StepAuthenticated Step = "authenticated"
	StepFailed        Step = "failed"
)

// Performer runs one login and yields the session to persist under the
// profile. progress may be nil.
type Performer interface {
	Perform(ctx context.Context, creds Credentials, progress func(Step)) (config.Session, error)
}

// StaticSession is a Performer fed with a pre-captured cookie and employee
// id, for `stopweb login --cookie`. It validates the inputs and reports the
// same steps an interactive login would.
type StaticSession struct {
	CookieHeader string
	EmployeeID   string
}

// Perform implements Performer.
func (s StaticSession) Perform(_ context.Context, _ Credentials, progress func(Step)) (config.Session, error) {
	report := func(step Step) {
		if progress != nil {
			progress(step)
		}
	}
	report(StepStarted)
	report(StepSubmitting)

	cookie := strings.TrimSpace(s.CookieHeader)
	id := strings.TrimSpace(s.EmployeeID)
	if cookie == "" || id == "" {
		report(StepFailed)
		return config.Session{}, ErrInvalidSession
	}

	report(StepAuthenticated)
	return config.Session{CookieHeader: cookie, EmployeeID: id}, nil
}
