// Package apps hosts several applications at once. The orchestrator owns
// every runtime, decides which one receives input, moves applications
// between lifecycle states as the user navigates, and draws the global
// chrome: a header line and modal overlays for help, quit, overview and the
// application launcher.
package apps

import (
	"time"

	"github.com/odvcencio/lattice/pkg/config"
)

// Lifecycle is an application's place in the orchestrator's table.
type Lifecycle int

const (
	NotCreated Lifecycle = iota
	Running
	Background
	Dead
)

func (l Lifecycle) String() string {
	switch l {
	case NotCreated:
		return "not-created"
	case Running:
		return "running"
	case Background:
		return "background"
	case Dead:
		return "dead"
	default:
		return "unknown"
	}
}

// Live reports whether the application has a runtime.
func (l Lifecycle) Live() bool {
	return l == Running || l == Background
}

// QuitKind selects what happens to an application when the user leaves it.
type QuitKind int

const (
	// Sleep keeps the application; its SuspendPolicy decides how.
	Sleep QuitKind = iota
	// QuitOnIdle keeps the application until it has been in the background
	// for IdleTimeout.
	QuitOnIdle
	// QuitOnExit destroys the application as soon as it loses focus.
	QuitOnExit
)

// String returns the config spelling of k.
func (k QuitKind) String() string {
	switch k {
	case QuitOnIdle:
		return config.QuitOnIdle
	case QuitOnExit:
		return config.QuitOnExit
	}
	return config.QuitSleep
}

// QuitPolicy is read at navigation-away and, for QuitOnIdle, on poll ticks.
type QuitPolicy struct {
	Kind        QuitKind
	IdleTimeout time.Duration
}

// SuspendPolicy decides how a kept application goes to the background.
type SuspendPolicy int

const (
	// Suspend backgrounds the application and calls its suspend hook.
	Suspend SuspendPolicy = iota
	// AlwaysActive backgrounds the application without a hook.
	AlwaysActive
	// QuitOnSuspend destroys the application anyway.
	QuitOnSuspend
)

// String returns the config spelling of p.
func (p SuspendPolicy) String() string {
	switch p {
	case AlwaysActive:
		return config.AlwaysActive
	case QuitOnSuspend:
		return config.QuitOnSuspend
	}
	return config.SuspendDefault
}

// PolicyFromConfig translates a validated config entry.
func PolicyFromConfig(c config.AppConfig) (QuitPolicy, SuspendPolicy) {
	var q QuitPolicy
	switch c.QuitPolicy {
	case config.QuitOnIdle:
		q = QuitPolicy{Kind: QuitOnIdle, IdleTimeout: c.IdleTimeout}
	case config.QuitOnExit:
		q = QuitPolicy{Kind: QuitOnExit}
	}
	s := Suspend
	switch c.SuspendPolicy {
	case config.AlwaysActive:
		s = AlwaysActive
	case config.QuitOnSuspend:
		s = QuitOnSuspend
	}
	return q, s
}
