package model

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownTrigger is returned when a trigger name or value is not recognised.
var ErrUnknownTrigger = errors.New("unknown spawn trigger")

// Trigger is the condition class governing when a spawn definition's
// instances exist.
type Trigger uint8

const (
	// TriggerAutomaticDefault spawns at map activation and respawns on death.
	TriggerAutomaticDefault Trigger = iota
	// TriggerAutomaticDuringEvent behaves like TriggerAutomaticDefault while
	// its event gate is running and tears down when the event ends.
	TriggerAutomaticDuringEvent
	// TriggerOnceAtEventStart spawns once when its event starts, never respawns.
	TriggerOnceAtEventStart
	// TriggerWandering behaves like TriggerAutomaticDefault and roams its area.
	TriggerWandering

	triggerCount
)

var triggerNames = [triggerCount]string{
	TriggerAutomaticDefault:     "automatic_default",
	TriggerAutomaticDuringEvent: "automatic_during_event",
	TriggerOnceAtEventStart:     "once_at_event_start",
	TriggerWandering:            "wandering",
}

// String returns the canonical trigger name.
func (t Trigger) String() string {
	if !t.Valid() {
		return fmt.Sprintf("trigger(%d)", uint8(t))
	}
	return triggerNames[t]
}

// Valid reports whether t is a known trigger.
func (t Trigger) Valid() bool {
	return t < triggerCount
}

// Gated reports whether the trigger is conditioned on an event gate.
func (t Trigger) Gated() bool {
	return t == TriggerAutomaticDuringEvent || t == TriggerOnceAtEventStart
}

// Respawns reports whether dead instances are recreated.
func (t Trigger) Respawns() bool {
	return t != TriggerOnceAtEventStart
}

// ParseTrigger parses a canonical trigger name. An empty name is the
// implicit default, TriggerAutomaticDefault.
func ParseTrigger(s string) (Trigger, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if name == "" {
		return TriggerAutomaticDefault, nil
	}
	for t, n := range triggerNames {
		if n == name {
			return Trigger(t), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownTrigger, s)
}
