package icinga

import (
	"time"
)

// State is the display state of a monitored object or aggregate.
type State string

const (
	// StateNone means nothing has been observed yet.
	StateNone     State = ""
	StateOK       State = "ok"
	StateWarning  State = "warning"
	StateCritical State = "critical"
	StateUnknown  State = "unknown"
	StateUp       State = "up"
	StateDown     State = "down"
)

// States lists every real state in display order.
func States() []State {
	return []State{StateOK, StateWarning, StateCritical, StateUnknown, StateUp, StateDown}
}

// Observed reports whether s is a real state rather than StateNone.
func (s State) Observed() bool { return s != StateNone }

// Label renders a state for display, marking acknowledged problems.
func (s State) Label(acknowledged bool) string {
	if s == StateNone {
		return "unconfigured"
	}
	if acknowledged {
		return string(s) + " (ACK)"
	}
	return string(s)
}

// StateFromCode maps an Icinga result code to a display state. Host and
// host group codes are 0 up, 1 down. Service and service group codes are
// 0 ok, 1 warning, 2 critical, 3 unknown. Anything else is unknown.
func StateFromCode(t ObjectType, code int) State {
	if t.HostLike() {
		switch code {
		case 0:
			return StateUp
		case 1:
			return StateDown
		}
		return StateUnknown
	}
	switch code {
	case 0:
		return StateOK
	case 1:
		return StateWarning
	case 2:
		return StateCritical
	case 3:
		return StateUnknown
	}
	return StateUnknown
}

// Result is the aggregated view of everything a selector matched.
type Result struct {
	Code         int
	State        State
	Acknowledged bool
	NextCheck    time.Time
	Worst        *Object
	Objects      []Object
}

// Worst returns the index of the object with the highest state code. The
// first object wins ties. It returns -1 for an empty slice.
func Worst(objects []Object) int {
	worst := -1
	for i, o := range objects {
		if worst < 0 || o.Attrs.Code() > objects[worst].Attrs.Code() {
			worst = i
		}
	}
	return worst
}

// Aggregate collapses the objects a selector matched into a single result.
// The aggregate is acknowledged only if every object sharing the worst code
// is acknowledged. The next check is the soonest one among the objects.
// No objects yields an unknown result.
func Aggregate(t ObjectType, objects []Object) Result {
	idx := Worst(objects)
	if idx < 0 {
		return Result{Code: 3, State: StateUnknown}
	}
	worst := objects[idx]
	code := worst.Attrs.Code()
	res := Result{
		Code:         code,
		State:        StateFromCode(t, code),
		Acknowledged: true,
		Worst:        &worst,
		Objects:      objects,
	}
	for _, o := range objects {
		if o.Attrs.Code() == code && !o.Attrs.Acknowledged() {
			res.Acknowledged = false
		}
		next := o.Attrs.NextCheckTime()
		if next.IsZero() {
			continue
		}
		if res.NextCheck.IsZero() || next.Before(res.NextCheck) {
			res.NextCheck = next
		}
	}
	return res
}

// DefaultCheckInterval is used when the next check time is unknown or has
// already passed.
const DefaultCheckInterval = 60 * time.Second

// DefaultLag is the fraction of the time until the next check added as
// slack so the refresh lands after Icinga has run it.
const DefaultLag = 0.1

// NextRefresh returns how long to wait before polling again: the time until
// nextCheck plus lag times that, or DefaultCheckInterval when the result
// would be negative.
func NextRefresh(nextCheck, now time.Time, lag float64) time.Duration {
	until := nextCheck.Sub(now)
	dur := until + time.Duration(lag*float64(until))
	if dur < 0 {
		return DefaultCheckInterval
	}
	return dur
}
