package icinga

import (
	"math"
	"strings"
	"time"
)

// ObjectType names an Icinga object collection.
type ObjectType string

const (
	Host         ObjectType = "host"
	Service      ObjectType = "service"
	HostGroup    ObjectType = "hostgroup"
	ServiceGroup ObjectType = "servicegroup"
)

// ObjectTypes lists the object types a dashboard element can select.
func ObjectTypes() []ObjectType {
	return []ObjectType{Host, Service, HostGroup, ServiceGroup}
}

// Valid reports whether t is a known object type.
func (t ObjectType) Valid() bool {
	switch t {
	case Host, Service, HostGroup, ServiceGroup:
		return true
	}
	return false
}

// HostLike reports whether states of t use the host code table.
func (t ObjectType) HostLike() bool {
	return t == Host || t == HostGroup
}

// Member returns the object type of a group's members, or t itself.
func (t ObjectType) Member() ObjectType {
	switch t {
	case HostGroup:
		return Host
	case ServiceGroup:
		return Service
	}
	return t
}

// Collection is the v1 objects path segment, e.g. "hosts".
func (t ObjectType) Collection() string {
	return string(t) + "s"
}

// Selector identifies which Icinga objects an element watches: a single
// object by Name, a set by Filter expression, or the members of a group
// named by Name.
type Selector struct {
	Type   ObjectType
	Name   string
	Filter string
}

// Idle reports whether the selector is not configured enough to poll.
func (s Selector) Idle() bool {
	return !s.Type.Valid() || (s.Name == "" && s.Filter == "")
}

// Key is a stable identity for the selector, used to share pollers.
func (s Selector) Key() string {
	if s.Filter != "" {
		return string(s.Type) + "?" + s.Filter
	}
	return string(s.Type) + ":" + s.Name
}

// String is the human form shown in the UI.
func (s Selector) String() string {
	if s.Idle() {
		return "(unconfigured)"
	}
	if s.Filter != "" {
		return string(s.Type) + " where " + s.Filter
	}
	return string(s.Type) + " " + s.Name
}

// Object is one entry of a v1 objects response.
type Object struct {
	Name  string     `json:"name"`
	Type  string     `json:"type"`
	Attrs Attributes `json:"attrs"`
}

// Attributes is the subset of object attributes Meerkat reads.
type Attributes struct {
	Name            string      `json:"name"`
	DisplayName     string      `json:"display_name"`
	HostName        string      `json:"host_name,omitempty"`
	State           float64     `json:"state"`
	StateType       float64     `json:"state_type"`
	Acknowledgement float64     `json:"acknowledgement"`
	NextCheck       float64     `json:"next_check"`
	LastCheck       float64     `json:"last_check"`
	LastCheckResult CheckResult `json:"last_check_result"`
	Groups          []string    `json:"groups,omitempty"`
}

// CheckResult holds the output of the last check run.
type CheckResult struct {
	Output          string   `json:"output"`
	PerformanceData []string `json:"performance_data"`
	State           float64  `json:"state"`
	ExitStatus      float64  `json:"exit_status"`
}

// Code is the integral state code.
func (a Attributes) Code() int {
	return int(a.State)
}

// Acknowledged reports whether a problem has been acknowledged.
func (a Attributes) Acknowledged() bool {
	return a.Acknowledgement != 0
}

// NextCheckTime converts the fractional unix timestamp to a time.Time.
// A zero timestamp stays the zero time.
func (a Attributes) NextCheckTime() time.Time {
	return unixFloat(a.NextCheck)
}

// LastCheckTime converts the fractional unix timestamp to a time.Time.
func (a Attributes) LastCheckTime() time.Time {
	return unixFloat(a.LastCheck)
}

func unixFloat(ts float64) time.Time {
	if ts <= 0 {
		return time.Time{}
	}
	sec, frac := math.Modf(ts)
	return time.Unix(int64(sec), int64(frac*1e9))
}

// Label is the best name to show for the object.
func (o Object) Label() string {
	if o.Attrs.DisplayName != "" {
		return o.Attrs.DisplayName
	}
	return o.Name
}

// Matches reports whether an event object name such as "web01!http" refers
// to this object.
func (o Object) Matches(name string) bool {
	if o.Name == name {
		return true
	}
	// service events also concern the host they run on
	host, _, found := strings.Cut(name, "!")
	return found && o.Type == "Host" && o.Name == host
}
