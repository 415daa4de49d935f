// Package router implements prioritized, condition-matched routing of
// channel messages (or any routable request) to agent IDs.
package router

import (
	"strings"

	"github.com/google/uuid"
)

// ConditionKind discriminates RouteCondition variants.
type ConditionKind string

const (
	ConditionChannelType ConditionKind = "channel_type"
	ConditionSenderID    ConditionKind = "sender_id"
	ConditionKeyword     ConditionKind = "keyword"
)

// RouteCondition is one predicate a Routable must satisfy for a Route
// to match. All conditions on a route must hold (logical AND).
type RouteCondition struct {
	Kind  ConditionKind
	Value string // channel type name, exact sender id, or keyword (case-insensitive substring)
}

// Routable is the minimal surface a router needs to evaluate conditions
// against. ChannelMessage (internal/classify) and any future routable
// type satisfy it.
type Routable interface {
	RouteChannelType() string
	RouteSenderID() string
	RouteTextContent() string
}

func (c RouteCondition) matches(r Routable) bool {
	switch c.Kind {
	case ConditionChannelType:
		return strings.EqualFold(r.RouteChannelType(), c.Value)
	case ConditionSenderID:
		return r.RouteSenderID() == c.Value
	case ConditionKeyword:
		return strings.Contains(strings.ToLower(r.RouteTextContent()), strings.ToLower(c.Value))
	default:
		return false
	}
}

// Route is one routing rule: if every condition matches, messages are
// sent to Target. Higher Priority wins; ties are broken by insertion
// order (the order routes were added to the Router).
type Route struct {
	Priority   int
	Target     uuid.UUID
	Conditions []RouteCondition
}

func (rt Route) matches(r Routable) bool {
	for _, c := range rt.Conditions {
		if !c.matches(r) {
			return false
		}
	}
	return true
}

// Router holds an ordered list of Routes and resolves a Routable to a
// target agent ID.
type Router struct {
	routes []Route
}

// New creates an empty Router.
func New() *Router {
	return &Router{}
}

// AddRoute appends route to the router. Insertion order is the
// tie-breaker when two routes share the same Priority and both match.
func (r *Router) AddRoute(route Route) {
	r.routes = append(r.routes, route)
}

// Route returns the Target of the highest-priority matching route. If
// multiple matching routes share the top priority, the one added
// earliest wins. If no route matches, defaultAgent is returned.
func (r *Router) Route(msg Routable, defaultAgent uuid.UUID) uuid.UUID {
	bestIdx := -1
	for i, route := range r.routes {
		if !route.matches(msg) {
			continue
		}
		if bestIdx == -1 || route.Priority > r.routes[bestIdx].Priority {
			bestIdx = i
		}
	}
	if bestIdx == -1 {
		return defaultAgent
	}
	return r.routes[bestIdx].Target
}

// Routes returns a copy of the current route list, in insertion order.
func (r *Router) Routes() []Route {
	out := make([]Route, len(r.routes))
	copy(out, r.routes)
	return out
}
