package orders

import (
	"strings"

	"github.com/google/uuid"

	"github.com/Keoroanthony/go-food-delivery/internal/models"
)

type Action string

const (
	ActionRead    Action = "read"
	ActionEdit    Action = "edit"
	ActionCancel  Action = "cancel"
	ActionAdvance Action = "advance"
)

// Actor is the caller of an operation, as resolved from the user store.
type Actor struct {
	ID   uuid.UUID
	Role models.Role
}

// Subject holds the ownership facts of one order.
type Subject struct {
	CustomerID        uuid.UUID
	RestaurantOwnerID uuid.UUID
}

// relatedTo reports whether the order belongs to the actor in the sense of
// the actor's role: customers own their orders, owners own their restaurants.
func (s Subject) relatedTo(a Actor) bool {
	switch a.Role {
	case models.RoleCustomer:
		return s.CustomerID == a.ID
	case models.RoleOwner:
		return s.RestaurantOwnerID == a.ID
	default:
		return false
	}
}

type statusSet map[models.OrderStatus]bool

// allows treats a nil set as "any status".
func (s statusSet) allows(st models.OrderStatus) bool {
	return s == nil || s[st]
}

func statuses(list ...models.OrderStatus) statusSet {
	s := make(statusSet, len(list))
	for _, st := range list {
		s[st] = true
	}
	return s
}

type policyKey struct {
	role   models.Role
	action Action
}

type grant struct {
	anyOrder bool      // applies to orders the actor is not related to
	from     statusSet // current statuses the action may start from
	targets  statusSet // statuses an advance may land on
}

var policy = map[policyKey]grant{
	{models.RoleAdmin, ActionRead}:    {anyOrder: true},
	{models.RoleCustomer, ActionRead}: {},
	{models.RoleOwner, ActionRead}:    {},

	{models.RoleAdmin, ActionEdit}:    {anyOrder: true},
	{models.RoleCustomer, ActionEdit}: {},

	{models.RoleAdmin, ActionCancel}:    {anyOrder: true},
	{models.RoleCustomer, ActionCancel}: {from: statuses(models.StatusPlaced)},
	{models.RoleOwner, ActionCancel}:    {from: statuses(models.StatusPlaced, models.StatusProcessing)},

	{models.RoleAdmin, ActionAdvance}: {anyOrder: true},
	{models.RoleCustomer, ActionAdvance}: {
		from:    statuses(models.StatusDelivered),
		targets: statuses(models.StatusReceived),
	},
	{models.RoleOwner, ActionAdvance}: {
		targets: statuses(models.StatusProcessing, models.StatusInRoute, models.StatusDelivered),
	},
}

func grantFor(actor Actor, subject Subject, action Action) (grant, error) {
	g, ok := policy[policyKey{actor.Role, action}]
	if !ok {
		return grant{}, ErrForbidden.withReason("%s cannot %s orders", strings.ToLower(string(actor.Role)), action)
	}
	if !g.anyOrder && !subject.relatedTo(actor) {
		return grant{}, ErrForbidden
	}
	return g, nil
}

// Authorize checks whether actor may perform action on the order described
// by subject. It only answers the ownership question; status windows are
// enforced by Transition and the edit path.
func Authorize(actor Actor, subject Subject, action Action) error {
	_, err := grantFor(actor, subject, action)
	return err
}
