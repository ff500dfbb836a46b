package orders

import (
	"strings"

	"github.com/Keoroanthony/go-food-delivery/internal/models"
)

// ranks is the canonical forward order. CANCELED has no rank, so nothing
// moves forward out of it.
var ranks = map[models.OrderStatus]int{
	models.StatusPlaced:     1,
	models.StatusProcessing: 2,
	models.StatusInRoute:    3,
	models.StatusDelivered:  4,
	models.StatusReceived:   5,
}

var allStatuses = []models.OrderStatus{
	models.StatusPlaced,
	models.StatusProcessing,
	models.StatusInRoute,
	models.StatusDelivered,
	models.StatusReceived,
	models.StatusCanceled,
}

// ParseStatus accepts the status name in any case.
func ParseStatus(s string) (models.OrderStatus, error) {
	st := models.OrderStatus(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range allStatuses {
		if st == known {
			return st, nil
		}
	}
	return "", ErrInvalidStatus.withReason("unknown order status %q", s)
}

func IsFinal(s models.OrderStatus) bool {
	return s == models.StatusReceived || s == models.StatusCanceled
}

func IsEditable(s models.OrderStatus) bool {
	return s == models.StatusPlaced
}

// Transition decides whether actor may move an order from current to target.
// It returns target on success and leaves the caller to persist it.
func Transition(current, target models.OrderStatus, actor Actor, subject Subject) (models.OrderStatus, error) {
	if _, ok := ranks[target]; !ok && target != models.StatusCanceled {
		return "", ErrInvalidStatus.withReason("unknown order status %q", target)
	}
	if target == models.StatusCanceled {
		if err := checkCancel(current, actor, subject); err != nil {
			return "", err
		}
		return target, nil
	}
	if err := checkAdvance(current, target, actor, subject); err != nil {
		return "", err
	}
	return target, nil
}

func checkCancel(current models.OrderStatus, actor Actor, subject Subject) error {
	if IsFinal(current) {
		return ErrOrderAlreadyFinal.withReason("order is already %s", current)
	}
	g, err := grantFor(actor, subject, ActionCancel)
	if err != nil {
		return err
	}
	if !g.from.allows(current) {
		return ErrIllegalCancellation.withReason("%s cannot cancel an order in %s status", strings.ToLower(string(actor.Role)), current)
	}
	return nil
}

func checkAdvance(current, target models.OrderStatus, actor Actor, subject Subject) error {
	from, ok := ranks[current]
	if !ok || ranks[target] <= from {
		return ErrBackwardOrStaleTransition.withReason("status cannot move from %s to %s", current, target)
	}
	g, err := grantFor(actor, subject, ActionAdvance)
	if err != nil {
		return err
	}
	if !g.targets.allows(target) {
		return ErrForbidden.withReason("%s cannot set status %s", strings.ToLower(string(actor.Role)), target)
	}
	if !g.from.allows(current) {
		return ErrForbidden.withReason("%s cannot set status %s from %s", strings.ToLower(string(actor.Role)), target, current)
	}
	return nil
}

// NextStatuses lists the statuses role could move an order it is related to
// into with a single transition from current.
func NextStatuses(current models.OrderStatus, role models.Role) []models.OrderStatus {
	actor := Actor{Role: role}
	subject := Subject{} // zero ids: actor relates to it by construction
	next := []models.OrderStatus{}
	for _, s := range allStatuses {
		if _, err := Transition(current, s, actor, subject); err == nil {
			next = append(next, s)
		}
	}
	return next
}

// StatusMessage is the customer-facing text for a status change.
func StatusMessage(from, to models.OrderStatus) string {
	if from == to {
		return "No status change"
	}
	switch to {
	case models.StatusProcessing:
		return "Order is now being prepared"
	case models.StatusInRoute:
		return "Order is on its way"
	case models.StatusDelivered:
		return "Order has been delivered"
	case models.StatusReceived:
		return "Order has been received by customer"
	case models.StatusCanceled:
		return "Order has been canceled"
	default:
		return "Order status changed from " + string(from) + " to " + string(to)
	}
}
