package orders

import (
	"errors"
	"fmt"
)

// Kind groups error codes into the classes callers map to transport responses.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindAuthorization
	KindConflict
	KindBusinessRule
	KindConcurrency
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindAuthorization:
		return "authorization"
	case KindConflict:
		return "conflict"
	case KindBusinessRule:
		return "business_rule"
	case KindConcurrency:
		return "concurrency"
	default:
		return "internal"
	}
}

// Error is a rejection produced by the order core. Two errors match under
// errors.Is when their codes are equal, so a sentinel with a more specific
// Reason still matches the bare sentinel.
type Error struct {
	Kind   Kind
	Code   string
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Reason)
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// Retryable reports whether the caller may repeat the operation unchanged.
func (e *Error) Retryable() bool {
	return e.Kind == KindConcurrency
}

// withReason returns a copy of e carrying a more specific reason.
func (e *Error) withReason(format string, args ...any) *Error {
	return &Error{Kind: e.Kind, Code: e.Code, Reason: fmt.Sprintf(format, args...)}
}

var (
	ErrEmptyOrderItems = &Error{KindValidation, "EMPTY_ORDER_ITEMS", "order must contain at least one item"}
	ErrTooManyItems    = &Error{KindValidation, "TOO_MANY_ITEMS", "maximum 20 items allowed per order"}
	ErrInvalidQuantity = &Error{KindValidation, "INVALID_QUANTITY", "quantity must be between 1 and 100"}
	ErrInvalidTip      = &Error{KindValidation, "INVALID_TIP", "tip amount must be between 0 and 1000"}
	ErrInvalidStatus   = &Error{KindValidation, "INVALID_STATUS", "unknown order status"}
	ErrInvalidInput    = &Error{KindValidation, "INVALID_INPUT", "invalid input"}

	ErrOrderNotFound      = &Error{KindNotFound, "ORDER_NOT_FOUND", "order not found"}
	ErrMealNotFound       = &Error{KindNotFound, "MEAL_NOT_FOUND", "meal not found"}
	ErrRestaurantNotFound = &Error{KindNotFound, "RESTAURANT_NOT_FOUND", "restaurant not found"}
	ErrUserNotFound       = &Error{KindNotFound, "USER_NOT_FOUND", "user not found"}
	ErrCouponNotFound     = &Error{KindNotFound, "COUPON_NOT_FOUND", "coupon not found"}

	ErrForbidden               = &Error{KindAuthorization, "FORBIDDEN", "access denied to this order"}
	ErrAccountBlocked          = &Error{KindAuthorization, "ACCOUNT_BLOCKED", "user is blocked"}
	ErrRestaurantBlocked       = &Error{KindAuthorization, "RESTAURANT_BLOCKED", "restaurant is blocked"}
	ErrUserBlockedAtRestaurant = &Error{KindAuthorization, "USER_BLOCKED_AT_RESTAURANT", "user is blocked at this restaurant"}

	ErrBackwardOrStaleTransition = &Error{KindConflict, "BACKWARD_OR_STALE_TRANSITION", "status cannot move backward or stay the same"}
	ErrIllegalCancellation       = &Error{KindConflict, "ILLEGAL_CANCELLATION", "cannot cancel at this stage"}
	ErrOrderAlreadyFinal         = &Error{KindConflict, "ORDER_ALREADY_FINAL", "order is already in a final status"}
	ErrOrderNotEditable          = &Error{KindConflict, "ORDER_NOT_EDITABLE", "only orders in PLACED status can be updated"}

	ErrInvalidOrExpiredCoupon = &Error{KindBusinessRule, "INVALID_OR_EXPIRED_COUPON", "invalid or expired coupon"}
	ErrCrossRestaurantItems   = &Error{KindBusinessRule, "CROSS_RESTAURANT_ITEMS", "all items must be from the same restaurant"}

	ErrConcurrentModification = &Error{KindConcurrency, "CONCURRENT_MODIFICATION", "order was modified concurrently, retry"}
)

// KindOf classifies err. Errors that did not originate in the core are internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
