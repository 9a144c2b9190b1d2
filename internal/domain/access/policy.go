// Package access holds the role/ownership predicates that gate booking and payment operations.
// Every predicate takes the acting user explicitly; nothing here reads request or session state.
package access

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleCustomer Role = "customer"
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleCustomer
}

// Actor is the authenticated caller of an operation.
type Actor struct {
	UserID int64
	Role   Role
}

func (a Actor) IsAdmin() bool { return a.Role == RoleAdmin }

// BookingView is the part of a booking the policy looks at.
type BookingView struct {
	OwnerID int64
	Status  string
}

// PaymentView is the part of a payment the policy looks at.
type PaymentView struct {
	OwnerID int64
}

const (
	statusPending   = "pending"
	statusCompleted = "completed"
)

func CanView(a Actor, b BookingView) bool {
	return a.IsAdmin() || a.UserID == b.OwnerID
}

// CanUpdate allows owners to modify only their pending bookings.
func CanUpdate(a Actor, b BookingView) bool {
	if a.IsAdmin() {
		return true
	}
	return a.UserID == b.OwnerID && b.Status == statusPending
}

// CanDelete allows owners to cancel their bookings unless completed.
func CanDelete(a Actor, b BookingView) bool {
	if a.IsAdmin() {
		return true
	}
	return a.UserID == b.OwnerID && b.Status != statusCompleted
}

// CanManage governs status / admin_notes edits and studio inventory.
func CanManage(a Actor) bool {
	return a.IsAdmin()
}

func CanViewPayment(a Actor, p PaymentView) bool {
	return a.IsAdmin() || a.UserID == p.OwnerID
}

func CanManagePayment(a Actor) bool {
	return a.IsAdmin()
}
