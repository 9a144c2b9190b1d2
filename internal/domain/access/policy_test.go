package access

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var (
	admin    = Actor{UserID: 1, Role: RoleAdmin}
	owner    = Actor{UserID: 10, Role: RoleCustomer}
	stranger = Actor{UserID: 11, Role: RoleCustomer}
)

func TestCanView(t *testing.T) {
	b := BookingView{OwnerID: 10, Status: "paid"}

	assert.True(t, CanView(admin, b))
	assert.True(t, CanView(owner, b))
	assert.False(t, CanView(stranger, b))
}

func TestCanUpdate(t *testing.T) {
	cases := []struct {
		name   string
		actor  Actor
		status string
		want   bool
	}{
		{"admin any status", admin, "completed", true},
		{"owner pending", owner, "pending", true},
		{"owner paid", owner, "paid", false},
		{"owner cancelled", owner, "cancelled", false},
		{"stranger pending", stranger, "pending", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := CanUpdate(tc.actor, BookingView{OwnerID: 10, Status: tc.status})
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestCanDelete(t *testing.T) {
	cases := []struct {
		name   string
		actor  Actor
		status string
		want   bool
	}{
		{"admin completed", admin, "completed", true},
		{"owner pending", owner, "pending", true},
		{"owner paid", owner, "paid", true},
		{"owner completed", owner, "completed", false},
		{"stranger pending", stranger, "pending", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := CanDelete(tc.actor, BookingView{OwnerID: 10, Status: tc.status})
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestManagementPredicates(t *testing.T) {
	assert.True(t, CanManage(admin))
	assert.False(t, CanManage(owner))
	assert.True(t, CanManagePayment(admin))
	assert.False(t, CanManagePayment(owner))
}

func TestCanViewPayment(t *testing.T) {
	p := PaymentView{OwnerID: 10}

	assert.True(t, CanViewPayment(admin, p))
	assert.True(t, CanViewPayment(owner, p))
	assert.False(t, CanViewPayment(stranger, p))
}

func TestRoleValid(t *testing.T) {
	assert.True(t, RoleAdmin.Valid())
	assert.True(t, RoleCustomer.Valid())
	assert.False(t, Role("studio_owner").Valid())
}
