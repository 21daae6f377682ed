package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garyjia/billed/internal/domain/entity"
	"github.com/garyjia/billed/internal/domain/route"
)

func TestAuthorizer_DefaultPolicies(t *testing.T) {
	a, err := NewDefaultAuthorizer()
	require.NoError(t, err)

	employee := entity.User{Type: entity.UserTypeEmployee, Email: "employee@test.tld"}
	admin := entity.User{Type: entity.UserTypeAdmin, Email: "admin@test.tld"}

	tests := []struct {
		name   string
		user   entity.User
		route  route.Route
		action string
		want   bool
	}{
		{"employee reads bills", employee, route.Bills, ActionRead, true},
		{"employee writes new bill", employee, route.NewBill, ActionWrite, true},
		{"employee cannot read dashboard", employee, route.Dashboard, ActionRead, false},
		{"admin reads dashboard", admin, route.Dashboard, ActionRead, true},
		{"admin decides on dashboard", admin, route.Dashboard, ActionWrite, true},
		{"admin cannot read employee bills", admin, route.Bills, ActionRead, false},
		{"anyone reaches login", entity.User{}, route.Login, ActionRead, true},
		{"invalid user is denied", entity.User{Type: entity.UserTypeEmployee}, route.Bills, ActionRead, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := a.Allowed(tt.user, tt.route, tt.action)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAuthorizer_CustomPolicies(t *testing.T) {
	a, err := NewAuthorizer([][]string{
		{string(entity.UserTypeAdmin), route.Bills.String(), ActionRead},
	})
	require.NoError(t, err)

	admin := entity.User{Type: entity.UserTypeAdmin, Email: "admin@test.tld"}

	ok, err := a.Allowed(admin, route.Bills, ActionRead)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = a.Allowed(admin, route.Dashboard, ActionRead)
	require.NoError(t, err)
	assert.False(t, ok)
}
