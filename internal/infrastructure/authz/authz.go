// Package authz decides which user types may reach which routes.
package authz

import (
	"fmt"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"

	"github.com/garyjia/billed/internal/domain/entity"
	"github.com/garyjia/billed/internal/domain/route"
)

const (
	ActionRead  = "read"
	ActionWrite = "write"
)

const modelText = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = r.sub == p.sub && r.obj == p.obj && r.act == p.act
`

// DefaultPolicies: employees own the bills pages, admins the dashboard
var DefaultPolicies = [][]string{
	{string(entity.UserTypeEmployee), route.Bills.String(), ActionRead},
	{string(entity.UserTypeEmployee), route.Bills.String(), ActionWrite},
	{string(entity.UserTypeEmployee), route.NewBill.String(), ActionRead},
	{string(entity.UserTypeEmployee), route.NewBill.String(), ActionWrite},
	{string(entity.UserTypeAdmin), route.Dashboard.String(), ActionRead},
	{string(entity.UserTypeAdmin), route.Dashboard.String(), ActionWrite},
}

// Authorizer wraps a casbin enforcer over route access
type Authorizer struct {
	enforcer *casbin.Enforcer
}

// NewAuthorizer builds an Authorizer with the given policies
func NewAuthorizer(policies [][]string) (*Authorizer, error) {
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, fmt.Errorf("authz: failed to load model: %w", err)
	}

	enforcer, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("authz: failed to create enforcer: %w", err)
	}

	if len(policies) > 0 {
		if _, err := enforcer.AddPolicies(policies); err != nil {
			return nil, fmt.Errorf("authz: failed to add policies: %w", err)
		}
	}

	return &Authorizer{enforcer: enforcer}, nil
}

// NewDefaultAuthorizer builds an Authorizer with DefaultPolicies
func NewDefaultAuthorizer() (*Authorizer, error) {
	return NewAuthorizer(DefaultPolicies)
}

// Allowed reports whether user may perform action on r. The login route is
// open to everyone.
func (a *Authorizer) Allowed(user entity.User, r route.Route, action string) (bool, error) {
	if r == route.Login {
		return true, nil
	}
	if !user.Valid() {
		return false, nil
	}
	return a.enforcer.Enforce(string(user.Type), r.String(), action)
}
