// Package route defines the closed set of navigation targets of the application.
package route

import (
	"errors"
	"strings"
)

// Route identifies a view that can be mounted in the layout
type Route int

const (
	Login Route = iota
	Bills
	NewBill
	Dashboard
)

// ErrUnknownRoute is returned when a path maps to no route
var ErrUnknownRoute = errors.New("route: unknown path")

var paths = map[Route]string{
	Login:     "/",
	Bills:     "/employee/bills",
	NewBill:   "/employee/bill/new",
	Dashboard: "/admin/dashboard",
}

var names = map[Route]string{
	Login:     "Login",
	Bills:     "Bills",
	NewBill:   "NewBill",
	Dashboard: "Dashboard",
}

// All returns every route in declaration order
func All() []Route {
	return []Route{Login, Bills, NewBill, Dashboard}
}

// Path returns the URL path the route is served on
func (r Route) Path() string {
	return paths[r]
}

func (r Route) String() string {
	if n, ok := names[r]; ok {
		return n
	}
	return "Unknown"
}

// Valid reports whether r is a declared route
func (r Route) Valid() bool {
	_, ok := paths[r]
	return ok
}

// Parse maps a URL path back to its route. Trailing slashes are ignored.
func Parse(path string) (Route, error) {
	p := strings.TrimSpace(path)
	if p != "/" {
		p = strings.TrimRight(p, "/")
	}
	for r, rp := range paths {
		if rp == p {
			return r, nil
		}
	}
	return 0, ErrUnknownRoute
}
