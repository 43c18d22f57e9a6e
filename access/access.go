// Package access centralizes every role and unit-scope decision so that all
// call sites evaluate authorization identically. Decisions are computed fresh
// from the live identity on every call and must never be cached: the identity
// can change (login/logout) independently of any cache expiry.
package access

import (
	"github.com/pkg/errors"

	"github.com/jrsteele09/go-indicator-client/session"
)

// IdentitySource supplies the live identity. In production this is the
// session store; tests substitute a fixed identity.
type IdentitySource interface {
	Current() *session.Identity
}

type Evaluator struct {
	identities IdentitySource
}

func NewEvaluator(identities IdentitySource) (*Evaluator, error) {
	if identities == nil {
		return nil, errors.New("[NewEvaluator] identity source is required")
	}
	return &Evaluator{identities: identities}, nil
}

// HasRole reports whether the live identity's role meets the required
// minimum in the order operator < manager < admin. No session, or an
// unrecognized role, satisfies nothing.
func (e *Evaluator) HasRole(required session.Role) bool {
	identity := e.identities.Current()
	if identity == nil {
		return false
	}
	rank := identity.Role.Rank()
	return rank > 0 && rank >= required.Rank()
}

// CanAccessUnit reports whether the live identity may see data for unit.
// Managers and admins see every unit; operators only their own.
func (e *Evaluator) CanAccessUnit(unit string) bool {
	identity := e.identities.Current()
	if identity == nil {
		return false
	}
	if identity.Role.Rank() >= session.RoleManager.Rank() {
		return true
	}
	if identity.Role != session.RoleOperator {
		return false
	}
	return identity.Unit == unit
}

// UnitScoped is implemented by domain items carrying the unit that scopes
// their visibility.
type UnitScoped interface {
	ScopeUnit() string
}

// FilterByUnit returns items unchanged (same elements, same order) for
// managers and admins, only the caller's own unit for operators, and nothing
// when there is no session or the role is unrecognized.
func FilterByUnit[T UnitScoped](e *Evaluator, items []T) []T {
	identity := e.identities.Current()
	if identity == nil {
		return nil
	}
	if identity.Role.Rank() >= session.RoleManager.Rank() {
		return items
	}
	if identity.Role != session.RoleOperator {
		return nil
	}

	filtered := make([]T, 0, len(items))
	for _, item := range items {
		if item.ScopeUnit() == identity.Unit {
			filtered = append(filtered, item)
		}
	}
	return filtered
}
