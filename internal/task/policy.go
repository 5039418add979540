// AngelaMos | 2026
// policy.go

package task

import (
	"fmt"

	"github.com/pierkoo/flasktaskr/internal/core"
	"github.com/pierkoo/flasktaskr/internal/user"
)

var ErrNotOwner = fmt.Errorf("task belongs to another user: %w", core.ErrForbidden)

// Actor is the authenticated identity a request acts as.
type Actor struct {
	ID   int64
	Role string
}

func (a Actor) IsAdmin() bool {
	return a.Role == user.RoleAdmin
}

// CanMutate is the whole ownership rule: owners and admins may complete or
// delete a task, nobody else may.
func CanMutate(actor Actor, t *Task) bool {
	if actor.ID == 0 || t == nil {
		return false
	}
	return actor.ID == t.UserID || actor.IsAdmin()
}

func Authorize(actor Actor, t *Task) error {
	if !CanMutate(actor, t) {
		return ErrNotOwner
	}
	return nil
}
