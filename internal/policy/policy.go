// Package policy holds the task authorization rules. The decisions are
// pure functions of the requester identity and the raw task references,
// so they can be checked without a database or an HTTP stack.
package policy

import (
	"taskhub/internal/model"

	"github.com/google/uuid"
)

// Requester is the authenticated actor performing a request.
type Requester struct {
	ID   uuid.UUID
	Role string
}

func (r Requester) IsAdmin() bool {
	return r.Role == model.RoleAdmin
}

// CanViewTask allows admins and the task's assignee.
func CanViewTask(r Requester, task *model.Task) bool {
	return r.IsAdmin() || task.AssignedTo == r.ID
}

// CanUpdateTask allows admins and the task's assignee: the assignee
// manages their own work.
func CanUpdateTask(r Requester, task *model.Task) bool {
	return r.IsAdmin() || task.AssignedTo == r.ID
}

// CanDeleteTask allows admins and the task's creator. Deliberately NOT
// the assignee: assignees can work tasks but not destroy them.
func CanDeleteTask(r Requester, task *model.Task) bool {
	return r.IsAdmin() || task.CreatedBy == r.ID
}

// ListScope returns the assignee the task listing must be restricted to,
// or nil when the requester may see every task.
func ListScope(r Requester) *uuid.UUID {
	if r.IsAdmin() {
		return nil
	}
	id := r.ID
	return &id
}
