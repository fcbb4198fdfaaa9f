// Package authz decides whether a user may perform an operation on a task.
//
// The decision depends only on the actor's relation to the task: owner,
// grantee with can_read, grantee with can_update, or nobody. Owner is
// checked first and never needs a ledger lookup. Callers load the task and,
// when NeedsGrant says so, the actor's grant; Decide itself does no I/O.
package authz

import dom "Tracker/internal/domain"

// Decision is the outcome of an authorization check.
type Decision int

const (
	Deny Decision = iota
	Allow
)

// String returns "allow" or "deny".
func (d Decision) String() string {
	if d == Allow {
		return "allow"
	}
	return "deny"
}

// Operation is something a user can try to do to an existing task.
// Creating a task is not listed: the creator always becomes the owner.
type Operation int

const (
	OpRead Operation = iota
	OpUpdate
	OpDelete
	OpManagePermissions
)

func (o Operation) String() string {
	switch o {
	case OpRead:
		return "read"
	case OpUpdate:
		return "update"
	case OpDelete:
		return "delete"
	case OpManagePermissions:
		return "manage_permissions"
	default:
		return "unknown"
	}
}

// Relation is how an actor relates to a task.
type Relation int

const (
	RelNone Relation = iota
	RelReader
	RelUpdater
	RelOwner
)

func (r Relation) String() string {
	switch r {
	case RelOwner:
		return "owner"
	case RelUpdater:
		return "updater"
	case RelReader:
		return "reader"
	default:
		return "none"
	}
}

// policy[op][rel] is the decision table. Anything missing is Deny.
var policy = map[Operation]map[Relation]Decision{
	OpRead: {
		RelOwner:   Allow,
		RelReader:  Allow,
		RelUpdater: Allow,
	},
	OpUpdate: {
		RelOwner:   Allow,
		RelUpdater: Allow,
	},
	OpDelete: {
		RelOwner: Allow,
	},
	OpManagePermissions: {
		RelOwner: Allow,
	},
}

// RelationOf classifies actorID against task. grant is the actor's ledger
// entry for the task, or nil if there is none. A grant belonging to some
// other task or user is ignored.
func RelationOf(actorID int64, task dom.Task, grant *dom.Permission) Relation {
	if task.OwnerID == actorID {
		return RelOwner
	}
	if grant == nil || grant.TaskID != task.ID || grant.UserID != actorID {
		return RelNone
	}
	switch {
	case grant.CanUpdate:
		return RelUpdater
	case grant.CanRead:
		return RelReader
	default:
		return RelNone
	}
}

// Decide applies the policy table.
func Decide(actorID int64, task dom.Task, grant *dom.Permission, op Operation) Decision {
	return policy[op][RelationOf(actorID, task, grant)]
}

// NeedsGrant reports whether a non-owner could be allowed op through the
// ledger. When it returns false there is no point reading the ledger.
func NeedsGrant(op Operation) bool {
	for rel, d := range policy[op] {
		if rel != RelOwner && d == Allow {
			return true
		}
	}
	return false
}
