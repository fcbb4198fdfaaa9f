package authz

import (
	"testing"

	dom "Tracker/internal/domain"

	"github.com/stretchr/testify/assert"
)

const (
	ownerID = int64(1)
	otherID = int64(2)
)

var task = dom.Task{ID: 10, Title: "Buy milk", OwnerID: ownerID}

func grant(read, update bool) *dom.Permission {
	return &dom.Permission{TaskID: task.ID, UserID: otherID, CanRead: read, CanUpdate: update}
}

func TestDecide(t *testing.T) {
	tests := []struct {
		name  string
		actor int64
		grant *dom.Permission
		want  map[Operation]Decision
	}{
		{
			name:  "owner",
			actor: ownerID,
			want: map[Operation]Decision{
				OpRead: Allow, OpUpdate: Allow, OpDelete: Allow, OpManagePermissions: Allow,
			},
		},
		{
			name:  "owner ignores own grant flags",
			actor: ownerID,
			grant: &dom.Permission{TaskID: task.ID, UserID: ownerID},
			want: map[Operation]Decision{
				OpRead: Allow, OpUpdate: Allow, OpDelete: Allow, OpManagePermissions: Allow,
			},
		},
		{
			name:  "reader",
			actor: otherID,
			grant: grant(true, false),
			want: map[Operation]Decision{
				OpRead: Allow, OpUpdate: Deny, OpDelete: Deny, OpManagePermissions: Deny,
			},
		},
		{
			name:  "updater",
			actor: otherID,
			grant: grant(false, true),
			want: map[Operation]Decision{
				OpRead: Allow, OpUpdate: Allow, OpDelete: Deny, OpManagePermissions: Deny,
			},
		},
		{
			name:  "reader and updater",
			actor: otherID,
			grant: grant(true, true),
			want: map[Operation]Decision{
				OpRead: Allow, OpUpdate: Allow, OpDelete: Deny, OpManagePermissions: Deny,
			},
		},
		{
			name:  "grant with no flags",
			actor: otherID,
			grant: grant(false, false),
			want: map[Operation]Decision{
				OpRead: Deny, OpUpdate: Deny, OpDelete: Deny, OpManagePermissions: Deny,
			},
		},
		{
			name:  "no relation",
			actor: otherID,
			want: map[Operation]Decision{
				OpRead: Deny, OpUpdate: Deny, OpDelete: Deny, OpManagePermissions: Deny,
			},
		},
		{
			name:  "grant for a different task",
			actor: otherID,
			grant: &dom.Permission{TaskID: 99, UserID: otherID, CanRead: true, CanUpdate: true},
			want: map[Operation]Decision{
				OpRead: Deny, OpUpdate: Deny, OpDelete: Deny, OpManagePermissions: Deny,
			},
		},
		{
			name:  "grant for a different user",
			actor: 3,
			grant: grant(true, true),
			want: map[Operation]Decision{
				OpRead: Deny, OpUpdate: Deny, OpDelete: Deny, OpManagePermissions: Deny,
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for op, want := range tt.want {
				assert.Equal(t, want, Decide(tt.actor, task, tt.grant, op), "op %s", op)
			}
		})
	}
}

func TestDecideUnknownOperationDenies(t *testing.T) {
	assert.Equal(t, Deny, Decide(ownerID, task, nil, Operation(42)))
}

func TestNeedsGrant(t *testing.T) {
	assert.True(t, NeedsGrant(OpRead))
	assert.True(t, NeedsGrant(OpUpdate))
	assert.False(t, NeedsGrant(OpDelete))
	assert.False(t, NeedsGrant(OpManagePermissions))
}

func TestRelationOf(t *testing.T) {
	assert.Equal(t, RelOwner, RelationOf(ownerID, task, nil))
	assert.Equal(t, RelReader, RelationOf(otherID, task, grant(true, false)))
	assert.Equal(t, RelUpdater, RelationOf(otherID, task, grant(false, true)))
	assert.Equal(t, RelNone, RelationOf(otherID, task, nil))
	assert.Equal(t, "updater", RelUpdater.String())
	assert.Equal(t, "allow", Allow.String())
	assert.Equal(t, "deny", Deny.String())
}
