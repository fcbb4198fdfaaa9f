package domain

import "time"

// Task is owned by exactly one user. OwnerID never changes after creation.
type Task struct {
	ID          int64
	Title       string
	Description *string
	OwnerID     int64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// TaskPatch is a partial update. A nil Title leaves the title alone.
// Description is applied only when DescriptionSet is true, in which case a
// nil Description clears it.
type TaskPatch struct {
	Title          *string
	Description    *string
	DescriptionSet bool
}

// Empty reports whether the patch changes nothing.
func (p TaskPatch) Empty() bool {
	return p.Title == nil && !p.DescriptionSet
}

// Apply returns t with the patch fields applied.
func (p TaskPatch) Apply(t Task) Task {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.DescriptionSet {
		t.Description = p.Description
	}
	return t
}
