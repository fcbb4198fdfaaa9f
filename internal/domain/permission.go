package domain

// Permission is a grant in the sharing ledger, unique per (TaskID, UserID).
type Permission struct {
	TaskID    int64
	UserID    int64
	CanRead   bool
	CanUpdate bool
}
