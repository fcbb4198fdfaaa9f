package dto

// SetPermissionRequest is the JSON body for POST /tasks/{id}/permissions.
// Both flags must be sent; pointers let binding tell false from missing.
type SetPermissionRequest struct {
	UserID    int64 `json:"user_id" binding:"required,gt=0"`
	CanRead   *bool `json:"can_read" binding:"required"`
	CanUpdate *bool `json:"can_update" binding:"required"`
}

type PermissionResponse struct {
	TaskID    int64 `json:"task_id"`
	UserID    int64 `json:"user_id"`
	CanRead   bool  `json:"can_read"`
	CanUpdate bool  `json:"can_update"`
}

// DetailResponse carries a human-readable confirmation.
type DetailResponse struct {
	Detail string `json:"detail"`
}

// ErrorResponse is the body of every non-2xx answer.
type ErrorResponse struct {
	Error string `json:"error"`
}
