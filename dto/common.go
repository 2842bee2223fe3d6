package dto

import "time"

const timestampLayout = time.RFC3339

// RejectRequest carries the reason for a rejection decision.
type RejectRequest struct {
	Reason string `json:"reason" binding:"omitempty,max=255"`
}

// RequiredReasonRequest is a rejection where the reason is mandatory.
type RequiredReasonRequest struct {
	Reason string `json:"reason" binding:"required,max=255"`
}
