package docs

import (
	"time"
)

// This file contains models used by Swagger documentation
// It doesn't affect the actual application logic, just documentation

// ActivityPayload is one entry of the admin activity feed.
// @Description Site activity
type ActivityPayload struct {
	ID string `json:"id" example:"0b6f4c1e-4d2a-4c4f-9d55-1f0c2f7d9a10"`

	// Activity type
	Type string `json:"type" example:"payment_completed"`

	// Related content, if any
	ContentID string `json:"content_id,omitempty" example:"v-42"`
	Kind      string `json:"kind,omitempty" example:"video"`

	// Title of the related content, if any
	Title string `json:"title,omitempty" example:"Aion and the Self"`

	// Member who triggered the activity, if any
	UserID string `json:"user_id,omitempty" example:"a1b2c3d4-e5f6-7890-abcd-ef1234567890"`

	// Payment amount in KRW
	Amount int64 `json:"amount,omitempty" example:"9900"`

	// Extra values such as the view count or the amount
	Metadata map[string]interface{} `json:"metadata,omitempty"`

	// When it happened
	Timestamp time.Time `json:"timestamp" example:"2024-05-10T08:30:00Z"`
}

// ActivityStreamMessage is a frame sent on /admin/activity/ws.
// @Description Websocket frame. "connected" carries {"recent": [...]}, "activity" carries one ActivityPayload, "pong" answers a client ping.
type ActivityStreamMessage struct {
	// connected, activity or pong
	Type string `json:"type" example:"activity"`

	Payload ActivityPayload `json:"payload,omitempty"`
}

// ErrorResponse represents an error response
// @Description Error information
type ErrorResponse struct {
	// Error category
	Type string `json:"type" example:"VALIDATION_ERROR"`

	// Error message
	Message string `json:"message" example:"invalid_pagination"`

	// Detailed error information
	Details string `json:"details,omitempty" example:"limit must be >= 0"`

	// Machine readable code, the HTTP status when none applies
	Code string `json:"code,omitempty" example:"400"`
}
