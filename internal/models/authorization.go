package models

import "time"

// Authorization outcome reasons. Only ReasonAuthorized allows a transfer.
const (
	ReasonAuthorized     = "authorized"
	ReasonDenied         = "denied"
	ReasonTransportError = "transport_error"
	ReasonTimeout        = "timeout"
	ReasonBadStatus      = "bad_status"
	ReasonEmptyBody      = "empty_body"
	ReasonMalformedBody  = "malformed_body"
	ReasonMissingField   = "missing_field"
)

// AuthorizationOutcome is the per-attempt decision of the external authorizer.
// It is not persisted by the engine itself.
type AuthorizationOutcome struct {
	Allowed bool
	Reason  string

	// Diagnostics for the call log.
	StatusCode   int
	ResponseBody string
	ErrorDetail  string
}

// AuthorizationResponse is the log row kept for each authorizer call.
type AuthorizationResponse struct {
	ID           uint      `gorm:"primarykey" json:"id"`
	TransferID   string    `gorm:"type:varchar(36);index;not null" json:"transfer_id"`
	Allowed      bool      `gorm:"not null" json:"allowed"`
	Reason       string    `gorm:"type:varchar(32);not null" json:"reason"`
	StatusCode   int       `json:"status_code"`
	ResponseBody string    `gorm:"type:text" json:"response_body"`
	ErrorDetail  string    `gorm:"type:text" json:"error_detail"`
	CreatedAt    time.Time `json:"created_at"`
}
