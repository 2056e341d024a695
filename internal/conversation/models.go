package conversation

import "time"

// Stage identifies the next unanswered question in a booking dialogue
type Stage string

const (
	StageAwaitingName         Stage = "awaiting_name"
	StageAwaitingPhone        Stage = "awaiting_phone"
	StageAwaitingDate         Stage = "awaiting_date"
	StageAwaitingTime         Stage = "awaiting_time"
	StageAwaitingConfirmation Stage = "awaiting_confirmation"
)

// Session represents one sender's in-progress booking dialogue.
// Name, Phone, Date and Time are filled progressively; each is set once the
// stage that collects it has been passed. A session is removed outright after
// the confirmation stage, whatever its outcome.
type Session struct {
	SenderID  string    `json:"sender_id"`
	Stage     Stage     `json:"stage"`
	Name      string    `json:"name,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Date      string    `json:"date,omitempty"`
	Time      string    `json:"time,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
