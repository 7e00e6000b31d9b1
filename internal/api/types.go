package api

import "time"

// User is the authenticated identity as the server reports it.
type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Task is a single task item. Optional fields are nil when the server
// omits them.
type Task struct {
	ID          int64        `json:"id"`
	Title       string       `json:"title"`
	Status      string       `json:"status,omitempty"`
	Requirement *Requirement `json:"requirement,omitempty"`
	Description *string      `json:"description,omitempty"`
	CreatedAt   *time.Time   `json:"created_at,omitempty"`
	UpdatedAt   *time.Time   `json:"updated_at,omitempty"`
	StartDate   *time.Time   `json:"start_date,omitempty"`
	EndDate     *time.Time   `json:"end_date,omitempty"`
}

// Requirement types the server uses.
const (
	RequirementAtom      = "atom"
	RequirementCondition = "condition"
)

// Requirement is the completion rule of a task. An atom compares a tracked
// value against a target; a condition combines its operands with Operator.
type Requirement struct {
	ID          int64         `json:"id"`
	Title       string        `json:"title"`
	Type        string        `json:"type"`
	DataType    *string       `json:"data_type,omitempty"`
	Operator    *string       `json:"operator,omitempty"`
	TargetValue *string       `json:"target_value,omitempty"`
	Value       *string       `json:"value,omitempty"`
	Operands    []Requirement `json:"operands,omitempty"`
	SortOrder   int           `json:"sort_order"`
}

// RegisterRequest is the body of POST /auth/register.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is returned by both register and login.
type AuthResponse struct {
	User      User   `json:"user"`
	AuthToken string `json:"auth_token"`

	// ExpiresAt is a unix timestamp, zero when the server omits it.
	ExpiresAt int64 `json:"expires_at,omitempty"`
}

// ProfileResponse is the payload of GET /profile.
type ProfileResponse struct {
	User User `json:"user"`
}

// TasksResponse is the payload of GET /tasks.
type TasksResponse struct {
	Tasks []Task `json:"tasks"`
}

// FieldError is a single rejected field in a validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}
