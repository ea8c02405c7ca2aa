package models

import "time"

// ExchangeState is the lifecycle state of an exchange as reported by the backend.
// Only the backend moves it forward; values other than the ones below are kept verbatim.
type ExchangeState string

const (
	// ExchangeCompleted is the terminal state of a delivered exchange.
	ExchangeCompleted    ExchangeState = "REALIZADO"
	// ExchangeStateUnknown marks an exchange whose payload carried no state.
	ExchangeStateUnknown ExchangeState = "UNKNOWN"
)

// Completed reports whether the exchange was delivered and its points granted.
func (s ExchangeState) Completed() bool {
	return s == ExchangeCompleted
}

// Exchange is a user's submission of recyclable material for points.
type Exchange struct {
	ID           string           `json:"id"`
	State        ExchangeState    `json:"state"`
	TotalWeight  float64          `json:"totalWeight"`
	TotalPoints  int              `json:"totalPoints"`
	Details      []ExchangeDetail `json:"details"`
	Token        string           `json:"token,omitempty"`
	UserID       string           `json:"userId,omitempty"`
	GreenPointID string           `json:"greenPointId,omitempty"`
	CouponCode   string           `json:"couponCode,omitempty"`
	EventID      string           `json:"eventId,omitempty"`
	CreatedAt    time.Time        `json:"createdAt"`
	Deadline     *time.Time       `json:"deadline,omitempty"`
	CompletedAt  *time.Time       `json:"completedAt,omitempty"`
}

// ExchangeDetail is one material line of an exchange.
type ExchangeDetail struct {
	Material    Material `json:"material"`
	WeightGrams float64  `json:"weightGrams"`
	Points      int      `json:"points"`
}

// ExchangeRequest is what a user submits to open a pending exchange.
type ExchangeRequest struct {
	CouponCode string         `json:"couponCode,omitempty"`
	Lines      []ExchangeLine `json:"lines"`
}

// ExchangeLine pairs a material id with the weight being delivered.
type ExchangeLine struct {
	MaterialID  string  `json:"materialId"`
	WeightGrams float64 `json:"weightGrams"`
}

// Confirmation is the payload sent when a collaborator confirms a scanned token.
type Confirmation struct {
	Token          string `json:"token"`
	CollaboratorID string `json:"colaboradorId"`
	GreenPointID   string `json:"puntoVerdeId"`
}
