package domain

// MaxQuantity bounds a single line so amounts fit the INTEGER stock and
// quantity columns.
const MaxQuantity = 100000

// Line names a quantity of one product. In verification the quantity is the
// amount wanted; in a reservation it is a signed delta (negative consumes,
// positive releases).
type Line struct {
	Category  string `json:"category" binding:"required"`
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity" binding:"min=-100000,max=100000"`
}

type VerifyRequest struct {
	Items []Line `json:"items" binding:"required,min=1,dive"`
}

type VerifyResponse struct {
	Available bool   `json:"available"`
	Message   string `json:"message"`
}

type ReserveRequest struct {
	Items []Line `json:"items" binding:"required,min=1,dive"`
}

type ReservedItem struct {
	Category  string `json:"category"`
	ProductID string `json:"productId"`
	Stock     int    `json:"stock"`
}

type ReserveResponse struct {
	Message       string         `json:"message"`
	ReservationID string         `json:"reservationId"`
	Items         []ReservedItem `json:"items"`
}

// ReservedEvent is published after a reservation commits.
type ReservedEvent struct {
	ReservationID string `json:"reservationId"`
	Items         []Line `json:"items"`
}
