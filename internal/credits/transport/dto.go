package transport

import "github.com/google/uuid"

type SetCreditsRequest struct {
	Credits *int `json:"credits" validate:"required,min=0"`
}

type AddCreditsRequest struct {
	Amount int `json:"amount" validate:"required,min=1"`
}

type BalanceResponse struct {
	UserID  uuid.UUID `json:"userId"`
	Credits int       `json:"credits"`
	// Unlimited is true for admins, whose balance is never charged.
	Unlimited bool `json:"unlimited"`
}
