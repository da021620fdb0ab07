package orderapi

import (
	"fmt"
	"time"

	"github.com/mkiss03/utazasparizsbaoff-sub002/lib/myerrors"
)

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
)

// Order is the persisted evidence that a purchase completed. It is keyed by
// the payment gateway's session identifier, is created exactly once by a
// webhook receiver and is never mutated afterwards.
type Order struct {
	OrderReference  string        `json:"orderReference"`
	Product         string        `json:"product"`
	BuyerName       string        `json:"buyerName"`
	BuyerEmail      string        `json:"buyerEmail"`
	BuyerPhone      string        `json:"buyerPhone,omitempty"`
	AmountInCents   int64         `json:"amountInCents"`
	Currency        string        `json:"currency"`
	PaymentStatus   PaymentStatus `json:"paymentStatus"`
	PaymentProvider string        `json:"paymentProvider"`
	AccessToken     string        `json:"accessToken,omitempty" datastore:",noindex"`
	CreatedAt       time.Time     `json:"createdAt"`
}

type Buyer struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
}

func (b Buyer) Validate() error {
	if b.Name == "" {
		return myerrors.NewInvalidInputError(fmt.Errorf("missing mandatory field 'name'"))
	}
	if b.Email == "" {
		return myerrors.NewInvalidInputError(fmt.Errorf("missing mandatory field 'email'"))
	}
	return nil
}
