package domain

import (
	"encoding/json"
	"fmt"
)

type ShippingAddress struct {
	Street  string `json:"street" validate:"required"`
	City    string `json:"city" validate:"required"`
	State   string `json:"state" validate:"required"`
	Zip     string `json:"zip" validate:"required"`
	Country string `json:"country" validate:"required"`
}

func (a ShippingAddress) String() string {
	return fmt.Sprintf("%s, %s, %s %s, %s", a.Street, a.City, a.State, a.Zip, a.Country)
}

type OrderID string

func (id *OrderID) UnmarshalJSON(data []byte) error {
	var l LineID
	if err := l.UnmarshalJSON(data); err != nil {
		return err
	}
	*id = OrderID(l)
	return nil
}

// Order is what the store answers to a checkout. Raw keeps the full body for
// the confirmation view.
type Order struct {
	ID     OrderID         `json:"id"`
	UserID string          `json:"user_id"`
	Raw    json.RawMessage `json:"-"`
}
