package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// LineID identifies a cart line. The store assigns it; clients treat it as opaque.
type LineID string

func (id *LineID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = LineID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("line id: %w", err)
	}
	*id = LineID(n.String())
	return nil
}

func (id LineID) String() string {
	return string(id)
}

type CartLine struct {
	ID        LineID  `json:"id"`
	ProductID string  `json:"product_id"`
	UserID    string  `json:"user_id"`
	Quantity  int     `json:"quantity"`
	Notes     *string `json:"notes"`
	Product   Product `json:"product"`
}

func (l CartLine) Subtotal() decimal.Decimal {
	return l.Product.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

func (l CartLine) NotesText() string {
	if l.Notes == nil {
		return ""
	}
	return *l.Notes
}

// Snapshot is the in-memory mirror of one user's cart, in store order.
type Snapshot struct {
	UserID string     `json:"user_id"`
	Lines  []CartLine `json:"lines"`
}

func (s Snapshot) Len() int {
	return len(s.Lines)
}

func (s Snapshot) IsEmpty() bool {
	return len(s.Lines) == 0
}

func (s Snapshot) Line(id LineID) (CartLine, bool) {
	for _, l := range s.Lines {
		if l.ID == id {
			return l, true
		}
	}
	return CartLine{}, false
}

// Total is for display only; the store stays authoritative.
func (s Snapshot) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range s.Lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

// AffiliateLinks returns the non-empty affiliate links in line order.
func (s Snapshot) AffiliateLinks() []string {
	links := make([]string, 0, len(s.Lines))
	for _, l := range s.Lines {
		if l.Product.AffiliateLink != "" {
			links = append(links, l.Product.AffiliateLink)
		}
	}
	return links
}

// CheckoutList renders the affiliate links one per line.
func (s Snapshot) CheckoutList() string {
	return strings.Join(s.AffiliateLinks(), "\n")
}

// Clone returns a deep copy so callers can't reach the owner's slice.
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{UserID: s.UserID}
	if s.Lines == nil {
		return out
	}
	out.Lines = make([]CartLine, len(s.Lines))
	for i, l := range s.Lines {
		if l.Notes != nil {
			n := *l.Notes
			l.Notes = &n
		}
		out.Lines[i] = l
	}
	return out
}
