package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

type Source string

const (
	SourceEscuelaJS Source = "escuelajs"
	SourceFakeStore Source = "fakestore"
)

// ParseSource falls back to escuelajs for anything unknown, like the store does.
func ParseSource(s string) Source {
	if Source(strings.ToLower(s)) == SourceFakeStore {
		return SourceFakeStore
	}
	return SourceEscuelaJS
}

const PlaceholderImage = "https://via.placeholder.com/50"

type Product struct {
	ID            string          `json:"id"`
	Title         string          `json:"title"`
	Price         decimal.Decimal `json:"price"`
	Description   string          `json:"description,omitempty"`
	Image         string          `json:"image,omitempty"`
	Category      string          `json:"category,omitempty"`
	Source        Source          `json:"source,omitempty"`
	AffiliateLink string          `json:"affiliate_link,omitempty"`
}

func (p Product) ImageOrPlaceholder() string {
	if strings.HasPrefix(p.Image, "http://") || strings.HasPrefix(p.Image, "https://") {
		return p.Image
	}
	return PlaceholderImage
}
