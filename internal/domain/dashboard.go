package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

type TimeRange string

const (
	TimeRangeDay   TimeRange = "day"
	TimeRangeWeek  TimeRange = "week"
	TimeRangeMonth TimeRange = "month"
)

func ParseTimeRange(s string) (TimeRange, error) {
	switch TimeRange(s) {
	case "":
		return TimeRangeMonth, nil
	case TimeRangeDay, TimeRangeWeek, TimeRangeMonth:
		return TimeRange(s), nil
	default:
		return "", fmt.Errorf("unknown time range %q", s)
	}
}

type ShipmentSummary struct {
	TotalShipment  string `json:"total_shipment"`
	TotalOrder     int    `json:"total_order"`
	ProductShipped int    `json:"product_shipped"`
	NewGoods       int    `json:"new_goods"`
}

type CategoryShare struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

type DeliveryComparison struct {
	LastMonth int `json:"last_month"`
	ThisMonth int `json:"this_month"`
}

// Growth is the month-over-month change in percent, rounded to one decimal.
// Zero when there is no baseline.
func (d DeliveryComparison) Growth() decimal.Decimal {
	if d.LastMonth == 0 {
		return decimal.Zero
	}
	last := decimal.NewFromInt(int64(d.LastMonth))
	diff := decimal.NewFromInt(int64(d.ThisMonth - d.LastMonth))
	return diff.Div(last).Mul(decimal.NewFromInt(100)).Round(1)
}

type SalesPoint struct {
	Name    string `json:"name"`
	Sales   int    `json:"sales"`
	Revenue int    `json:"revenue"`
	Orders  int    `json:"orders"`
}

type Overview struct {
	Shipments  ShipmentSummary    `json:"shipments"`
	Categories []CategoryShare    `json:"categories"`
	Delivery   DeliveryComparison `json:"delivery"`
	Growth     decimal.Decimal    `json:"growth"`
	Sales      []SalesPoint       `json:"sales"`
	TimeRange  TimeRange          `json:"time_range"`
}
