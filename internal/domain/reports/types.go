// Package reports builds the back office dashboard.
package reports

import (
	"time"

	"backoffice/internal/core/id"
	"backoffice/internal/core/types"
	"backoffice/internal/domain/inventory"
)

// Bucket layouts of the sales series.
const (
	DayLayout   = "2006-01-02"
	MonthLayout = "2006-01"
)

// Point is one bucket of a time series.
type Point struct {
	Bucket string      `db:"bucket" json:"bucket"`
	Total  types.Money `db:"total" json:"total"`
}

// Ranked is one row of a top-N ranking.
type Ranked struct {
	ID    id.ID       `db:"id" json:"id"`
	Name  string      `db:"name" json:"name"`
	Units int64       `db:"units" json:"units"`
	Total types.Money `db:"total" json:"total"`
}

// Period is the half-open range [From, To).
type Period struct {
	From time.Time
	To   time.Time
}

// MonthOf returns the calendar month containing t.
func MonthOf(t time.Time) Period {
	y, m, _ := t.UTC().Date()
	from := time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
	return Period{From: from, To: from.AddDate(0, 1, 0)}
}

// Totals are money sums over a period.
type Totals struct {
	Sales    types.Money `db:"sales" json:"sales"`
	Expenses types.Money `db:"expenses" json:"expenses"`
	Returns  types.Money `db:"returns" json:"returns"`
	Bonuses  types.Money `db:"bonuses" json:"bonuses"`
	Payments types.Money `db:"payments" json:"payments"`
	// COGS is Σ quantity × current purchase price of the goods sold.
	COGS types.Money `db:"cogs" json:"-"`
}

// Performance is the month result.
type Performance struct {
	NetSales    types.Money `json:"netSales"`
	COGS        types.Money `json:"cogs"`
	GrossMargin types.Money `json:"grossMargin"`
	Expenses    types.Money `json:"expenses"`
	Bonuses     types.Money `json:"bonuses"`
	Returns     types.Money `json:"returns"`
	ExpiryLoss  types.Money `json:"expiryLoss"`
	Total       types.Money `json:"total"`
}

// NewPerformance derives the month result from its totals and the value of
// expired stock.
func NewPerformance(t Totals, expiryLoss types.Money) Performance {
	margin := t.Sales.Sub(t.COGS)
	return Performance{
		NetSales:    t.Sales,
		COGS:        t.COGS,
		GrossMargin: margin,
		Expenses:    t.Expenses,
		Bonuses:     t.Bonuses,
		Returns:     t.Returns,
		ExpiryLoss:  expiryLoss,
		Total:       margin.Sub(t.Expenses).Sub(t.Bonuses).Sub(t.Returns).Sub(expiryLoss),
	}
}

// Today summarises the current day.
type Today struct {
	SalesTotal types.Money `json:"salesTotal"`
	SalesCount int64       `json:"salesCount"`
}

// Dashboard is the home screen of the back office.
type Dashboard struct {
	GeneratedAt  time.Time         `json:"generatedAt"`
	Today        Today             `json:"today"`
	ProductCount int64             `json:"productCount"`
	Daily        []Point           `json:"daily"`
	Monthly      []Point           `json:"monthly"`
	Alerts       *inventory.Alerts `json:"alerts"`
	Month        Totals            `json:"month"`
	Performance  Performance       `json:"performance"`
	TopSellers   []Ranked          `json:"topSellers"`
	TopProducts  []Ranked          `json:"topProducts"`
	TopReturned  []Ranked          `json:"topReturned"`
}
