package entity

import "math"

// OrderItem is one line of an order: a product reference with the quantity
// and the unit price captured at entry time.
type OrderItem struct {
	ProductID ID      `json:"product_id"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
}

func (i OrderItem) LineTotal() float64 { return round2(float64(i.Quantity) * i.UnitPrice) }

// Order references a customer and carries its line items by value; tax and
// discount are fractional rates (0.10 = 10%).
type Order struct {
	ID           ID          `json:"id"`
	CustomerID   ID          `json:"customer_id"`
	Items        []OrderItem `json:"items"`
	TaxRate      float64     `json:"tax_rate"`
	DiscountRate float64     `json:"discount_rate"`
	Status       string      `json:"status"`
	Created      string      `json:"created_at,omitempty"`
}

func (o Order) EntityID() string { return string(o.ID) }
func (o Order) WithID(id string) Order { o.ID = ID(id); return o }

// Subtotal is the sum of line totals before tax and discount.
func (o Order) Subtotal() float64 {
	var sum float64
	for _, it := range o.Items {
		sum += it.LineTotal()
	}
	return round2(sum)
}

// Total applies tax and discount to the subtotal:
// subtotal + subtotal*tax - subtotal*discount, rounded to cents.
// Both rates apply to the subtotal, not to each other.
func (o Order) Total() float64 {
	sub := o.Subtotal()
	return round2(sub + sub*o.TaxRate - sub*o.DiscountRate)
}

type Payment struct {
	ID      ID      `json:"id"`
	OrderID ID      `json:"order_id"`
	Amount  float64 `json:"amount"`
	Method  string  `json:"method"`
	Status  string  `json:"status"`
	Created string  `json:"created_at,omitempty"`
}

func (p Payment) EntityID() string { return string(p.ID) }
func (p Payment) WithID(id string) Payment { p.ID = ID(id); return p }

func round2(v float64) float64 { return math.Round(v*100) / 100 }
