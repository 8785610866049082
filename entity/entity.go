// Package entity holds the catalog, people, and money records the console
// synchronizes. Records are plain data keyed by an opaque ID; cross-entity
// links are foreign-key style references, never embedded ownership.
package entity

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// ID is an opaque record identifier. The backend emits ids as JSON numbers or
// strings depending on the endpoint; ID accepts both and compares as a
// string. Optimistic placeholders use synthetic ids (see client.PlaceholderID)
// that never collide with server-assigned ones.
type ID string

func (id ID) String() string { return string(id) }

func (id *ID) UnmarshalJSON(b []byte) error {
	if len(b) == 0 {
		return fmt.Errorf("entity: empty id")
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("entity: id must be string or number: %w", err)
	}
	*id = ID(n.String())
	return nil
}

func (id ID) MarshalJSON() ([]byte, error) {
	// round-trip numeric ids as numbers so the backend's typed columns accept
	// them back
	if _, err := strconv.ParseInt(string(id), 10, 64); err == nil {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

// User is the authenticated operator of the console.
type User struct {
	ID     ID     `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	Avatar string `json:"avatar,omitempty"`
}

func (u User) EntityID() string { return string(u.ID) }

type Product struct {
	ID         ID      `json:"id"`
	Name       string  `json:"name"`
	SKU        string  `json:"sku"`
	CategoryID ID      `json:"category_id"`
	BrandID    ID      `json:"brand_id"`
	SupplierID ID      `json:"supplier_id"`
	Price      float64 `json:"price"`
	Stock      int     `json:"stock"`
	Image      string  `json:"image,omitempty"`
}

func (p Product) EntityID() string { return string(p.ID) }
func (p Product) WithID(id string) Product { p.ID = ID(id); return p }

type Category struct {
	ID          ID     `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

func (c Category) EntityID() string { return string(c.ID) }
func (c Category) WithID(id string) Category { c.ID = ID(id); return c }

type Brand struct {
	ID   ID     `json:"id"`
	Name string `json:"name"`
	Logo string `json:"logo,omitempty"`
}

func (b Brand) EntityID() string { return string(b.ID) }
func (b Brand) WithID(id string) Brand { b.ID = ID(id); return b }

type Supplier struct {
	ID      ID     `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
}

func (s Supplier) EntityID() string { return string(s.ID) }
func (s Supplier) WithID(id string) Supplier { s.ID = ID(id); return s }

type Customer struct {
	ID      ID     `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
}

func (c Customer) EntityID() string { return string(c.ID) }
func (c Customer) WithID(id string) Customer { c.ID = ID(id); return c }

type Staff struct {
	ID     ID     `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	Avatar string `json:"avatar,omitempty"`
}

func (s Staff) EntityID() string { return string(s.ID) }
func (s Staff) WithID(id string) Staff { s.ID = ID(id); return s }

type Notification struct {
	ID      ID     `json:"id"`
	Title   string `json:"title"`
	Body    string `json:"body,omitempty"`
	Read    bool   `json:"read"`
	Created string `json:"created_at,omitempty"`
}

func (n Notification) EntityID() string { return string(n.ID) }
func (n Notification) WithID(id string) Notification { n.ID = ID(id); return n }

// DashboardSummary is the read-only aggregate behind the landing page tiles.
type DashboardSummary struct {
	TotalProducts  int     `json:"total_products"`
	TotalCustomers int     `json:"total_customers"`
	TotalOrders    int     `json:"total_orders"`
	Revenue        float64 `json:"revenue"`
	PendingOrders  int     `json:"pending_orders"`
	LowStock       int     `json:"low_stock"`
}
