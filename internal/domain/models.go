// Package domain defines the core domain models for the store backend.
package domain

import "time"

// Role is a user's access level. Roles are totally ordered:
// user < admin < super_admin.
type Role string

const (
	RoleUser       Role = "user"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
)

var roleRank = map[Role]int{
	RoleUser:       0,
	RoleAdmin:      1,
	RoleSuperAdmin: 2,
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	_, ok := roleRank[r]
	return ok
}

// AtLeast reports whether r grants at least the access of min.
func (r Role) AtLeast(min Role) bool {
	return roleRank[r] >= roleRank[min]
}

// User represents a system account.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	FullName     string    `json:"full_name"`
	Email        string    `json:"email"`
	Role         Role      `json:"role"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}

// Product represents an inventory item. Name is not unique.
type Product struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Quantity      int       `json:"quantity"`
	PurchasePrice float64   `json:"purchase_price"`
	SellingPrice  float64   `json:"selling_price"`
	Category      string    `json:"category,omitempty"`
	Supplier      string    `json:"supplier,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Bill is an immutable record of a completed sale. Its items snapshot
// product name and selling price at sale time; TotalAmount always equals
// the sum of the items' subtotals.
type Bill struct {
	ID          int64      `json:"id"`
	BillNumber  string     `json:"bill_number"`
	TotalAmount float64    `json:"total_amount"`
	CreatedBy   int64      `json:"created_by"`
	CreatedAt   time.Time  `json:"created_at"`
	Items       []BillItem `json:"items,omitempty"`
}

// BillItem is one line of a bill. Subtotal = Quantity * PricePerUnit.
type BillItem struct {
	ID           int64   `json:"id"`
	BillID       int64   `json:"bill_id"`
	ProductID    int64   `json:"product_id"`
	ProductName  string  `json:"product_name"`
	Quantity     int     `json:"quantity"`
	PricePerUnit float64 `json:"price_per_unit"`
	Subtotal     float64 `json:"subtotal"`
}

// BillLine is a requested bill line resolved to a concrete product.
type BillLine struct {
	ProductID int64
	Quantity  int
}
