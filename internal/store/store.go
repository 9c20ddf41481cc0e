package store

import (
	"context"
	"time"

	"github.com/storekeep/storekeep/internal/domain"
)

// Store is the persistence contract the service layer depends on.
type Store interface {
	// Users
	CreateUser(ctx context.Context, user *domain.User) error
	GetUserByID(ctx context.Context, id int64) (*domain.User, error)
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	ListUsers(ctx context.Context) ([]domain.User, error)
	UpdateUser(ctx context.Context, user *domain.User) error
	DeleteUser(ctx context.Context, id int64) error

	// Products
	CreateProduct(ctx context.Context, product *domain.Product) error
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
	ListProducts(ctx context.Context) ([]domain.Product, error)
	ListLowStock(ctx context.Context, threshold int) ([]domain.Product, error)
	FindProductByName(ctx context.Context, name string) (*domain.Product, error)
	GetProductByName(ctx context.Context, name string) (*domain.Product, error)
	UpdateProduct(ctx context.Context, product *domain.Product) error
	SetProductQuantity(ctx context.Context, id int64, quantity int) error
	DeleteProduct(ctx context.Context, id int64) error

	// Bills
	CreateBill(ctx context.Context, lines []domain.BillLine, createdBy int64) (*domain.Bill, error)
	GetBill(ctx context.Context, id int64) (*domain.Bill, error)
	ListBills(ctx context.Context, createdBy int64) ([]domain.Bill, error)

	// Reports
	DailySales(ctx context.Context, day time.Time) (int, float64, error)
	ProfitLoss(ctx context.Context, start, end time.Time) (ProfitLossRow, error)

	Close() error
}

// ProfitLossRow aggregates bills over an inclusive date range. Cost joins
// each item against its product's purchase price at read time.
type ProfitLossRow struct {
	Bills   int
	Revenue float64
	Cost    float64
}
