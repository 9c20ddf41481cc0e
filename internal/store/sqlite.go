// Package store persists users, products, and bills in SQLite.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/storekeep/storekeep/internal/domain"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore opens the database and runs migrations. The DSN should
// carry _txlock=immediate so write transactions serialize from BEGIN; the
// bill-number retry loop covers drivers configured otherwise.
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// For in-memory SQLite, multiple connections create separate databases.
	// Keep a single connection to avoid schema/data disappearing across goroutines.
	if dsn == ":memory:" || strings.Contains(dsn, "mode=memory") {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			username TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			full_name TEXT NOT NULL,
			email TEXT NOT NULL UNIQUE,
			role TEXT NOT NULL,
			is_active INTEGER NOT NULL DEFAULT 1,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS products (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			quantity INTEGER NOT NULL DEFAULT 0 CHECK (quantity >= 0),
			purchase_price REAL NOT NULL,
			selling_price REAL NOT NULL,
			category TEXT,
			supplier TEXT,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_products_name ON products(name)`,
		`CREATE TABLE IF NOT EXISTS bills (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			bill_number TEXT NOT NULL UNIQUE,
			total_amount REAL NOT NULL,
			created_by INTEGER NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (created_by) REFERENCES users(id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_bills_created ON bills(created_at)`,
		`CREATE TABLE IF NOT EXISTS bill_items (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			bill_id INTEGER NOT NULL,
			product_id INTEGER NOT NULL,
			product_name TEXT NOT NULL,
			quantity INTEGER NOT NULL,
			price_per_unit REAL NOT NULL,
			subtotal REAL NOT NULL,
			FOREIGN KEY (bill_id) REFERENCES bills(id) ON DELETE CASCADE
		)`,
		`CREATE INDEX IF NOT EXISTS idx_bill_items_bill ON bill_items(bill_id)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\n%s", err, m)
		}
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// --- Users ---

// CreateUser inserts a user row. A username or email collision is reported
// as domain.ErrDuplicate.
func (s *SQLiteStore) CreateUser(ctx context.Context, user *domain.User) error {
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO users (username, password_hash, full_name, email, role, is_active, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		user.Username, user.PasswordHash, user.FullName, user.Email, user.Role, user.IsActive, user.CreatedAt)
	if isUniqueViolation(err) {
		return fmt.Errorf("user %s: %w", user.Username, domain.ErrDuplicate)
	}
	if err != nil {
		return err
	}
	user.ID, err = res.LastInsertId()
	return err
}

func (s *SQLiteStore) getUser(ctx context.Context, where string, arg any) (*domain.User, error) {
	var u domain.User
	err := s.db.QueryRowContext(ctx,
		`SELECT id, username, password_hash, full_name, email, role, is_active, created_at FROM users WHERE `+where,
		arg).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.FullName, &u.Email, &u.Role, &u.IsActive, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetUserByID retrieves a user by id, (nil, nil) when absent.
func (s *SQLiteStore) GetUserByID(ctx context.Context, id int64) (*domain.User, error) {
	return s.getUser(ctx, "id = ?", id)
}

// GetUserByUsername retrieves a user by username, (nil, nil) when absent.
func (s *SQLiteStore) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	return s.getUser(ctx, "username = ?", username)
}

// GetUserByEmail retrieves a user by email, (nil, nil) when absent.
func (s *SQLiteStore) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.getUser(ctx, "email = ?", email)
}

// ListUsers returns all users ordered by id.
func (s *SQLiteStore) ListUsers(ctx context.Context) ([]domain.User, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, username, password_hash, full_name, email, role, is_active, created_at FROM users ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.FullName, &u.Email, &u.Role, &u.IsActive, &u.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// UpdateUser rewrites a user's mutable fields.
func (s *SQLiteStore) UpdateUser(ctx context.Context, user *domain.User) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET password_hash = ?, full_name = ?, email = ?, role = ?, is_active = ? WHERE id = ?`,
		user.PasswordHash, user.FullName, user.Email, user.Role, user.IsActive, user.ID)
	if isUniqueViolation(err) {
		return fmt.Errorf("user %s: %w", user.Username, domain.ErrDuplicate)
	}
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("user %d: %w", user.ID, domain.ErrNotFound)
	}
	return nil
}

// DeleteUser removes a user row.
func (s *SQLiteStore) DeleteUser(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("user %d: %w", id, domain.ErrNotFound)
	}
	return nil
}

// --- Products ---

// CreateProduct inserts a product row.
func (s *SQLiteStore) CreateProduct(ctx context.Context, product *domain.Product) error {
	now := time.Now()
	if product.CreatedAt.IsZero() {
		product.CreatedAt = now
	}
	product.UpdatedAt = now
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO products (name, quantity, purchase_price, selling_price, category, supplier, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		product.Name, product.Quantity, product.PurchasePrice, product.SellingPrice, product.Category, product.Supplier, product.CreatedAt, product.UpdatedAt)
	if err != nil {
		return err
	}
	product.ID, err = res.LastInsertId()
	return err
}

const productColumns = `id, name, quantity, purchase_price, selling_price, IFNULL(category, ''), IFNULL(supplier, ''), created_at, updated_at`

func scanProduct(row interface{ Scan(...any) error }) (*domain.Product, error) {
	var p domain.Product
	err := row.Scan(&p.ID, &p.Name, &p.Quantity, &p.PurchasePrice, &p.SellingPrice, &p.Category, &p.Supplier, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetProduct retrieves a product by id, (nil, nil) when absent.
func (s *SQLiteStore) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	p, err := scanProduct(s.db.QueryRowContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return p, err
}

func (s *SQLiteStore) queryProducts(ctx context.Context, query string, args ...any) ([]domain.Product, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, *p)
	}
	return products, rows.Err()
}

// ListProducts returns all products ordered by id.
func (s *SQLiteStore) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return s.queryProducts(ctx, `SELECT `+productColumns+` FROM products ORDER BY id`)
}

// ListLowStock returns products with quantity strictly below threshold.
func (s *SQLiteStore) ListLowStock(ctx context.Context, threshold int) ([]domain.Product, error) {
	return s.queryProducts(ctx,
		`SELECT `+productColumns+` FROM products WHERE quantity < ? ORDER BY quantity, id`, threshold)
}

// GetProductByName retrieves a product by case-insensitive exact name,
// (nil, nil) when absent. Names are not unique; the oldest row wins.
func (s *SQLiteStore) GetProductByName(ctx context.Context, name string) (*domain.Product, error) {
	p, err := scanProduct(s.db.QueryRowContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE name = ? COLLATE NOCASE ORDER BY id LIMIT 1`, name))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return p, err
}

// FindProductByName resolves a product by case-insensitive exact match,
// falling back to a case-insensitive substring match. Returns (nil, nil)
// when nothing matches and *domain.AmbiguousProductError when the substring
// fallback matches more than one product.
func (s *SQLiteStore) FindProductByName(ctx context.Context, name string) (*domain.Product, error) {
	p, err := s.GetProductByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if p != nil {
		return p, nil
	}

	matches, err := s.queryProducts(ctx,
		`SELECT `+productColumns+` FROM products WHERE name LIKE ? ESCAPE '\' ORDER BY id`,
		"%"+escapeLike(name)+"%")
	if err != nil {
		return nil, err
	}
	switch len(matches) {
	case 0:
		return nil, nil
	case 1:
		return &matches[0], nil
	default:
		names := make([]string, len(matches))
		for i, m := range matches {
			names[i] = m.Name
		}
		return nil, &domain.AmbiguousProductError{Query: name, Candidates: names}
	}
}

// escapeLike escapes LIKE wildcards so user input matches literally.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	return strings.ReplaceAll(s, `_`, `\_`)
}

// UpdateProduct rewrites a product's mutable fields.
func (s *SQLiteStore) UpdateProduct(ctx context.Context, product *domain.Product) error {
	product.UpdatedAt = time.Now()
	res, err := s.db.ExecContext(ctx,
		`UPDATE products SET name = ?, quantity = ?, purchase_price = ?, selling_price = ?, category = ?, supplier = ?, updated_at = ? WHERE id = ?`,
		product.Name, product.Quantity, product.PurchasePrice, product.SellingPrice, product.Category, product.Supplier, product.UpdatedAt, product.ID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("product %d: %w", product.ID, domain.ErrNotFound)
	}
	return nil
}

// SetProductQuantity replaces a product's stock level outright.
func (s *SQLiteStore) SetProductQuantity(ctx context.Context, id int64, quantity int) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE products SET quantity = ?, updated_at = ? WHERE id = ?`, quantity, time.Now(), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("product %d: %w", id, domain.ErrNotFound)
	}
	return nil
}

// DeleteProduct removes a product row.
func (s *SQLiteStore) DeleteProduct(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("product %d: %w", id, domain.ErrNotFound)
	}
	return nil
}
