package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/storekeep/storekeep/internal/domain"
)

// billNumberAttempts bounds the retry loop on a bill_number collision.
// Collisions only happen when two creations race the count outside an
// immediate transaction; the UNIQUE constraint makes the race safe.
const billNumberAttempts = 3

// CreateBill validates every requested line and, only then, creates the
// bill, its items, and decrements stock — all in one transaction. The
// decrement re-checks availability so a concurrent sale can never drive a
// quantity negative; any failed line rolls the whole bill back.
func (s *SQLiteStore) CreateBill(ctx context.Context, lines []domain.BillLine, createdBy int64) (*domain.Bill, error) {
	if len(lines) == 0 {
		return nil, fmt.Errorf("no items specified for the bill")
	}

	var bill *domain.Bill
	var err error
	for attempt := 0; attempt < billNumberAttempts; attempt++ {
		bill, err = s.createBillOnce(ctx, lines, createdBy)
		if err != nil && isUniqueViolation(err) {
			continue
		}
		break
	}
	return bill, err
}

func (s *SQLiteStore) createBillOnce(ctx context.Context, lines []domain.BillLine, createdBy int64) (*domain.Bill, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()
	bill := &domain.Bill{CreatedBy: createdBy, CreatedAt: now}

	// Validate every line before any mutation.
	for _, line := range lines {
		var name string
		var available int
		var price float64
		err := tx.QueryRowContext(ctx,
			`SELECT name, quantity, selling_price FROM products WHERE id = ?`,
			line.ProductID).Scan(&name, &available, &price)
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("product %d: %w", line.ProductID, domain.ErrNotFound)
		}
		if err != nil {
			return nil, err
		}
		if line.Quantity <= 0 {
			return nil, fmt.Errorf("quantity for %s must be positive", name)
		}
		if available < line.Quantity {
			return nil, &domain.InsufficientStockError{ProductName: name, Available: available}
		}

		subtotal := price * float64(line.Quantity)
		bill.TotalAmount += subtotal
		bill.Items = append(bill.Items, domain.BillItem{
			ProductID:    line.ProductID,
			ProductName:  name,
			Quantity:     line.Quantity,
			PricePerUnit: price,
			Subtotal:     subtotal,
		})
	}

	// Number derives from the global bill count; the UNIQUE constraint plus
	// the caller's retry loop keeps concurrent creations from sharing one.
	var count int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM bills`).Scan(&count); err != nil {
		return nil, err
	}
	bill.BillNumber = fmt.Sprintf("BILL%s%04d", now.Format("20060102"), count+1)

	res, err := tx.ExecContext(ctx,
		`INSERT INTO bills (bill_number, total_amount, created_by, created_at) VALUES (?, ?, ?, ?)`,
		bill.BillNumber, bill.TotalAmount, bill.CreatedBy, bill.CreatedAt)
	if err != nil {
		return nil, err
	}
	bill.ID, err = res.LastInsertId()
	if err != nil {
		return nil, err
	}

	for i := range bill.Items {
		item := &bill.Items[i]
		item.BillID = bill.ID
		res, err := tx.ExecContext(ctx,
			`INSERT INTO bill_items (bill_id, product_id, product_name, quantity, price_per_unit, subtotal) VALUES (?, ?, ?, ?, ?, ?)`,
			item.BillID, item.ProductID, item.ProductName, item.Quantity, item.PricePerUnit, item.Subtotal)
		if err != nil {
			return nil, err
		}
		if item.ID, err = res.LastInsertId(); err != nil {
			return nil, err
		}

		// Conditional decrement re-validates stock at commit time.
		dec, err := tx.ExecContext(ctx,
			`UPDATE products SET quantity = quantity - ?, updated_at = ? WHERE id = ? AND quantity >= ?`,
			item.Quantity, time.Now(), item.ProductID, item.Quantity)
		if err != nil {
			return nil, err
		}
		n, err := dec.RowsAffected()
		if err != nil {
			return nil, err
		}
		if n == 0 {
			var available int
			_ = tx.QueryRowContext(ctx, `SELECT quantity FROM products WHERE id = ?`, item.ProductID).Scan(&available)
			return nil, &domain.InsufficientStockError{ProductName: item.ProductName, Available: available}
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit bill: %w", err)
	}
	return bill, nil
}

// GetBill retrieves a bill with its items, (nil, nil) when absent.
func (s *SQLiteStore) GetBill(ctx context.Context, id int64) (*domain.Bill, error) {
	var b domain.Bill
	err := s.db.QueryRowContext(ctx,
		`SELECT id, bill_number, total_amount, created_by, created_at FROM bills WHERE id = ?`,
		id).Scan(&b.ID, &b.BillNumber, &b.TotalAmount, &b.CreatedBy, &b.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, bill_id, product_id, product_name, quantity, price_per_unit, subtotal FROM bill_items WHERE bill_id = ? ORDER BY id`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var item domain.BillItem
		if err := rows.Scan(&item.ID, &item.BillID, &item.ProductID, &item.ProductName, &item.Quantity, &item.PricePerUnit, &item.Subtotal); err != nil {
			return nil, err
		}
		b.Items = append(b.Items, item)
	}
	return &b, rows.Err()
}

// ListBills returns bills most recent first. With createdBy > 0 only that
// user's bills are returned.
func (s *SQLiteStore) ListBills(ctx context.Context, createdBy int64) ([]domain.Bill, error) {
	query := `SELECT id, bill_number, total_amount, created_by, created_at FROM bills`
	args := []any{}
	if createdBy > 0 {
		query += ` WHERE created_by = ?`
		args = append(args, createdBy)
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bills []domain.Bill
	for rows.Next() {
		var b domain.Bill
		if err := rows.Scan(&b.ID, &b.BillNumber, &b.TotalAmount, &b.CreatedBy, &b.CreatedAt); err != nil {
			return nil, err
		}
		bills = append(bills, b)
	}
	return bills, rows.Err()
}

// DailySales aggregates bill count and revenue for one calendar day.
func (s *SQLiteStore) DailySales(ctx context.Context, day time.Time) (int, float64, error) {
	start := startOfDay(day)
	end := start.AddDate(0, 0, 1)

	var count int
	var total float64
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), IFNULL(SUM(total_amount), 0) FROM bills WHERE created_at >= ? AND created_at < ?`,
		start, end).Scan(&count, &total)
	return count, total, err
}

// ProfitLoss aggregates revenue and cost over an inclusive date range.
// Cost joins items against the product's purchase price at read time;
// items whose product has since been deleted contribute no cost.
func (s *SQLiteStore) ProfitLoss(ctx context.Context, start, end time.Time) (ProfitLossRow, error) {
	from := startOfDay(start)
	to := startOfDay(end).AddDate(0, 0, 1)

	var row ProfitLossRow
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), IFNULL(SUM(total_amount), 0) FROM bills WHERE created_at >= ? AND created_at < ?`,
		from, to).Scan(&row.Bills, &row.Revenue)
	if err != nil {
		return row, err
	}

	err = s.db.QueryRowContext(ctx,
		`SELECT IFNULL(SUM(bi.quantity * p.purchase_price), 0)
		 FROM bill_items bi
		 JOIN bills b ON b.id = bi.bill_id
		 JOIN products p ON p.id = bi.product_id
		 WHERE b.created_at >= ? AND b.created_at < ?`,
		from, to).Scan(&row.Cost)
	return row, err
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
