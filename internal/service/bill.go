package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/storekeep/storekeep/internal/domain"
)

func (s *Service) toolCreateBill(ctx context.Context, args map[string]any, actor *domain.User) domain.ToolResult {
	rawItems, _ := args["items"].([]any)
	lines := make([]domain.BillLine, 0, len(rawItems))
	for _, raw := range rawItems {
		item, ok := raw.(map[string]any)
		if !ok {
			return domain.Fail(domain.ErrKindValidation, "Invalid field items: each item must be an object")
		}
		name := stringArg(item, "product_name")
		quantity := intArg(item, "quantity", 0)
		if quantity <= 0 {
			return domain.Fail(domain.ErrKindValidation, "Quantity for %s must be positive", name)
		}

		product, fail, ok := s.resolveProduct(ctx, name)
		if !ok {
			return fail
		}
		lines = append(lines, domain.BillLine{ProductID: product.ID, Quantity: quantity})
	}

	bill, err := s.store.CreateBill(ctx, lines, actor.ID)
	if err != nil {
		var insufficient *domain.InsufficientStockError
		switch {
		case errors.As(err, &insufficient):
			return domain.Fail(domain.ErrKindInsufficientStock, "%s", insufficient.Error())
		case errors.Is(err, domain.ErrNotFound):
			return domain.Fail(domain.ErrKindNotFound, "%s", err.Error())
		default:
			return domain.Fail(domain.ErrKindInternal, "failed to create bill: %v", err)
		}
	}

	summaries := make([]string, 0, len(bill.Items))
	for _, item := range bill.Items {
		summaries = append(summaries, fmt.Sprintf("%dx %s @ $%.2f", item.Quantity, item.ProductName, item.PricePerUnit))
	}
	return domain.OK(
		fmt.Sprintf("Bill %s created successfully! Total: $%.2f", bill.BillNumber, bill.TotalAmount),
		map[string]any{
			"bill_id":      bill.ID,
			"bill_number":  bill.BillNumber,
			"total_amount": bill.TotalAmount,
			"items":        summaries,
		},
	)
}

// --- REST-facing bill operations ---

// BillLineInput is one requested line of a REST bill request, addressed
// by product id rather than by name.
type BillLineInput struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

// CreateBill creates a bill from a REST request.
func (s *Service) CreateBill(ctx context.Context, inputs []BillLineInput, actor *domain.User) (*domain.Bill, error) {
	if len(inputs) == 0 {
		return nil, fmt.Errorf("bill must contain at least one item")
	}
	lines := make([]domain.BillLine, 0, len(inputs))
	for _, in := range inputs {
		if in.Quantity <= 0 {
			return nil, fmt.Errorf("quantity for product %d must be positive", in.ProductID)
		}
		lines = append(lines, domain.BillLine{ProductID: in.ProductID, Quantity: in.Quantity})
	}
	return s.store.CreateBill(ctx, lines, actor.ID)
}

// GetBill returns one bill with its items.
func (s *Service) GetBill(ctx context.Context, id int64) (*domain.Bill, error) {
	return s.store.GetBill(ctx, id)
}

// ListBills returns bills visible to the actor. Plain users only see
// their own bills; admins see everything.
func (s *Service) ListBills(ctx context.Context, actor *domain.User) ([]domain.Bill, error) {
	if actor.Role.AtLeast(domain.RoleAdmin) {
		return s.store.ListBills(ctx, 0)
	}
	return s.store.ListBills(ctx, actor.ID)
}
