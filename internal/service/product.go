package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/storekeep/storekeep/internal/domain"
)

const defaultLowStockThreshold = 10

// resolveProduct applies the fuzzy name rule (exact case-insensitive,
// else substring) and maps the miss and ambiguity cases onto the result
// envelope.
func (s *Service) resolveProduct(ctx context.Context, name string) (*domain.Product, domain.ToolResult, bool) {
	product, err := s.store.FindProductByName(ctx, name)
	if err != nil {
		var ambiguous *domain.AmbiguousProductError
		if errors.As(err, &ambiguous) {
			return nil, domain.Fail(domain.ErrKindValidation,
				"Product name '%s' matches several products: %s. Please be more specific.",
				name, strings.Join(ambiguous.Candidates, ", ")), false
		}
		return nil, domain.Fail(domain.ErrKindInternal, "failed to look up product: %v", err), false
	}
	if product == nil {
		return nil, domain.Fail(domain.ErrKindNotFound, "Product '%s' not found", name), false
	}
	return product, domain.ToolResult{}, true
}

func (s *Service) toolCheckStock(ctx context.Context, args map[string]any) domain.ToolResult {
	product, fail, ok := s.resolveProduct(ctx, stringArg(args, "product_name"))
	if !ok {
		return fail
	}
	return domain.OK(
		fmt.Sprintf("%s has %d units in stock", product.Name, product.Quantity),
		map[string]any{"product_name": product.Name, "quantity": product.Quantity},
	)
}

func (s *Service) toolGetPrice(ctx context.Context, args map[string]any) domain.ToolResult {
	product, fail, ok := s.resolveProduct(ctx, stringArg(args, "product_name"))
	if !ok {
		return fail
	}
	return domain.OK(
		fmt.Sprintf("%s costs $%.2f", product.Name, product.SellingPrice),
		map[string]any{"product_name": product.Name, "selling_price": product.SellingPrice},
	)
}

func (s *Service) toolListProducts(ctx context.Context) domain.ToolResult {
	products, err := s.store.ListProducts(ctx)
	if err != nil {
		return domain.Fail(domain.ErrKindInternal, "failed to list products: %v", err)
	}
	if len(products) == 0 {
		return domain.OK("No products in inventory", map[string]any{"products": []map[string]any{}})
	}

	list := make([]map[string]any, 0, len(products))
	summaries := make([]string, 0, len(products))
	for _, p := range products {
		list = append(list, map[string]any{"name": p.Name, "quantity": p.Quantity, "price": p.SellingPrice})
		summaries = append(summaries, fmt.Sprintf("%s (%d @ $%.2f)", p.Name, p.Quantity, p.SellingPrice))
	}
	return domain.OK(
		"Products in store: "+strings.Join(summaries, ", "),
		map[string]any{"products": list},
	)
}

func (s *Service) toolAddProduct(ctx context.Context, args map[string]any) domain.ToolResult {
	name := stringArg(args, "name")
	quantity := intArg(args, "quantity", 0)
	purchasePrice := floatArg(args, "purchase_price")
	sellingPrice := floatArg(args, "selling_price")

	if quantity < 0 || purchasePrice < 0 || sellingPrice < 0 {
		return domain.Fail(domain.ErrKindValidation, "Quantity and prices must not be negative")
	}

	existing, err := s.store.GetProductByName(ctx, name)
	if err != nil {
		return domain.Fail(domain.ErrKindInternal, "failed to check existing products: %v", err)
	}
	if existing != nil {
		return domain.Fail(domain.ErrKindDuplicate, "Product '%s' already exists", name)
	}

	product := &domain.Product{
		Name:          name,
		Quantity:      quantity,
		PurchasePrice: purchasePrice,
		SellingPrice:  sellingPrice,
	}
	if err := s.store.CreateProduct(ctx, product); err != nil {
		return domain.Fail(domain.ErrKindInternal, "failed to add product: %v", err)
	}

	return domain.OK(
		fmt.Sprintf("Product '%s' added successfully with %d units at $%.2f", name, quantity, sellingPrice),
		map[string]any{"product_id": product.ID},
	)
}

func (s *Service) toolUpdateStock(ctx context.Context, args map[string]any) domain.ToolResult {
	product, fail, ok := s.resolveProduct(ctx, stringArg(args, "product_name"))
	if !ok {
		return fail
	}

	newQuantity := intArg(args, "new_quantity", -1)
	if newQuantity < 0 {
		return domain.Fail(domain.ErrKindValidation, "New quantity must not be negative")
	}

	oldQuantity := product.Quantity
	if err := s.store.SetProductQuantity(ctx, product.ID, newQuantity); err != nil {
		return domain.Fail(domain.ErrKindInternal, "failed to update stock: %v", err)
	}

	return domain.OK(
		fmt.Sprintf("Updated %s stock from %d to %d units", product.Name, oldQuantity, newQuantity),
		map[string]any{"product_name": product.Name, "quantity": newQuantity},
	)
}

func (s *Service) toolLowStock(ctx context.Context, args map[string]any) domain.ToolResult {
	threshold := intArg(args, "threshold", defaultLowStockThreshold)

	products, err := s.store.ListLowStock(ctx, threshold)
	if err != nil {
		return domain.Fail(domain.ErrKindInternal, "failed to list low stock products: %v", err)
	}
	if len(products) == 0 {
		return domain.OK(
			fmt.Sprintf("No products below %d units", threshold),
			map[string]any{"products": []map[string]any{}},
		)
	}

	list := make([]map[string]any, 0, len(products))
	summaries := make([]string, 0, len(products))
	for _, p := range products {
		list = append(list, map[string]any{"name": p.Name, "quantity": p.Quantity})
		summaries = append(summaries, fmt.Sprintf("%s (%d)", p.Name, p.Quantity))
	}
	return domain.OK(
		"Low stock products: "+strings.Join(summaries, ", "),
		map[string]any{"products": list},
	)
}

// --- REST-facing product operations ---

// ProductInput carries the fields of a product create/update request.
type ProductInput struct {
	Name          string  `json:"name"`
	Quantity      int     `json:"quantity"`
	PurchasePrice float64 `json:"purchase_price"`
	SellingPrice  float64 `json:"selling_price"`
	Category      string  `json:"category"`
	Supplier      string  `json:"supplier"`
}

func (in ProductInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if in.Quantity < 0 {
		return fmt.Errorf("quantity must not be negative")
	}
	if in.PurchasePrice < 0 || in.SellingPrice < 0 {
		return fmt.Errorf("prices must not be negative")
	}
	return nil
}

// ListProducts returns all products.
func (s *Service) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return s.store.ListProducts(ctx)
}

// GetProduct returns one product by id.
func (s *Service) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	return s.store.GetProduct(ctx, id)
}

// CreateProduct creates a product from a REST request.
func (s *Service) CreateProduct(ctx context.Context, in ProductInput) (*domain.Product, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	product := &domain.Product{
		Name:          in.Name,
		Quantity:      in.Quantity,
		PurchasePrice: in.PurchasePrice,
		SellingPrice:  in.SellingPrice,
		Category:      in.Category,
		Supplier:      in.Supplier,
	}
	if err := s.store.CreateProduct(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return product, nil
}

// UpdateProduct rewrites a product from a REST request.
func (s *Service) UpdateProduct(ctx context.Context, id int64, in ProductInput) (*domain.Product, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	product, err := s.store.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, fmt.Errorf("product %d: %w", id, domain.ErrNotFound)
	}

	product.Name = in.Name
	product.Quantity = in.Quantity
	product.PurchasePrice = in.PurchasePrice
	product.SellingPrice = in.SellingPrice
	product.Category = in.Category
	product.Supplier = in.Supplier
	if err := s.store.UpdateProduct(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

// DeleteProduct removes a product.
func (s *Service) DeleteProduct(ctx context.Context, id int64) error {
	return s.store.DeleteProduct(ctx, id)
}
