package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storekeep/storekeep/internal/adapter/llm"
	"github.com/storekeep/storekeep/internal/auth"
	"github.com/storekeep/storekeep/internal/domain"
	"github.com/storekeep/storekeep/internal/session"
	"github.com/storekeep/storekeep/internal/store"
	"github.com/storekeep/storekeep/policy"
)

type testEnv struct {
	svc     *Service
	store   *store.SQLiteStore
	gateway *llm.MockGateway
}

func newTestEnv(t *testing.T, opts ...Option) *testEnv {
	t.Helper()

	st, err := store.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	engine, err := policy.NewEngine(context.Background(), policy.DefaultPolicy)
	require.NoError(t, err)

	gateway := llm.NewMockGateway()
	svc := New(st, session.NewRegistry(), gateway, engine, auth.NewTokenManager(time.Hour), opts...)
	return &testEnv{svc: svc, store: st, gateway: gateway}
}

func seedActor(t *testing.T, env *testEnv, username string, role domain.Role) *domain.User {
	t.Helper()
	user, err := env.svc.CreateUser(context.Background(), UserInput{
		Username: username,
		Password: "secret123",
		FullName: "Test " + username,
		Email:    username + "@example.com",
		Role:     role,
	})
	require.NoError(t, err)
	return user
}

func seedStock(t *testing.T, env *testEnv, name string, qty int, purchase, selling float64) *domain.Product {
	t.Helper()
	product, err := env.svc.CreateProduct(context.Background(), ProductInput{
		Name: name, Quantity: qty, PurchasePrice: purchase, SellingPrice: selling,
	})
	require.NoError(t, err)
	return product
}

func TestExecuteToolUnknown(t *testing.T) {
	env := newTestEnv(t)
	actor := seedActor(t, env, "alice", domain.RoleUser)

	result := env.svc.ExecuteTool(context.Background(), "explode", nil, actor)
	assert.False(t, result.Success)
	assert.Equal(t, domain.ErrKindUnknownTool, result.Kind)
	assert.Equal(t, "Unknown tool: explode", result.Error)
}

func TestExecuteToolValidation(t *testing.T) {
	env := newTestEnv(t)
	actor := seedActor(t, env, "alice", domain.RoleUser)
	ctx := context.Background()

	t.Run("missing required field", func(t *testing.T) {
		result := env.svc.ExecuteTool(ctx, domain.ToolCheckStock, map[string]any{}, actor)
		assert.False(t, result.Success)
		assert.Equal(t, domain.ErrKindValidation, result.Kind)
		assert.Equal(t, "Missing required field: product_name", result.Error)
	})

	t.Run("wrong type", func(t *testing.T) {
		result := env.svc.ExecuteTool(ctx, domain.ToolCheckStock, map[string]any{"product_name": 42}, actor)
		assert.False(t, result.Success)
		assert.Equal(t, domain.ErrKindValidation, result.Kind)
	})

	t.Run("fractional integer", func(t *testing.T) {
		result := env.svc.ExecuteTool(ctx, domain.ToolUpdateStock,
			map[string]any{"product_name": "x", "new_quantity": 2.5}, actor)
		assert.False(t, result.Success)
		assert.Equal(t, domain.ErrKindValidation, result.Kind)
	})

	t.Run("empty items array", func(t *testing.T) {
		result := env.svc.ExecuteTool(ctx, domain.ToolCreateBill, map[string]any{"items": []any{}}, actor)
		assert.False(t, result.Success)
		assert.Equal(t, domain.ErrKindValidation, result.Kind)
	})

	t.Run("item missing quantity", func(t *testing.T) {
		result := env.svc.ExecuteTool(ctx, domain.ToolCreateBill,
			map[string]any{"items": []any{map[string]any{"product_name": "Coke"}}}, actor)
		assert.False(t, result.Success)
		assert.Equal(t, domain.ErrKindValidation, result.Kind)
	})
}

func TestExecuteToolAuthorization(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	seedStock(t, env, "Coke", 10, 0.8, 1.5)

	user := seedActor(t, env, "plain", domain.RoleUser)
	admin := seedActor(t, env, "boss", domain.RoleAdmin)
	super := seedActor(t, env, "root", domain.RoleSuperAdmin)

	t.Run("user blocked from admin tool", func(t *testing.T) {
		result := env.svc.ExecuteTool(ctx, domain.ToolDailySales, map[string]any{}, user)
		assert.False(t, result.Success)
		assert.Equal(t, domain.ErrKindAuthorization, result.Kind)
		assert.Equal(t, "You don't have permission to use get_daily_sales. Admin access required.", result.Error)
	})

	t.Run("admin blocked from super admin tool", func(t *testing.T) {
		result := env.svc.ExecuteTool(ctx, domain.ToolDeleteUser, map[string]any{"username": "plain"}, admin)
		assert.False(t, result.Success)
		assert.Equal(t, domain.ErrKindAuthorization, result.Kind)
		assert.Equal(t, "You don't have permission to use delete_user. Super Admin access required.", result.Error)
	})

	t.Run("admin allowed admin tool", func(t *testing.T) {
		result := env.svc.ExecuteTool(ctx, domain.ToolDailySales, map[string]any{}, admin)
		assert.True(t, result.Success)
	})

	t.Run("user allowed user tool", func(t *testing.T) {
		result := env.svc.ExecuteTool(ctx, domain.ToolCheckStock, map[string]any{"product_name": "Coke"}, user)
		assert.True(t, result.Success)
	})

	t.Run("super admin allowed everything", func(t *testing.T) {
		result := env.svc.ExecuteTool(ctx, domain.ToolGetAllUsers, map[string]any{}, super)
		assert.True(t, result.Success)
	})
}

func TestExecuteToolProducts(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := seedActor(t, env, "boss", domain.RoleAdmin)
	seedStock(t, env, "Coca Cola", 50, 0.8, 1.5)
	seedStock(t, env, "Bread", 5, 1.0, 2.0)

	t.Run("check stock with fuzzy name", func(t *testing.T) {
		result := env.svc.ExecuteTool(ctx, domain.ToolCheckStock, map[string]any{"product_name": "coca"}, admin)
		assert.True(t, result.Success)
		assert.Equal(t, "Coca Cola has 50 units in stock", result.Message)
		assert.Equal(t, 50, result.Data["quantity"])
	})

	t.Run("get price", func(t *testing.T) {
		result := env.svc.ExecuteTool(ctx, domain.ToolGetPrice, map[string]any{"product_name": "bread"}, admin)
		assert.True(t, result.Success)
		assert.Equal(t, "Bread costs $2.00", result.Message)
	})

	t.Run("unknown product", func(t *testing.T) {
		result := env.svc.ExecuteTool(ctx, domain.ToolCheckStock, map[string]any{"product_name": "milk"}, admin)
		assert.False(t, result.Success)
		assert.Equal(t, domain.ErrKindNotFound, result.Kind)
		assert.Equal(t, "Product 'milk' not found", result.Error)
	})

	t.Run("list products", func(t *testing.T) {
		result := env.svc.ExecuteTool(ctx, domain.ToolListProducts, map[string]any{}, admin)
		assert.True(t, result.Success)
		assert.Contains(t, result.Message, "Coca Cola (50 @ $1.50)")
	})

	t.Run("add product", func(t *testing.T) {
		result := env.svc.ExecuteTool(ctx, domain.ToolAddProduct, map[string]any{
			"name": "Milk", "quantity": 30, "purchase_price": 0.6, "selling_price": 1.2,
		}, admin)
		assert.True(t, result.Success)
		assert.Equal(t, "Product 'Milk' added successfully with 30 units at $1.20", result.Message)
	})

	t.Run("add duplicate product", func(t *testing.T) {
		result := env.svc.ExecuteTool(ctx, domain.ToolAddProduct, map[string]any{
			"name": "milk", "quantity": 1, "purchase_price": 0.6, "selling_price": 1.2,
		}, admin)
		assert.False(t, result.Success)
		assert.Equal(t, domain.ErrKindDuplicate, result.Kind)
		assert.Equal(t, "Product 'milk' already exists", result.Error)
	})

	t.Run("update stock", func(t *testing.T) {
		result := env.svc.ExecuteTool(ctx, domain.ToolUpdateStock, map[string]any{
			"product_name": "bread", "new_quantity": 40,
		}, admin)
		assert.True(t, result.Success)
		assert.Equal(t, "Updated Bread stock from 5 to 40 units", result.Message)
	})

	t.Run("low stock with default threshold", func(t *testing.T) {
		result := env.svc.ExecuteTool(ctx, domain.ToolLowStock, map[string]any{}, admin)
		assert.True(t, result.Success)
		assert.Equal(t, "No products below 10 units", result.Message)
	})

	t.Run("low stock with threshold", func(t *testing.T) {
		result := env.svc.ExecuteTool(ctx, domain.ToolLowStock, map[string]any{"threshold": 35}, admin)
		assert.True(t, result.Success)
		assert.Contains(t, result.Message, "Milk (30)")
	})
}

func TestExecuteToolCreateBill(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	cashier := seedActor(t, env, "cashier", domain.RoleUser)
	seedStock(t, env, "Coca Cola", 50, 0.8, 1.5)
	seedStock(t, env, "Bread", 2, 1.0, 2.0)

	t.Run("success", func(t *testing.T) {
		result := env.svc.ExecuteTool(ctx, domain.ToolCreateBill, map[string]any{
			"items": []any{
				map[string]any{"product_name": "coca", "quantity": 3},
				map[string]any{"product_name": "Bread", "quantity": 1},
			},
		}, cashier)
		assert.True(t, result.Success)
		assert.Contains(t, result.Message, "created successfully! Total: $6.50")
		assert.Equal(t, []string{"3x Coca Cola @ $1.50", "1x Bread @ $2.00"}, result.Data["items"])
	})

	t.Run("insufficient stock", func(t *testing.T) {
		result := env.svc.ExecuteTool(ctx, domain.ToolCreateBill, map[string]any{
			"items": []any{map[string]any{"product_name": "Bread", "quantity": 5}},
		}, cashier)
		assert.False(t, result.Success)
		assert.Equal(t, domain.ErrKindInsufficientStock, result.Kind)
		assert.Equal(t, "insufficient stock for Bread. Available: 1", result.Error)
	})

	t.Run("unknown product", func(t *testing.T) {
		result := env.svc.ExecuteTool(ctx, domain.ToolCreateBill, map[string]any{
			"items": []any{map[string]any{"product_name": "milk", "quantity": 1}},
		}, cashier)
		assert.False(t, result.Success)
		assert.Equal(t, domain.ErrKindNotFound, result.Kind)
	})
}

func TestExecuteToolReports(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := seedActor(t, env, "boss", domain.RoleAdmin)
	seedStock(t, env, "Widget", 100, 1.0, 2.5)

	sale := env.svc.ExecuteTool(ctx, domain.ToolCreateBill, map[string]any{
		"items": []any{map[string]any{"product_name": "Widget", "quantity": 4}},
	}, admin)
	require.True(t, sale.Success)

	today := time.Now().Format("2006-01-02")

	t.Run("daily sales defaults to today", func(t *testing.T) {
		result := env.svc.ExecuteTool(ctx, domain.ToolDailySales, map[string]any{}, admin)
		assert.True(t, result.Success)
		assert.Equal(t, "Sales for "+today+": 1 bills totaling $10.00", result.Message)
		assert.Equal(t, 1, result.Data["total_bills"])
		assert.Equal(t, 10.0, result.Data["total_sales"])
	})

	t.Run("daily sales rejects bad date", func(t *testing.T) {
		result := env.svc.ExecuteTool(ctx, domain.ToolDailySales, map[string]any{"date": "yesterday"}, admin)
		assert.False(t, result.Success)
		assert.Equal(t, domain.ErrKindValidation, result.Kind)
	})

	t.Run("profit loss", func(t *testing.T) {
		result := env.svc.ExecuteTool(ctx, domain.ToolProfitLossReport, map[string]any{}, admin)
		assert.True(t, result.Success)
		assert.Contains(t, result.Message, "Revenue $10.00, Cost $4.00, Profit $6.00 (60.0% margin)")
		assert.Equal(t, 10.0, result.Data["total_revenue"])
		assert.Equal(t, 4.0, result.Data["total_cost"])
		assert.Equal(t, 6.0, result.Data["profit"])
		assert.Equal(t, 60.0, result.Data["profit_margin"])
		assert.Equal(t, 1, result.Data["total_bills"])
	})

	t.Run("profit loss with empty range", func(t *testing.T) {
		result := env.svc.ExecuteTool(ctx, domain.ToolProfitLossReport, map[string]any{
			"start_date": "2000-01-01", "end_date": "2000-01-31",
		}, admin)
		assert.True(t, result.Success)
		assert.Contains(t, result.Message, "(0.0% margin)")
	})

	t.Run("profit loss rejects inverted range", func(t *testing.T) {
		result := env.svc.ExecuteTool(ctx, domain.ToolProfitLossReport, map[string]any{
			"start_date": "2024-02-01", "end_date": "2024-01-01",
		}, admin)
		assert.False(t, result.Success)
		assert.Equal(t, domain.ErrKindValidation, result.Kind)
	})
}

func TestExecuteToolUsers(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	super := seedActor(t, env, "root", domain.RoleSuperAdmin)

	t.Run("create user", func(t *testing.T) {
		result := env.svc.ExecuteTool(ctx, domain.ToolCreateUser, map[string]any{
			"username": "clerk", "password": "secret123", "full_name": "Clerk One",
			"email": "clerk@example.com", "role": "user",
		}, super)
		assert.True(t, result.Success)
		assert.Equal(t, "User 'clerk' created successfully as user", result.Message)
	})

	t.Run("create duplicate user", func(t *testing.T) {
		result := env.svc.ExecuteTool(ctx, domain.ToolCreateUser, map[string]any{
			"username": "clerk", "password": "secret123", "full_name": "Clerk Two",
			"email": "clerk2@example.com", "role": "user",
		}, super)
		assert.False(t, result.Success)
		assert.Equal(t, domain.ErrKindDuplicate, result.Kind)
	})

	t.Run("create user with empty email", func(t *testing.T) {
		result := env.svc.ExecuteTool(ctx, domain.ToolCreateUser, map[string]any{
			"username": "mailless", "password": "secret123", "full_name": "No Mail",
			"email": "", "role": "user",
		}, super)
		assert.False(t, result.Success)
		assert.Equal(t, domain.ErrKindValidation, result.Kind)
		assert.Equal(t, "email is required", result.Error)
	})

	t.Run("create user with bad role", func(t *testing.T) {
		result := env.svc.ExecuteTool(ctx, domain.ToolCreateUser, map[string]any{
			"username": "x", "password": "secret123", "full_name": "X",
			"email": "x@example.com", "role": "owner",
		}, super)
		assert.False(t, result.Success)
		assert.Equal(t, domain.ErrKindValidation, result.Kind)
	})

	t.Run("list users", func(t *testing.T) {
		result := env.svc.ExecuteTool(ctx, domain.ToolGetAllUsers, map[string]any{}, super)
		assert.True(t, result.Success)
		assert.Equal(t, 2, result.Data["total_count"])
		assert.Equal(t, 2, result.Data["active_count"])
	})

	t.Run("delete unknown user", func(t *testing.T) {
		result := env.svc.ExecuteTool(ctx, domain.ToolDeleteUser, map[string]any{"username": "ghost"}, super)
		assert.False(t, result.Success)
		assert.Equal(t, "User 'ghost' not found", result.Error)
	})

	t.Run("self delete rejected", func(t *testing.T) {
		result := env.svc.ExecuteTool(ctx, domain.ToolDeleteUser, map[string]any{"username": "root"}, super)
		assert.False(t, result.Success)
		assert.Equal(t, "You cannot delete your own account", result.Error)
	})

	t.Run("delete user", func(t *testing.T) {
		result := env.svc.ExecuteTool(ctx, domain.ToolDeleteUser, map[string]any{"username": "clerk"}, super)
		assert.True(t, result.Success)
		assert.Equal(t, "User 'clerk' deleted successfully", result.Message)
	})
}
