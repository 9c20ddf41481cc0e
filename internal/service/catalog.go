package service

import "github.com/storekeep/storekeep/internal/domain"

// toolCatalog is the fixed, ordered set of operations the model may
// request. Each schema is the authoritative input validation for the
// dispatcher.
var toolCatalog = []domain.ToolDefinition{
	{
		Name:        domain.ToolCreateBill,
		Description: "Create a new bill/sale with the specified products. Use this when user wants to generate a bill, make a sale, or checkout items.",
		Params: []domain.Param{
			{
				Name: "items", Type: domain.ParamArray, Required: true,
				Description: "List of products to include in the bill",
				Items: []domain.Param{
					{Name: "product_name", Type: domain.ParamString, Required: true, Description: "Name of the product (case insensitive, partial match allowed)"},
					{Name: "quantity", Type: domain.ParamInteger, Required: true, Description: "Quantity to purchase"},
				},
			},
		},
	},
	{
		Name:        domain.ToolCheckStock,
		Description: "Check the current stock/inventory level of a specific product",
		Params: []domain.Param{
			{Name: "product_name", Type: domain.ParamString, Required: true, Description: "Name of the product to check"},
		},
	},
	{
		Name:        domain.ToolGetPrice,
		Description: "Get the selling price of a product",
		Params: []domain.Param{
			{Name: "product_name", Type: domain.ParamString, Required: true, Description: "Name of the product"},
		},
	},
	{
		Name:        domain.ToolListProducts,
		Description: "List all products in the store with their stock and prices",
	},
	{
		Name:        domain.ToolAddProduct,
		Description: "Add a new product to the store inventory. Requires admin or super_admin role.",
		Params: []domain.Param{
			{Name: "name", Type: domain.ParamString, Required: true, Description: "Product name"},
			{Name: "quantity", Type: domain.ParamInteger, Required: true, Description: "Initial stock quantity"},
			{Name: "purchase_price", Type: domain.ParamNumber, Required: true, Description: "Purchase/cost price"},
			{Name: "selling_price", Type: domain.ParamNumber, Required: true, Description: "Selling price"},
		},
	},
	{
		Name:        domain.ToolUpdateStock,
		Description: "Update the stock quantity of a product. Requires admin or super_admin role.",
		Params: []domain.Param{
			{Name: "product_name", Type: domain.ParamString, Required: true, Description: "Name of the product to update"},
			{Name: "new_quantity", Type: domain.ParamInteger, Required: true, Description: "New stock quantity"},
		},
	},
	{
		Name:        domain.ToolDailySales,
		Description: "Get total sales for today or a specific date. Requires admin or super_admin role.",
		Params: []domain.Param{
			{Name: "date", Type: domain.ParamString, Description: "Date in YYYY-MM-DD format. Leave empty for today."},
		},
	},
	{
		Name:        domain.ToolLowStock,
		Description: "Get products with low stock (less than specified threshold)",
		Params: []domain.Param{
			{Name: "threshold", Type: domain.ParamInteger, Description: "Stock threshold (default: 10)"},
		},
	},
	{
		Name:        domain.ToolProfitLossReport,
		Description: "Get profit and loss report for today or a date range. Shows revenue, costs, and profit. Requires admin or super_admin role.",
		Params: []domain.Param{
			{Name: "start_date", Type: domain.ParamString, Description: "Start date in YYYY-MM-DD format. Leave empty for today."},
			{Name: "end_date", Type: domain.ParamString, Description: "End date in YYYY-MM-DD format. Leave empty for today."},
		},
	},
	{
		Name:        domain.ToolGetAllUsers,
		Description: "Get a list of all users in the system. Requires admin or super_admin role.",
	},
	{
		Name:        domain.ToolCreateUser,
		Description: "Create a new user account. Requires super_admin role.",
		Params: []domain.Param{
			{Name: "username", Type: domain.ParamString, Required: true, Description: "Username for the new user"},
			{Name: "password", Type: domain.ParamString, Required: true, Description: "Password for the new user"},
			{Name: "full_name", Type: domain.ParamString, Required: true, Description: "Full name of the user"},
			{Name: "email", Type: domain.ParamString, Required: true, Description: "Email address of the user"},
			{Name: "role", Type: domain.ParamString, Required: true, Description: "Role of the user: user, admin, or super_admin"},
		},
	},
	{
		Name:        domain.ToolDeleteUser,
		Description: "Delete a user account by username. Requires super_admin role.",
		Params: []domain.Param{
			{Name: "username", Type: domain.ParamString, Required: true, Description: "Username of the user to delete"},
		},
	},
}

var toolIndex = func() map[domain.ToolName]domain.ToolDefinition {
	idx := make(map[domain.ToolName]domain.ToolDefinition, len(toolCatalog))
	for _, def := range toolCatalog {
		idx[def.Name] = def
	}
	return idx
}()

// Catalog returns the tool definitions in their fixed order.
func Catalog() []domain.ToolDefinition {
	return toolCatalog
}
