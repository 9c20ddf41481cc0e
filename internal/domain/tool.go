package domain

// ToolName identifies one of the assistant's invocable operations. The set
// is closed: the dispatcher switches exhaustively over these values.
type ToolName string

const (
	ToolCreateBill       ToolName = "create_bill"
	ToolCheckStock       ToolName = "check_product_stock"
	ToolGetPrice         ToolName = "get_product_price"
	ToolListProducts     ToolName = "list_all_products"
	ToolAddProduct       ToolName = "add_product"
	ToolUpdateStock      ToolName = "update_product_stock"
	ToolDailySales       ToolName = "get_daily_sales"
	ToolLowStock         ToolName = "get_low_stock_products"
	ToolProfitLossReport ToolName = "get_profit_loss_report"
	ToolGetAllUsers      ToolName = "get_all_users"
	ToolCreateUser       ToolName = "create_user"
	ToolDeleteUser       ToolName = "delete_user"
)

// ParamType is the JSON Schema type of a tool parameter.
type ParamType string

const (
	ParamString  ParamType = "string"
	ParamInteger ParamType = "integer"
	ParamNumber  ParamType = "number"
	ParamArray   ParamType = "array"
)

// Param describes one named parameter of a tool.
type Param struct {
	Name        string
	Type        ParamType
	Description string
	Required    bool
	// Items describes the object fields of array elements, for array params.
	Items []Param
}

// ToolDefinition describes an invocable operation: its name, a description
// shown to the model, and its parameter schema. The schema is the
// authoritative input validation for the dispatcher.
type ToolDefinition struct {
	Name        ToolName
	Description string
	Params      []Param
}

// ToolInvocationRequest is a concrete request to run one tool, produced by
// the model gateway and consumed exactly once by the dispatcher.
type ToolInvocationRequest struct {
	ID        string         `json:"id"`
	Name      ToolName       `json:"name"`
	Arguments map[string]any `json:"arguments"`
}
