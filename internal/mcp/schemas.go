package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"

	"litshop/internal/validate"
)

// placeOrderTool returns the tool definition for place_order
func placeOrderTool() mcp.Tool {
	return mcp.Tool{
		Name:        "place_order",
		Description: "Place an order for one buyer. Stock is checked and decremented atomically; nothing is stored on failure.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"buyer_id": map[string]interface{}{
					"type":        "string",
					"description": "Id of a registered buyer",
				},
				"items": map[string]interface{}{
					"type":        "array",
					"description": "Books to buy; a book listed twice is checked against the summed quantity",
					"minItems":    1,
					"items": map[string]interface{}{
						"type": "object",
						"properties": map[string]interface{}{
							"book_id": map[string]interface{}{
								"type": "string",
							},
							"quantity": map[string]interface{}{
								"type":    "integer",
								"minimum": 1,
								"maximum": validate.MaxQuantity,
							},
						},
						"required": []string{"book_id", "quantity"},
					},
				},
			},
			Required: []string{"buyer_id", "items"},
		},
	}
}

// getOrderTool returns the tool definition for get_order
func getOrderTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_order",
		Description: "Fetch a committed order with its line items and book titles",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"order_id": map[string]interface{}{
					"type":        "string",
					"description": "Order id returned by place_order",
				},
			},
			Required: []string{"order_id"},
		},
	}
}

// getSalesStatisticsTool returns the tool definition for get_sales_statistics
func getSalesStatisticsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_sales_statistics",
		Description: "Total orders, average order amount and the most/least sold category (ties go to the alphabetically first name)",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}
