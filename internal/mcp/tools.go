package mcp

import (
	"context"
	"errors"
	"fmt"
	"math"

	jsoniter "github.com/json-iterator/go"
	"github.com/mark3labs/mcp-go/mcp"

	"litshop/internal/domain"
	applog "litshop/internal/log"
	"litshop/internal/services"
)

// MCP error codes
const (
	ErrorCodeInvalidParams     = -32602 // Invalid method parameters
	ErrorCodeInternalError     = -32603 // Internal JSON-RPC error
	ErrorCodeBookNotFound      = -32001 // A requested book does not exist
	ErrorCodeInsufficientStock = -32002 // Not enough stock, or stock moved during commit
	ErrorCodeOrderNotFound     = -32003 // No order with that id
)

// handlePlaceOrder handles the place_order tool invocation
func (s *Server) handlePlaceOrder(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return errorResult(newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil))
	}

	buyerID, ok := args["buyer_id"].(string)
	if !ok || buyerID == "" {
		return errorResult(newMCPError(ErrorCodeInvalidParams, "buyer_id parameter is required", map[string]interface{}{
			"param":  "buyer_id",
			"reason": "missing or empty",
		}))
	}
	items, err := parseItems(args["items"])
	if err != nil {
		return errorResult(newMCPError(ErrorCodeInvalidParams, "invalid items", map[string]interface{}{
			"param":  "items",
			"reason": err.Error(),
		}))
	}

	if s.orderTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.orderTimeout)
		defer cancel()
	}
	var opts []services.RetryOption
	if s.retryAttempts > 0 {
		opts = append(opts, services.WithMaxAttempts(s.retryAttempts))
	}

	rc, err := s.orders.PlaceWithRetry(ctx, domain.OrderRequest{BuyerID: buyerID, Items: items}, opts...)
	if err != nil {
		return errorResult(toolError("place_order", err))
	}
	return jsonResult(rc)
}

// handleGetOrder handles the get_order tool invocation
func (s *Server) handleGetOrder(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return errorResult(newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil))
	}
	orderID, ok := args["order_id"].(string)
	if !ok || orderID == "" {
		return errorResult(newMCPError(ErrorCodeInvalidParams, "order_id parameter is required", map[string]interface{}{
			"param":  "order_id",
			"reason": "missing or empty",
		}))
	}

	o, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return errorResult(toolError("get_order", err))
	}
	return jsonResult(o)
}

// handleGetSalesStatistics handles the get_sales_statistics tool invocation
func (s *Server) handleGetSalesStatistics(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	st, err := s.stats.Get(ctx)
	if err != nil {
		return errorResult(toolError("get_sales_statistics", err))
	}
	return jsonResult(st)
}

// Helper functions

func parseItems(raw interface{}) ([]domain.ItemRequest, error) {
	list, ok := raw.([]interface{})
	if !ok || len(list) == 0 {
		return nil, errors.New("items must be a non-empty array")
	}
	out := make([]domain.ItemRequest, 0, len(list))
	for i, entry := range list {
		m, ok := entry.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("items[%d] must be an object", i)
		}
		bookID, _ := m["book_id"].(string)
		qty, ok := integer(m["quantity"])
		if !ok {
			return nil, fmt.Errorf("items[%d].quantity must be an integer", i)
		}
		out = append(out, domain.ItemRequest{BookID: bookID, Quantity: qty})
	}
	return out, nil
}

// integer accepts JSON numbers without a fractional part.
func integer(v interface{}) (int, bool) {
	switch n := v.(type) {
	case float64:
		if n != math.Trunc(n) || math.Abs(n) > math.MaxInt32 {
			return 0, false
		}
		return int(n), true
	case int:
		return n, true
	case int64:
		return int(n), true
	default:
		return 0, false
	}
}

// toolError maps a service failure to an MCP error. Store failures are
// logged here and reported without their cause.
func toolError(tool string, err error) *MCPError {
	var (
		be                   *domain.BookError
		bookID               string
		available, requested int
	)
	if errors.As(err, &be) {
		bookID, available, requested = be.BookID, be.Stock, be.Requested
	}
	switch {
	case errors.Is(err, domain.ErrInvalidRequest):
		return newMCPError(ErrorCodeInvalidParams, err.Error(), nil)
	case errors.Is(err, domain.ErrBookNotFound):
		return newMCPError(ErrorCodeBookNotFound, err.Error(), map[string]interface{}{"book_id": bookID})
	case errors.Is(err, domain.ErrInsufficientStock):
		return newMCPError(ErrorCodeInsufficientStock, err.Error(), map[string]interface{}{
			"book_id":   bookID,
			"available": available,
			"requested": requested,
		})
	case errors.Is(err, domain.ErrStockConflict):
		return newMCPError(ErrorCodeInsufficientStock, "stock changed while the order was being placed", map[string]interface{}{
			"book_id":   bookID,
			"retryable": true,
		})
	case errors.Is(err, domain.ErrOrderNotFound):
		return newMCPError(ErrorCodeOrderNotFound, "order not found", nil)
	default:
		applog.Error(nil, "mcp.tool.fail", err, map[string]any{"tool": tool})
		return newMCPError(ErrorCodeInternalError, "store temporarily unavailable", map[string]interface{}{"retryable": true})
	}
}

// newMCPError creates a properly formatted MCP error
func newMCPError(code int, message string, data interface{}) *MCPError {
	return &MCPError{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// MCPError is the body of a failed tool result. The server turns any Go
// error returned by a handler into a bare internal error, so tool failures
// travel as results with isError set and this struct as their text.
type MCPError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// errorResult renders e as a tool result flagged with isError.
func errorResult(e *MCPError) (*mcp.CallToolResult, error) {
	b, err := jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(e)
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultError(string(b)), nil
}

// jsonResult renders v as indented JSON text content.
func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	b, err := jsoniter.ConfigCompatibleWithStandardLibrary.MarshalIndent(v, "", "  ")
	if err != nil {
		return errorResult(newMCPError(ErrorCodeInternalError, "failed to encode result", nil))
	}
	return mcp.NewToolResultText(string(b)), nil
}
