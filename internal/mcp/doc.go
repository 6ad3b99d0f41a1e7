// Package mcp exposes the order path and sales statistics as Model Context
// Protocol tools over stdio.
//
// Tools:
//   - place_order: place an order for a buyer (same rules as POST /api/v1/orders)
//   - get_order: fetch a committed order with its line items
//   - get_sales_statistics: order totals and best/worst selling category
//
// Tool failures are returned as results with isError set. Their text is a JSON
// object {"code", "message", "data"} carrying one of these codes:
//   - -32602: invalid params (missing/malformed arguments, unknown buyer)
//   - -32603: internal error (store unavailable, timeouts)
//   - -32001: book not found
//   - -32002: insufficient stock or stock conflict
//   - -32003: order not found
//
// The server logs to stderr; stdout carries the protocol.
package mcp
