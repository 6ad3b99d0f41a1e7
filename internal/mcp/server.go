package mcp

import (
	"context"
	"os"
	"time"

	"github.com/mark3labs/mcp-go/server"

	"litshop/internal/domain"
	"litshop/internal/services"
)

const (
	// ServerName is the MCP server name
	ServerName = "litshop-mcp"
	// ServerVersion is the current server version
	ServerVersion = "1.0.0"
)

// Orders is the slice of the order service the tools call.
type Orders interface {
	PlaceWithRetry(ctx context.Context, req domain.OrderRequest, opts ...services.RetryOption) (domain.Receipt, error)
	Get(ctx context.Context, orderID string) (domain.OrderDetail, error)
}

type Statistics interface {
	Get(ctx context.Context) (domain.Statistics, error)
}

// Server wraps the MCP server with application dependencies
type Server struct {
	mcp    *server.MCPServer
	orders Orders
	stats  Statistics

	orderTimeout  time.Duration
	retryAttempts int
}

// Option tunes a Server.
type Option func(*Server)

// WithOrderTimeout bounds one place_order call, retries included.
func WithOrderTimeout(d time.Duration) Option { return func(s *Server) { s.orderTimeout = d } }

// WithRetryAttempts sets how often a lost stock race is re-planned.
func WithRetryAttempts(n int) Option { return func(s *Server) { s.retryAttempts = n } }

// NewServer creates a new MCP server instance with its tools registered
func NewServer(orders Orders, stats Statistics, opts ...Option) *Server {
	s := &Server{
		mcp:    server.NewMCPServer(ServerName, ServerVersion, server.WithToolCapabilities(false)),
		orders: orders,
		stats:  stats,
	}
	for _, o := range opts {
		o(s)
	}
	s.registerTools()
	return s
}

// Serve runs the server on stdio and blocks until stdin closes or ctx is done
func (s *Server) Serve(ctx context.Context) error {
	stdio := server.NewStdioServer(s.mcp)
	return stdio.Listen(ctx, os.Stdin, os.Stdout)
}

func (s *Server) registerTools() {
	s.mcp.AddTool(placeOrderTool(), s.handlePlaceOrder)
	s.mcp.AddTool(getOrderTool(), s.handleGetOrder)
	s.mcp.AddTool(getSalesStatisticsTool(), s.handleGetSalesStatistics)
}
