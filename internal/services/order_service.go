package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"litshop/internal/domain"
	"litshop/internal/events"
	applog "litshop/internal/log"
)

const publishTimeout = 2 * time.Second

type OrderService struct {
	Buyers    Buyers
	Planner   *Planner
	Committer *Committer
	Orders    OrderReader
	Events    events.Publisher

	tracer trace.Tracer
}

func NewOrderService(books Catalog, buyers Buyers, ledger Ledger, pub events.Publisher) *OrderService {
	if pub == nil {
		pub = events.NopPublisher{}
	}
	return &OrderService{
		Buyers:    buyers,
		Planner:   NewPlanner(books),
		Committer: NewCommitter(ledger),
		Orders:    ledger,
		Events:    pub,
		tracer:    otel.Tracer("litshop/services"),
	}
}

// Place validates, plans and commits one order. Errors are classified by the
// sentinels in the domain package.
func (s *OrderService) Place(ctx context.Context, req domain.OrderRequest) (domain.Receipt, error) {
	ctx, span := s.tracer.Start(ctx, "order.place")
	defer span.End()

	valid, err := ValidateOrderRequest(req)
	if err != nil {
		return domain.Receipt{}, s.fail(span, "order.place.invalid", req.BuyerID, err)
	}
	req = valid
	span.SetAttributes(
		attribute.String("buyer.id", req.BuyerID),
		attribute.Int("order.items", len(req.Items)),
	)

	ok, err := s.Buyers.Exists(ctx, req.BuyerID)
	if err != nil {
		return domain.Receipt{}, s.fail(span, "order.place.fail", req.BuyerID, storeErr(err))
	}
	if !ok {
		return domain.Receipt{}, s.fail(span, "order.place.invalid", req.BuyerID, domain.Invalid("unknown buyer"))
	}

	plan, err := s.plan(ctx, req.Items)
	if err != nil {
		return domain.Receipt{}, s.fail(span, "order.place.rejected", req.BuyerID, err)
	}

	rc, err := s.commit(ctx, req.BuyerID, plan)
	if err != nil {
		return domain.Receipt{}, s.fail(span, "order.place.rejected", req.BuyerID, err)
	}
	span.SetAttributes(
		attribute.String("order.id", rc.OrderID),
		attribute.Int64("order.total_cents", int64(rc.TotalAmount)),
	)
	span.SetStatus(codes.Ok, "order committed")

	applog.Audit(nil, "order.place", map[string]any{
		"order_id": rc.OrderID,
		"buyer_id": rc.BuyerID,
		"total":    rc.TotalAmount.String(),
		"items":    len(rc.LineItems),
	})
	s.publish(ctx, rc)
	return rc, nil
}

// PlaceWithRetry re-plans from scratch when a commit loses a stock race.
func (s *OrderService) PlaceWithRetry(ctx context.Context, req domain.OrderRequest, opts ...RetryOption) (domain.Receipt, error) {
	var rc domain.Receipt
	err := RetryOnConflict(ctx, func(ctx context.Context) error {
		var err error
		rc, err = s.Place(ctx, req)
		return err
	}, opts...)
	if err != nil {
		return domain.Receipt{}, err
	}
	return rc, nil
}

func (s *OrderService) Get(ctx context.Context, orderID string) (domain.OrderDetail, error) {
	o, err := s.Orders.Get(ctx, orderID)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.OrderDetail{}, domain.ErrOrderNotFound
	}
	if err != nil {
		return domain.OrderDetail{}, storeErr(err)
	}
	return o, nil
}

func (s *OrderService) List(ctx context.Context, limit int) ([]domain.OrderSummary, error) {
	out, err := s.Orders.List(ctx, limit)
	if err != nil {
		return nil, storeErr(err)
	}
	return out, nil
}

func (s *OrderService) plan(ctx context.Context, items []domain.ItemRequest) (domain.Plan, error) {
	ctx, span := s.tracer.Start(ctx, "order.plan")
	defer span.End()
	plan, err := s.Planner.Plan(ctx, items)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "planning failed")
		return domain.Plan{}, err
	}
	span.SetAttributes(attribute.Int64("order.total_cents", int64(plan.Total)))
	return plan, nil
}

func (s *OrderService) commit(ctx context.Context, buyerID string, plan domain.Plan) (domain.Receipt, error) {
	ctx, span := s.tracer.Start(ctx, "order.commit")
	defer span.End()
	rc, err := s.Committer.Commit(ctx, buyerID, plan)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "commit failed")
		return domain.Receipt{}, err
	}
	return rc, nil
}

// publish is best effort: the order is already durable.
func (s *OrderService) publish(ctx context.Context, rc domain.Receipt) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := s.Events.PublishOrderPlaced(ctx, events.FromReceipt(rc)); err != nil {
		applog.Error(nil, "order.event.fail", err, map[string]any{"order_id": rc.OrderID})
	}
}

func (s *OrderService) fail(span trace.Span, action, buyerID string, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, action)

	fields := map[string]any{"buyer_id": buyerID}
	var be *domain.BookError
	if errors.As(err, &be) {
		fields["book_id"] = be.BookID
	}
	switch {
	case errors.Is(err, domain.ErrStoreUnavailable),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		applog.Error(nil, "order.place.fail", err, fields)
	default:
		fields["reason"] = err.Error()
		applog.Info(nil, action, fields)
	}
	return err
}
