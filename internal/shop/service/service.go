package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	audit "github.com/abv-ps/shop-api/internal/audit/domain"
	"github.com/abv-ps/shop-api/internal/shop/domain"
)

// Recorder submits an audit event without blocking the caller.
type Recorder interface {
	Record(userID, eventType, metadata string)
}

// Service implements the shop use cases: thin wrappers over the document
// store, each mutating path leaving an audit event behind.
type Service struct {
	repo   domain.Repository
	events Recorder
	log    zerolog.Logger
}

func New(repo domain.Repository, events Recorder) *Service {
	return &Service{repo: repo, events: events, log: zerolog.Nop()}
}

func (s *Service) SetLogger(l zerolog.Logger) { s.log = l }

func (s *Service) CreateProduct(ctx context.Context, p domain.Product, userID string) (domain.Product, error) {
	created, err := s.repo.InsertProduct(ctx, p)
	if err != nil {
		return domain.Product{}, err
	}
	s.events.Record(userID, audit.EventCreateProduct,
		fmt.Sprintf(`{"product_id":%q,"name":%q}`, created.ID, created.Name))
	return created, nil
}

// PlaceOrder decrements stock per item, then inserts the timestamped order.
// Stock updates are not transactional across items; a failing item aborts
// the order with earlier decrements already applied.
func (s *Service) PlaceOrder(ctx context.Context, o domain.Order, userID string) (domain.Order, error) {
	for _, item := range o.Items {
		if err := s.repo.DecrementStock(ctx, item.ProductID, item.Quantity); err != nil {
			return domain.Order{}, err
		}
		s.events.Record(userID, audit.EventUpdateStock,
			fmt.Sprintf(`{"product_id":%q,"quantity_delta":%d}`, item.ProductID, -item.Quantity))
	}

	o.Date = time.Now().UTC()
	created, err := s.repo.InsertOrder(ctx, o)
	if err != nil {
		return domain.Order{}, err
	}
	meta, err := json.Marshal(created)
	if err != nil {
		return domain.Order{}, fmt.Errorf("failed to marshal order: %w", err)
	}
	s.events.Record(userID, audit.EventOrderCreated, string(meta))
	s.log.Info().Str("order_id", created.ID).Str("customer", created.Customer).Msg("order created")
	return created, nil
}

func (s *Service) RecentOrders(ctx context.Context, userID string) ([]domain.Order, error) {
	orders, err := s.repo.RecentOrders(ctx, 100)
	if err != nil {
		return nil, err
	}
	s.events.Record(userID, audit.EventViewOrders, fmt.Sprintf(`{"count":%d}`, len(orders)))
	return orders, nil
}

func (s *Service) DeleteUnavailable(ctx context.Context, userID string) (int64, error) {
	deleted, err := s.repo.DeleteUnavailable(ctx)
	if err != nil {
		return 0, err
	}
	s.events.Record(userID, audit.EventDeleteUnavailable, fmt.Sprintf(`{"deleted_count":%d}`, deleted))
	return deleted, nil
}

func (s *Service) SoldTotal(ctx context.Context, start, end time.Time) (int64, error) {
	return s.repo.SoldTotal(ctx, start, end)
}

func (s *Service) TotalSpentByCustomer(ctx context.Context, customer string) (float64, error) {
	return s.repo.TotalSpentByCustomer(ctx, customer)
}
