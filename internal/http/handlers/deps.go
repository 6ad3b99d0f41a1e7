package handlers

import (
	"github.com/jmoiron/sqlx"

	"litshop/internal/config"
	"litshop/internal/events"
	"litshop/internal/repos"
	"litshop/internal/services"
)

type Deps struct {
	DB                *sqlx.DB
	OrderHandler      *OrderHandler
	StatisticsHandler *StatisticsHandler
	CatalogHandler    *CatalogHandler
	InventoryHandler  *InventoryHandler
}

func NewDeps(db *sqlx.DB, cfg config.Config, pub events.Publisher) *Deps {
	bookRepo := repos.NewBookRepo(db)
	buyerRepo := repos.NewBuyerRepo(db)
	orderRepo := repos.NewOrderRepo(db)
	catRepo := repos.NewCategoryRepo(db)

	orderSvc := services.NewOrderService(bookRepo, buyerRepo, orderRepo, pub)
	statsSvc := services.NewStatisticsService(orderRepo)

	return &Deps{
		DB: db,
		OrderHandler: &OrderHandler{
			Orders:        orderSvc,
			Timeout:       cfg.OrderTimeout,
			RetryAttempts: cfg.OrderRetryAttempts,
		},
		StatisticsHandler: &StatisticsHandler{Stats: statsSvc, Categories: catRepo},
		CatalogHandler:    &CatalogHandler{Catalog: services.NewCatalogService(bookRepo, catRepo)},
		InventoryHandler:  &InventoryHandler{Inv: services.NewInventoryService(bookRepo)},
	}
}
