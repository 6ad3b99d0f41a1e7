package services

import (
	"context"

	"litshop/internal/domain"
)

// BookSearcher lists catalog rows for browsing.
type BookSearcher interface {
	Search(ctx context.Context, f domain.BookFilter) ([]domain.BookListing, error)
}

type CategoryLister interface {
	List(ctx context.Context) ([]domain.Category, error)
}

// CatalogService is the read-only catalog buyers browse before ordering.
type CatalogService struct {
	Books BookSearcher
	Cats  CategoryLister
}

func NewCatalogService(books BookSearcher, cats CategoryLister) *CatalogService {
	return &CatalogService{Books: books, Cats: cats}
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	cats, err := s.Cats.List(ctx)
	if err != nil {
		return nil, storeErr(err)
	}
	if cats == nil {
		cats = []domain.Category{}
	}
	return cats, nil
}

// ListBooks applies the filter; a non-positive limit falls back to 50.
func (s *CatalogService) ListBooks(ctx context.Context, f domain.BookFilter) ([]domain.BookListing, error) {
	if f.Limit <= 0 {
		f.Limit = 50
	}
	books, err := s.Books.Search(ctx, f)
	if err != nil {
		return nil, storeErr(err)
	}
	return books, nil
}
