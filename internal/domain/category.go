package domain

import "context"

// Category groups books. Categories are read-only through this service.
type Category struct {
	ID   int64
	Name string
}

type CategoryRepository interface {
	List(ctx context.Context) ([]Category, error)
}
