package cart

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound          = errors.New("cart not found")
	ErrForbidden         = errors.New("cart belongs to another user")
	ErrBadQty            = errors.New("quantity must be positive")
	ErrInsufficientStock = errors.New("not enough stock")
)

type Item struct {
	ProductID int `json:"product_id"`
	Qty       int `json:"qty"`
}

type Cart struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Items     []Item    `json:"items"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Store interface {
	Create(ctx context.Context, c Cart) error
	Get(ctx context.Context, id string) (Cart, error)
	GetByUser(ctx context.Context, userID string) (Cart, error)
	Save(ctx context.Context, c Cart) error
	Ping(ctx context.Context) error
}
