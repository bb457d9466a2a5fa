package catalog

import (
	"encoding/json"
	"slices"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID          int             `json:"id" validate:"required"`
	Title       string          `json:"title" validate:"required"`
	Description string          `json:"description" validate:"required"`
	Code        string          `json:"code" validate:"required"`
	Price       decimal.Decimal `json:"price" validate:"required"`
	Status      bool            `json:"status" validate:"required"`
	Stock       int             `json:"stock" validate:"required"`
	Category    string          `json:"category" validate:"required"`
	Thumbnails  []string        `json:"thumbnails" validate:"required"`
}

// productJSON mirrors Product field for field with the price as a bare number.
type productJSON struct {
	ID          int         `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Code        string      `json:"code"`
	Price       json.Number `json:"price"`
	Status      bool        `json:"status"`
	Stock       int         `json:"stock"`
	Category    string      `json:"category"`
	Thumbnails  []string    `json:"thumbnails"`
}

// MarshalJSON writes the price as a JSON number. decimal quotes it by default.
func (p Product) MarshalJSON() ([]byte, error) {
	return json.Marshal(productJSON{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Code:        p.Code,
		Price:       PriceNumber(p.Price),
		Status:      p.Status,
		Stock:       p.Stock,
		Category:    p.Category,
		Thumbnails:  p.Thumbnails,
	})
}

// PriceNumber renders d as an unquoted JSON number.
func PriceNumber(d decimal.Decimal) json.Number {
	return json.Number(d.String())
}

func (p Product) clone() Product {
	p.Thumbnails = slices.Clone(p.Thumbnails)
	return p
}

// Patch is a shallow overlay for Product. Nil fields keep the current value.
// The id is not patchable.
type Patch struct {
	Title       *string          `json:"title,omitempty"`
	Description *string          `json:"description,omitempty"`
	Code        *string          `json:"code,omitempty"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	Status      *bool            `json:"status,omitempty"`
	Stock       *int             `json:"stock,omitempty"`
	Category    *string          `json:"category,omitempty"`
	Thumbnails  []string         `json:"thumbnails,omitempty"`
}

func (pt Patch) Apply(p Product) Product {
	out := p.clone()
	if pt.Title != nil {
		out.Title = *pt.Title
	}
	if pt.Description != nil {
		out.Description = *pt.Description
	}
	if pt.Code != nil {
		out.Code = *pt.Code
	}
	if pt.Price != nil {
		out.Price = *pt.Price
	}
	if pt.Status != nil {
		out.Status = *pt.Status
	}
	if pt.Stock != nil {
		out.Stock = *pt.Stock
	}
	if pt.Category != nil {
		out.Category = *pt.Category
	}
	if pt.Thumbnails != nil {
		out.Thumbnails = slices.Clone(pt.Thumbnails)
	}
	return out
}

func cloneAll(ps []Product) []Product {
	out := make([]Product, len(ps))
	for i, p := range ps {
		out[i] = p.clone()
	}
	return out
}
