package catalog

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
)

var decimalEqual = cmp.Comparer(func(a, b decimal.Decimal) bool { return a.Equal(b) })

func shirt() Product {
	return Product{
		ID:          1,
		Title:       "Shirt",
		Description: "Blue shirt",
		Code:        "SH01",
		Price:       decimal.NewFromInt(20),
		Status:      true,
		Stock:       5,
		Category:    "apparel",
		Thumbnails:  []string{"a.jpg"},
	}
}

func mug() Product {
	return Product{
		ID:          2,
		Title:       "Mug",
		Description: "Ceramic mug",
		Code:        "MG01",
		Price:       decimal.RequireFromString("7.5"),
		Status:      true,
		Stock:       12,
		Category:    "kitchen",
		Thumbnails:  []string{"mug.jpg", "mug-side.jpg"},
	}
}

func hat() Product {
	return Product{
		ID:          3,
		Title:       "Hat",
		Description: "Wool hat",
		Code:        "HT01",
		Price:       decimal.RequireFromString("14.99"),
		Status:      true,
		Stock:       3,
		Category:    "apparel",
		Thumbnails:  []string{},
	}
}

func assertProducts(t *testing.T, want, got []Product) {
	t.Helper()
	if diff := cmp.Diff(want, got, decimalEqual); diff != "" {
		t.Fatalf("products mismatch (-want +got):\n%s", diff)
	}
}

func assertProduct(t *testing.T, want, got Product) {
	t.Helper()
	if diff := cmp.Diff(want, got, decimalEqual); diff != "" {
		t.Fatalf("product mismatch (-want +got):\n%s", diff)
	}
}

func ptr[T any](v T) *T { return &v }
