package validator_test

import (
	"testing"

	"catalog/internal/models"
	"catalog/pkg/validator"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func TestValidateStruct_ValidProduct(t *testing.T) {
	p := models.Product{Name: "Pen", Price: decimal.RequireFromString("1.50"), Quantity: intPtr(0)}
	assert.Empty(t, validator.ValidateStruct(&p))
}

func TestValidateStruct_ProductFailures(t *testing.T) {
	tests := []struct {
		name    string
		product models.Product
		field   string
		tag     string
	}{
		{"missing name", models.Product{Price: decimal.NewFromInt(1), Quantity: intPtr(1)}, "name", "required"},
		{"blank name", models.Product{Name: "   ", Price: decimal.NewFromInt(1), Quantity: intPtr(1)}, "name", "notblank"},
		{"missing price", models.Product{Name: "Pen", Quantity: intPtr(1)}, "price", "required"},
		{"negative price", models.Product{Name: "Pen", Price: decimal.NewFromInt(-3), Quantity: intPtr(1)}, "price", "gt"},
		{"missing quantity", models.Product{Name: "Pen", Price: decimal.NewFromInt(1)}, "quantity", "required"},
		{"negative quantity", models.Product{Name: "Pen", Price: decimal.NewFromInt(1), Quantity: intPtr(-1)}, "quantity", "gte"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := validator.ValidateStruct(&tt.product)
			require.Len(t, errs, 1)
			assert.Equal(t, tt.field, errs[0].FailedField)
			assert.Equal(t, tt.tag, errs[0].Tag)
		})
	}
}

func TestMessages(t *testing.T) {
	p := models.Product{Name: "", Price: decimal.NewFromInt(-1)}
	msgs := validator.Messages(validator.ValidateStruct(&p))

	assert.Equal(t, "name is required", msgs["name"])
	assert.Equal(t, "price must be positive", msgs["price"])
	assert.Equal(t, "quantity is required", msgs["quantity"])
}

func TestValidateStruct_Money(t *testing.T) {
	tests := []struct {
		price string
		valid bool
	}{
		{"0.01", true},
		{"1.5", true},
		{"1.50", true},
		{"99999999.99", true},
		{"0.001", false},
		{"1.555", false},
		{"1.000000000000000001", false},
		{"100000000", false},
		{"1e8", false},
	}

	for _, tt := range tests {
		t.Run(tt.price, func(t *testing.T) {
			p := models.Product{Name: "Pen", Price: decimal.RequireFromString(tt.price), Quantity: intPtr(1)}
			errs := validator.ValidateStruct(&p)
			if tt.valid {
				assert.Empty(t, errs)
				return
			}
			require.Len(t, errs, 1)
			assert.Equal(t, "price", errs[0].FailedField)
			assert.Equal(t, "money", errs[0].Tag)
			assert.Equal(t, "price must have at most 2 decimal places and be less than 100000000", errs[0].Message())
		})
	}
}
