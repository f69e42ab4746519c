package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEntryRequest struct {
	ProductID string   `json:"productId" validate:"required,productid"`
	StoreName string   `json:"storeName" validate:"omitempty,freetext"`
	Price     *float64 `json:"price" validate:"required,gte=0"`
	Date      string   `json:"date" validate:"required,datetime=2006-01-02"`
}

func decode(t *testing.T, body map[string]interface{}) error {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest("POST", "/test", bytes.NewReader(raw))
	var dst testEntryRequest
	return DecodeAndValidate(req, &dst)
}

// Missing required fields are always rejected
func TestProperty_RequiredFieldValidationWorks(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("missing required fields are rejected", prop.ForAll(
		func(withProduct, withPrice, withDate bool) bool {
			body := map[string]interface{}{}
			if withProduct {
				body["productId"] = "ABC123"
			}
			if withPrice {
				body["price"] = 1.5
			}
			if withDate {
				body["date"] = "2024-06-10"
			}

			err := decode(t, body)
			if withProduct && withPrice && withDate {
				return err == nil
			}
			return err != nil
		},
		gen.Bool(),
		gen.Bool(),
		gen.Bool(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

// Product identifiers matching ^[A-Z0-9]{1,20}$ are accepted
func TestProperty_ValidProductIDsPass(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("valid product ids pass", prop.ForAll(
		func(productID string) bool {
			return ValidateVar("productId", productID, "productid") == nil
		},
		gen.RegexMatch(`^[A-Z0-9]{1,20}$`),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestValidateVar(t *testing.T) {
	tests := []struct {
		name  string
		value string
		tag   string
		valid bool
	}{
		{"product id", "ABC123", "productid", true},
		{"lowercase product id", "abc123", "productid", false},
		{"product id too long", strings.Repeat("A", 21), "productid", false},
		{"product id with dash", "AB-1", "productid", false},
		{"empty product id", "", "productid", false},
		{"free text with spaces", "Central Market 2", "freetext", true},
		{"free text with punctuation", "Smith's", "freetext", false},
		{"free text too long", strings.Repeat("a", 101), "freetext", false},
		{"boolean", "true", "boolean", true},
		{"not a boolean", "yes", "boolean", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateVar("field", tt.value, tt.tag)
			if tt.valid {
				assert.NoError(t, err)
				return
			}

			var fieldErr *FieldError
			require.True(t, errors.As(err, &fieldErr))
			assert.Equal(t, "field", fieldErr.Field)
			assert.Equal(t, tt.tag, fieldErr.Tag)
		})
	}
}

func TestFormatValidationErrors_UsesJSONNames(t *testing.T) {
	err := decode(t, map[string]interface{}{
		"productId": "bad id",
		"storeName": "Smith's",
		"price":     -1,
		"date":      "10/06/2024",
	})
	require.Error(t, err)

	formatted := FormatValidationErrors(err)
	fields := map[string]string{}
	for _, ve := range formatted {
		fields[ve.Field] = ve.Message
	}

	assert.Len(t, fields, 4)
	assert.Equal(t, "Must be 1 to 20 uppercase letters or digits", fields["productId"])
	assert.Contains(t, fields, "storeName")
	assert.Equal(t, "Value must be greater than or equal to 0", fields["price"])
	assert.Equal(t, "Must be a date formatted as 2006-01-02", fields["date"])
}

func TestFormatValidationErrors_FieldError(t *testing.T) {
	formatted := FormatValidationErrors(ValidateVar("newDiscounts", "maybe", "boolean"))

	require.Len(t, formatted, 1)
	assert.Equal(t, "newDiscounts", formatted[0].Field)
	assert.Equal(t, "Must be true or false", formatted[0].Message)
}
