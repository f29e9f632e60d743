package validation_test

import (
	"testing"

	"storefront/internal/models"
	"storefront/internal/validation"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func validShipping() models.ShippingInfo {
	return models.ShippingInfo{
		FullName: "Ada Lovelace",
		Email:    "ada@example.com",
		Phone:    "5551234567",
		Address: models.Address{
			Address: "12 Analytical St",
			City:    "London",
			State:   "LDN",
			ZipCode: "10001",
			Country: "UK",
		},
	}
}

func TestShippingInfoValidation(t *testing.T) {
	v := validation.New()

	assert.NoError(t, v.Struct(validShipping()))

	short := validShipping()
	short.Phone = "12345"
	err := v.Struct(short)
	assert.Error(t, err)
	assert.Equal(t, "Phone number must contain at least 10 digits", validation.Errors(err)["Phone"])

	badZip := validShipping()
	badZip.ZipCode = "12ab"
	err = v.Struct(badZip)
	assert.Error(t, err)
	assert.Contains(t, validation.Errors(err), "ZipCode")

	badEmail := validShipping()
	badEmail.Email = "not-an-email"
	err = v.Struct(badEmail)
	assert.Error(t, err)
	assert.Contains(t, validation.Errors(err), "Email")

	blank := validShipping()
	blank.City = ""
	err = v.Struct(blank)
	assert.Error(t, err)
	assert.Equal(t, "City is required", validation.Errors(err)["City"])
}

func TestWhitespaceOnlyFieldsAreBlank(t *testing.T) {
	v := validation.New()

	blank := validShipping()
	blank.FullName = "   "
	blank.Address.Address = "\t"
	blank.City = "  "
	blank.State = " "
	blank.Country = "\n "
	err := v.Struct(blank)
	assert.Error(t, err)
	errs := validation.Errors(err)
	for _, field := range []string{"FullName", "Address", "City", "State", "Country"} {
		assert.Equal(t, field+" is required", errs[field])
	}

	contact := models.ContactRequest{Name: "  ", Email: "ada@example.com", Subject: "   ", Message: "\t"}
	err = v.Struct(contact)
	assert.Error(t, err)
	assert.Len(t, validation.Errors(err), 3)
}

func TestDecimalFieldsUseNumericTags(t *testing.T) {
	v := validation.New()

	product := models.Product{Name: "Keyboard", Price: decimal.NewFromInt(75)}
	assert.NoError(t, v.Struct(product))

	product.Price = decimal.Zero
	err := v.Struct(product)
	assert.Error(t, err)
	assert.Contains(t, validation.Errors(err), "Price")
}
