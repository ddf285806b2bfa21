package domain_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ammerola/pharmacy-be/internal/core/domain"
)

func TestAddress_FullAddress(t *testing.T) {
	tests := []struct {
		name    string
		address domain.Address
		want    string
	}{
		{
			name: "all_parts",
			address: domain.Address{
				Province: "Zhejiang", City: "Hangzhou", District: "Xihu",
				Street: "Wensan Rd", DetailAddress: "No. 8", ZipCode: "310000",
			},
			want: "ZhejiangHangzhouXihuWensan RdNo. 8",
		},
		{
			name:    "skips_empty_parts",
			address: domain.Address{Province: "Zhejiang", Street: " Wensan Rd "},
			want:    "ZhejiangWensan Rd",
		},
		{
			name: "empty",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.address.FullAddress())
		})
	}
}

func TestSupplier_Validate(t *testing.T) {
	s := &domain.Supplier{
		Name:   " Acme Pharma ",
		Phones: []domain.SupplierPhone{{Number: "13800000000"}, {Number: "0571-1234", Type: domain.PhoneFax}},
	}
	require.NoError(t, s.Validate())
	assert.Equal(t, "Acme Pharma", s.Name)
	assert.Equal(t, domain.PhoneMobile, s.Phones[0].Type)
	assert.Equal(t, domain.PhoneFax, s.Phones[1].Type)

	bad := &domain.Supplier{Name: "X", Phones: []domain.SupplierPhone{{Number: "1", Type: "pager"}}}
	assert.ErrorIs(t, bad.Validate(), domain.ErrValidation)

	assert.EqualError(t, (&domain.Supplier{}).Validate(), "name is required")
}

func TestCustomer_Validate(t *testing.T) {
	c := &domain.Customer{Name: "City Clinic"}
	require.NoError(t, c.Validate())
	assert.Equal(t, domain.CustomerRetail, c.Type)

	assert.Error(t, (&domain.Customer{Name: "X", Type: "vip"}).Validate())
}

func TestEmployee_Validate(t *testing.T) {
	e := &domain.Employee{Username: "li"}
	require.NoError(t, e.Validate())
	assert.Equal(t, domain.PositionSales, e.Position)

	assert.Error(t, (&domain.Employee{Username: "li", Position: "intern"}).Validate())
	assert.EqualError(t, (&domain.Employee{}).Validate(), "username is required")
}

func TestMedicine_Validate(t *testing.T) {
	m := &domain.Medicine{CommonName: "Amoxicillin", ApprovalNumber: "H20003263", SellPrice: decimal.NewFromInt(12)}
	require.NoError(t, m.Validate())

	assert.EqualError(t, (&domain.Medicine{CommonName: "A"}).Validate(), "approval_number is required")
	assert.EqualError(t, (&domain.Medicine{CommonName: "A", ApprovalNumber: "X", BuyPrice: decimal.NewFromInt(-1)}).Validate(),
		"buy_price cannot be negative")
}
