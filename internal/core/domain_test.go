package core

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestCreateParcelInputValidate(t *testing.T) {
	valid := CreateParcelInput{
		VendorID:      7,
		RecipientName: "Sita Rai",
		Address:       "Baneshwor, Kathmandu",
		CODAmount:     "150.25",
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid input rejected: %v", err)
	}

	cases := []struct {
		name    string
		mutate  func(*CreateParcelInput)
		wantErr error
	}{
		{"missing vendor", func(in *CreateParcelInput) { in.VendorID = 0 }, ErrInvalidVendor},
		{"blank recipient", func(in *CreateParcelInput) { in.RecipientName = "  " }, ErrEmptyRecipient},
		{"blank address", func(in *CreateParcelInput) { in.Address = "" }, ErrEmptyAddress},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := valid
			tc.mutate(&in)
			if err := in.Validate(); !errors.Is(err, tc.wantErr) {
				t.Fatalf("err = %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestPaymentInputValidate(t *testing.T) {
	ok := PaymentInput{VendorID: 1, Amount: decimal.RequireFromString("250")}
	if err := ok.Validate(); err != nil {
		t.Fatalf("valid payment rejected: %v", err)
	}
	if err := (PaymentInput{VendorID: 0, Amount: decimal.NewFromInt(1)}).Validate(); !errors.Is(err, ErrInvalidVendor) {
		t.Fatalf("missing vendor: %v", err)
	}
	if err := (PaymentInput{VendorID: 1, Amount: decimal.Zero}).Validate(); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("zero amount: %v", err)
	}
	if err := (PaymentInput{VendorID: 1, Amount: decimal.NewFromInt(-5)}).Validate(); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("negative amount: %v", err)
	}
}

func TestDaybookInputValidate(t *testing.T) {
	ok := DaybookInput{RiderID: 2, Date: "2026-08-31", TotalKM: decimal.NewFromInt(40)}
	if err := ok.Validate(); err != nil {
		t.Fatalf("valid entry rejected: %v", err)
	}
	if err := (DaybookInput{RiderID: 2, Date: "31/08/2026"}).Validate(); !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("bad date: %v", err)
	}
	if err := (DaybookInput{RiderID: 2, Date: "2026-08-31", FuelCost: decimal.NewFromInt(-1)}).Validate(); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("negative fuel: %v", err)
	}
}

func TestParcelCOD(t *testing.T) {
	p := Parcel{}
	if !p.COD().IsZero() {
		t.Fatalf("null COD = %s, want 0", p.COD())
	}
	p.CODAmount = decimal.NullDecimal{Decimal: decimal.RequireFromString("99.9"), Valid: true}
	if p.COD().String() != "99.9" {
		t.Fatalf("COD = %s", p.COD())
	}
}
