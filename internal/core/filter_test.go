package core

import "testing"

func filterFixture() []Parcel {
	return []Parcel{
		{ID: 1, VendorName: "Himal Traders", RecipientName: "Sita Rai", RecipientPhone: "9841000001", Address: "Baneshwor, Kathmandu"},
		{ID: 2, VendorName: "Everest Mart", RecipientName: "Ram Shrestha", RecipientPhone: "9841000002", Address: "Patan, Lalitpur"},
		{ID: 3, VendorName: "Himal Traders", RecipientName: "Gita KC", RecipientPhone: "9860000003", Address: "Pokhara"},
	}
}

func TestFilterParcels(t *testing.T) {
	parcels := filterFixture()

	cases := []struct {
		name string
		term string
		want []int64
	}{
		{"vendor name", "himal", []int64{1, 3}},
		{"recipient name mixed case", "rAm", []int64{2}},
		{"phone fragment", "9860", []int64{3}},
		{"address", "kathmandu", []int64{1}},
		{"substring across fields", "a", []int64{1, 2, 3}},
		{"no match", "biratnagar", nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := FilterParcels(parcels, tc.term)
			if len(got) != len(tc.want) {
				t.Fatalf("got %d parcels, want %d", len(got), len(tc.want))
			}
			for i, id := range tc.want {
				if got[i].ID != id {
					t.Fatalf("result %d = parcel %d, want %d", i, got[i].ID, id)
				}
			}
		})
	}
}

func TestFilterParcelsBlankTerm(t *testing.T) {
	parcels := filterFixture()
	for _, term := range []string{"", "   ", "\t"} {
		got := FilterParcels(parcels, term)
		if len(got) != len(parcels) {
			t.Fatalf("blank term %q filtered to %d parcels", term, len(got))
		}
	}
}
