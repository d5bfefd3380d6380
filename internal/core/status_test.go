package core

import "testing"

func TestClassify(t *testing.T) {
	cases := []struct {
		status string
		want   BadgeCategory
		label  string
	}{
		{StatusDelivered, BadgeSuccess, "Delivered"},
		{StatusNotDelivered, BadgeDanger, "Not Delivered"},
		{StatusPending, BadgeWarning, "Unassigned"},
		{StatusAssigned, BadgeWarning, "Assigned"},
		{"in_transit", BadgeWarning, "in_transit"},
		{"", BadgeWarning, ""},
		{"DELIVERED", BadgeWarning, "DELIVERED"}, // statuses are case-sensitive
	}

	for _, tc := range cases {
		got := Classify(tc.status)
		if got.Category != tc.want {
			t.Fatalf("Classify(%q).Category = %q, want %q", tc.status, got.Category, tc.want)
		}
		if got.Label != tc.label {
			t.Fatalf("Classify(%q).Label = %q, want %q", tc.status, got.Label, tc.label)
		}
	}
}

func TestValidStatus(t *testing.T) {
	for _, s := range []string{StatusPending, StatusAssigned, StatusDelivered, StatusNotDelivered} {
		if !ValidStatus(s) {
			t.Fatalf("ValidStatus(%q) = false", s)
		}
	}
	for _, s := range []string{"", "done", "Delivered"} {
		if ValidStatus(s) {
			t.Fatalf("ValidStatus(%q) = true", s)
		}
	}
}
