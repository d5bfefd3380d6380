package core

import "strings"

// FilterParcels returns the parcels matching term with a
// case-insensitive substring search over vendor name, recipient name,
// recipient phone and delivery address. A blank term matches everything
// and returns the input slice unchanged. Order is preserved and the
// input is never mutated.
func FilterParcels(parcels []Parcel, term string) []Parcel {
	term = strings.TrimSpace(term)
	if term == "" {
		return parcels
	}
	needle := strings.ToLower(term)

	var out []Parcel
	for _, p := range parcels {
		if parcelMatches(p, needle) {
			out = append(out, p)
		}
	}
	return out
}

func parcelMatches(p Parcel, needle string) bool {
	for _, field := range []string{p.VendorName, p.RecipientName, p.RecipientPhone, p.Address} {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}
