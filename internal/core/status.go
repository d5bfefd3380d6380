package core

// BadgeCategory is the visual severity of a parcel status.
type BadgeCategory string

const (
	BadgeSuccess BadgeCategory = "success"
	BadgeWarning BadgeCategory = "warning"
	BadgeDanger  BadgeCategory = "danger"
)

// Badge is a display classification of a status.
type Badge struct {
	Category BadgeCategory
	Label    string
}

// Classify maps a parcel status to its badge. Delivered is success,
// not_delivered is danger, and every other value, known or not, falls
// through to warning so an unrecognized status can never break a report.
func Classify(status string) Badge {
	switch status {
	case StatusDelivered:
		return Badge{Category: BadgeSuccess, Label: "Delivered"}
	case StatusNotDelivered:
		return Badge{Category: BadgeDanger, Label: "Not Delivered"}
	case StatusPending:
		return Badge{Category: BadgeWarning, Label: "Unassigned"}
	case StatusAssigned:
		return Badge{Category: BadgeWarning, Label: "Assigned"}
	default:
		return Badge{Category: BadgeWarning, Label: status}
	}
}
