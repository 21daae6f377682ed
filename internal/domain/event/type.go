package event

// Type identifies the type of domain event
type Type string

const (
	TypeBillCreated  Type = "bill.created"
	TypeBillReviewed Type = "bill.reviewed"
)

func (t Type) String() string {
	return string(t)
}

// IsValid checks if the event type is one of the defined constants
func (t Type) IsValid() bool {
	switch t {
	case TypeBillCreated, TypeBillReviewed:
		return true
	default:
		return false
	}
}
