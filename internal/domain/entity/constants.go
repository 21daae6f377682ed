package entity

// Status constants for Bill
const (
	BillStatusPending  BillStatus = "pending"
	BillStatusAccepted BillStatus = "accepted"
	BillStatusRefused  BillStatus = "refused"
)

// Expense type constants for Bill
const (
	ExpenseTypeTransports    = "Transports"
	ExpenseTypeRestaurants   = "Restaurants et bars"
	ExpenseTypeHotel         = "Hôtel et logement"
	ExpenseTypeOnlineService = "Services en ligne"
	ExpenseTypeIT            = "IT et électronique"
	ExpenseTypeEquipment     = "Equipement et matériel"
	ExpenseTypeOffice        = "Fournitures de bureau"
)

// ExpenseTypes in the order the new bill form offers them
var ExpenseTypes = []string{
	ExpenseTypeTransports,
	ExpenseTypeRestaurants,
	ExpenseTypeHotel,
	ExpenseTypeOnlineService,
	ExpenseTypeIT,
	ExpenseTypeEquipment,
	ExpenseTypeOffice,
}

// DefaultPct is the VAT percentage applied when the form leaves it empty
const DefaultPct = 20
