package model

// SnackCategory groups snacks on the menu.
type SnackCategory string

const (
	SnackFood  SnackCategory = "FOOD"
	SnackDrink SnackCategory = "DRINK"
	SnackCombo SnackCategory = "COMBO"
)

// Snack is an immutable menu entry.
type Snack struct {
	ID          uint64        `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Price       Cents         `json:"price_cents"`
	Category    SnackCategory `json:"category"`
	IsAvailable bool          `json:"is_available"`
}
