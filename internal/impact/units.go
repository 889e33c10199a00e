package impact

// Nominal kilogram equivalents for count-based units. Like the rest of the
// package these are reporting heuristics, not measurements.
const (
	kgPerLb      = 0.4536
	kgPerLiter   = 1.0
	kgPerGallon  = 3.785
	kgPerPiece   = 0.25
	kgPerPortion = 0.35
	kgPerServing = 0.35
	kgPerBox     = 5.0
	kgPerBag     = 2.0
)

// ToKilograms normalises a quantity to kilograms so aggregate impact can be
// computed across mixed units. Unknown units are treated as kilograms.
func ToKilograms(amount float64, unit string) float64 {
	if amount <= 0 {
		return 0
	}
	switch unit {
	case "kg":
		return amount
	case "lbs":
		return amount * kgPerLb
	case "liters":
		return amount * kgPerLiter
	case "gallons":
		return amount * kgPerGallon
	case "pieces":
		return amount * kgPerPiece
	case "portions":
		return amount * kgPerPortion
	case "servings":
		return amount * kgPerServing
	case "boxes":
		return amount * kgPerBox
	case "bags":
		return amount * kgPerBag
	default:
		return amount
	}
}
