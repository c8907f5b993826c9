package conversion

import "math"

// Calculation methods of the body surface area.
const (
	CategoryBSA  = "BodySurfaceAreaMethod"
	BSADuBois    = "BSA_DuBois"
	BSAMosteller = "BSA_Mosteller"
)

// BSAFormula computes the body surface area in m² from a height in cm and a
// weight in kg.
type BSAFormula func(height, weight float64) float64

// DuBois is the Du Bois and Du Bois body surface area formula.
func DuBois(height, weight float64) float64 {
	return 0.007184 * math.Pow(weight, 0.425) * math.Pow(height, 0.725)
}

// Mosteller is the Mosteller body surface area formula.
func Mosteller(height, weight float64) float64 {
	return math.Sqrt(height * weight / 3600)
}

// FormulaFor returns the formula implementing the named calculation method.
func FormulaFor(method string) (BSAFormula, bool) {
	switch method {
	case BSADuBois:
		return DuBois, true
	case BSAMosteller:
		return Mosteller, true
	default:
		return nil, false
	}
}
