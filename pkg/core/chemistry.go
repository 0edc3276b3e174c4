// Package core provides chemistry calculations for metabolite mass calculations
package core

import (
	"fmt"
	"math"
	"strconv"
	"unicode"
)

// Atomic masses (monoisotopic)
const (
	MassH  = 1.0078250321
	MassC  = 12.0000000000
	MassN  = 14.0030740052
	MassO  = 15.9949146221
	MassS  = 31.9720706900
	MassP  = 30.9737615100
	MassNa = 22.9897692820
	MassK  = 38.9637064864
	MassCl = 34.9688527100

	// Proton mass for charge calculations
	ProtonMass = 1.00727646688
)

// elementMasses maps element symbols to monoisotopic masses
var elementMasses = map[string]float64{
	"H":  MassH,
	"C":  MassC,
	"N":  MassN,
	"O":  MassO,
	"S":  MassS,
	"P":  MassP,
	"Na": MassNa,
	"K":  MassK,
	"Cl": MassCl,
}

// adduct describes an ionization form as a mass shift and charge
type adduct struct {
	Shift  float64
	Charge int
}

// Adducts maps common adduct notations to their mass shift and charge.
var Adducts = map[string]adduct{
	"[M+H]+":   {Shift: ProtonMass, Charge: 1},
	"[M+Na]+":  {Shift: MassNa - (MassH - ProtonMass), Charge: 1},
	"[M+K]+":   {Shift: MassK - (MassH - ProtonMass), Charge: 1},
	"[M+2H]2+": {Shift: 2 * ProtonMass, Charge: 2},
	"[M-H]-":   {Shift: -ProtonMass, Charge: 1},
	"[M+Cl]-":  {Shift: MassCl + (MassH - ProtonMass), Charge: 1},
}

// FormulaMass computes the neutral monoisotopic mass of a sum formula such as
// "C6H12O6". Element counts default to 1 when omitted.
func FormulaMass(formula string) (float64, error) {
	if formula == "" {
		return 0, fmt.Errorf("empty sum formula")
	}

	mass := 0.0
	runes := []rune(formula)
	for i := 0; i < len(runes); {
		if !unicode.IsUpper(runes[i]) {
			return 0, fmt.Errorf("invalid sum formula %q: unexpected character %q", formula, runes[i])
		}

		// Element symbol: one upper-case rune plus trailing lower-case runes
		j := i + 1
		for j < len(runes) && unicode.IsLower(runes[j]) {
			j++
		}
		symbol := string(runes[i:j])

		elemMass, ok := elementMasses[symbol]
		if !ok {
			return 0, fmt.Errorf("invalid sum formula %q: unknown element %q", formula, symbol)
		}

		// Count digits
		k := j
		for k < len(runes) && unicode.IsDigit(runes[k]) {
			k++
		}
		count := 1
		if k > j {
			n, err := strconv.Atoi(string(runes[j:k]))
			if err != nil || n <= 0 {
				return 0, fmt.Errorf("invalid sum formula %q: bad count for %q", formula, symbol)
			}
			count = n
		}

		mass += elemMass * float64(count)
		i = k
	}

	return mass, nil
}

// AdductMZ computes the m/z of a neutral mass ionized as the given adduct.
func AdductMZ(neutralMass float64, adductName string) (float64, error) {
	a, ok := Adducts[adductName]
	if !ok {
		return 0, fmt.Errorf("unknown adduct %q", adductName)
	}
	return (neutralMass + a.Shift) / float64(a.Charge), nil
}

// RoundFloat rounds a float to n decimal places
func RoundFloat(val float64, precision int) float64 {
	ratio := math.Pow(10, float64(precision))
	return math.Round(val*ratio) / ratio
}
