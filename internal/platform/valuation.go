package platform

// Valuation breaks down the dollar value assigned to one discovery.
// Values sit in a research-grant-equivalent band of $1.2K-$3.5K.
type Valuation struct {
	BaseValue         float64
	ComputationalCost float64
	ResearchImpact    float64
	TotalValue        float64
}

const (
	minDiscoveryValue       = 1200
	maxDiscoveryValue       = 3500
	maxDifficultyMultiplier = 1.5
)

// Base research values per work type.
var baseResearchValues = map[string]float64{
	"riemann_zero":           800,
	"prime_pattern":          600,
	"yang_mills":             1200,
	"navier_stokes":          900,
	"goldbach_verification":  500,
	"birch_swinnerton_dyer":  700,
	"elliptic_curve_crypto":  800,
	"lattice_crypto":         750,
	"poincare_conjecture":    1000,
}

// Research impact factors per work type.
var researchImpactFactors = map[string]float64{
	"riemann_zero":           200,
	"prime_pattern":          150,
	"yang_mills":             300,
	"navier_stokes":          180,
	"goldbach_verification":  100,
	"birch_swinnerton_dyer":  160,
	"elliptic_curve_crypto":  170,
	"lattice_crypto":         140,
	"poincare_conjecture":    250,
}

// Appraise prices one completed piece of work: base value plus
// difficulty-scaled research impact plus computational cost, clamped to the
// realistic band.
func Appraise(result WorkResult) Valuation {
	base, ok := baseResearchValues[result.WorkType]
	if !ok {
		base = 600
	}
	impact, ok := researchImpactFactors[result.WorkType]
	if !ok {
		impact = 150
	}

	multiplier := 1.0 + (float64(result.Difficulty)/1000)*0.5
	if multiplier > maxDifficultyMultiplier {
		multiplier = maxDifficultyMultiplier
	}

	cost := computationalCost(result.ComputationTime, result.EnergyConsumed)

	total := base + impact*multiplier + cost
	if total < minDiscoveryValue {
		total = minDiscoveryValue
	}
	if total > maxDiscoveryValue {
		total = maxDiscoveryValue
	}

	return Valuation{
		BaseValue:         base,
		ComputationalCost: cost,
		ResearchImpact:    impact * multiplier,
		TotalValue:        total,
	}
}

// computationalCost converts compute time and energy to dollars: cloud time
// at $0.10/hour plus energy at $0.15/kWh, scaled and capped at $200.
func computationalCost(seconds, kwh float64) float64 {
	cost := (seconds/3600)*0.10 + kwh*0.15
	cost *= 100
	if cost > 200 {
		cost = 200
	}
	return cost
}
