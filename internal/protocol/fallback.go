package protocol

// Targets known to the fallback catalog.
const (
	TargetBasic       = "Basic"
	TargetRecovery    = "Recovery"
	TargetEndurance   = "Endurance"
	TargetPerformance = "Performance"
)

// FallbackEntry is a generic recommendation served when no stored protocol matches.
type FallbackEntry struct {
	Target string `json:"target"`
	Payload
}

var fallbackCatalog = map[string]FallbackEntry{
	TargetBasic: {
		Target: TargetBasic,
		Payload: Payload{
			RecommendedStack: "Foundation Stack",
			Protocol:         "Multivitamin, Vitamin D3, Omega-3",
			Timing:           "Morning with breakfast",
			Dosage:           "1 multivitamin, 1000 IU Vitamin D3, 500 mg Omega-3 daily",
			NutritionAdvice:  "Eat a balanced diet with fruit and vegetables at every meal and drink water throughout the day.",
		},
	},
	TargetRecovery: {
		Target: TargetRecovery,
		Payload: Payload{
			RecommendedStack: "Recovery Stack",
			Protocol:         "Whey Protein, Magnesium, Tart Cherry Extract",
			Timing:           "Within 30 minutes after training and before bed",
			Dosage:           "15 g whey protein post-training, 200 mg magnesium before bed, 250 mg tart cherry extract",
			NutritionAdvice:  "Combine protein and carbohydrates after training and aim for 9-10 hours of sleep.",
		},
	},
	TargetEndurance: {
		Target: TargetEndurance,
		Payload: Payload{
			RecommendedStack: "Endurance Stack",
			Protocol:         "Electrolytes, Iron-rich Multivitamin, Carbohydrate Drink",
			Timing:           "Before and during training sessions",
			Dosage:           "1 electrolyte serving per hour of training, 1 multivitamin daily, 250 ml carbohydrate drink",
			NutritionAdvice:  "Keep complex carbohydrates in every meal and hydrate before, during and after training.",
		},
	},
	TargetPerformance: {
		Target: TargetPerformance,
		Payload: Payload{
			RecommendedStack: "Performance Stack",
			Protocol:         "Whey Protein, Vitamin D3, Electrolytes",
			Timing:           "Protein after training, Vitamin D3 in the morning, electrolytes during training",
			Dosage:           "20 g whey protein, 1000 IU Vitamin D3, 1 electrolyte serving",
			NutritionAdvice:  "Spread protein across 4 meals a day and eat a carbohydrate-rich snack 2 hours before training.",
		},
	},
}

// Fallback returns the catalog entry for target. Unknown targets get the Basic entry.
func Fallback(target string) FallbackEntry {
	if entry, ok := fallbackCatalog[target]; ok {
		return entry
	}
	return fallbackCatalog[TargetBasic]
}

// IsKnownTarget reports whether target has its own fallback entry.
func IsKnownTarget(target string) bool {
	_, ok := fallbackCatalog[target]
	return ok
}
