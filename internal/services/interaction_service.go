package services

import (
	"strings"
)

// MedicineProfile is the shape handed to the interaction check: a processed
// medicine enriched with catalog data where available.
type MedicineProfile struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	ActiveIngredient string `json:"active_ingredient"`
	Category         string `json:"category"`
}

// InteractionWarning is advisory only; it is surfaced to the reviewer and
// never blocks a status transition.
type InteractionWarning struct {
	Medicine1   string `json:"medicine1"`
	Medicine2   string `json:"medicine2"`
	Severity    string `json:"severity"` // minor, moderate, severe
	Description string `json:"description"`
}

type MedicineInteractionService interface {
	CheckInteractions(medicines []MedicineProfile) []InteractionWarning
}

type interactionRule struct {
	ingredientA string
	ingredientB string
	severity    string
	description string
}

type interactionService struct {
	rules []interactionRule
}

func NewMedicineInteractionService() MedicineInteractionService {
	return &interactionService{rules: defaultInteractionRules}
}

// Pairwise known-ingredient matching. Ingredient comparison falls back to
// the product name when the catalog had no active ingredient on record.
var defaultInteractionRules = []interactionRule{
	{"warfarin", "aspirin", "severe", "Increased bleeding risk when combined"},
	{"warfarin", "ibuprofen", "severe", "NSAIDs potentiate anticoagulant effect"},
	{"aspirin", "ibuprofen", "moderate", "Reduced antiplatelet effect of aspirin"},
	{"lisinopril", "ibuprofen", "moderate", "NSAIDs reduce ACE inhibitor efficacy and strain kidneys"},
	{"metformin", "prednisone", "moderate", "Corticosteroids raise blood glucose"},
	{"simvastatin", "clarithromycin", "severe", "Macrolide raises statin levels, myopathy risk"},
	{"amoxicillin", "methotrexate", "moderate", "Penicillins reduce methotrexate clearance"},
	{"omeprazole", "clopidogrel", "moderate", "PPI reduces clopidogrel activation"},
}

func (s *interactionService) CheckInteractions(medicines []MedicineProfile) []InteractionWarning {
	var warnings []InteractionWarning
	if len(medicines) < 2 {
		return warnings
	}

	for i := 0; i < len(medicines); i++ {
		for j := i + 1; j < len(medicines); j++ {
			a, b := medicines[i], medicines[j]
			for _, rule := range s.rules {
				if rule.matches(a, b) {
					warnings = append(warnings, InteractionWarning{
						Medicine1:   a.Name,
						Medicine2:   b.Name,
						Severity:    rule.severity,
						Description: rule.description,
					})
				}
			}
		}
	}
	return warnings
}

func (r interactionRule) matches(a, b MedicineProfile) bool {
	ia, ib := ingredientOf(a), ingredientOf(b)
	return (strings.Contains(ia, r.ingredientA) && strings.Contains(ib, r.ingredientB)) ||
		(strings.Contains(ia, r.ingredientB) && strings.Contains(ib, r.ingredientA))
}

func ingredientOf(m MedicineProfile) string {
	if m.ActiveIngredient != "" {
		return strings.ToLower(m.ActiveIngredient)
	}
	return strings.ToLower(m.Name)
}
