package leads

import "strings"

// Score calculates a lead score from status milestones and note quality.
// Rubric: +10 veteran/VA persona, +15 working status, +40 qualified or
// appointment noted, +10 for detailed notes.
func Score(lead Lead) int {
	score := 0
	status := strings.ToLower(lead.Status)
	notes := strings.ToLower(lead.Notes)

	// Base persona scores
	if strings.Contains(notes, "va") || strings.Contains(notes, "veteran") {
		score += 10
	}

	// Status milestones
	if strings.Contains(status, "working") {
		score += 15
	}
	if strings.Contains(status, "qualified") || strings.Contains(notes, "appointment") {
		score += 40
	}

	// Interaction quality
	if len(lead.Notes) > 50 {
		score += 10
	}

	return score
}
