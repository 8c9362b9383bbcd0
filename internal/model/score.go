package model

// ConfidenceLevel buckets a numeric score for analyst triage.
type ConfidenceLevel string

const (
	LevelHigh   ConfidenceLevel = "HIGH"
	LevelMedium ConfidenceLevel = "MEDIUM"
	LevelLow    ConfidenceLevel = "LOW"
	LevelNoise  ConfidenceLevel = "NOISE"
)

// LevelFor maps a clamped total score to its confidence bucket.
// Boundaries are inclusive on the lower edge: 80 is HIGH, 50 is MEDIUM,
// 20 is LOW.
func LevelFor(total int) ConfidenceLevel {
	switch {
	case total >= 80:
		return LevelHigh
	case total >= 50:
		return LevelMedium
	case total >= 20:
		return LevelLow
	default:
		return LevelNoise
	}
}

// ScoreBreakdown holds the five component scores and the clamped total.
// Component maxima: org match 40, title relevance 20, name differentiation 25,
// recency 10, evidence 5.
type ScoreBreakdown struct {
	OrgMatch            float64         `json:"org_match"`
	TitleRelevance      float64         `json:"title_relevance"`
	NameDifferentiation float64         `json:"name_differentiation"`
	Recency             float64         `json:"recency"`
	Evidence            float64         `json:"evidence"`
	Total               int             `json:"total"`
	Level               ConfidenceLevel `json:"level"`
}

// Action is the recommended handling for a scored candidate.
type Action string

const (
	ActionIgnore        Action = "IGNORE"
	ActionVerify        Action = "VERIFY"
	ActionVerifyVacancy Action = "VERIFY_VACANCY"
	ActionUpdateOfficer Action = "UPDATE_OFFICER"
	ActionAddOfficer    Action = "ADD_OFFICER"
	ActionManualReview  Action = "MANUAL_REVIEW"
)
