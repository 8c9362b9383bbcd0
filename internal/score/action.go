package score

import (
	"github.com/civic-atlas/appointments-watch/internal/model"
)

// Decide recommends an action for a scored candidate. The guards run in a
// fixed order; the first hit wins:
//
//  1. no organization match        -> MANUAL_REVIEW
//  2. similarity above 0.85        -> IGNORE (same person, likely noise)
//  3. separation, similarity > 0.5 -> VERIFY_VACANCY
//  4. separation otherwise         -> VERIFY
//  5. appointment, officer on file -> UPDATE_OFFICER
//  6. appointment, no officer      -> ADD_OFFICER
//  7. unrecognized reason code     -> MANUAL_REVIEW
func Decide(c model.Candidate) model.Action {
	if !c.Matched() {
		return model.ActionManualReview
	}
	if c.NameSimilarity > 0.85 {
		return model.ActionIgnore
	}

	switch model.ClassifyReason(c.Record.ReasonCode) {
	case model.ReasonSeparation:
		if c.NameSimilarity > 0.5 {
			return model.ActionVerifyVacancy
		}
		return model.ActionVerify
	case model.ReasonAppointment:
		if c.CurrentOfficer != "" {
			return model.ActionUpdateOfficer
		}
		return model.ActionAddOfficer
	default:
		return model.ActionManualReview
	}
}
