package score

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/civic-atlas/appointments-watch/internal/model"
	"github.com/civic-atlas/appointments-watch/pkg/opendata"
)

func TestDecide(t *testing.T) {
	exact := &model.OrgMatch{RegistryID: "org-1", Type: model.MatchExact, Confidence: 1.0}

	tests := []struct {
		name string
		c    model.Candidate
		want model.Action
	}{
		{
			name: "no match goes to review",
			c:    model.Candidate{Record: opendata.Record{ReasonCode: "APPOINTED"}},
			want: model.ActionManualReview,
		},
		{
			name: "same person is noise",
			c: model.Candidate{
				Record:         opendata.Record{ReasonCode: "APPOINTED"},
				Match:          exact,
				CurrentOfficer: "Maria Torres",
				NameSimilarity: 0.9,
			},
			want: model.ActionIgnore,
		},
		{
			name: "separation of the officer on file",
			c: model.Candidate{
				Record:         opendata.Record{ReasonCode: "RESIGNED"},
				Match:          exact,
				CurrentOfficer: "Maria Torres",
				NameSimilarity: 0.7,
			},
			want: model.ActionVerifyVacancy,
		},
		{
			name: "separation of someone else",
			c: model.Candidate{
				Record:         opendata.Record{ReasonCode: "RETIRED"},
				Match:          exact,
				CurrentOfficer: "Maria Torres",
				NameSimilarity: 0.2,
			},
			want: model.ActionVerify,
		},
		{
			name: "appointment over an incumbent",
			c: model.Candidate{
				Record:         opendata.Record{ReasonCode: "APPOINTED"},
				Match:          exact,
				CurrentOfficer: "Maria Torres",
				NameSimilarity: 0.1,
			},
			want: model.ActionUpdateOfficer,
		},
		{
			name: "appointment to a vacant seat",
			c: model.Candidate{
				Record: opendata.Record{ReasonCode: "PROMOTED"},
				Match:  exact,
			},
			want: model.ActionAddOfficer,
		},
		{
			name: "unrecognized reason",
			c: model.Candidate{
				Record: opendata.Record{ReasonCode: "TRANSFERRED"},
				Match:  exact,
			},
			want: model.ActionManualReview,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Decide(tc.c))
		})
	}
}

func TestDecide_IgnoreOutranksSeparation(t *testing.T) {
	// Similarity above 0.85 wins even for a separation reason.
	c := model.Candidate{
		Record:         opendata.Record{ReasonCode: "RESIGNED"},
		Match:          &model.OrgMatch{RegistryID: "org-1", Type: model.MatchExact, Confidence: 1.0},
		CurrentOfficer: "Maria Torres",
		NameSimilarity: 0.95,
	}
	assert.Equal(t, model.ActionIgnore, Decide(c))
}

func TestDecide_SimilarityBoundary(t *testing.T) {
	c := model.Candidate{
		Record:         opendata.Record{ReasonCode: "APPOINTED"},
		Match:          &model.OrgMatch{RegistryID: "org-1", Type: model.MatchExact, Confidence: 1.0},
		CurrentOfficer: "Maria Torres",
		NameSimilarity: 0.85,
	}
	// 0.85 exactly is not "above 0.85".
	assert.Equal(t, model.ActionUpdateOfficer, Decide(c))
}

func TestClassifyReason(t *testing.T) {
	assert.Equal(t, model.ReasonSeparation, model.ClassifyReason("resigned"))
	assert.Equal(t, model.ReasonSeparation, model.ClassifyReason(" DECEASED "))
	assert.Equal(t, model.ReasonAppointment, model.ClassifyReason("Appointed"))
	assert.Equal(t, model.ReasonUnknown, model.ClassifyReason("TRANSFERRED"))
	assert.Equal(t, model.ReasonUnknown, model.ClassifyReason(""))
}
