package sync

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"syncmesh/models"
)

func candidate(fields map[string]string) *models.CanonicalRecord {
	return &models.CanonicalRecord{
		EntityType: models.EntityVendor,
		RemoteID:   "v-1",
		Fields:     fields,
	}
}

func TestScoreExactEmail(t *testing.T) {
	score := ScoreCandidate(
		candidate(map[string]string{models.FieldEmail: "Info@Acme.com"}),
		models.MatchCriteria{Email: "info@acme.com"},
	)
	assert.Equal(t, 100, score.Score)
	assert.Equal(t, []string{ReasonExactEmail}, score.Reasons)
}

func TestScoreDomainMatch(t *testing.T) {
	// Via website.
	score := ScoreCandidate(
		candidate(map[string]string{models.FieldWebsite: "https://www.acme.com/contact"}),
		models.MatchCriteria{Domain: "acme.com"},
	)
	assert.Equal(t, 80, score.Score)
	assert.Equal(t, []string{ReasonDomainMatch}, score.Reasons)

	// Via email.
	score = ScoreCandidate(
		candidate(map[string]string{models.FieldEmail: "sales@acme.com"}),
		models.MatchCriteria{Domain: "acme.com"},
	)
	assert.Equal(t, 80, score.Score)
}

func TestScoreCompanyNameRules(t *testing.T) {
	// Exact name, punctuation and case insensitive.
	score := ScoreCandidate(
		candidate(map[string]string{models.FieldName: "ACME Builders, Inc."}),
		models.MatchCriteria{CompanyName: "Acme Builders Inc"},
	)
	assert.Equal(t, 90, score.Score)
	assert.Equal(t, []string{ReasonExactCompanyName}, score.Reasons)

	// Partial containment when not exact.
	score = ScoreCandidate(
		candidate(map[string]string{models.FieldName: "Acme Builders of Texas"}),
		models.MatchCriteria{CompanyName: "Acme Builders"},
	)
	assert.Equal(t, 60, score.Score)
	assert.Equal(t, []string{ReasonPartialCompanyName}, score.Reasons)

	// Too-short names never partial-match.
	score = ScoreCandidate(
		candidate(map[string]string{models.FieldName: "abc"}),
		models.MatchCriteria{CompanyName: "ab"},
	)
	assert.Equal(t, 0, score.Score)
}

func TestScoreLegalAndTradeNames(t *testing.T) {
	score := ScoreCandidate(
		candidate(map[string]string{
			models.FieldName:      "Acme",
			models.FieldLegalName: "Acme Builders LLC",
			models.FieldTradeName: "Acme Builders LLC",
		}),
		models.MatchCriteria{CompanyName: "Acme Builders LLC"},
	)
	// partial (name contains... actually criteria contains name) + legal + trade
	assert.Contains(t, score.Reasons, ReasonLegalNameMatch)
	assert.Contains(t, score.Reasons, ReasonTradeNameMatch)
	assert.Equal(t, 60+70+70, score.Score)
}

func TestScorePersonNameInVendor(t *testing.T) {
	score := ScoreCandidate(
		candidate(map[string]string{models.FieldName: "Jane Doe Construction"}),
		models.MatchCriteria{FirstName: "Jane", LastName: "Doe"},
	)
	assert.Equal(t, 40, score.Score)
	assert.Equal(t, []string{ReasonPersonNameInVendor}, score.Reasons)
}

// The rules are additive and independent: matching on several criteria in
// one pass sums their weights rather than stopping at the first hit.
func TestScoreAdditive(t *testing.T) {
	score := ScoreCandidate(
		candidate(map[string]string{
			models.FieldName:    "ACME Builders",
			models.FieldWebsite: "https://acme.com",
		}),
		models.MatchCriteria{CompanyName: "Acme Builders", Domain: "acme.com"},
	)
	assert.Equal(t, 170, score.Score)
	assert.ElementsMatch(t, []string{ReasonExactCompanyName, ReasonDomainMatch}, score.Reasons)
}

func TestScoreEmailPlusCompanyName(t *testing.T) {
	score := ScoreCandidate(
		candidate(map[string]string{
			models.FieldEmail: "info@acme.com",
			models.FieldName:  "Acme Builders",
		}),
		models.MatchCriteria{Email: "info@acme.com", CompanyName: "Acme Builders"},
	)
	assert.Equal(t, 190, score.Score)
}

func TestScoreEmptyCriteria(t *testing.T) {
	score := ScoreCandidate(candidate(map[string]string{models.FieldName: "Acme"}), models.MatchCriteria{})
	assert.Equal(t, 0, score.Score)
	assert.Empty(t, score.Reasons)
}

func TestScoreNilCandidate(t *testing.T) {
	score := ScoreCandidate(nil, models.MatchCriteria{CompanyName: "Acme"})
	assert.Equal(t, 0, score.Score)
}
