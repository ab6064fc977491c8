// ABOUTME: Similarity scoring between a candidate record and match criteria
// ABOUTME: Additive weighted rules with reason codes; no short-circuiting
package sync

import (
	"strings"

	"syncmesh/models"
)

// Rule weights. Each rule contributes its weight independently when its
// condition holds; a candidate can accumulate several in one pass.
const (
	weightExactEmail         = 100
	weightExactCompanyName   = 90
	weightDomainMatch        = 80
	weightLegalNameMatch     = 70
	weightTradeNameMatch     = 70
	weightPartialCompanyName = 60
	weightPersonNameInVendor = 40
)

// Reason codes attached to the score for audit and link records.
const (
	ReasonExactEmail         = "exact_email"
	ReasonDomainMatch        = "domain_match"
	ReasonExactCompanyName   = "exact_company_name"
	ReasonPartialCompanyName = "partial_company_name"
	ReasonLegalNameMatch     = "legal_name_match"
	ReasonTradeNameMatch     = "trade_name_match"
	ReasonPersonNameInVendor = "person_name_in_vendor"
)

// ScoreCandidate computes the similarity between one candidate record and
// the criteria. Every applicable rule is evaluated and its weight summed;
// the scheme is heuristic and carries no calibration guarantee beyond the
// resolver's acceptance threshold.
func ScoreCandidate(candidate *models.CanonicalRecord, criteria models.MatchCriteria) models.MatchScore {
	var score models.MatchScore
	if candidate == nil {
		return score
	}

	add := func(weight int, reason string) {
		score.Score += weight
		score.Reasons = append(score.Reasons, reason)
	}

	if criteria.Email != "" &&
		Normalize(criteria.Email) == Normalize(candidate.Field(models.FieldEmail)) {
		add(weightExactEmail, ReasonExactEmail)
	}

	if criteria.Domain != "" {
		domain := strings.ToLower(criteria.Domain)
		if domain == ExtractDomain(candidate.Field(models.FieldWebsite)) ||
			domain == ExtractDomain(candidate.Field(models.FieldEmail)) {
			add(weightDomainMatch, ReasonDomainMatch)
		}
	}

	if criteria.CompanyName != "" {
		company := Normalize(criteria.CompanyName)
		name := Normalize(candidate.Field(models.FieldName))

		if company == name {
			add(weightExactCompanyName, ReasonExactCompanyName)
		} else if len(company) > 3 && len(name) > 3 &&
			(strings.Contains(name, company) || strings.Contains(company, name)) {
			add(weightPartialCompanyName, ReasonPartialCompanyName)
		}

		if legal := Normalize(candidate.Field(models.FieldLegalName)); legal != "" && company == legal {
			add(weightLegalNameMatch, ReasonLegalNameMatch)
		}
		if trade := Normalize(candidate.Field(models.FieldTradeName)); trade != "" && company == trade {
			add(weightTradeNameMatch, ReasonTradeNameMatch)
		}
	}

	if criteria.FirstName != "" || criteria.LastName != "" {
		person := Normalize(criteria.FirstName + criteria.LastName)
		name := Normalize(candidate.Field(models.FieldName))
		if person != "" && name != "" &&
			(person == name || strings.Contains(name, person)) {
			add(weightPersonNameInVendor, ReasonPersonNameInVendor)
		}
	}

	return score
}
