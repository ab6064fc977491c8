// ABOUTME: Cross-system linking: resolve a match, merge fields, write back
// ABOUTME: Every branch yields a named outcome for audit consumers and tests
package sync

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"syncmesh/db"
	"syncmesh/models"
)

// LinkOutcome names the branch a link attempt took. Audit consumers and
// tests assert on these instead of a generic pass/fail.
type LinkOutcome string

const (
	OutcomeLinkedUpdated      LinkOutcome = "linked_updated"
	OutcomeLinkedNoUpdates    LinkOutcome = "matched_no_updates_needed"
	OutcomeCreated            LinkOutcome = "created"
	OutcomeSkippedMissingName LinkOutcome = "skipped_missing_required_field"
	OutcomeSkippedDisabled    LinkOutcome = "skipped_automation_disabled"
	OutcomeError              LinkOutcome = "error"
)

// Target is the write side of a cross-system link: the external system that
// receives patches to matched records or newly created ones.
type Target interface {
	Name() string
	Create(ctx context.Context, fields map[string]string) (string, error)
	Patch(ctx context.Context, remoteID string, updates map[string]string) error
}

// LinkResult describes what one link attempt did.
type LinkResult struct {
	Outcome        LinkOutcome
	TargetRemoteID string
	Score          int
	Reasons        []string
	Updates        map[string]string
	Detail         string
}

// Linker matches records from a source system to their equivalents in a
// target system, merging non-destructively on a hit and creating on a miss.
type Linker struct {
	DB           *sql.DB
	Resolver     *Resolver
	Target       Target
	SourceSystem string
	EntityType   models.EntityType
	// FeatureKey is the automation flag gating every write to the target.
	// It is consulted from the store on each invocation, never cached.
	FeatureKey string
}

// LinkRecord resolves one source record against the target system and
// reconciles it. Expected failure modes (validation, disabled automation)
// come back as named outcomes, not errors.
func (l *Linker) LinkRecord(ctx context.Context, source *models.CanonicalRecord) (*LinkResult, error) {
	cfg, err := db.GetAutomationConfig(l.DB, l.FeatureKey)
	if err != nil {
		return &LinkResult{Outcome: OutcomeError}, fmt.Errorf("failed to check automation flag: %w", err)
	}
	if !cfg.Enabled {
		return &LinkResult{Outcome: OutcomeSkippedDisabled, Detail: l.FeatureKey}, nil
	}

	criteria := CriteriaFromRecord(source)
	match, err := l.Resolver.Resolve(l.EntityType, criteria)
	if err != nil {
		return &LinkResult{Outcome: OutcomeError}, err
	}

	if match != nil {
		return l.reconcileMatch(ctx, source, match)
	}
	return l.createTarget(ctx, source)
}

// reconcileMatch applies the non-destructive merge to a matched target
// record: only fields empty on the target are filled from the source. An
// empty update set is the distinct matched_no_updates_needed outcome and
// performs no write at all.
func (l *Linker) reconcileMatch(ctx context.Context, source *models.CanonicalRecord, match *models.MatchCandidate) (*LinkResult, error) {
	result := &LinkResult{
		TargetRemoteID: match.Record.RemoteID,
		Score:          match.Score,
		Reasons:        match.Reasons,
	}

	updates := MergeFields(match.Record.Fields, source.Fields)
	if len(updates) == 0 {
		result.Outcome = OutcomeLinkedNoUpdates
		if err := l.saveLink(source, match.Record.RemoteID, match.MatchScore); err != nil {
			return result, err
		}
		return result, nil
	}

	if err := l.Target.Patch(ctx, match.Record.RemoteID, updates); err != nil {
		result.Outcome = OutcomeError
		return result, fmt.Errorf("failed to patch %s %s: %w", l.Target.Name(), match.Record.RemoteID, err)
	}

	// Re-upsert the local mirror of the target with the merged fields.
	merged := match.Record
	for field, value := range updates {
		if merged.Fields == nil {
			merged.Fields = make(map[string]string)
		}
		merged.Fields[field] = value
	}
	if err := db.UpsertRecord(l.DB, merged); err != nil {
		result.Outcome = OutcomeError
		return result, err
	}

	if err := l.saveLink(source, match.Record.RemoteID, match.MatchScore); err != nil {
		result.Outcome = OutcomeError
		return result, err
	}

	result.Outcome = OutcomeLinkedUpdated
	result.Updates = updates
	return result, nil
}

// createTarget seeds a new target-system record from the source's fields.
// A missing name is a validation skip, not an error.
func (l *Linker) createTarget(ctx context.Context, source *models.CanonicalRecord) (*LinkResult, error) {
	name := source.Field(models.FieldName)
	if name == "" {
		return &LinkResult{
			Outcome: OutcomeSkippedMissingName,
			Detail:  (&ValidationError{Field: models.FieldName, Reason: "cannot create record without a name"}).Error(),
		}, nil
	}

	targetID, err := l.Target.Create(ctx, source.Fields)
	if err != nil {
		var validationErr *ValidationError
		if errors.As(err, &validationErr) {
			return &LinkResult{Outcome: OutcomeSkippedMissingName, Detail: validationErr.Error()}, nil
		}
		return &LinkResult{Outcome: OutcomeError}, fmt.Errorf("failed to create %s record: %w", l.Target.Name(), err)
	}

	mirror := &models.CanonicalRecord{
		EntityType: l.EntityType,
		RemoteID:   targetID,
		Source:     l.Target.Name(),
		Fields:     source.Fields,
	}
	if err := db.UpsertRecord(l.DB, mirror); err != nil {
		return &LinkResult{Outcome: OutcomeError, TargetRemoteID: targetID}, err
	}

	if err := l.saveLink(source, targetID, models.MatchScore{}); err != nil {
		return &LinkResult{Outcome: OutcomeError, TargetRemoteID: targetID}, err
	}

	return &LinkResult{Outcome: OutcomeCreated, TargetRemoteID: targetID}, nil
}

func (l *Linker) saveLink(source *models.CanonicalRecord, targetID string, score models.MatchScore) error {
	return db.UpsertLink(l.DB, &models.Link{
		EntityType:     l.EntityType,
		SourceSystem:   l.SourceSystem,
		SourceRemoteID: source.RemoteID,
		TargetSystem:   l.Target.Name(),
		TargetRemoteID: targetID,
		MatchedScore:   score.Score,
		MatchReasons:   strings.Join(score.Reasons, ","),
	})
}

// CriteriaFromRecord extracts match criteria from a record's canonical
// fields. The domain falls back to whatever the email or website implies.
func CriteriaFromRecord(record *models.CanonicalRecord) models.MatchCriteria {
	criteria := models.MatchCriteria{
		Email:       record.Field(models.FieldEmail),
		Domain:      record.Field(models.FieldDomain),
		CompanyName: record.Field(models.FieldName),
		FirstName:   record.Field("first_name"),
		LastName:    record.Field("last_name"),
	}
	if criteria.Domain == "" {
		if criteria.Email != "" {
			criteria.Domain = ExtractDomain(criteria.Email)
		} else if website := record.Field(models.FieldWebsite); website != "" {
			criteria.Domain = ExtractDomain(website)
		}
	}
	return criteria
}
