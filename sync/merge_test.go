package sync

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMergeFillsOnlyEmptyFields(t *testing.T) {
	existing := map[string]string{
		"phone": "555-1000",
		"city":  "",
	}
	incoming := map[string]string{
		"phone": "555-2000",
		"city":  "Dallas",
	}

	updates := MergeFields(existing, incoming)

	// Only the empty city fills; the populated phone is untouched.
	assert.Equal(t, map[string]string{"city": "Dallas"}, updates)
}

func TestMergeEmptyResultIsNoOp(t *testing.T) {
	existing := map[string]string{"name": "Acme", "phone": "555-1000"}
	incoming := map[string]string{"name": "Acme Inc", "phone": "555-9999"}

	updates := MergeFields(existing, incoming)
	assert.Empty(t, updates)
}

func TestMergeIgnoresEmptyCandidateValues(t *testing.T) {
	existing := map[string]string{"city": ""}
	incoming := map[string]string{"city": "", "state": "TX"}

	updates := MergeFields(existing, incoming)
	assert.Equal(t, map[string]string{"state": "TX"}, updates)
}

func TestMergeMissingExistingFieldCounts(t *testing.T) {
	updates := MergeFields(map[string]string{}, map[string]string{"email": "a@b.com"})
	assert.Equal(t, map[string]string{"email": "a@b.com"}, updates)

	updates = MergeFields(nil, map[string]string{"email": "a@b.com"})
	assert.Equal(t, map[string]string{"email": "a@b.com"}, updates)
}

// Property: any field present in the merge result was empty in existing.
func TestMergeNeverOverwritesPopulated(t *testing.T) {
	existing := map[string]string{
		"a": "1", "b": "", "c": "3", "d": "",
	}
	incoming := map[string]string{
		"a": "x", "b": "y", "c": "z", "d": "", "e": "w",
	}

	updates := MergeFields(existing, incoming)
	for field := range updates {
		assert.Empty(t, existing[field], "field %q was populated but got merged", field)
	}
	assert.Equal(t, map[string]string{"b": "y", "e": "w"}, updates)
}
