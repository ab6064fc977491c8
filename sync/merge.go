// ABOUTME: Non-destructive field merge policy for matched records
// ABOUTME: Fills previously-empty fields only; never overwrites populated data
package sync

// MergeFields returns the fields from candidate that would fill gaps in
// existing: a candidate value is taken only when it is non-empty and the
// existing value is empty or absent. Populated existing fields are never
// overwritten. An empty result means the match needs no updates, which is a
// distinct no-op outcome for callers, not an error.
func MergeFields(existing, candidate map[string]string) map[string]string {
	updates := make(map[string]string)

	for field, value := range candidate {
		if value == "" {
			continue
		}
		if existing[field] != "" {
			continue
		}
		updates[field] = value
	}

	return updates
}
