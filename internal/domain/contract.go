package domain

import (
	"github.com/agnivade/levenshtein"
)

// maxSuggestionDistance bounds how far an extra column may be from a
// manifest name before it stops looking like a typo.
const maxSuggestionDistance = 2

// ValidateRaw checks every record in the batch against the raw schema.
// Every field the schema declares must be present in every record.
// It returns a *SchemaError naming all missing fields found across
// the whole batch, deduplicated and in schema field order, or nil if
// the batch satisfies the contract.
//
// Extra fields the schema does not declare are tolerated. This
// permissiveness is intentional: upstream callers may attach
// annotation fields that the cleaner strips later.
func ValidateRaw(batch RawBatch, schema RawSchema) error {
	var missing []string
	for _, field := range schema.Fields() {
		for _, record := range batch {
			if !record.Has(field) {
				missing = append(missing, field)
				break
			}
		}
	}

	if len(missing) > 0 {
		return NewSchemaError(missing)
	}
	return nil
}

// ValidateFeatures checks an engineered feature table against the
// manifest. Three checks always run before reporting: manifest names
// absent from the table, table columns the manifest does not declare,
// and the declared feature count against the table's column count.
// The count check is independent of the name checks so that duplicate
// or collapsed columns are caught even when the name sets match.
// A single *FeatureContractError carries every violation found; nil
// means the table satisfies the contract exactly.
func ValidateFeatures(table *FeatureTable, manifest *FeatureManifest) error {
	columns := table.Columns()
	columnSet := make(map[string]struct{}, len(columns))
	for _, col := range columns {
		columnSet[col] = struct{}{}
	}

	fce := &FeatureContractError{
		ExpectedCount: manifest.Count(),
		ActualCount:   len(columns),
	}

	for _, name := range manifest.Names() {
		if _, ok := columnSet[name]; !ok {
			fce.Missing = append(fce.Missing, name)
		}
	}

	for _, col := range columns {
		if !manifest.Contains(col) {
			fce.Extra = append(fce.Extra, col)
			if hint, ok := nearestName(col, manifest.Names()); ok {
				if fce.Suggestions == nil {
					fce.Suggestions = make(map[string]string)
				}
				fce.Suggestions[col] = hint
			}
		}
	}

	if fce.HasViolations() {
		return fce
	}
	return nil
}

// nearestName finds the candidate closest to name by Levenshtein
// distance, returning it only when the distance is small enough to
// suggest a typo rather than an unrelated column.
func nearestName(name string, candidates []string) (string, bool) {
	best, bestDistance := "", maxSuggestionDistance+1
	for _, candidate := range candidates {
		if d := levenshtein.ComputeDistance(name, candidate); d < bestDistance {
			best, bestDistance = candidate, d
		}
	}
	return best, bestDistance <= maxSuggestionDistance
}
