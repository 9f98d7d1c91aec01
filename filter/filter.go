// Package filter selects records from Open States responses using
// expressions written in the expr language.
//
// Every top-level field of a record is available as a variable:
//
//	party == "Democratic" and chamber == "upper"
//	contains(title, "education") and daysSince(updated_at) < 30
//	has("+district") and record["+district"] == "12"
//
// Expressions that fail at runtime, for example because a field is missing,
// simply do not match.
package filter

import (
	"context"

	"github.com/s0up4200/openstates/collection"
)

// Select applies filter to the records of data and returns the matches as
// an array, in their original order. An object is treated as a single
// record; scalars have no records and yield an empty array.
func Select(ctx context.Context, evaluator Evaluator, filter CompiledFilter, data *collection.Collection) (*collection.Collection, error) {
	matches, err := evaluator.Evaluate(ctx, filter, data.Records())
	if err != nil {
		return nil, err
	}
	return collection.NewArray(matches...), nil
}
