/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package anoncreds

import (
	"fmt"
)

// PredicateType is an AnonCreds predicate operator.
type PredicateType string

// Predicate operators.
const (
	PredicateGreaterThan    PredicateType = ">"
	PredicateLessThan       PredicateType = "<"
	PredicateGreaterOrEqual PredicateType = ">="
	PredicateLessOrEqual    PredicateType = "<="
)

// Evaluate applies the operator to value and threshold.
func (p PredicateType) Evaluate(value, threshold int64) (bool, error) {
	switch p {
	case PredicateGreaterThan:
		return value > threshold, nil
	case PredicateLessThan:
		return value < threshold, nil
	case PredicateGreaterOrEqual:
		return value >= threshold, nil
	case PredicateLessOrEqual:
		return value <= threshold, nil
	default:
		return false, fmt.Errorf("unknown predicate type '%s'", p)
	}
}
