/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package proofmatch

import (
	"encoding/json"
	"math"
	"strconv"

	"github.com/tidwall/gjson"

	"github.com/hyperledger/aries-pexbridge-go/pkg/doc/anoncreds"
	"github.com/hyperledger/aries-pexbridge-go/pkg/doc/presexch"
)

// PredicateBound is one (operator, threshold) pair decoded from a filter.
type PredicateBound struct {
	Type      anoncreds.PredicateType
	Threshold int64
}

// DecodePredicateFilter turns the numeric range keywords of a predicate field's filter into bounds,
// in declaration order. "type" is ignored; every other keyword is rejected.
func DecodePredicateFilter(filter *presexch.Filter) ([]PredicateBound, error) {
	if filter == nil {
		return nil, &Error{Err: ErrUnsupportedPredicateFilter, Detail: "predicate field has no filter"}
	}

	var bounds []PredicateBound

	for _, clause := range filter.Clauses {
		var pType anoncreds.PredicateType

		switch clause.Keyword {
		case presexch.KeywordType:
			continue
		case presexch.KeywordExclusiveMinimum:
			pType = anoncreds.PredicateGreaterThan
		case presexch.KeywordExclusiveMaximum:
			pType = anoncreds.PredicateLessThan
		case presexch.KeywordMinimum:
			pType = anoncreds.PredicateGreaterOrEqual
		case presexch.KeywordMaximum:
			pType = anoncreds.PredicateLessOrEqual
		default:
			if !clause.Keyword.Known() {
				return nil, &Error{Err: ErrUnsupportedPredicateFilter, Detail: "unknown keyword " + string(clause.Keyword)}
			}

			return nil, &Error{Err: ErrUnsupportedPredicateFilter, Detail: string(clause.Keyword)}
		}

		threshold, err := decodeThreshold(clause.Value)
		if err != nil {
			return nil, &Error{Err: ErrInvalidPredicateThreshold, Detail: string(clause.Keyword) + "=" + string(clause.Value)}
		}

		bounds = append(bounds, PredicateBound{Type: pType, Threshold: threshold})
	}

	if len(bounds) == 0 {
		return nil, &Error{Err: ErrUnsupportedPredicateFilter, Detail: "filter has no numeric bound"}
	}

	return bounds, nil
}

// decodeThreshold accepts integral JSON numbers and decimal integer strings.
func decodeThreshold(raw json.RawMessage) (int64, error) {
	value := gjson.ParseBytes(raw)

	var text string

	switch value.Type { //nolint:exhaustive // only numbers and strings carry a threshold
	case gjson.Number:
		text = value.Raw
	case gjson.String:
		text = value.Str
	default:
		return 0, strconv.ErrSyntax
	}

	if i, err := strconv.ParseInt(text, 10, 64); err == nil {
		return i, nil
	}

	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, err
	}

	if f != math.Trunc(f) || f > math.MaxInt64 || f < math.MinInt64 {
		return 0, strconv.ErrRange
	}

	return int64(f), nil
}
