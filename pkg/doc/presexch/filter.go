/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package presexch

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/tidwall/gjson"
)

// FilterKeyword is a JSON Schema keyword used inside a field filter.
type FilterKeyword string

// Filter keywords understood by this package.
const (
	KeywordType             FilterKeyword = "type"
	KeywordFormat           FilterKeyword = "format"
	KeywordPattern          FilterKeyword = "pattern"
	KeywordMinimum          FilterKeyword = "minimum"
	KeywordMaximum          FilterKeyword = "maximum"
	KeywordExclusiveMinimum FilterKeyword = "exclusiveMinimum"
	KeywordExclusiveMaximum FilterKeyword = "exclusiveMaximum"
	KeywordMinLength        FilterKeyword = "minLength"
	KeywordMaxLength        FilterKeyword = "maxLength"
	KeywordConst            FilterKeyword = "const"
	KeywordEnum             FilterKeyword = "enum"
	KeywordNot              FilterKeyword = "not"
)

// Known reports whether k is one of the keywords declared above.
func (k FilterKeyword) Known() bool {
	switch k {
	case KeywordType, KeywordFormat, KeywordPattern,
		KeywordMinimum, KeywordMaximum, KeywordExclusiveMinimum, KeywordExclusiveMaximum,
		KeywordMinLength, KeywordMaxLength, KeywordConst, KeywordEnum, KeywordNot:
		return true
	default:
		return false
	}
}

// FilterClause is a single keyword of a filter together with its raw JSON value.
type FilterClause struct {
	Keyword FilterKeyword
	Value   json.RawMessage
}

// NumericClause returns a clause holding an integer value, e.g. {"minimum": 18}.
func NumericClause(keyword FilterKeyword, value int64) FilterClause {
	return FilterClause{Keyword: keyword, Value: json.RawMessage(strconv.FormatInt(value, 10))}
}

// TypeClause returns a {"type": t} clause.
func TypeClause(t string) FilterClause {
	return FilterClause{Keyword: KeywordType, Value: json.RawMessage(strconv.Quote(t))}
}

// Filter describes filter.
// Clauses keep the order in which they appear in the JSON document, so everything derived from
// a filter (for instance predicate referents) is stable between runs.
type Filter struct {
	Clauses []FilterClause
}

// NewFilter creates a filter from the given clauses.
func NewFilter(clauses ...FilterClause) *Filter {
	return &Filter{Clauses: clauses}
}

// Get returns the raw value of the given keyword.
func (f *Filter) Get(keyword FilterKeyword) (json.RawMessage, bool) {
	for _, clause := range f.Clauses {
		if clause.Keyword == keyword {
			return clause.Value, true
		}
	}

	return nil, false
}

// Type returns the value of the "type" keyword, empty when absent or not a string.
func (f *Filter) Type() string {
	raw, ok := f.Get(KeywordType)
	if !ok {
		return ""
	}

	var t string
	if err := json.Unmarshal(raw, &t); err != nil {
		return ""
	}

	return t
}

// UnmarshalJSON reads the filter object keyword by keyword, keeping declaration order.
func (f *Filter) UnmarshalJSON(data []byte) error {
	if !gjson.ValidBytes(data) {
		return fmt.Errorf("read filter: invalid JSON")
	}

	object := gjson.ParseBytes(data)
	if !object.IsObject() {
		return fmt.Errorf("filter must be a JSON object")
	}

	var (
		clauses []FilterClause
		err     error
	)

	seen := map[FilterKeyword]struct{}{}

	object.ForEach(func(key, value gjson.Result) bool {
		keyword := FilterKeyword(key.String())

		if _, dup := seen[keyword]; dup {
			err = fmt.Errorf("duplicate filter keyword '%s'", keyword)

			return false
		}

		seen[keyword] = struct{}{}

		clauses = append(clauses, FilterClause{Keyword: keyword, Value: json.RawMessage(value.Raw)})

		return true
	})

	if err != nil {
		return err
	}

	f.Clauses = clauses

	return nil
}

// MarshalJSON writes the clauses back in their original order.
func (f Filter) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte('{')

	for i, clause := range f.Clauses {
		if i > 0 {
			buf.WriteByte(',')
		}

		key, err := json.Marshal(string(clause.Keyword))
		if err != nil {
			return nil, err
		}

		buf.Write(key)
		buf.WriteByte(':')

		if len(clause.Value) == 0 {
			buf.WriteString("null")
		} else {
			buf.Write(clause.Value)
		}
	}

	buf.WriteByte('}')

	return buf.Bytes(), nil
}
