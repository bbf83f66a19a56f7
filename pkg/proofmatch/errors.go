/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package proofmatch

import (
	"errors"
	"fmt"
)

// Fatal translation errors. Any of them aborts the preparation of the whole proof.
var (
	ErrUnsupportedPredicateFilter = errors.New("unsupported predicate filter")
	ErrInvalidPredicateThreshold  = errors.New("invalid predicate threshold")
	ErrMissingCredentialTags      = errors.New("missing AnonCreds tags from credential record")
	ErrEmptyRestrictionSet        = errors.New("empty restriction set")
	ErrNoRequestedFieldsProduced  = errors.New("no requested fields produced")
	ErrEmptyConstraintFields      = errors.New("input descriptor has no constraint fields")
	ErrUnsupportedClaimFormat     = errors.New("unsupported claim format")
	ErrUnknownReferent            = errors.New("unknown referent")
	ErrMissingReferent            = errors.New("no matches returned for referent")
)

// ErrUnresolvableClaimPath marks a field without a credential subject path. It is never returned, only logged.
var ErrUnresolvableClaimPath = errors.New("unresolvable claim path")

// Error ties a translation failure to the descriptor and the key or record that caused it.
type Error struct {
	Err          error
	DescriptorID string
	Detail       string
}

func (e *Error) Error() string {
	msg := e.Err.Error()

	if e.DescriptorID != "" {
		msg = fmt.Sprintf("input descriptor '%s': %s", e.DescriptorID, msg)
	}

	if e.Detail != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Detail)
	}

	return msg
}

// Unwrap returns the sentinel error.
func (e *Error) Unwrap() error {
	return e.Err
}

// IsFatal reports whether err must abort the proof preparation.
func IsFatal(err error) bool {
	for _, target := range []error{
		ErrUnsupportedPredicateFilter, ErrInvalidPredicateThreshold, ErrMissingCredentialTags,
		ErrEmptyRestrictionSet, ErrNoRequestedFieldsProduced, ErrEmptyConstraintFields,
		ErrUnsupportedClaimFormat, ErrUnknownReferent, ErrMissingReferent,
	} {
		if errors.Is(err, target) {
			return true
		}
	}

	return false
}
