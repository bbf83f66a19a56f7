/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package proofmatch

import (
	"sort"

	"github.com/hyperledger/aries-pexbridge-go/pkg/doc/anoncreds"
)

// FilterMatches removes from every referent's match list the credentials that are not candidates of the
// descriptor the referent was generated from. Over-matches are dropped silently. Every referent of the
// query is present in the result, with an empty list when nothing survives. The surviving matches are
// ordered for auto-selection, see OrderMatches.
// A referent in raw that the query never generated fails with ErrUnknownReferent, a referent of the query
// that raw has no entry for fails with ErrMissingReferent. An empty list is not a missing entry.
func FilterMatches(raw *anoncreds.CredentialsForProofRequest, index *DescriptorMetadataIndex,
	query *Query) (*anoncreds.CredentialsForProofRequest, error) {
	if raw == nil {
		raw = &anoncreds.CredentialsForProofRequest{}
	}

	if err := checkReferents(raw.Attributes, query, AttributeReferent); err != nil {
		return nil, err
	}

	if err := checkReferents(raw.Predicates, query, PredicateReferent); err != nil {
		return nil, err
	}

	filtered := &anoncreds.CredentialsForProofRequest{
		Attributes: map[string][]*anoncreds.Match{},
		Predicates: map[string][]*anoncreds.Match{},
	}

	for _, referent := range query.Referents {
		source, target := raw.Attributes, filtered.Attributes
		if referent.Kind == PredicateReferent {
			source, target = raw.Predicates, filtered.Predicates
		}

		matches, ok := source[referent.ID]
		if !ok {
			return nil, &Error{Err: ErrMissingReferent, DescriptorID: referent.DescriptorID, Detail: referent.ID}
		}

		valid := []*anoncreds.Match{}

		for _, match := range matches {
			if !index.Contains(referent.DescriptorID, match.CredentialID) {
				logger.Debugf("referent '%s': dropping credential %s, not a candidate of input descriptor '%s'",
					referent.ID, match.CredentialID, referent.DescriptorID)

				continue
			}

			valid = append(valid, match)
		}

		target[referent.ID] = OrderMatches(valid)
	}

	return filtered, nil
}

func checkReferents(matches map[string][]*anoncreds.Match, query *Query, kind ReferentKind) error {
	for id := range matches {
		r, ok := query.Referent(id)
		if !ok || r.Kind != kind {
			return &Error{Err: ErrUnknownReferent, Detail: id}
		}
	}

	return nil
}

// OrderMatches sorts matches in place for auto-selection: non-revoked first, then newest timestamp first.
// Ties keep their original order.
func OrderMatches(matches []*anoncreds.Match) []*anoncreds.Match {
	sort.SliceStable(matches, func(i, j int) bool {
		a, b := matches[i], matches[j]

		if a.IsRevoked() != b.IsRevoked() {
			return !a.IsRevoked()
		}

		return timestamp(a) > timestamp(b)
	})

	return matches
}

func timestamp(m *anoncreds.Match) int64 {
	if m.Timestamp == nil {
		return 0
	}

	return *m.Timestamp
}

// Matches returns the match list of a referent from either the attribute or the predicate section.
func Matches(set *anoncreds.CredentialsForProofRequest, referent Referent) []*anoncreds.Match {
	if set == nil {
		return nil
	}

	if referent.Kind == PredicateReferent {
		return set.Predicates[referent.ID]
	}

	return set.Attributes[referent.ID]
}
