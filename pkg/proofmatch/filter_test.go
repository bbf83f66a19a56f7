/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package proofmatch_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hyperledger/aries-pexbridge-go/pkg/doc/anoncreds"
	. "github.com/hyperledger/aries-pexbridge-go/pkg/proofmatch"
)

func ageQuery(t *testing.T, opts ...TranslateOption) (*Query, *DescriptorMetadataIndex) {
	t.Helper()

	index := ageIndex(t)

	query, err := Translate(definition(t, ageVerification), index, fixedNow(), opts...)
	require.NoError(t, err)

	return query, index
}

func ageMatches(ids ...string) *anoncreds.CredentialsForProofRequest {
	raw := &anoncreds.CredentialsForProofRequest{
		Attributes: map[string][]*anoncreds.Match{},
		Predicates: map[string][]*anoncreds.Match{},
	}

	for _, id := range ids {
		raw.Attributes["email_attribute"] = append(raw.Attributes["email_attribute"],
			match(id, map[string]string{"email": id + "@example.com"}))
		raw.Attributes["time_attribute"] = append(raw.Attributes["time_attribute"],
			match(id, map[string]string{"time": "now"}))
		raw.Predicates["age_predicate_0"] = append(raw.Predicates["age_predicate_0"],
			match(id, map[string]string{"age": "16"}))
	}

	return raw
}

func emptyMatches(query *Query) *anoncreds.CredentialsForProofRequest {
	raw := &anoncreds.CredentialsForProofRequest{
		Attributes: map[string][]*anoncreds.Match{},
		Predicates: map[string][]*anoncreds.Match{},
	}

	for _, referent := range query.Referents {
		if referent.Kind == PredicateReferent {
			raw.Predicates[referent.ID] = []*anoncreds.Match{}
		} else {
			raw.Attributes[referent.ID] = []*anoncreds.Match{}
		}
	}

	return raw
}

func TestFilterMatches(t *testing.T) {
	t.Run("drops credentials that are not descriptor candidates", func(t *testing.T) {
		query, index := ageQuery(t)

		raw := ageMatches(credentialID)
		raw.Attributes["email_attribute"] = append(raw.Attributes["email_attribute"], match(strangerID, nil))

		filtered, err := FilterMatches(raw, index, query)
		require.NoError(t, err)

		require.Len(t, filtered.Attributes["email_attribute"], 1)
		require.Equal(t, credentialID, filtered.Attributes["email_attribute"][0].CredentialID)
		require.Len(t, raw.Attributes["email_attribute"], 2)

		for _, referent := range query.Referents {
			rawIDs := map[string]bool{}
			for _, m := range Matches(raw, referent) {
				rawIDs[m.CredentialID] = true
			}

			for _, m := range Matches(filtered, referent) {
				require.True(t, rawIDs[m.CredentialID])
				require.True(t, index.Contains(referent.DescriptorID, m.CredentialID))
			}
		}
	})

	t.Run("every referent is present", func(t *testing.T) {
		query, index := ageQuery(t)

		raw := emptyMatches(query)
		raw.Attributes["email_attribute"] = []*anoncreds.Match{match(strangerID, nil)}

		filtered, err := FilterMatches(raw, index, query)
		require.NoError(t, err)

		for _, referent := range query.Referents {
			matches := Matches(filtered, referent)
			require.NotNil(t, matches, referent.ID)
			require.Empty(t, matches, referent.ID)
		}
	})

	t.Run("unknown referent", func(t *testing.T) {
		query, index := ageQuery(t)

		raw := ageMatches(credentialID)
		raw.Predicates["age_3"] = []*anoncreds.Match{match(credentialID, nil)}

		_, err := FilterMatches(raw, index, query)
		require.True(t, errors.Is(err, ErrUnknownReferent))
		require.EqualError(t, err, "unknown referent: age_3")
	})

	t.Run("attribute referent in predicate section", func(t *testing.T) {
		query, index := ageQuery(t)

		raw := emptyMatches(query)
		raw.Predicates["email_attribute"] = []*anoncreds.Match{}

		_, err := FilterMatches(raw, index, query)
		require.True(t, errors.Is(err, ErrUnknownReferent))
	})

	t.Run("referent without an entry", func(t *testing.T) {
		query, index := ageQuery(t)

		raw := ageMatches(credentialID)
		delete(raw.Attributes, "time_attribute")

		_, err := FilterMatches(raw, index, query)
		require.True(t, errors.Is(err, ErrMissingReferent))
		require.True(t, IsFatal(err))
		require.EqualError(t, err, "input descriptor 'time': no matches returned for referent: time_attribute")

		_, err = FilterMatches(nil, index, query)
		require.True(t, errors.Is(err, ErrMissingReferent))
	})
}

func TestOrderMatches(t *testing.T) {
	revoked := true
	ts := func(v int64) *int64 { return &v }

	matches := OrderMatches([]*anoncreds.Match{
		{CredentialID: "old", Timestamp: ts(10)},
		{CredentialID: "revoked", Timestamp: ts(100), Revoked: &revoked},
		{CredentialID: "new", Timestamp: ts(50)},
		{CredentialID: "untimed"},
		{CredentialID: "old-twin", Timestamp: ts(10)},
	})

	ids := make([]string, 0, len(matches))
	for _, m := range matches {
		ids = append(ids, m.CredentialID)
	}

	require.Equal(t, []string{"new", "old", "old-twin", "untimed", "revoked"}, ids)
}
