/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package proofmatch_test

import (
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hyperledger/aries-pexbridge-go/pkg/doc/anoncreds"
	. "github.com/hyperledger/aries-pexbridge-go/pkg/proofmatch"
	"github.com/hyperledger/aries-pexbridge-go/pkg/store/credential"
)

func twoCandidateIndex(t *testing.T) *DescriptorMetadataIndex {
	t.Helper()

	first := w3cRecord(credentialID, schemaID, credDefID)
	second := w3cRecord(secondID, schemaID, credDefID)

	index, err := IndexDescriptorMetadata(requirementFor(map[string][]*credential.W3CRecord{
		"age":   {first, second},
		"email": {first, second},
		"time":  {first},
	}, "age", "email", "time"))
	require.NoError(t, err)

	return index
}

func TestGroupCredentials(t *testing.T) {
	t.Run("one credential answering every descriptor", func(t *testing.T) {
		query, index := ageQuery(t)

		filtered, err := FilterMatches(ageMatches(credentialID), index, query)
		require.NoError(t, err)

		items := GroupCredentials(filtered, query, []*credential.ExchangeRecord{doneRecord("ex-1", credentialID)},
			DefaultSelection(filtered, query))

		require.Len(t, items, 1)

		item := items[0]
		require.Equal(t, credentialID, item.CredentialID)
		require.Equal(t, []string{}, item.AlternativeCredentialIDs)
		require.True(t, item.Held)
		require.Equal(t, "ex-1", item.ExchangeRecord.ID)
		require.Equal(t, credDefID, item.CredentialDefinitionID)
		require.Equal(t, []string{"age", "email", "time"}, item.SelectedFor)

		require.Len(t, item.Attributes, 2)
		require.Equal(t, "email", item.Attributes[0].Name)
		require.Equal(t, credentialID+"@example.com", item.Attributes[0].Value)
		require.Len(t, item.Predicates, 1)
		require.Equal(t, anoncreds.PredicateLessOrEqual, item.Predicates[0].PType)
		require.True(t, item.Predicates[0].Satisfied)
	})

	t.Run("alternatives are the intersection over satisfied fields", func(t *testing.T) {
		index := twoCandidateIndex(t)

		query, err := Translate(definition(t, ageVerification), index, fixedNow())
		require.NoError(t, err)

		filtered, err := FilterMatches(ageMatches(credentialID, secondID), index, query)
		require.NoError(t, err)

		items := GroupCredentials(filtered, query, nil, DefaultSelection(filtered, query))
		require.Len(t, items, 2)

		first, ok := items.Item(credentialID)
		require.True(t, ok)
		require.Equal(t, []string{}, first.AlternativeCredentialIDs)
		require.Equal(t, []string{secondID}, first.Attributes[0].AlternativeCredentialIDs)

		second, ok := items.Item(secondID)
		require.True(t, ok)
		require.Equal(t, []string{credentialID}, second.AlternativeCredentialIDs)
		require.Empty(t, second.SelectedFor)
	})

	t.Run("unheld credentials are flagged", func(t *testing.T) {
		query, index := ageQuery(t)

		filtered, err := FilterMatches(ageMatches(credentialID), index, query)
		require.NoError(t, err)

		items := GroupCredentials(filtered, query, nil, nil)
		require.Len(t, items, 1)
		require.False(t, items[0].Held)
		require.Nil(t, items[0].ExchangeRecord)
		require.Empty(t, items[0].SelectedFor)
	})

	t.Run("revoked exchange record flags the item", func(t *testing.T) {
		query, index := ageQuery(t)

		filtered, err := FilterMatches(ageMatches(credentialID), index, query)
		require.NoError(t, err)

		record := doneRecord("ex-1", credentialID)
		record.RevocationNotification = &credential.RevocationNotification{RevocationDate: time.Now()}

		items := GroupCredentials(filtered, query, []*credential.ExchangeRecord{record}, nil)
		require.True(t, items[0].Revoked)
		require.True(t, items[0].Attributes[0].Revoked)
	})

	t.Run("grouping keeps every filtered credential id", func(t *testing.T) {
		index := twoCandidateIndex(t)

		query, err := Translate(definition(t, ageVerification), index, fixedNow())
		require.NoError(t, err)

		raw := ageMatches(credentialID, secondID, strangerID)

		filtered, err := FilterMatches(raw, index, query)
		require.NoError(t, err)

		expected := map[string]struct{}{}
		for _, referent := range query.Referents {
			for _, m := range Matches(filtered, referent) {
				expected[m.CredentialID] = struct{}{}
			}
		}

		var want []string
		for id := range expected {
			want = append(want, id)
		}

		got := GroupCredentials(filtered, query, nil, nil).CredentialIDs()

		sort.Strings(want)
		sort.Strings(got)
		require.Equal(t, want, got)
		require.NotContains(t, got, strangerID)
	})
}
