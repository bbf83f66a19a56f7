/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package proofmatch_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"

	. "github.com/hyperledger/aries-pexbridge-go/pkg/client/proofmatch"
	"github.com/hyperledger/aries-pexbridge-go/pkg/doc/anoncreds"
	"github.com/hyperledger/aries-pexbridge-go/pkg/doc/presexch"
	mocks "github.com/hyperledger/aries-pexbridge-go/pkg/internal/gomocks/client/proofmatch"
	matcher "github.com/hyperledger/aries-pexbridge-go/pkg/proofmatch"
	"github.com/hyperledger/aries-pexbridge-go/pkg/store/credential"
)

const (
	schemaID  = "did:indy:bcovrin:test:TfuPA6whW681GfU6fj1e3k/anoncreds/v0/SCHEMA/Identity Schema/1.0.0"
	credDefID = "did:indy:bcovrin:test:TfuPA6whW681GfU6fj1e3k/anoncreds/v0/CLAIM_DEF/462230/latest"

	proofID  = "c5f2ab4e-8a1b-4c0f-9d7e-8f1a2b3c4d5e"
	firstID  = "f2bd4e5f-1df5-4a3b-8a6a-5c3ba1a4c111"
	secondID = "9c4b2f6e-2b4d-4f2c-9a36-7b8f3f1e2222"
)

const ageVerification = `{
  "id": "32f54163-7166-48f1-93d8-ff217bdb0653",
  "name": "Age Verification",
  "input_descriptors": [
    {
      "id": "age",
      "constraints": {
        "fields": [
          {
            "path": ["$.credentialSubject.age"],
            "filter": {"type": "number", "maximum": 18},
            "predicate": "required"
          }
        ]
      }
    },
    {
      "id": "email",
      "constraints": {"fields": [{"path": ["$.credentialSubject.email"]}]}
    }
  ]
}`

func definition(t *testing.T) *presexch.PresentationDefinition {
	t.Helper()

	var pd presexch.PresentationDefinition
	require.NoError(t, json.Unmarshal([]byte(ageVerification), &pd))

	return &pd
}

func record(id string, tagged bool) *credential.W3CRecord {
	r := &credential.W3CRecord{
		ID:          id,
		ClaimFormat: string(presexch.FormatLDPVC),
		Credential:  json.RawMessage(`{"credentialSubject":{"age":"16","email":"alice@example.com"}}`),
	}

	if tagged {
		r.Tags = map[string]interface{}{
			"anonCredsSchemaId":               schemaID,
			"anonCredsCredentialDefinitionId": credDefID,
		}
	}

	return r
}

func candidatesFor(records ...*credential.W3CRecord) *matcher.CredentialsForRequest {
	requirement := &matcher.Requirement{IsRequirementSatisfied: true}

	for _, descriptorID := range []string{"age", "email"} {
		entry := &matcher.SubmissionEntry{InputDescriptorID: descriptorID}

		for _, r := range records {
			entry.VerifiableCredentials = append(entry.VerifiableCredentials,
				&matcher.SubmissionCandidate{Type: presexch.FormatLDPVC, CredentialRecord: r})
		}

		requirement.SubmissionEntry = append(requirement.SubmissionEntry, entry)
	}

	return &matcher.CredentialsForRequest{AreRequirementsSatisfied: true, Requirements: []*matcher.Requirement{requirement}}
}

func matchesFor(ids ...string) *anoncreds.CredentialsForProofRequest {
	raw := &anoncreds.CredentialsForProofRequest{
		Attributes: map[string][]*anoncreds.Match{},
		Predicates: map[string][]*anoncreds.Match{},
	}

	for _, id := range ids {
		info := &anoncreds.CredentialInfo{
			CredentialID:           id,
			Attributes:             map[string]string{"age": "16", "email": id + "@example.com"},
			SchemaID:               schemaID,
			CredentialDefinitionID: credDefID,
		}

		raw.Attributes["email_attribute"] = append(raw.Attributes["email_attribute"],
			&anoncreds.Match{CredentialID: id, Revealed: true, CredentialInfo: info})
		raw.Predicates["age_predicate_0"] = append(raw.Predicates["age_predicate_0"],
			&anoncreds.Match{CredentialID: id, CredentialInfo: info})
	}

	return raw
}

func heldRecords(ids ...string) []*credential.ExchangeRecord {
	record := &credential.ExchangeRecord{ID: "exchange-1", State: credential.StateDone}

	for _, id := range ids {
		record.Credentials = append(record.Credentials,
			credential.CredentialBinding{CredentialRecordType: credential.RecordTypeW3C, CredentialRecordID: id})
	}

	return []*credential.ExchangeRecord{record}
}

type fixture struct {
	provider *mocks.MockProvider
	search   *mocks.MockHolderSearch
	records  *mocks.MockExchangeRecordStore
	notifier *mocks.MockNotifier
}

func newFixture(ctrl *gomock.Controller) *fixture {
	f := &fixture{
		provider: mocks.NewMockProvider(ctrl),
		search:   mocks.NewMockHolderSearch(ctrl),
		records:  mocks.NewMockExchangeRecordStore(ctrl),
		notifier: mocks.NewMockNotifier(ctrl),
	}

	f.provider.EXPECT().HolderSearch().Return(f.search).AnyTimes()
	f.provider.EXPECT().ExchangeRecordStore().Return(f.records).AnyTimes()

	return f
}

func noRetry() backoff.BackOff {
	return backoff.WithMaxRetries(&backoff.ZeroBackOff{}, 2)
}

func fixedClock() time.Time {
	return time.Unix(1_700_000_000, 0)
}

func TestNew(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	t.Run("success", func(t *testing.T) {
		f := newFixture(ctrl)

		c, err := New(f.provider, WithCacheSize(10), WithCacheExpiration(time.Minute))
		require.NoError(t, err)
		require.NotNil(t, c)
	})

	t.Run("invalid cache size", func(t *testing.T) {
		f := newFixture(ctrl)

		c, err := New(f.provider, WithCacheSize(0))
		require.EqualError(t, err, "invalid cache size 0")
		require.Nil(t, c)
	})

	t.Run("missing holder search", func(t *testing.T) {
		provider := mocks.NewMockProvider(ctrl)
		provider.EXPECT().HolderSearch().Return(nil)

		_, err := New(provider)
		require.EqualError(t, err, "holder search service is mandatory")
	})

	t.Run("missing exchange record store", func(t *testing.T) {
		provider := mocks.NewMockProvider(ctrl)
		provider.EXPECT().HolderSearch().Return(mocks.NewMockHolderSearch(ctrl))
		provider.EXPECT().ExchangeRecordStore().Return(nil)

		_, err := New(provider)
		require.EqualError(t, err, "exchange record store is mandatory")
	})
}

func TestClient_Prepare(t *testing.T) {
	t.Run("prepares, caches and notifies", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		f := newFixture(ctrl)

		f.search.EXPECT().CredentialsForRequest(gomock.Any(), gomock.Any()).
			Return(candidatesFor(record(firstID, true), record(secondID, true)), nil)
		f.search.EXPECT().CredentialsForProofRequest(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, req *anoncreds.ProofRequest) (*anoncreds.CredentialsForProofRequest, error) {
				require.Contains(t, req.RequestedAttributes, "email_attribute")
				require.Contains(t, req.RequestedPredicates, "age_predicate_0")
				require.Equal(t, fixedClock().Unix(), *req.RequestedAttributes["email_attribute"].NonRevoked.To)

				return matchesFor(firstID, secondID), nil
			})
		f.records.EXPECT().QueryExchangeRecords(credential.StateCredentialReceived, credential.StateDone).
			Return(heldRecords(firstID, secondID), nil)

		var notified PreparedProof

		f.notifier.EXPECT().Notify(PreparedProofTopic, gomock.Any()).DoAndReturn(func(_ string, msg []byte) error {
			require.NoError(t, json.Unmarshal(msg, &notified))

			return nil
		})

		c, err := New(f.provider, WithClock(fixedClock), WithRevocationFreshness(true), WithNotifier(f.notifier))
		require.NoError(t, err)

		proof, err := c.Prepare(context.Background(), proofID, definition(t), nil)
		require.NoError(t, err)
		require.False(t, proof.Stale)
		require.Equal(t, uint64(1), proof.Sequence)
		require.NotEmpty(t, proof.CycleID)
		require.NotEmpty(t, proof.ProofRequest.Nonce)
		require.True(t, proof.Result.CanShare)
		require.Equal(t, matcher.Selection{"age": firstID, "email": firstID}, proof.Result.Selection)
		require.Equal(t, proof.CycleID, notified.CycleID)

		latest, err := c.Get(proofID)
		require.NoError(t, err)
		require.Equal(t, proof, latest)
	})

	t.Run("retries the holder search", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		f := newFixture(ctrl)

		gomock.InOrder(
			f.search.EXPECT().CredentialsForRequest(gomock.Any(), gomock.Any()).Return(nil, errors.New("unavailable")),
			f.search.EXPECT().CredentialsForRequest(gomock.Any(), gomock.Any()).
				Return(candidatesFor(record(firstID, true)), nil),
		)
		f.search.EXPECT().CredentialsForProofRequest(gomock.Any(), gomock.Any()).Return(matchesFor(firstID), nil)
		f.records.EXPECT().QueryExchangeRecords(gomock.Any(), gomock.Any()).Return(heldRecords(firstID), nil)

		c, err := New(f.provider, WithSearchBackOff(noRetry))
		require.NoError(t, err)

		proof, err := c.Prepare(context.Background(), proofID, definition(t), nil)
		require.NoError(t, err)
		require.True(t, proof.Result.CanShare)
	})

	t.Run("search keeps failing", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		f := newFixture(ctrl)

		f.search.EXPECT().CredentialsForRequest(gomock.Any(), gomock.Any()).
			Return(nil, errors.New("unavailable")).Times(3)

		c, err := New(f.provider, WithSearchBackOff(noRetry))
		require.NoError(t, err)

		_, err = c.Prepare(context.Background(), proofID, definition(t), nil)
		require.EqualError(t, err, "search credentials for definition: unavailable")

		_, err = c.Get(proofID)
		require.True(t, errors.Is(err, ErrProofNotFound))
	})

	t.Run("proof request search fails", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		f := newFixture(ctrl)

		f.search.EXPECT().CredentialsForRequest(gomock.Any(), gomock.Any()).
			Return(candidatesFor(record(firstID, true)), nil)
		f.search.EXPECT().CredentialsForProofRequest(gomock.Any(), gomock.Any()).
			Return(nil, errors.New("unavailable")).Times(3)

		c, err := New(f.provider, WithSearchBackOff(noRetry))
		require.NoError(t, err)

		_, err = c.Prepare(context.Background(), proofID, definition(t), nil)
		require.EqualError(t, err, "search credentials for proof request: unavailable")
	})

	t.Run("fatal translation error", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		f := newFixture(ctrl)

		f.search.EXPECT().CredentialsForRequest(gomock.Any(), gomock.Any()).
			Return(candidatesFor(record(firstID, false)), nil)

		c, err := New(f.provider)
		require.NoError(t, err)

		_, err = c.Prepare(context.Background(), proofID, definition(t), nil)
		require.True(t, errors.Is(err, matcher.ErrMissingCredentialTags))
		require.True(t, matcher.IsFatal(err))
	})

	t.Run("exchange records fail", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		f := newFixture(ctrl)

		f.search.EXPECT().CredentialsForRequest(gomock.Any(), gomock.Any()).
			Return(candidatesFor(record(firstID, true)), nil)
		f.search.EXPECT().CredentialsForProofRequest(gomock.Any(), gomock.Any()).Return(matchesFor(firstID), nil)
		f.records.EXPECT().QueryExchangeRecords(gomock.Any(), gomock.Any()).Return(nil, errors.New("closed"))

		c, err := New(f.provider)
		require.NoError(t, err)

		_, err = c.Prepare(context.Background(), proofID, definition(t), nil)
		require.EqualError(t, err, "query exchange records: closed")
	})

	t.Run("invalid arguments", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		c, err := New(newFixture(ctrl).provider)
		require.NoError(t, err)

		_, err = c.Prepare(context.Background(), "", definition(t), nil)
		require.EqualError(t, err, "proof id is mandatory")

		_, err = c.Prepare(context.Background(), proofID, nil, nil)
		require.EqualError(t, err, "presentation definition is mandatory")
	})

	t.Run("credentials that are not held cannot be shared", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		f := newFixture(ctrl)

		f.search.EXPECT().CredentialsForRequest(gomock.Any(), gomock.Any()).
			Return(candidatesFor(record(firstID, true)), nil)
		f.search.EXPECT().CredentialsForProofRequest(gomock.Any(), gomock.Any()).Return(matchesFor(firstID), nil)
		f.records.EXPECT().QueryExchangeRecords(gomock.Any(), gomock.Any()).Return(nil, nil)

		c, err := New(f.provider)
		require.NoError(t, err)

		proof, err := c.Prepare(context.Background(), proofID, definition(t), nil)
		require.NoError(t, err)
		require.False(t, proof.Result.AllHeld)
		require.False(t, proof.Result.CanShare)
	})

	t.Run("failed latest cycle drops the prepared proof", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		f := newFixture(ctrl)

		gomock.InOrder(
			f.search.EXPECT().CredentialsForRequest(gomock.Any(), gomock.Any()).
				Return(candidatesFor(record(firstID, true)), nil),
			f.search.EXPECT().CredentialsForRequest(gomock.Any(), gomock.Any()).
				Return(candidatesFor(record(firstID, false)), nil),
		)
		f.search.EXPECT().CredentialsForProofRequest(gomock.Any(), gomock.Any()).Return(matchesFor(firstID), nil)
		f.records.EXPECT().QueryExchangeRecords(gomock.Any(), gomock.Any()).Return(heldRecords(firstID), nil)

		c, err := New(f.provider)
		require.NoError(t, err)

		first, err := c.Prepare(context.Background(), proofID, definition(t), nil)
		require.NoError(t, err)
		require.True(t, first.Result.CanShare)

		_, err = c.Prepare(context.Background(), proofID, definition(t), nil)
		require.True(t, matcher.IsFatal(err))

		_, err = c.Get(proofID)
		require.True(t, errors.Is(err, ErrProofNotFound))

		_, err = c.Select(proofID, matcher.SelectionChange{DescriptorID: "email", CredentialID: firstID})
		require.True(t, errors.Is(err, ErrProofNotFound))
	})

	t.Run("failed stale cycle keeps the newer proof", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		f := newFixture(ctrl)

		var c *Client

		var newer *PreparedProof

		gomock.InOrder(
			f.search.EXPECT().CredentialsForRequest(gomock.Any(), gomock.Any()).
				DoAndReturn(func(ctx context.Context, pd *presexch.PresentationDefinition) (*matcher.CredentialsForRequest, error) {
					var err error
					newer, err = c.Prepare(ctx, proofID, pd, nil)
					require.NoError(t, err)

					return candidatesFor(record(firstID, false)), nil
				}),
			f.search.EXPECT().CredentialsForRequest(gomock.Any(), gomock.Any()).
				Return(candidatesFor(record(firstID, true)), nil),
		)
		f.search.EXPECT().CredentialsForProofRequest(gomock.Any(), gomock.Any()).Return(matchesFor(firstID), nil)
		f.records.EXPECT().QueryExchangeRecords(gomock.Any(), gomock.Any()).Return(heldRecords(firstID), nil)

		var err error

		c, err = New(f.provider)
		require.NoError(t, err)

		_, err = c.Prepare(context.Background(), proofID, definition(t), nil)
		require.True(t, errors.Is(err, matcher.ErrMissingCredentialTags))

		latest, err := c.Get(proofID)
		require.NoError(t, err)
		require.Equal(t, newer.CycleID, latest.CycleID)
	})

	t.Run("a newer cycle makes the older one stale", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		f := newFixture(ctrl)

		var c *Client

		var newer *PreparedProof

		gomock.InOrder(
			f.search.EXPECT().CredentialsForRequest(gomock.Any(), gomock.Any()).
				DoAndReturn(func(ctx context.Context, pd *presexch.PresentationDefinition) (*matcher.CredentialsForRequest, error) {
					// the user changes the request while the first search is still in flight
					var err error
					newer, err = c.Prepare(ctx, proofID, pd, nil)
					require.NoError(t, err)

					return candidatesFor(record(firstID, true)), nil
				}),
			f.search.EXPECT().CredentialsForRequest(gomock.Any(), gomock.Any()).
				Return(candidatesFor(record(firstID, true)), nil),
		)
		f.search.EXPECT().CredentialsForProofRequest(gomock.Any(), gomock.Any()).Return(matchesFor(firstID), nil).Times(2)
		f.records.EXPECT().QueryExchangeRecords(gomock.Any(), gomock.Any()).Return(nil, nil).Times(2)
		f.notifier.EXPECT().Notify(PreparedProofTopic, gomock.Any()).Return(nil).Times(1)

		var err error

		c, err = New(f.provider, WithNotifier(f.notifier))
		require.NoError(t, err)

		older, err := c.Prepare(context.Background(), proofID, definition(t), nil)
		require.NoError(t, err)
		require.True(t, older.Stale)
		require.Equal(t, uint64(1), older.Sequence)

		require.False(t, newer.Stale)
		require.Equal(t, uint64(2), newer.Sequence)

		latest, err := c.Get(proofID)
		require.NoError(t, err)
		require.Equal(t, newer.CycleID, latest.CycleID)
	})
}

func TestClient_Select(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newFixture(ctrl)

	f.search.EXPECT().CredentialsForRequest(gomock.Any(), gomock.Any()).
		Return(candidatesFor(record(firstID, true), record(secondID, true)), nil).Times(1)
	f.search.EXPECT().CredentialsForProofRequest(gomock.Any(), gomock.Any()).
		Return(matchesFor(firstID, secondID), nil).Times(1)
	f.records.EXPECT().QueryExchangeRecords(gomock.Any(), gomock.Any()).
		Return(heldRecords(firstID, secondID), nil).Times(1)
	f.notifier.EXPECT().Notify(PreparedProofTopic, gomock.Any()).Return(errors.New("no subscribers")).Times(3)

	c, err := New(f.provider, WithNotifier(f.notifier))
	require.NoError(t, err)

	prepared, err := c.Prepare(context.Background(), proofID, definition(t), nil)
	require.NoError(t, err)

	t.Run("re-evaluates the cached cycle", func(t *testing.T) {
		proof, err := c.Select(proofID, matcher.SelectionChange{DescriptorID: "email", CredentialID: secondID})
		require.NoError(t, err)
		require.NotEqual(t, prepared.CycleID, proof.CycleID)
		require.Equal(t, prepared.Sequence, proof.Sequence)
		require.Equal(t, secondID, proof.Result.Selection["email"])
		require.Equal(t, firstID, proof.Result.Selection["age"])
		require.Equal(t, firstID, prepared.Result.Selection["email"])
		require.True(t, proof.Result.CanShare)

		second, ok := proof.Result.Items.Item(secondID)
		require.True(t, ok)
		require.Equal(t, []string{"email"}, second.SelectedFor)
	})

	t.Run("unknown credential falls back to the default", func(t *testing.T) {
		proof, err := c.Select(proofID, matcher.SelectionChange{DescriptorID: "age", CredentialID: "unknown"})
		require.NoError(t, err)
		require.Equal(t, firstID, proof.Result.Selection["age"])
		require.Equal(t, secondID, proof.Result.Selection["email"])
	})

	t.Run("unknown proof", func(t *testing.T) {
		_, err := c.Select("unknown", matcher.SelectionChange{DescriptorID: "age", CredentialID: firstID})
		require.True(t, errors.Is(err, ErrProofNotFound))
	})

	t.Run("empty proof id", func(t *testing.T) {
		_, err := c.Get("")
		require.EqualError(t, err, "proof id is mandatory")
	})
}
