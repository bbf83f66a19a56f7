/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package proofmatch_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hyperledger/aries-pexbridge-go/pkg/doc/anoncreds"
	"github.com/hyperledger/aries-pexbridge-go/pkg/doc/presexch"
	. "github.com/hyperledger/aries-pexbridge-go/pkg/proofmatch"
	"github.com/hyperledger/aries-pexbridge-go/pkg/store/credential"
)

const (
	schemaID  = "did:indy:bcovrin:test:TfuPA6whW681GfU6fj1e3k/anoncreds/v0/SCHEMA/Identity Schema/1.0.0"
	credDefID = "did:indy:bcovrin:test:TfuPA6whW681GfU6fj1e3k/anoncreds/v0/CLAIM_DEF/462230/latest"

	otherSchemaID  = "did:indy:bcovrin:test:Other/anoncreds/v0/SCHEMA/Other/1.0.0"
	otherCredDefID = "did:indy:bcovrin:test:Other/anoncreds/v0/CLAIM_DEF/1/latest"

	credentialID = "f2bd4e5f-1df5-4a3b-8a6a-5c3ba1a4c111"
	secondID     = "9c4b2f6e-2b4d-4f2c-9a36-7b8f3f1e2222"
	strangerID   = "0a1b2c3d-0000-4000-8000-000000003333"
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
    },
    {
      "id": "time",
      "constraints": {"fields": [{"path": ["$.proof.verificationMethod", "$.credentialSubject.time"]}]}
    }
  ]
}`

func definition(t *testing.T, raw string) *presexch.PresentationDefinition {
	t.Helper()

	var pd presexch.PresentationDefinition
	require.NoError(t, json.Unmarshal([]byte(raw), &pd))

	return &pd
}

func w3cRecord(id, schema, credDef string) *credential.W3CRecord {
	tags := map[string]interface{}{}
	if schema != "" {
		tags["anonCredsSchemaId"] = schema
	}

	if credDef != "" {
		tags["anonCredsCredentialDefinitionId"] = credDef
	}

	return &credential.W3CRecord{
		ID:          id,
		ClaimFormat: string(presexch.FormatLDPVC),
		Credential:  json.RawMessage(`{"credentialSubject":{"age":"16","email":"alice@example.com","time":"now"}}`),
		Tags:        tags,
	}
}

func candidates(records ...*credential.W3CRecord) []*SubmissionCandidate {
	out := make([]*SubmissionCandidate, 0, len(records))
	for _, r := range records {
		out = append(out, &SubmissionCandidate{Type: presexch.FormatLDPVC, CredentialRecord: r})
	}

	return out
}

func requirementFor(descriptors map[string][]*credential.W3CRecord, order ...string) *CredentialsForRequest {
	requirement := &Requirement{IsRequirementSatisfied: true}

	for _, id := range order {
		requirement.SubmissionEntry = append(requirement.SubmissionEntry, &SubmissionEntry{
			InputDescriptorID:     id,
			VerifiableCredentials: candidates(descriptors[id]...),
		})
	}

	return &CredentialsForRequest{AreRequirementsSatisfied: true, Requirements: []*Requirement{requirement}}
}

// ageIndex indexes a single credential as the candidate of age, email and time.
func ageIndex(t *testing.T) *DescriptorMetadataIndex {
	t.Helper()

	record := w3cRecord(credentialID, schemaID, credDefID)

	index, err := IndexDescriptorMetadata(requirementFor(map[string][]*credential.W3CRecord{
		"age":   {record},
		"email": {record},
		"time":  {record},
	}, "age", "email", "time"))
	require.NoError(t, err)

	return index
}

func match(id string, attrs map[string]string) *anoncreds.Match {
	return &anoncreds.Match{
		CredentialID: id,
		CredentialInfo: &anoncreds.CredentialInfo{
			CredentialID:           id,
			Attributes:             attrs,
			SchemaID:               schemaID,
			CredentialDefinitionID: credDefID,
		},
	}
}

func fixedNow() time.Time {
	return time.Unix(1_700_000_000, 0)
}

func doneRecord(id string, credentialIDs ...string) *credential.ExchangeRecord {
	record := &credential.ExchangeRecord{ID: id, State: credential.StateDone}

	for _, c := range credentialIDs {
		record.Credentials = append(record.Credentials,
			credential.CredentialBinding{CredentialRecordType: credential.RecordTypeW3C, CredentialRecordID: c})
	}

	return record
}
