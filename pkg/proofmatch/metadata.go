/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package proofmatch

import (
	"fmt"

	"github.com/hyperledger/aries-pexbridge-go/pkg/doc/anoncreds"
	"github.com/hyperledger/aries-pexbridge-go/pkg/doc/presexch"
	"github.com/hyperledger/aries-pexbridge-go/pkg/store/credential"
)

// CredentialsForRequest is the holder search result for a presentation definition:
// the candidate credentials of every input descriptor.
type CredentialsForRequest struct {
	AreRequirementsSatisfied bool           `json:"areRequirementsSatisfied"`
	Requirements             []*Requirement `json:"requirements"`
}

// Requirement groups the submission entries of one submission requirement.
type Requirement struct {
	IsRequirementSatisfied bool               `json:"isRequirementSatisfied"`
	Rule                   presexch.Selection `json:"rule,omitempty"`
	NeedsCount             int                `json:"needsCount,omitempty"`
	SubmissionEntry        []*SubmissionEntry `json:"submissionEntry"`
}

// SubmissionEntry lists the candidates found for one input descriptor.
type SubmissionEntry struct {
	InputDescriptorID     string                 `json:"inputDescriptorId"`
	Name                  string                 `json:"name,omitempty"`
	Purpose               string                 `json:"purpose,omitempty"`
	VerifiableCredentials []*SubmissionCandidate `json:"verifiableCredentials"`
}

// SubmissionCandidate is a held credential that may answer an input descriptor.
type SubmissionCandidate struct {
	Type             presexch.ClaimFormat  `json:"type"`
	CredentialRecord *credential.W3CRecord `json:"credentialRecord"`
}

// RecordMetadata is a candidate record together with its AnonCreds identifiers.
type RecordMetadata struct {
	Record *credential.W3CRecord
	Tags   *anoncreds.CredentialTags
}

// RecordID returns the stable id of the record.
func (m *RecordMetadata) RecordID() string {
	return m.Record.ID
}

// DescriptorMetadataIndex maps descriptor ids to their candidate records.
// A record appears at most once per descriptor, in the order it was first seen.
type DescriptorMetadataIndex struct {
	descriptors []string
	records     map[string][]*RecordMetadata
}

// NewDescriptorMetadataIndex returns an empty index.
func NewDescriptorMetadataIndex() *DescriptorMetadataIndex {
	return &DescriptorMetadataIndex{records: map[string][]*RecordMetadata{}}
}

// Add appends a record to a descriptor unless a record with the same id is already there.
func (i *DescriptorMetadataIndex) Add(descriptorID string, metadata *RecordMetadata) {
	existing, ok := i.records[descriptorID]
	if !ok {
		i.descriptors = append(i.descriptors, descriptorID)
	}

	for _, m := range existing {
		if m.RecordID() == metadata.RecordID() {
			return
		}
	}

	i.records[descriptorID] = append(existing, metadata)
}

// Descriptors returns the indexed descriptor ids in first-seen order.
func (i *DescriptorMetadataIndex) Descriptors() []string {
	return append([]string(nil), i.descriptors...)
}

// Records returns the candidate records of a descriptor.
func (i *DescriptorMetadataIndex) Records(descriptorID string) []*RecordMetadata {
	return i.records[descriptorID]
}

// Contains reports whether the record is a candidate of the descriptor.
func (i *DescriptorMetadataIndex) Contains(descriptorID, recordID string) bool {
	for _, m := range i.Records(descriptorID) {
		if m.RecordID() == recordID {
			return true
		}
	}

	return false
}

// Restrictions returns one restriction clause per candidate record of the descriptor.
func (i *DescriptorMetadataIndex) Restrictions(descriptorID string) []anoncreds.Restriction {
	records := i.Records(descriptorID)
	if len(records) == 0 {
		return nil
	}

	restrictions := make([]anoncreds.Restriction, 0, len(records))
	for _, m := range records {
		restrictions = append(restrictions, m.Tags.Restriction())
	}

	return restrictions
}

// IndexDescriptorMetadata builds the descriptor metadata index from a holder search result.
// Every candidate must be an ldp_vc record carrying AnonCreds tags.
func IndexDescriptorMetadata(credentialsForRequest *CredentialsForRequest) (*DescriptorMetadataIndex, error) {
	index := NewDescriptorMetadataIndex()

	if credentialsForRequest == nil {
		return index, nil
	}

	for _, requirement := range credentialsForRequest.Requirements {
		for _, entry := range requirement.SubmissionEntry {
			metadata := make([]*RecordMetadata, 0, len(entry.VerifiableCredentials))

			for _, candidate := range entry.VerifiableCredentials {
				m, err := recordMetadata(entry.InputDescriptorID, candidate)
				if err != nil {
					return nil, err
				}

				metadata = append(metadata, m)
			}

			if _, ok := index.records[entry.InputDescriptorID]; !ok {
				index.descriptors = append(index.descriptors, entry.InputDescriptorID)
				index.records[entry.InputDescriptorID] = nil
			}

			for _, m := range metadata {
				index.Add(entry.InputDescriptorID, m)
			}
		}
	}

	return index, nil
}

func recordMetadata(descriptorID string, candidate *SubmissionCandidate) (*RecordMetadata, error) {
	if candidate.Type != presexch.FormatLDPVC {
		return nil, &Error{Err: ErrUnsupportedClaimFormat, DescriptorID: descriptorID, Detail: string(candidate.Type)}
	}

	record := candidate.CredentialRecord
	if record == nil || record.ID == "" {
		return nil, &Error{Err: ErrMissingCredentialTags, DescriptorID: descriptorID, Detail: "candidate has no record"}
	}

	tags, err := anoncreds.ExtractTags(record.Tags)
	if err != nil {
		return nil, &Error{
			Err:          ErrMissingCredentialTags,
			DescriptorID: descriptorID,
			Detail:       fmt.Sprintf("record %s: %s", record.ID, err),
		}
	}

	if !tags.Complete() {
		return nil, &Error{Err: ErrMissingCredentialTags, DescriptorID: descriptorID, Detail: "record " + record.ID}
	}

	return &RecordMetadata{Record: record, Tags: tags}, nil
}
