/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package proofmatch

import (
	"golang.org/x/exp/slices"

	"github.com/hyperledger/aries-pexbridge-go/pkg/doc/anoncreds"
	"github.com/hyperledger/aries-pexbridge-go/pkg/store/credential"
)

// AttributeField is a revealed attribute a credential can answer.
type AttributeField struct {
	Referent                 string                        `json:"referent"`
	DescriptorID             string                        `json:"descriptorId"`
	Name                     string                        `json:"name"`
	Value                    string                        `json:"value,omitempty"`
	Revoked                  bool                          `json:"revoked,omitempty"`
	NonRevoked               *anoncreds.NonRevokedInterval `json:"nonRevoked,omitempty"`
	AlternativeCredentialIDs []string                      `json:"alternativeCredentialIds"`
}

// PredicateField is a predicate a credential can answer.
type PredicateField struct {
	Referent                 string                        `json:"referent"`
	DescriptorID             string                        `json:"descriptorId"`
	Name                     string                        `json:"name"`
	PType                    anoncreds.PredicateType       `json:"pType"`
	PValue                   int64                         `json:"pValue"`
	Satisfied                bool                          `json:"satisfied"`
	Revoked                  bool                          `json:"revoked,omitempty"`
	NonRevoked               *anoncreds.NonRevokedInterval `json:"nonRevoked,omitempty"`
	AlternativeCredentialIDs []string                      `json:"alternativeCredentialIds"`
}

// ProofCredentialItem is one physical credential and every requested field it satisfies.
type ProofCredentialItem struct {
	CredentialID           string `json:"credentialId"`
	SchemaID               string `json:"schemaId,omitempty"`
	CredentialDefinitionID string `json:"credentialDefinitionId,omitempty"`
	// ExchangeRecord is nil when the credential is a search hit the holder no longer holds.
	ExchangeRecord *credential.ExchangeRecord `json:"exchangeRecord,omitempty"`
	Held           bool                       `json:"held"`
	Revoked        bool                       `json:"revoked,omitempty"`
	Attributes     []*AttributeField          `json:"attributes,omitempty"`
	Predicates     []*PredicateField          `json:"predicates,omitempty"`
	// AlternativeCredentialIDs can replace this credential for all of its fields.
	AlternativeCredentialIDs []string `json:"alternativeCredentialIds"`
	// SelectedFor lists the descriptors this credential currently answers.
	SelectedFor []string `json:"selectedFor,omitempty"`
}

// ProofCredentialItems is the grouped view of a filtered match set.
type ProofCredentialItems []*ProofCredentialItem

// Item returns the item of the given credential.
func (items ProofCredentialItems) Item(credentialID string) (*ProofCredentialItem, bool) {
	for _, item := range items {
		if item.CredentialID == credentialID {
			return item, true
		}
	}

	return nil, false
}

// CredentialIDs returns the credential id of every item.
func (items ProofCredentialItems) CredentialIDs() []string {
	ids := make([]string, 0, len(items))

	for _, item := range items {
		ids = append(ids, item.CredentialID)
	}

	return ids
}

// Active returns the selected items, each narrowed to the fields of the descriptors it is selected for.
func (items ProofCredentialItems) Active() ProofCredentialItems {
	var active ProofCredentialItems

	for _, item := range items {
		if len(item.SelectedFor) == 0 {
			continue
		}

		narrowed := *item
		narrowed.Attributes = nil
		narrowed.Predicates = nil

		for _, a := range item.Attributes {
			if slices.Contains(item.SelectedFor, a.DescriptorID) {
				narrowed.Attributes = append(narrowed.Attributes, a)
			}
		}

		for _, p := range item.Predicates {
			if slices.Contains(item.SelectedFor, p.DescriptorID) {
				narrowed.Predicates = append(narrowed.Predicates, p)
			}
		}

		active = append(active, &narrowed)
	}

	return active
}

// GroupCredentials folds a filtered match set into one item per credential id, in first-seen order.
// records are the holder's credential exchange records, used to link and flag items.
func GroupCredentials(filtered *anoncreds.CredentialsForProofRequest, query *Query,
	records []*credential.ExchangeRecord, selection Selection) ProofCredentialItems {
	var items ProofCredentialItems

	byID := map[string]*ProofCredentialItem{}
	fieldAlternatives := map[string][][]string{}

	for _, referent := range query.Referents {
		matches := Matches(filtered, referent)

		for _, match := range matches {
			item, ok := byID[match.CredentialID]
			if !ok {
				item = newItem(match, records)
				byID[match.CredentialID] = item
				items = append(items, item)
			}

			if match.IsRevoked() {
				item.Revoked = true
			}

			alternatives := otherIDs(matches, match.CredentialID)
			fieldAlternatives[match.CredentialID] = append(fieldAlternatives[match.CredentialID], alternatives)

			switch referent.Kind {
			case AttributeReferent:
				item.Attributes = append(item.Attributes, attributeFields(query, referent, match, item.Revoked,
					alternatives)...)
			case PredicateReferent:
				item.Predicates = append(item.Predicates, predicateField(filtered, query, referent, match, item.Revoked,
					alternatives))
			}
		}
	}

	for _, item := range items {
		item.AlternativeCredentialIDs = intersect(fieldAlternatives[item.CredentialID])

		for _, descriptorID := range query.Descriptors() {
			if selection[descriptorID] == item.CredentialID {
				item.SelectedFor = append(item.SelectedFor, descriptorID)
			}
		}
	}

	return items
}

func newItem(match *anoncreds.Match, records []*credential.ExchangeRecord) *ProofCredentialItem {
	item := &ProofCredentialItem{CredentialID: match.CredentialID}

	if info := match.CredentialInfo; info != nil {
		item.SchemaID = info.SchemaID
		item.CredentialDefinitionID = info.CredentialDefinitionID
	}

	if record, ok := credential.ExchangeRecordForCredential(records, match.CredentialID); ok {
		item.ExchangeRecord = record
		item.Held = true
		item.Revoked = record.Revoked()
	} else {
		logger.Warnf("credential %s matches the proof request but is not currently held", match.CredentialID)
	}

	return item
}

func attributeFields(query *Query, referent Referent, match *anoncreds.Match, revoked bool,
	alternatives []string) []*AttributeField {
	requested := query.Request.RequestedAttributes[referent.ID]
	if requested == nil {
		return nil
	}

	names := requested.AttributeNames()
	fields := make([]*AttributeField, 0, len(names))

	for _, name := range names {
		value, _ := match.AttributeValue(name)

		fields = append(fields, &AttributeField{
			Referent:                 referent.ID,
			DescriptorID:             referent.DescriptorID,
			Name:                     name,
			Value:                    value,
			Revoked:                  revoked,
			NonRevoked:               query.NonRevoked(referent.ID),
			AlternativeCredentialIDs: alternatives,
		})
	}

	return fields
}

func predicateField(filtered *anoncreds.CredentialsForProofRequest, query *Query, referent Referent,
	match *anoncreds.Match, revoked bool, alternatives []string) *PredicateField {
	field := &PredicateField{
		Referent:                 referent.ID,
		DescriptorID:             referent.DescriptorID,
		Revoked:                  revoked,
		AlternativeCredentialIDs: alternatives,
		Satisfied:                PredicateSatisfied(filtered, query, referent.ID, match.CredentialID),
	}

	if requested := query.Request.RequestedPredicates[referent.ID]; requested != nil {
		field.Name = requested.Name
		field.PType = requested.PType
		field.PValue = requested.PValue
		field.NonRevoked = query.NonRevoked(referent.ID)
	}

	return field
}

func otherIDs(matches []*anoncreds.Match, self string) []string {
	ids := []string{}

	for _, m := range matches {
		if m.CredentialID != self && !slices.Contains(ids, m.CredentialID) {
			ids = append(ids, m.CredentialID)
		}
	}

	return ids
}

// intersect keeps the ids of the first list present in every other list.
func intersect(lists [][]string) []string {
	result := []string{}

	if len(lists) == 0 {
		return result
	}

	for _, id := range lists[0] {
		inAll := true

		for _, other := range lists[1:] {
			if !slices.Contains(other, id) {
				inAll = false

				break
			}
		}

		if inAll {
			result = append(result, id)
		}
	}

	return result
}
