/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package proofmatch

import (
	"strconv"
	"strings"

	"github.com/hyperledger/aries-pexbridge-go/pkg/doc/anoncreds"
	"github.com/hyperledger/aries-pexbridge-go/pkg/store/credential"
)

// PredicateSatisfied reports whether the predicate referent has a match from credentialID, or from any
// candidate when credentialID is empty. When a match carries the raw attribute value, the operator is
// also checked against it.
func PredicateSatisfied(fields *anoncreds.CredentialsForProofRequest, query *Query, referentID,
	credentialID string) bool {
	if fields == nil {
		return false
	}

	requested := query.Request.RequestedPredicates[referentID]

	for _, match := range fields.Predicates[referentID] {
		if credentialID != "" && match.CredentialID != credentialID {
			continue
		}

		if requested == nil || matchSatisfies(match, requested) {
			return true
		}
	}

	return false
}

func matchSatisfies(match *anoncreds.Match, requested *anoncreds.RequestedPredicate) bool {
	raw, ok := match.AttributeValue(requested.Name)
	if !ok {
		return true
	}

	value, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return true
	}

	satisfied, err := requested.PType.Evaluate(value, requested.PValue)
	if err != nil {
		logger.Warnf("predicate %s: %s", requested.Name, err)

		return false
	}

	return satisfied
}

// HasSatisfiedPredicates is true iff every predicate field of every item is satisfied.
func HasSatisfiedPredicates(items ProofCredentialItems) bool {
	for _, item := range items {
		for _, p := range item.Predicates {
			if !p.Satisfied {
				return false
			}
		}
	}

	return true
}

// RevocationOffense reports whether any item belongs to a revoked exchange while one of its attribute or
// predicate fields asks for non-revocation past the revocation date.
func RevocationOffense(items ProofCredentialItems) bool {
	for _, item := range items {
		if item.ExchangeRecord == nil || !item.ExchangeRecord.Revoked() {
			continue
		}

		revokedAt := item.ExchangeRecord.RevocationNotification.RevocationDate

		for _, a := range item.Attributes {
			if a.NonRevoked.ExtendsPast(revokedAt) {
				return true
			}
		}

		for _, p := range item.Predicates {
			if p.NonRevoked.ExtendsPast(revokedAt) {
				return true
			}
		}
	}

	return false
}

// HasAvailableCredentials is true iff every referent of the query has at least one match.
func HasAvailableCredentials(filtered *anoncreds.CredentialsForProofRequest, query *Query) bool {
	for _, referent := range query.Referents {
		if len(Matches(filtered, referent)) == 0 {
			return false
		}
	}

	return true
}

// HasAvailableCredentialsForDefinition is true iff an item of the credential definition satisfies at least
// one field. An empty credDefID matches every item.
func HasAvailableCredentialsForDefinition(items ProofCredentialItems, credDefID string) bool {
	for _, item := range items {
		if credDefID != "" && item.CredentialDefinitionID != credDefID {
			continue
		}

		if len(item.Attributes)+len(item.Predicates) > 0 {
			return true
		}
	}

	return false
}

// SelectCredentials returns, per referent, the match of the credential selected for its descriptor.
// Referents without a selected match are absent.
func SelectCredentials(filtered *anoncreds.CredentialsForProofRequest, query *Query,
	selection Selection) map[string]*anoncreds.Match {
	selected := map[string]*anoncreds.Match{}

	for _, referent := range query.Referents {
		credentialID, ok := selection[referent.DescriptorID]
		if !ok {
			continue
		}

		for _, match := range Matches(filtered, referent) {
			if match.CredentialID == credentialID {
				selected[referent.ID] = match

				break
			}
		}
	}

	return selected
}

// Result is the outcome of evaluating a filtered match set against a selection.
type Result struct {
	Selection           Selection                   `json:"selection"`
	Items               ProofCredentialItems        `json:"items"`
	SelectedCredentials map[string]*anoncreds.Match `json:"selectedCredentials"`
	Available           bool                        `json:"available"`
	PredicatesSatisfied bool                        `json:"predicatesSatisfied"`
	RevocationOffense   bool                        `json:"revocationOffense"`
	AllHeld             bool                        `json:"allHeld"`
	// CanShare is true when every referent has a selected match, every selected credential is held,
	// every selected predicate is satisfied and no selected credential is offended by its revocation.
	CanShare bool `json:"canShare"`
}

// AllCredentialsHeld reports whether every item has a stored exchange record.
// Items that only appear as search hits cannot be presented.
func AllCredentialsHeld(items ProofCredentialItems) bool {
	for _, item := range items {
		if !item.Held {
			return false
		}
	}

	return true
}

// Evaluate resolves the selection, groups the matches and computes the share decision.
func Evaluate(query *Query, filtered *anoncreds.CredentialsForProofRequest, records []*credential.ExchangeRecord,
	overrides Selection) *Result {
	selection := ResolveSelection(filtered, query, overrides)
	items := GroupCredentials(filtered, query, records, selection)
	active := items.Active()
	selected := SelectCredentials(filtered, query, selection)

	result := &Result{
		Selection:           selection,
		Items:               items,
		SelectedCredentials: selected,
		Available:           HasAvailableCredentials(filtered, query),
		PredicatesSatisfied: HasSatisfiedPredicates(active),
		RevocationOffense:   RevocationOffense(active),
		AllHeld:             AllCredentialsHeld(active),
	}

	result.CanShare = len(selected) == len(query.Referents) && result.AllHeld &&
		result.PredicatesSatisfied && !result.RevocationOffense

	return result
}
