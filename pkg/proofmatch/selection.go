/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package proofmatch

import (
	"golang.org/x/exp/slices"

	"github.com/hyperledger/aries-pexbridge-go/pkg/doc/anoncreds"
)

// Selection maps descriptor ids to the credential chosen to answer them.
type Selection map[string]string

// SelectionChange picks a credential for a descriptor. An empty CredentialID drops the choice.
type SelectionChange struct {
	DescriptorID string `json:"descriptor_id"`
	CredentialID string `json:"credential_id"`
}

// Apply returns a new selection with the change applied. s is left untouched.
func (s Selection) Apply(change SelectionChange) Selection {
	next := make(Selection, len(s)+1)

	for k, v := range s {
		next[k] = v
	}

	if change.CredentialID == "" {
		delete(next, change.DescriptorID)
	} else {
		next[change.DescriptorID] = change.CredentialID
	}

	return next
}

// CandidateIDs returns the credential ids matching any referent of the descriptor, in referent then match order.
func CandidateIDs(filtered *anoncreds.CredentialsForProofRequest, query *Query, descriptorID string) []string {
	var ids []string

	for _, referent := range query.DescriptorReferents(descriptorID) {
		for _, match := range Matches(filtered, referent) {
			if !slices.Contains(ids, match.CredentialID) {
				ids = append(ids, match.CredentialID)
			}
		}
	}

	return ids
}

// DefaultSelection picks, for every descriptor, the first credential of its first non-empty match list.
func DefaultSelection(filtered *anoncreds.CredentialsForProofRequest, query *Query) Selection {
	selection := Selection{}

	for _, descriptorID := range query.Descriptors() {
		for _, referent := range query.DescriptorReferents(descriptorID) {
			if matches := Matches(filtered, referent); len(matches) > 0 {
				selection[descriptorID] = matches[0].CredentialID

				break
			}
		}
	}

	return selection
}

// ResolveSelection applies the overrides on top of the default selection. An override naming a
// descriptor or credential that is not among the matches is ignored.
func ResolveSelection(filtered *anoncreds.CredentialsForProofRequest, query *Query, overrides Selection) Selection {
	selection := DefaultSelection(filtered, query)

	for descriptorID, credentialID := range overrides {
		if !slices.Contains(CandidateIDs(filtered, query, descriptorID), credentialID) {
			logger.Warnf("ignoring selection of credential %s for input descriptor '%s': not a match",
				credentialID, descriptorID)

			continue
		}

		selection = selection.Apply(SelectionChange{DescriptorID: descriptorID, CredentialID: credentialID})
	}

	return selection
}
