/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package anoncreds contains the AnonCreds restriction-based proof request model and the shape of
// the credential matches a holder search returns for such a request.
package anoncreds

import (
	"time"
)

// NonRevokedInterval is the window, in unix seconds, in which the credential must be proved unrevoked.
type NonRevokedInterval struct {
	From *int64 `json:"from,omitempty"`
	To   *int64 `json:"to,omitempty"`
}

// NewNonRevokedInterval returns the zero-width {now, now} interval.
func NewNonRevokedInterval(now time.Time) *NonRevokedInterval {
	from, to := now.Unix(), now.Unix()

	return &NonRevokedInterval{From: &from, To: &to}
}

// ExtendsPast reports whether the interval reaches beyond revokedAt, i.e. a proof relying on it
// would claim validity at a time the credential was already revoked.
func (i *NonRevokedInterval) ExtendsPast(revokedAt time.Time) bool {
	if i == nil {
		return false
	}

	revoked := revokedAt.Unix()

	return (i.To != nil && *i.To > revoked) || (i.From != nil && *i.From > revoked)
}

// Restriction narrows the credentials that may answer a requested attribute or predicate.
type Restriction struct {
	SchemaID               string `json:"schema_id,omitempty"`
	CredentialDefinitionID string `json:"cred_def_id,omitempty"`
}

// RequestedAttribute asks for one or more revealed attributes that must come from the same credential.
type RequestedAttribute struct {
	Name         string              `json:"name,omitempty"`
	Names        []string            `json:"names,omitempty"`
	Restrictions []Restriction       `json:"restrictions,omitempty"`
	NonRevoked   *NonRevokedInterval `json:"non_revoked,omitempty"`
	// DescriptorID links the entry back to the input descriptor it was generated from.
	DescriptorID string `json:"descriptorId,omitempty"`
}

// AttributeNames returns Names, or Name when only the single form is set.
func (a *RequestedAttribute) AttributeNames() []string {
	if len(a.Names) > 0 {
		return a.Names
	}

	if a.Name != "" {
		return []string{a.Name}
	}

	return nil
}

// RequestedPredicate asks for a zero-knowledge proof of a numeric relation on an attribute.
type RequestedPredicate struct {
	Name         string              `json:"name"`
	PType        PredicateType       `json:"p_type"`
	PValue       int64               `json:"p_value"`
	Restrictions []Restriction       `json:"restrictions,omitempty"`
	NonRevoked   *NonRevokedInterval `json:"non_revoked,omitempty"`
	DescriptorID string              `json:"descriptorId,omitempty"`
}

// ProofRequest is an AnonCreds proof request.
type ProofRequest struct {
	Name                string                         `json:"name"`
	Version             string                         `json:"version"`
	Nonce               string                         `json:"nonce"`
	RequestedAttributes map[string]*RequestedAttribute `json:"requested_attributes"`
	RequestedPredicates map[string]*RequestedPredicate `json:"requested_predicates"`
	NonRevoked          *NonRevokedInterval            `json:"non_revoked,omitempty"`
}
