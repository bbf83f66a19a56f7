/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package proofmatch

import (
	matchclient "github.com/hyperledger/aries-pexbridge-go/pkg/client/proofmatch"
	"github.com/hyperledger/aries-pexbridge-go/pkg/doc/presexch"
	matcher "github.com/hyperledger/aries-pexbridge-go/pkg/proofmatch"
	"github.com/hyperledger/aries-pexbridge-go/pkg/store/credential"
)

// PrepareProofArgs model
//
// This is used for preparing a proof for a presentation definition.
//
type PrepareProofArgs struct {
	// ProofID identifies the proof across its preparation cycles.
	ProofID string `json:"proof_id"`

	// PresentationDefinition to answer.
	PresentationDefinition *presexch.PresentationDefinition `json:"presentation_definition"`

	// Selection optionally pins a credential per input descriptor.
	Selection matcher.Selection `json:"selection,omitempty"`
}

// SelectCredentialArgs model
//
// This is used for picking another credential for an input descriptor of a prepared proof.
//
type SelectCredentialArgs struct {
	ProofID string `json:"proof_id"`
	matcher.SelectionChange
}

// ProofIDArg model
//
// This is used for querying a prepared proof.
//
type ProofIDArg struct {
	ProofID string `json:"proof_id"`
}

// PreparedProofResult model
//
// This is used for returning a prepared proof.
//
type PreparedProofResult struct {
	PreparedProof *matchclient.PreparedProof `json:"prepared_proof"`
}

// SaveCredentialArgs model
//
// This is used for storing a W3C credential backed by an AnonCreds credential.
//
type SaveCredentialArgs struct {
	CredentialRecord *credential.W3CRecord `json:"credential_record"`
}

// SaveExchangeRecordArgs model
//
// This is used for storing a credential exchange record.
//
type SaveExchangeRecordArgs struct {
	ExchangeRecord *credential.ExchangeRecord `json:"exchange_record"`
}
