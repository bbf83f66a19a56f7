/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package proofmatch

import (
	"github.com/hyperledger/aries-pexbridge-go/pkg/controller/command/proofmatch"
)

// prepareProofRequest model
//
// This is used for operation to prepare a proof
//
// swagger:parameters prepareProof
type prepareProofRequest struct { // nolint: unused,deadcode
	// in: body
	// required: true
	Params proofmatch.PrepareProofArgs
}

// selectCredentialRequest model
//
// This is used for operation to pick another credential for a descriptor
//
// swagger:parameters selectCredential
type selectCredentialRequest struct { // nolint: unused,deadcode
	// Proof ID
	//
	// in: path
	// required: true
	ProofID string `json:"proof_id"`

	// in: body
	// required: true
	Params struct {
		DescriptorID string `json:"descriptor_id"`
		CredentialID string `json:"credential_id"`
	}
}

// getPreparedProofRequest model
//
// This is used for operation to get the latest prepared proof
//
// swagger:parameters getPreparedProof
type getPreparedProofRequest struct { // nolint: unused,deadcode
	// Proof ID
	//
	// in: path
	// required: true
	ProofID string `json:"proof_id"`
}

// preparedProofResponse model
//
// Represents a prepared proof
//
// swagger:response preparedProofResponse
type preparedProofResponse struct { // nolint: unused,deadcode
	// in: body
	proofmatch.PreparedProofResult
}

// saveCredentialRequest model
//
// This is used for operation to store a credential
//
// swagger:parameters saveCredential
type saveCredentialRequest struct { // nolint: unused,deadcode
	// in: body
	// required: true
	Params proofmatch.SaveCredentialArgs
}

// saveExchangeRecordRequest model
//
// This is used for operation to store a credential exchange record
//
// swagger:parameters saveExchangeRecord
type saveExchangeRecordRequest struct { // nolint: unused,deadcode
	// in: body
	// required: true
	Params proofmatch.SaveExchangeRecordArgs
}
