/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package presexch implements the subset of Presentation Exchange (https://identity.foundation/presentation-exchange)
// needed to translate a presentation definition into an AnonCreds proof request.
package presexch

// ClaimFormat is a registered claim format designation.
type ClaimFormat string

// Claim formats a holder search may report for a candidate credential.
const (
	FormatLDPVC ClaimFormat = "ldp_vc"
	FormatLDPVP ClaimFormat = "ldp_vp"
	FormatJWTVC ClaimFormat = "jwt_vc"
	FormatJWTVP ClaimFormat = "jwt_vp"
)
