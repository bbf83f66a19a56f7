/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package proofmatch provides a client that runs proof-preparation cycles for presentation definitions
// against AnonCreds-backed credentials.
//
// A cycle searches the holder's credentials for the definition, translates the definition into a
// restriction-based proof request, searches again for the proof request and groups the surviving matches
// into credential items together with the share decision.
//
//	client, err := proofmatch.New(ctx)
//	if err != nil {
//		panic(err)
//	}
//
//	proof, err := client.Prepare(context.Background(), proofID, definition, nil)
//	if err != nil {
//		panic(err)
//	}
//
//	proof, err = client.Select(proofID, matcher.SelectionChange{DescriptorID: "email", CredentialID: otherID})
//
// Cycles for the same proof id follow last-write-wins: a cycle that finishes after a newer one for the same
// proof id was started is returned flagged as stale and is neither cached nor notified.
package proofmatch
