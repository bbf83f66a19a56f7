/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package pexbridge lets an AnonCreds holder answer DIF Presentation Exchange requests.
//
// Packages for end developer usage
//
// pkg/proofmatch: Translates a presentation definition into an AnonCreds proof request, filters the
// holder's matches against it and groups them into shareable credential items.
// Reference: https://pkg.go.dev/github.com/hyperledger/aries-pexbridge-go/pkg/proofmatch
//
// pkg/client/proofmatch: Runs a whole proof preparation cycle against a Holder Search Service and keeps
// the latest result per proof for reselection.
// Reference: https://pkg.go.dev/github.com/hyperledger/aries-pexbridge-go/pkg/client/proofmatch
//
// pkg/controller/rest/proofmatch: Provides proof preparation through REST.
// Reference: https://pkg.go.dev/github.com/hyperledger/aries-pexbridge-go/pkg/controller/rest/proofmatch
//
// Basic workflow
//
//      1) Store held credentials and their exchange records in pkg/store/credential.
//      2) Create a proof match client with a Holder Search Service (pkg/holdersearch).
//      3) Prepare a proof for an incoming presentation definition.
//      4) Change the selected credential per input descriptor until the result can be shared.
package pexbridge
