/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package proofmatch

import (
	"fmt"
	"net/http"

	matchclient "github.com/hyperledger/aries-pexbridge-go/pkg/client/proofmatch"
	"github.com/hyperledger/aries-pexbridge-go/pkg/controller/command"
	"github.com/hyperledger/aries-pexbridge-go/pkg/controller/command/proofmatch"
	"github.com/hyperledger/aries-pexbridge-go/pkg/controller/internal/cmdutil"
	"github.com/hyperledger/aries-pexbridge-go/pkg/controller/rest"
)

const (
	// OperationID is the base path of the proof match operations.
	OperationID = "/proofmatch"

	PreparePath            = OperationID + "/prepare"
	SelectPath             = OperationID + "/{proof_id}/select"
	GetPreparedProofPath   = OperationID + "/{proof_id}"
	SaveCredentialPath     = OperationID + "/credentials"
	SaveExchangeRecordPath = OperationID + "/exchange-records"

	proofIDPathParam = "proof_id"
)

// Operation contains proof match operations provided by controller REST API.
type Operation struct {
	handlers []rest.Handler
	command  *proofmatch.Command
}

// New returns new proof match rest client instance.
func New(ctx proofmatch.Provider, notifier command.Notifier, opts ...matchclient.Option) (*Operation, error) {
	cmd, err := proofmatch.New(ctx, notifier, opts...)
	if err != nil {
		return nil, fmt.Errorf("new proof match command : %w", err)
	}

	o := &Operation{command: cmd}
	o.registerHandler()

	return o, nil
}

// GetRESTHandlers get all controller API handler available for this service.
func (o *Operation) GetRESTHandlers() []rest.Handler {
	return o.handlers
}

// registerHandler register handlers to be exposed from this protocol service as REST API endpoints.
func (o *Operation) registerHandler() {
	o.handlers = []rest.Handler{
		cmdutil.NewHTTPHandler(PreparePath, http.MethodPost, o.PrepareProof),
		cmdutil.NewHTTPHandler(SaveCredentialPath, http.MethodPost, o.SaveCredential),
		cmdutil.NewHTTPHandler(SaveExchangeRecordPath, http.MethodPost, o.SaveExchangeRecord),
		cmdutil.NewHTTPHandler(SelectPath, http.MethodPost, o.SelectCredential),
		cmdutil.NewHTTPHandler(GetPreparedProofPath, http.MethodGet, o.GetPreparedProof),
	}
}

// PrepareProof swagger:route POST /proofmatch/prepare proofmatch prepareProof
//
// Prepares a proof for a presentation definition.
//
// Responses:
//    default: genericError
//        200: preparedProofResponse
func (o *Operation) PrepareProof(rw http.ResponseWriter, req *http.Request) {
	rest.Execute(o.command.PrepareProof, rw, req.Body)
}

// SelectCredential swagger:route POST /proofmatch/{proof_id}/select proofmatch selectCredential
//
// Picks another credential for an input descriptor of a prepared proof.
//
// Responses:
//    default: genericError
//        200: preparedProofResponse
func (o *Operation) SelectCredential(rw http.ResponseWriter, req *http.Request) {
	cmdutil.ExecWithPathVars(o.command.SelectCredential, proofmatch.InvalidRequestErrorCode, proofIDPathParam)(rw, req)
}

// GetPreparedProof swagger:route GET /proofmatch/{proof_id} proofmatch getPreparedProof
//
// Returns the latest prepared proof.
//
// Responses:
//    default: genericError
//        200: preparedProofResponse
func (o *Operation) GetPreparedProof(rw http.ResponseWriter, req *http.Request) {
	cmdutil.ExecWithPathVars(o.command.GetPreparedProof, proofmatch.InvalidRequestErrorCode, proofIDPathParam)(rw, req)
}

// SaveCredential swagger:route POST /proofmatch/credentials proofmatch saveCredential
//
// Stores a W3C credential backed by an AnonCreds credential.
//
// Responses:
//    default: genericError
func (o *Operation) SaveCredential(rw http.ResponseWriter, req *http.Request) {
	rest.Execute(o.command.SaveCredential, rw, req.Body)
}

// SaveExchangeRecord swagger:route POST /proofmatch/exchange-records proofmatch saveExchangeRecord
//
// Stores a credential exchange record.
//
// Responses:
//    default: genericError
func (o *Operation) SaveExchangeRecord(rw http.ResponseWriter, req *http.Request) {
	rest.Execute(o.command.SaveExchangeRecord, rw, req.Body)
}
