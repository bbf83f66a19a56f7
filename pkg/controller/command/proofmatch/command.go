/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package proofmatch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/hyperledger/aries-framework-go/component/log"
	"github.com/hyperledger/aries-framework-go/spi/storage"

	matchclient "github.com/hyperledger/aries-pexbridge-go/pkg/client/proofmatch"
	"github.com/hyperledger/aries-pexbridge-go/pkg/controller/command"
	"github.com/hyperledger/aries-pexbridge-go/pkg/controller/internal/cmdutil"
	"github.com/hyperledger/aries-pexbridge-go/pkg/doc/presexch"
	"github.com/hyperledger/aries-pexbridge-go/pkg/holdersearch"
	"github.com/hyperledger/aries-pexbridge-go/pkg/internal/logutil"
	matcher "github.com/hyperledger/aries-pexbridge-go/pkg/proofmatch"
	"github.com/hyperledger/aries-pexbridge-go/pkg/store/credential"
)

var logger = log.New("aries-framework/command/proofmatch")

// Error codes.
const (
	// InvalidRequestErrorCode is typically a code for invalid requests.
	InvalidRequestErrorCode = command.Code(iota + command.ProofMatch)

	// PrepareProofErrorCode for prepare proof error.
	PrepareProofErrorCode

	// ProofRequestErrorCode for a definition that cannot be turned into a proof request.
	ProofRequestErrorCode

	// SelectCredentialErrorCode for select credential error.
	SelectCredentialErrorCode

	// GetPreparedProofErrorCode for get prepared proof error.
	GetPreparedProofErrorCode

	// SaveCredentialErrorCode for save credential error.
	SaveCredentialErrorCode

	// SaveExchangeRecordErrorCode for save exchange record error.
	SaveExchangeRecordErrorCode
)

const (
	// CommandName package command name.
	CommandName = "proofmatch"

	// command methods.
	PrepareProofCommandMethod       = "PrepareProof"
	SelectCredentialCommandMethod   = "SelectCredential"
	GetPreparedProofCommandMethod   = "GetPreparedProof"
	SaveCredentialCommandMethod     = "SaveCredential"
	SaveExchangeRecordCommandMethod = "SaveExchangeRecord"

	// error messages.
	errEmptyProofID             = "proof id is mandatory"
	errEmptyDefinition          = "presentation definition is mandatory"
	errEmptyDescriptorID        = "descriptor id is mandatory"
	errEmptyCredentialRecord    = "credential record id is mandatory"
	errEmptyExchangeRecord      = "exchange record id is mandatory"
	errProofRequestNotProcessed = "proof request could not be processed"

	// log constants.
	proofIDString = "proofID"
	recordID      = "recordID"
)

// Provider contains dependencies for the proof match command.
type Provider interface {
	StorageProvider() storage.Provider
}

// clientProvider wires the in-process holder search into the proof match client.
type clientProvider struct {
	search *holdersearch.Service
	store  *credential.Store
}

func (p *clientProvider) HolderSearch() matchclient.HolderSearch {
	return p.search
}

func (p *clientProvider) ExchangeRecordStore() matchclient.ExchangeRecordStore {
	return p.store
}

// Command contains command operations provided by the proof match controller.
type Command struct {
	client *matchclient.Client
	store  *credential.Store
}

// New returns new proof match controller command instance.
func New(ctx Provider, notifier command.Notifier, opts ...matchclient.Option) (*Command, error) {
	store, err := credential.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("new credential store : %w", err)
	}

	client, err := matchclient.New(&clientProvider{search: holdersearch.New(store), store: store},
		append([]matchclient.Option{matchclient.WithNotifier(notifier)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("new proof match client : %w", err)
	}

	return &Command{client: client, store: store}, nil
}

// GetHandlers returns list of all commands supported by this controller command.
func (c *Command) GetHandlers() []command.Handler {
	return []command.Handler{
		cmdutil.NewCommandHandler(CommandName, PrepareProofCommandMethod, c.PrepareProof),
		cmdutil.NewCommandHandler(CommandName, SelectCredentialCommandMethod, c.SelectCredential),
		cmdutil.NewCommandHandler(CommandName, GetPreparedProofCommandMethod, c.GetPreparedProof),
		cmdutil.NewCommandHandler(CommandName, SaveCredentialCommandMethod, c.SaveCredential),
		cmdutil.NewCommandHandler(CommandName, SaveExchangeRecordCommandMethod, c.SaveExchangeRecord),
	}
}

// PrepareProof runs a proof preparation cycle for a presentation definition.
func (c *Command) PrepareProof(rw io.Writer, req io.Reader) command.Error {
	var request PrepareProofArgs

	if cmdErr := command.DecodeRequest(req, &request, InvalidRequestErrorCode); cmdErr != nil {
		logutil.LogInfo(logger, CommandName, PrepareProofCommandMethod, cmdErr.Error())

		return cmdErr
	}

	if request.ProofID == "" {
		logutil.LogDebug(logger, CommandName, PrepareProofCommandMethod, errEmptyProofID)

		return command.NewValidationError(InvalidRequestErrorCode, errors.New(errEmptyProofID))
	}

	if request.PresentationDefinition == nil {
		logutil.LogDebug(logger, CommandName, PrepareProofCommandMethod, errEmptyDefinition)

		return command.NewValidationError(InvalidRequestErrorCode, errors.New(errEmptyDefinition))
	}

	if err := request.PresentationDefinition.ValidateSchema(); err != nil {
		logutil.LogInfo(logger, CommandName, PrepareProofCommandMethod, "validate definition : "+err.Error(),
			logutil.CreateKeyValueString(proofIDString, request.ProofID))

		return command.NewValidationError(InvalidRequestErrorCode, fmt.Errorf("validate definition : %w", err))
	}

	proof, err := c.client.Prepare(context.Background(), request.ProofID, request.PresentationDefinition,
		request.Selection)
	if matcher.IsFatal(err) {
		logutil.LogWarn(logger, CommandName, PrepareProofCommandMethod, "proof request : "+err.Error(),
			logutil.CreateKeyValueString(proofIDString, request.ProofID))

		return command.NewValidationError(ProofRequestErrorCode, errors.New(errProofRequestNotProcessed))
	}

	if err != nil {
		logutil.LogError(logger, CommandName, PrepareProofCommandMethod, "prepare proof : "+err.Error(),
			logutil.CreateKeyValueString(proofIDString, request.ProofID))

		return command.NewExecuteError(PrepareProofErrorCode, fmt.Errorf("prepare proof : %w", err))
	}

	command.WriteNillableResponse(rw, &PreparedProofResult{PreparedProof: proof}, logger)

	logutil.LogDebug(logger, CommandName, PrepareProofCommandMethod, "success",
		logutil.CreateKeyValueString(proofIDString, request.ProofID))

	return nil
}

// SelectCredential picks another credential for an input descriptor of a prepared proof.
func (c *Command) SelectCredential(rw io.Writer, req io.Reader) command.Error {
	var request SelectCredentialArgs

	if cmdErr := command.DecodeRequest(req, &request, InvalidRequestErrorCode); cmdErr != nil {
		logutil.LogInfo(logger, CommandName, SelectCredentialCommandMethod, cmdErr.Error())

		return cmdErr
	}

	if request.ProofID == "" {
		logutil.LogDebug(logger, CommandName, SelectCredentialCommandMethod, errEmptyProofID)

		return command.NewValidationError(InvalidRequestErrorCode, errors.New(errEmptyProofID))
	}

	if request.DescriptorID == "" {
		logutil.LogDebug(logger, CommandName, SelectCredentialCommandMethod, errEmptyDescriptorID)

		return command.NewValidationError(InvalidRequestErrorCode, errors.New(errEmptyDescriptorID))
	}

	proof, err := c.client.Select(request.ProofID, request.SelectionChange)
	if err != nil {
		logutil.LogError(logger, CommandName, SelectCredentialCommandMethod, "select credential : "+err.Error(),
			logutil.CreateKeyValueString(proofIDString, request.ProofID))

		return command.NewValidationError(SelectCredentialErrorCode, fmt.Errorf("select credential : %w", err))
	}

	command.WriteNillableResponse(rw, &PreparedProofResult{PreparedProof: proof}, logger)

	logutil.LogDebug(logger, CommandName, SelectCredentialCommandMethod, "success",
		logutil.CreateKeyValueString(proofIDString, request.ProofID))

	return nil
}

// GetPreparedProof returns the latest prepared proof of a proof id.
func (c *Command) GetPreparedProof(rw io.Writer, req io.Reader) command.Error {
	var request ProofIDArg

	if cmdErr := command.DecodeRequest(req, &request, InvalidRequestErrorCode); cmdErr != nil {
		logutil.LogInfo(logger, CommandName, GetPreparedProofCommandMethod, cmdErr.Error())

		return cmdErr
	}

	if request.ProofID == "" {
		logutil.LogDebug(logger, CommandName, GetPreparedProofCommandMethod, errEmptyProofID)

		return command.NewValidationError(InvalidRequestErrorCode, errors.New(errEmptyProofID))
	}

	proof, err := c.client.Get(request.ProofID)
	if err != nil {
		logutil.LogError(logger, CommandName, GetPreparedProofCommandMethod, "get prepared proof : "+err.Error(),
			logutil.CreateKeyValueString(proofIDString, request.ProofID))

		return command.NewValidationError(GetPreparedProofErrorCode, fmt.Errorf("get prepared proof : %w", err))
	}

	command.WriteNillableResponse(rw, &PreparedProofResult{PreparedProof: proof}, logger)

	logutil.LogDebug(logger, CommandName, GetPreparedProofCommandMethod, "success",
		logutil.CreateKeyValueString(proofIDString, request.ProofID))

	return nil
}

// SaveCredential stores a W3C credential record backed by an AnonCreds credential.
func (c *Command) SaveCredential(rw io.Writer, req io.Reader) command.Error {
	var request SaveCredentialArgs

	if cmdErr := command.DecodeRequest(req, &request, InvalidRequestErrorCode); cmdErr != nil {
		logutil.LogInfo(logger, CommandName, SaveCredentialCommandMethod, cmdErr.Error())

		return cmdErr
	}

	record := request.CredentialRecord
	if record == nil || record.ID == "" {
		logutil.LogDebug(logger, CommandName, SaveCredentialCommandMethod, errEmptyCredentialRecord)

		return command.NewValidationError(InvalidRequestErrorCode, errors.New(errEmptyCredentialRecord))
	}

	if record.ClaimFormat == "" {
		record.ClaimFormat = string(presexch.FormatLDPVC)
	}

	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}

	if err := c.store.SaveCredential(record); err != nil {
		logutil.LogError(logger, CommandName, SaveCredentialCommandMethod, "save credential : "+err.Error(),
			logutil.CreateKeyValueString(recordID, record.ID))

		return command.NewExecuteError(SaveCredentialErrorCode, fmt.Errorf("save credential : %w", err))
	}

	command.WriteNillableResponse(rw, nil, logger)

	logutil.LogDebug(logger, CommandName, SaveCredentialCommandMethod, "success",
		logutil.CreateKeyValueString(recordID, record.ID))

	return nil
}

// SaveExchangeRecord stores a credential exchange record, optionally carrying a revocation notification.
func (c *Command) SaveExchangeRecord(rw io.Writer, req io.Reader) command.Error {
	var request SaveExchangeRecordArgs

	if cmdErr := command.DecodeRequest(req, &request, InvalidRequestErrorCode); cmdErr != nil {
		logutil.LogInfo(logger, CommandName, SaveExchangeRecordCommandMethod, cmdErr.Error())

		return cmdErr
	}

	record := request.ExchangeRecord
	if record == nil || record.ID == "" {
		logutil.LogDebug(logger, CommandName, SaveExchangeRecordCommandMethod, errEmptyExchangeRecord)

		return command.NewValidationError(InvalidRequestErrorCode, errors.New(errEmptyExchangeRecord))
	}

	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}

	if err := c.store.SaveExchangeRecord(record); err != nil {
		logutil.LogError(logger, CommandName, SaveExchangeRecordCommandMethod, "save exchange record : "+err.Error(),
			logutil.CreateKeyValueString(recordID, record.ID))

		return command.NewExecuteError(SaveExchangeRecordErrorCode, fmt.Errorf("save exchange record : %w", err))
	}

	command.WriteNillableResponse(rw, nil, logger)

	logutil.LogDebug(logger, CommandName, SaveExchangeRecordCommandMethod, "success",
		logutil.CreateKeyValueString(recordID, record.ID))

	return nil
}
