/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package controller

import (
	"fmt"

	matchclient "github.com/hyperledger/aries-pexbridge-go/pkg/client/proofmatch"
	"github.com/hyperledger/aries-pexbridge-go/pkg/controller/command"
	proofmatchcmd "github.com/hyperledger/aries-pexbridge-go/pkg/controller/command/proofmatch"
	"github.com/hyperledger/aries-pexbridge-go/pkg/controller/rest"
	proofmatchrest "github.com/hyperledger/aries-pexbridge-go/pkg/controller/rest/proofmatch"
	"github.com/hyperledger/aries-pexbridge-go/pkg/controller/webnotifier"
)

type allOpts struct {
	webhookURLs []string
	notifier    command.Notifier
	clientOpts  []matchclient.Option
}

const wsPath = "/ws"

// Opt represents a controller option.
type Opt func(opts *allOpts)

// WithWebhookURLs is an option for setting up a webhook dispatcher which will notify clients of prepared proofs.
func WithWebhookURLs(webhookURLs ...string) Opt {
	return func(opts *allOpts) {
		opts.webhookURLs = webhookURLs
	}
}

// WithNotifier is an option for setting up a notifier which will notify clients of prepared proofs.
func WithNotifier(notifier command.Notifier) Opt {
	return func(opts *allOpts) {
		opts.notifier = notifier
	}
}

// WithProofMatchOptions passes options to the proof match client.
func WithProofMatchOptions(clientOpts ...matchclient.Option) Opt {
	return func(opts *allOpts) {
		opts.clientOpts = append(opts.clientOpts, clientOpts...)
	}
}

// GetRESTHandlers returns all REST handlers provided by controller.
func GetRESTHandlers(ctx proofmatchcmd.Provider, opts ...Opt) ([]rest.Handler, error) {
	restAPIOpts := &allOpts{}
	// Apply options
	for _, opt := range opts {
		opt(restAPIOpts)
	}

	notifier := restAPIOpts.notifier
	if notifier == nil {
		notifier = webnotifier.New(wsPath, restAPIOpts.webhookURLs)
	}

	// proof match REST operation
	proofMatchOp, err := proofmatchrest.New(ctx, notifier, restAPIOpts.clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("create proof match rest command : %w", err)
	}

	// create handlers from all operations
	var allHandlers []rest.Handler
	allHandlers = append(allHandlers, proofMatchOp.GetRESTHandlers()...)

	nhp, ok := notifier.(handlerProvider)
	if ok {
		allHandlers = append(allHandlers, nhp.GetRESTHandlers()...)
	}

	return allHandlers, nil
}

type handlerProvider interface {
	GetRESTHandlers() []rest.Handler
}

// GetCommandHandlers returns all command handlers provided by controller.
func GetCommandHandlers(ctx proofmatchcmd.Provider, opts ...Opt) ([]command.Handler, error) {
	cmdOpts := &allOpts{}
	// Apply options
	for _, opt := range opts {
		opt(cmdOpts)
	}

	notifier := cmdOpts.notifier
	if notifier == nil {
		notifier = webnotifier.NewHTTPNotifier(cmdOpts.webhookURLs)
	}

	// proof match command operation
	proofMatchCmd, err := proofmatchcmd.New(ctx, notifier, cmdOpts.clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("create proof match command : %w", err)
	}

	var allHandlers []command.Handler
	allHandlers = append(allHandlers, proofMatchCmd.GetHandlers()...)

	return allHandlers, nil
}
