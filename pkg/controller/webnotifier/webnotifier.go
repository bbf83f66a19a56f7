/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package webnotifier

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hyperledger/aries-framework-go/component/log"

	"github.com/hyperledger/aries-pexbridge-go/pkg/controller/command"
	"github.com/hyperledger/aries-pexbridge-go/pkg/controller/rest"
)

const (
	notificationSendTimeout = 10 * time.Second
	emptyTopicErrMsg        = "cannot notify with an empty topic"
	emptyMessageErrMsg      = "cannot notify with an empty message"
	failedToCreateErrMsg    = "failed to create topic message : %w"
)

var logger = log.New("aries-framework/webnotifier")

// WebNotifier is a dispatcher capable of notifying multiple subscribers via HTTP webhooks and WebSocket.
type WebNotifier struct {
	notifiers []command.Notifier
	handlers  []rest.Handler
}

// New returns a WebNotifier serving websocket clients on wsPath and posting to the given webhooks.
func New(wsPath string, webhookURLs []string, opts ...HTTPOption) *WebNotifier {
	ws := NewWSNotifier(wsPath)

	return &WebNotifier{
		notifiers: []command.Notifier{NewHTTPNotifier(webhookURLs, opts...), ws},
		handlers:  ws.GetRESTHandlers(),
	}
}

// Notify sends the given message to all of the subscribers.
// If multiple errors are encountered, then they are joined in the returned error.
func (n *WebNotifier) Notify(topic string, message []byte) error {
	var allErrs error

	for _, notifier := range n.notifiers {
		err := notifier.Notify(topic, message)
		allErrs = appendError(allErrs, err)
	}

	return allErrs
}

// GetRESTHandlers returns all REST handlers provided by notifier.
func (n *WebNotifier) GetRESTHandlers() []rest.Handler {
	return n.handlers
}

// PrepareTopicMessage wraps the message with its topic and a unique id.
func PrepareTopicMessage(topic string, message []byte) ([]byte, error) {
	topicMsg := struct {
		ID      string          `json:"id"`
		Topic   string          `json:"topic"`
		Message json.RawMessage `json:"message"`
	}{
		ID:      uuid.New().String(),
		Topic:   topic,
		Message: message,
	}

	return json.Marshal(topicMsg)
}

func appendError(errList, err error) error {
	if errList == nil {
		return err
	}

	if err == nil {
		return errList
	}

	return fmt.Errorf("%v;%w", errList, err)
}
