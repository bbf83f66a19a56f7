/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package webnotifier

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	deliveryRetryInterval = 200 * time.Millisecond
	deliveryMaxRetries    = 2
)

// HTTPNotifier is a webhook dispatcher capable of notifying multiple subscribers via HTTP.
// A delivery is retried while the subscriber is unreachable or answers with a server error.
type HTTPNotifier struct {
	urls    []string
	client  *http.Client
	backOff func() backoff.BackOff
}

// HTTPOption configures an HTTPNotifier.
type HTTPOption func(n *HTTPNotifier)

// WithHTTPClient sets the client used to post notifications.
func WithHTTPClient(client *http.Client) HTTPOption {
	return func(n *HTTPNotifier) {
		n.client = client
	}
}

// WithDeliveryBackOff sets the retry policy of a single delivery. A fresh policy is built per delivery.
func WithDeliveryBackOff(factory func() backoff.BackOff) HTTPOption {
	return func(n *HTTPNotifier) {
		n.backOff = factory
	}
}

// NewHTTPNotifier returns a new instance of an HTTPNotifier.
func NewHTTPNotifier(webhookURLs []string, opts ...HTTPOption) *HTTPNotifier {
	n := &HTTPNotifier{
		urls:   webhookURLs,
		client: http.DefaultClient,
		backOff: func() backoff.BackOff {
			return backoff.WithMaxRetries(backoff.NewConstantBackOff(deliveryRetryInterval), deliveryMaxRetries)
		},
	}

	for _, opt := range opts {
		opt(n)
	}

	return n
}

// Notify posts the topic message to every subscriber URL.
// Delivery failures of all subscribers are joined in the returned error.
func (n *HTTPNotifier) Notify(topic string, message []byte) error {
	if topic == "" {
		return fmt.Errorf(emptyTopicErrMsg)
	}

	if len(message) == 0 {
		return fmt.Errorf(emptyMessageErrMsg)
	}

	topicMsg, err := PrepareTopicMessage(topic, message)
	if err != nil {
		return fmt.Errorf(failedToCreateErrMsg, err)
	}

	var allErrs error

	for _, webhookURL := range n.urls {
		allErrs = appendError(allErrs, n.deliver(webhookURL, topicMsg))
	}

	return allErrs
}

func (n *HTTPNotifier) deliver(destination string, message []byte) error {
	return backoff.RetryNotify(
		func() error {
			return n.post(destination, message)
		},
		n.backOff(),
		func(err error, wait time.Duration) {
			logger.Debugf("webhook delivery to %s failed, retrying in %s : %s", destination, wait, err)
		},
	)
}

func (n *HTTPNotifier) post(destination string, message []byte) error {
	ctx, cancel := context.WithTimeout(context.Background(), notificationSendTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, destination, bytes.NewReader(message))
	if err != nil {
		return backoff.Permanent(fmt.Errorf("failed to create new http post request for %s: %w", destination, err))
	}

	req.Header.Add("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to post notification to %s: %w", destination, err)
	}

	defer closeResponse(resp.Body)

	switch {
	case resp.StatusCode == http.StatusOK, resp.StatusCode == http.StatusCreated,
		resp.StatusCode == http.StatusAccepted, resp.StatusCode == http.StatusNoContent:
		logger.Debugf("notification sent to %s", destination)

		return nil
	case resp.StatusCode >= http.StatusInternalServerError:
		return fmt.Errorf("notification was sent to %s, but %s was received", destination, resp.Status)
	default:
		return backoff.Permanent(
			fmt.Errorf("notification was sent to %s, but %s was received", destination, resp.Status))
	}
}

func closeResponse(c io.Closer) {
	if err := c.Close(); err != nil {
		logger.Errorf("failed to close response body : %s", err)
	}
}
