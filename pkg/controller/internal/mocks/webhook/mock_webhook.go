/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package webhook

import "sync"

// Notification is a topic message received by the Notifier.
type Notification struct {
	Topic   string
	Message []byte
}

// NewMockWebhookNotifier returns a notifier recording every notification it receives.
func NewMockWebhookNotifier() *Notifier {
	return &Notifier{}
}

// Notifier records notifications and fails them with Err when set.
type Notifier struct {
	Err error

	mu            sync.Mutex
	notifications []Notification
}

// Notify records the notification.
func (n *Notifier) Notify(topic string, message []byte) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.notifications = append(n.notifications, Notification{Topic: topic, Message: message})

	return n.Err
}

// Notifications returns the notifications received so far.
func (n *Notifier) Notifications() []Notification {
	n.mu.Lock()
	defer n.mu.Unlock()

	return append([]Notification(nil), n.notifications...)
}
