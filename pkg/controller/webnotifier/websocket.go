/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package webnotifier

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"nhooyr.io/websocket"

	"github.com/hyperledger/aries-pexbridge-go/pkg/controller/internal/cmdutil"
	"github.com/hyperledger/aries-pexbridge-go/pkg/controller/rest"
)

// topicQueryParam narrows a websocket subscription, e.g. /ws?topic=proofmatch. It may be repeated.
const topicQueryParam = "topic"

// subscriber is one websocket client and the topics it listens to; no topics means every topic.
type subscriber struct {
	conn   *websocket.Conn
	topics map[string]struct{}
}

func (s *subscriber) wants(topic string) bool {
	if len(s.topics) == 0 {
		return true
	}

	_, ok := s.topics[topic]

	return ok
}

// WSNotifier pushes topic messages to connected websocket clients.
type WSNotifier struct {
	subscribers []*subscriber
	lock        sync.RWMutex
	handlers    []rest.Handler
}

// NewWSNotifier returns a new instance of an WSNotifier serving clients on path.
func NewWSNotifier(path string) *WSNotifier {
	n := &WSNotifier{}

	n.handlers = []rest.Handler{
		cmdutil.NewHTTPHandler(path, http.MethodGet, n.subscribe),
	}

	return n
}

// Notify sends the topic message to every client subscribed to the topic.
// Write failures of all clients are joined in the returned error.
func (n *WSNotifier) Notify(topic string, message []byte) error {
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

	for _, s := range n.snapshot() {
		if !s.wants(topic) {
			continue
		}

		allErrs = appendError(allErrs, write(s.conn, topicMsg))
	}

	return allErrs
}

// GetRESTHandlers returns all REST handlers provided by notifier.
func (n *WSNotifier) GetRESTHandlers() []rest.Handler {
	return n.handlers
}

func (n *WSNotifier) snapshot() []*subscriber {
	n.lock.RLock()
	defer n.lock.RUnlock()

	subscribers := make([]*subscriber, len(n.subscribers))
	copy(subscribers, n.subscribers)

	return subscribers
}

func write(conn *websocket.Conn, message []byte) error {
	ctx, cancel := context.WithTimeout(context.Background(), notificationSendTimeout)
	defer cancel()

	return conn.Write(ctx, websocket.MessageText, message)
}

func (n *WSNotifier) subscribe(w http.ResponseWriter, r *http.Request) {
	// TODO make origin verification configurable once the daemon serves browsers on other hosts.
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{InsecureSkipVerify: true})
	if err != nil {
		logger.Infof("failed to upgrade the websocket notification connection : %v", err)

		return
	}

	s := &subscriber{conn: conn, topics: map[string]struct{}{}}
	for _, topic := range r.URL.Query()[topicQueryParam] {
		s.topics[topic] = struct{}{}
	}

	n.lock.Lock()
	n.subscribers = append(n.subscribers, s)
	n.lock.Unlock()

	logger.Debugf("websocket notification client subscribed to %d topic(s)", len(s.topics))

	n.watch(r.Context(), s)
}

// watch blocks until the client goes away. Clients are not expected to send anything.
func (n *WSNotifier) watch(ctx context.Context, s *subscriber) {
	_, _, err := s.conn.Reader(ctx)
	if err != nil && websocket.CloseStatus(err) != websocket.StatusNormalClosure {
		logger.Infof("reading from websocket notification client failed: %v", err)
	}

	if err := s.conn.Close(websocket.StatusPolicyViolation, "unexpected message"); err != nil {
		logger.Debugf("closing websocket notification client failed: %v", err)
	}

	n.lock.Lock()
	defer n.lock.Unlock()

	kept := n.subscribers[:0]

	for _, other := range n.subscribers {
		if other != s {
			kept = append(kept, other)
		}
	}

	n.subscribers = kept
}
