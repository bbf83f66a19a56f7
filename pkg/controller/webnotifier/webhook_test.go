/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package webnotifier

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/cenkalti/backoff/v4"
	"github.com/stretchr/testify/require"
)

func noDelay(retries uint64) func() backoff.BackOff {
	return func() backoff.BackOff {
		return backoff.WithMaxRetries(&backoff.ZeroBackOff{}, retries)
	}
}

func TestHTTPNotifier_Notify(t *testing.T) {
	const topic = "proofmatch"

	payload := []byte(`{"proofId":"c5f2ab4e","result":{"canShare":true}}`)

	t.Run("delivers topic messages to every webhook", func(t *testing.T) {
		received := make(chan []byte, 2)

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, err := io.ReadAll(r.Body)
			require.NoError(t, err)
			require.Equal(t, "application/json", r.Header.Get("Content-Type"))

			received <- body
		}))
		defer srv.Close()

		n := NewHTTPNotifier([]string{srv.URL, srv.URL})
		require.NoError(t, n.Notify(topic, payload))

		for i := 0; i < 2; i++ {
			var msg struct {
				ID      string          `json:"id"`
				Topic   string          `json:"topic"`
				Message json.RawMessage `json:"message"`
			}

			require.NoError(t, json.Unmarshal(<-received, &msg))
			require.NotEmpty(t, msg.ID)
			require.Equal(t, topic, msg.Topic)
			require.JSONEq(t, string(payload), string(msg.Message))
		}
	})

	t.Run("server errors are retried", func(t *testing.T) {
		var calls int32

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if atomic.AddInt32(&calls, 1) < 3 {
				w.WriteHeader(http.StatusServiceUnavailable)

				return
			}

			w.WriteHeader(http.StatusNoContent)
		}))
		defer srv.Close()

		err := NewHTTPNotifier([]string{srv.URL}, WithDeliveryBackOff(noDelay(2))).Notify(topic, payload)
		require.NoError(t, err)
		require.Equal(t, int32(3), atomic.LoadInt32(&calls))
	})

	t.Run("subscriber keeps failing", func(t *testing.T) {
		var calls int32

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&calls, 1)
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		err := NewHTTPNotifier([]string{srv.URL}, WithDeliveryBackOff(noDelay(2))).Notify(topic, payload)
		require.Error(t, err)
		require.Contains(t, err.Error(), "500 Internal Server Error")
		require.Equal(t, int32(3), atomic.LoadInt32(&calls))
	})

	t.Run("client errors are not retried", func(t *testing.T) {
		var calls int32

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&calls, 1)
			w.WriteHeader(http.StatusNotFound)
		}))
		defer srv.Close()

		n := NewHTTPNotifier([]string{srv.URL}, WithDeliveryBackOff(noDelay(2)), WithHTTPClient(srv.Client()))

		err := n.Notify(topic, payload)
		require.Error(t, err)
		require.Contains(t, err.Error(), "404 Not Found")
		require.Equal(t, int32(1), atomic.LoadInt32(&calls))
	})

	t.Run("one failing subscriber does not stop the others", func(t *testing.T) {
		received := make(chan []byte, 1)

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, err := io.ReadAll(r.Body)
			require.NoError(t, err)

			received <- body
		}))
		defer srv.Close()

		n := NewHTTPNotifier([]string{"http://%zz", srv.URL}, WithDeliveryBackOff(noDelay(2)))

		err := n.Notify(topic, payload)
		require.Error(t, err)
		require.Contains(t, err.Error(), "failed to create new http post request")
		require.NotEmpty(t, <-received)
	})

	t.Run("invalid arguments", func(t *testing.T) {
		n := NewHTTPNotifier(nil)

		require.EqualError(t, n.Notify("", payload), emptyTopicErrMsg)
		require.EqualError(t, n.Notify(topic, nil), emptyMessageErrMsg)
		require.Error(t, n.Notify(topic, []byte("not json")))
	})
}
