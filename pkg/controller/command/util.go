/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package command

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/hyperledger/aries-framework-go/spi/log"
)

// DecodeRequest reads the JSON command request into v.
// A malformed request is a validation error carrying invalidRequest.
func DecodeRequest(req io.Reader, v interface{}, invalidRequest Code) Error {
	if err := json.NewDecoder(req).Decode(v); err != nil {
		return NewValidationError(invalidRequest, fmt.Errorf("request decode : %w", err))
	}

	return nil
}

// WriteNillableResponse writes v to w as JSON, an empty object when v is nil.
// Write failures are only logged since the command already succeeded.
func WriteNillableResponse(w io.Writer, v interface{}, l log.Logger) {
	obj := v
	if v == nil {
		obj = map[string]interface{}{}
	}

	if err := json.NewEncoder(w).Encode(obj); err != nil && l != nil {
		l.Errorf("Unable to send error response, %s", err)
	}
}
