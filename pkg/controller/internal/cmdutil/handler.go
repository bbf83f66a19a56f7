/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package cmdutil

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/hyperledger/aries-pexbridge-go/pkg/controller/command"
	"github.com/hyperledger/aries-pexbridge-go/pkg/controller/rest"
)

// NewHTTPHandler returns instance of HTTPHandler which can be used handle
// http requests.
func NewHTTPHandler(path, method string, handle http.HandlerFunc) *HTTPHandler {
	return &HTTPHandler{path: path, method: method, handle: handle}
}

// HTTPHandler routes one method and path to a handler func.
type HTTPHandler struct {
	path   string
	method string
	handle http.HandlerFunc
}

// Path returns http request path.
func (h *HTTPHandler) Path() string {
	return h.path
}

// Method returns http request method type.
func (h *HTTPHandler) Method() string {
	return h.method
}

// Handle returns http request handle func.
func (h *HTTPHandler) Handle() http.HandlerFunc {
	return h.handle
}

// ExecWithPathVars runs exec on the JSON request body after copying the named route variables into it,
// so /proofmatch/{proof_id} reaches the command as {"proof_id": ...}. An empty body counts as {}.
// Malformed bodies are rejected with a bad request carrying invalidRequest.
func ExecWithPathVars(exec command.Exec, invalidRequest command.Code, pathVars ...string) http.HandlerFunc {
	return func(rw http.ResponseWriter, req *http.Request) {
		payload, err := mergePathVars(req, pathVars)
		if err != nil {
			rest.SendHTTPStatusError(rw, http.StatusBadRequest, invalidRequest, err)

			return
		}

		rest.Execute(exec, rw, bytes.NewReader(payload))
	}
}

func mergePathVars(req *http.Request, pathVars []string) ([]byte, error) {
	fields := map[string]json.RawMessage{}

	if req.Body != nil {
		err := json.NewDecoder(req.Body).Decode(&fields)
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("request decode : %w", err)
		}
	}

	if fields == nil {
		fields = map[string]json.RawMessage{}
	}

	vars := mux.Vars(req)

	for _, name := range pathVars {
		value, err := json.Marshal(vars[name])
		if err != nil {
			return nil, err
		}

		fields[name] = value
	}

	return json.Marshal(fields)
}

// NewCommandHandler returns instance of CommandHandler which can be used handle
// controller commands.
func NewCommandHandler(name, method string, exec command.Exec) *CommandHandler {
	return &CommandHandler{name: name, method: method, handle: exec}
}

// CommandHandler binds a controller command name and method to its Exec.
type CommandHandler struct {
	name   string
	method string
	handle command.Exec
}

// Name of the command.
func (c *CommandHandler) Name() string {
	return c.name
}

// Method name of the command.
func (c *CommandHandler) Method() string {
	return c.method
}

// Handle returns execute function of the command handler.
func (c *CommandHandler) Handle() command.Exec {
	return c.handle
}
