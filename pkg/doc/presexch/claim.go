/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package presexch

import (
	"context"
	"fmt"
	"strings"

	"github.com/PaesslerAG/gval"
	"github.com/PaesslerAG/jsonpath"
)

// CredentialSubjectPathPrefix is the path prefix under which claim values live.
const CredentialSubjectPathPrefix = "$.credentialSubject."

// ClaimName returns the logical attribute name the field asks about.
// The first path rooted at the credential subject is authoritative; paths addressing proof or issuer
// metadata only narrow the candidate set and never name a claim.
// ok is false when the field has no credential subject path or the first one names no attribute,
// in which case no query entry is produced.
func (f *Field) ClaimName() (name string, ok bool) {
	for _, path := range f.Path {
		if !strings.HasPrefix(path, CredentialSubjectPathPrefix) {
			continue
		}

		name = path[len(CredentialSubjectPathPrefix):]

		return name, name != ""
	}

	return "", false
}

// SelectClaim evaluates a JSONPath expression against a decoded credential document.
// Attribute names that are not valid JSONPath identifiers (AnonCreds allows spaces) are
// looked up directly under credentialSubject.
func SelectClaim(credential map[string]interface{}, path string) (interface{}, error) {
	builder := gval.Full(jsonpath.PlaceholderExtension())

	eval, err := builder.NewEvaluable(path)
	if err == nil {
		value, evalErr := eval(context.TODO(), credential)
		if evalErr == nil {
			return value, nil
		}

		err = evalErr
	}

	if !strings.HasPrefix(path, CredentialSubjectPathPrefix) {
		return nil, fmt.Errorf("select claim %s: %w", path, err)
	}

	subject, ok := credential["credentialSubject"].(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("select claim %s: credentialSubject is not an object", path)
	}

	value, ok := subject[path[len(CredentialSubjectPathPrefix):]]
	if !ok {
		return nil, fmt.Errorf("select claim %s: %w", path, err)
	}

	return value, nil
}
