/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package anoncreds

// CredentialInfo describes the credential a match refers to.
type CredentialInfo struct {
	CredentialID           string            `json:"credentialId"`
	Attributes             map[string]string `json:"attributes,omitempty"`
	SchemaID               string            `json:"schemaId,omitempty"`
	CredentialDefinitionID string            `json:"credentialDefinitionId,omitempty"`
	RevocationRegistryID   string            `json:"revocationRegistryId,omitempty"`
	CredentialRevocationID string            `json:"credentialRevocationId,omitempty"`
	MethodName             string            `json:"methodName,omitempty"`
}

// Match is one credential the holder search found for a referent.
type Match struct {
	CredentialID   string          `json:"credentialId"`
	Revealed       bool            `json:"revealed,omitempty"`
	Timestamp      *int64          `json:"timestamp,omitempty"`
	Revoked        *bool           `json:"revoked,omitempty"`
	CredentialInfo *CredentialInfo `json:"credentialInfo,omitempty"`
}

// IsRevoked reports whether the search flagged the credential as revoked.
func (m *Match) IsRevoked() bool {
	return m.Revoked != nil && *m.Revoked
}

// AttributeValue returns the raw value of the named attribute when the search returned it.
func (m *Match) AttributeValue(name string) (string, bool) {
	if m.CredentialInfo == nil || m.CredentialInfo.Attributes == nil {
		return "", false
	}

	v, ok := m.CredentialInfo.Attributes[name]

	return v, ok
}

// CredentialsForProofRequest is the raw result of running a ProofRequest against the holder's credentials.
// Every referent of the request is a key, possibly with an empty list.
type CredentialsForProofRequest struct {
	Attributes map[string][]*Match `json:"attributes"`
	Predicates map[string][]*Match `json:"predicates"`
}
