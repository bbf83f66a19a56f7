/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package credential

import (
	"encoding/json"
	"time"
)

// Credential exchange states.
const (
	StateOfferReceived      = "offer-received"
	StateRequestSent        = "request-sent"
	StateCredentialReceived = "credential-received"
	StateDone               = "done"
	StateDeclined           = "declined"
	StateAbandoned          = "abandoned"
)

// RecordTypeW3C is the binding type of W3C credential records.
const RecordTypeW3C = "w3c"

// W3CRecord is a held W3C credential backed by an AnonCreds credential.
type W3CRecord struct {
	ID string `json:"id"`
	// ClaimFormat of the stored credential, "ldp_vc" for AnonCreds-backed credentials.
	ClaimFormat string          `json:"claimFormat,omitempty"`
	Credential  json.RawMessage `json:"credential"`
	// Tags hold the AnonCreds identifiers (anonCredsSchemaId, anonCredsCredentialDefinitionId, ...).
	Tags      map[string]interface{} `json:"tags,omitempty"`
	CreatedAt time.Time              `json:"createdAt"`
}

// Subject decodes the credentialSubject of the stored credential.
func (r *W3CRecord) Subject() (map[string]interface{}, error) {
	var doc struct {
		CredentialSubject map[string]interface{} `json:"credentialSubject"`
	}

	if err := json.Unmarshal(r.Credential, &doc); err != nil {
		return nil, err
	}

	return doc.CredentialSubject, nil
}

// Document decodes the stored credential.
func (r *W3CRecord) Document() (map[string]interface{}, error) {
	var doc map[string]interface{}

	if err := json.Unmarshal(r.Credential, &doc); err != nil {
		return nil, err
	}

	return doc, nil
}

// CredentialBinding links an exchange to a stored credential record.
type CredentialBinding struct {
	CredentialRecordType string `json:"credentialRecordType"`
	CredentialRecordID   string `json:"credentialRecordId"`
}

// RevocationNotification is attached to an exchange record when the issuer revokes its credential.
type RevocationNotification struct {
	RevocationDate time.Time `json:"revocationDate"`
	Comment        string    `json:"comment,omitempty"`
}

// ExchangeRecord tracks the issuance of one or more credentials.
type ExchangeRecord struct {
	ID                     string                  `json:"id"`
	State                  string                  `json:"state"`
	ConnectionID           string                  `json:"connectionId,omitempty"`
	Credentials            []CredentialBinding     `json:"credentials,omitempty"`
	RevocationNotification *RevocationNotification `json:"revocationNotification,omitempty"`
	CreatedAt              time.Time               `json:"createdAt"`
}

// Holds reports whether the exchange produced the given credential record.
func (r *ExchangeRecord) Holds(credentialRecordID string) bool {
	for _, c := range r.Credentials {
		if c.CredentialRecordID == credentialRecordID {
			return true
		}
	}

	return false
}

// Revoked reports whether the issuer sent a revocation notification for this exchange.
func (r *ExchangeRecord) Revoked() bool {
	return r.RevocationNotification != nil
}
