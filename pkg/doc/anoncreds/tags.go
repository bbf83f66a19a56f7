/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package anoncreds

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// CredentialTags are the AnonCreds identifiers stored as tags on a W3C credential record.
type CredentialTags struct {
	SchemaID               string `json:"anonCredsSchemaId,omitempty"`
	CredentialDefinitionID string `json:"anonCredsCredentialDefinitionId,omitempty"`
	SchemaIssuerID         string `json:"anonCredsSchemaIssuerId,omitempty"`
	SchemaName             string `json:"anonCredsSchemaName,omitempty"`
	SchemaVersion          string `json:"anonCredsSchemaVersion,omitempty"`
	IssuerID               string `json:"anonCredsIssuerId,omitempty"`
	RevocationRegistryID   string `json:"anonCredsRevocationRegistryId,omitempty"`
	CredentialRevocationID string `json:"anonCredsCredentialRevocationId,omitempty"`
	LinkSecretID           string `json:"anonCredsLinkSecretId,omitempty"`
	MethodName             string `json:"anonCredsMethodName,omitempty"`
}

// Complete reports whether the tags identify both the schema and the credential definition.
func (t *CredentialTags) Complete() bool {
	return t != nil && t.SchemaID != "" && t.CredentialDefinitionID != ""
}

// Restriction returns the restriction clause matching credentials with these tags.
func (t *CredentialTags) Restriction() Restriction {
	return Restriction{SchemaID: t.SchemaID, CredentialDefinitionID: t.CredentialDefinitionID}
}

// ExtractTags decodes AnonCreds tags out of a record's tag map. Unrelated tags are ignored.
// The result may be incomplete; callers check Complete.
func ExtractTags(tags map[string]interface{}) (*CredentialTags, error) {
	var result CredentialTags

	d, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &result,
		TagName:          "json",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, fmt.Errorf("mapstruct anoncreds tags. error: %w", err)
	}

	if err = d.Decode(tags); err != nil {
		return nil, fmt.Errorf("decode anoncreds tags: %w", err)
	}

	return &result, nil
}
