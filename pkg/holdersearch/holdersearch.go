/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package holdersearch searches the holder's stored credentials, either for the candidates of a presentation
// definition or for the matches of an AnonCreds proof request.
package holdersearch

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/hyperledger/aries-framework-go/component/log"
	"github.com/pkg/errors"
	"github.com/xeipuuv/gojsonschema"

	"github.com/hyperledger/aries-pexbridge-go/pkg/doc/anoncreds"
	"github.com/hyperledger/aries-pexbridge-go/pkg/doc/presexch"
	"github.com/hyperledger/aries-pexbridge-go/pkg/proofmatch"
	"github.com/hyperledger/aries-pexbridge-go/pkg/store/credential"
)

var logger = log.New("aries-framework/holdersearch")

type credentialStore interface {
	QueryCredentials() ([]*credential.W3CRecord, error)
	QueryExchangeRecords(states ...string) ([]*credential.ExchangeRecord, error)
}

// Service is an in-process holder search backed by the credential store.
type Service struct {
	store credentialStore
}

// New returns a new holder search service.
func New(store credentialStore) *Service {
	return &Service{store: store}
}

// CredentialsForRequest returns, per input descriptor, the stored credentials whose claims satisfy every
// required field of the descriptor.
func (s *Service) CredentialsForRequest(ctx context.Context,
	pd *presexch.PresentationDefinition) (*proofmatch.CredentialsForRequest, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	records, err := s.store.QueryCredentials()
	if err != nil {
		return nil, errors.Wrap(err, "query credentials")
	}

	result := &proofmatch.CredentialsForRequest{AreRequirementsSatisfied: true}

	for _, descriptor := range pd.InputDescriptors {
		entry := &proofmatch.SubmissionEntry{
			InputDescriptorID:     descriptor.ID,
			Name:                  descriptor.Name,
			Purpose:               descriptor.Purpose,
			VerifiableCredentials: []*proofmatch.SubmissionCandidate{},
		}

		for _, record := range records {
			ok, err := satisfiesDescriptor(record, descriptor)
			if err != nil {
				return nil, errors.Wrapf(err, "input descriptor '%s'", descriptor.ID)
			}

			if ok {
				entry.VerifiableCredentials = append(entry.VerifiableCredentials, &proofmatch.SubmissionCandidate{
					Type:             claimFormat(record),
					CredentialRecord: record,
				})
			}
		}

		satisfied := len(entry.VerifiableCredentials) > 0
		result.AreRequirementsSatisfied = result.AreRequirementsSatisfied && satisfied

		result.Requirements = append(result.Requirements, &proofmatch.Requirement{
			IsRequirementSatisfied: satisfied,
			Rule:                   presexch.All,
			NeedsCount:             1,
			SubmissionEntry:        []*proofmatch.SubmissionEntry{entry},
		})
	}

	return result, nil
}

// CredentialsForProofRequest returns, per referent, the stored credentials matching any restriction of the
// entry and holding every requested attribute. Predicate bounds are not checked here.
func (s *Service) CredentialsForProofRequest(ctx context.Context,
	req *anoncreds.ProofRequest) (*anoncreds.CredentialsForProofRequest, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	records, err := s.store.QueryCredentials()
	if err != nil {
		return nil, errors.Wrap(err, "query credentials")
	}

	exchanges, err := s.store.QueryExchangeRecords()
	if err != nil {
		return nil, errors.Wrap(err, "query exchange records")
	}

	candidates := make([]*candidate, 0, len(records))

	for _, record := range records {
		c, err := newCandidate(record, exchanges)
		if err != nil {
			logger.Debugf("skipping credential %s: %s", record.ID, err)

			continue
		}

		candidates = append(candidates, c)
	}

	result := &anoncreds.CredentialsForProofRequest{
		Attributes: map[string][]*anoncreds.Match{},
		Predicates: map[string][]*anoncreds.Match{},
	}

	for referent, requested := range req.RequestedAttributes {
		matches := []*anoncreds.Match{}

		for _, c := range candidates {
			if c.restricted(requested.Restrictions) && c.has(requested.AttributeNames()...) {
				matches = append(matches, c.match(true))
			}
		}

		result.Attributes[referent] = matches
	}

	for referent, requested := range req.RequestedPredicates {
		matches := []*anoncreds.Match{}

		for _, c := range candidates {
			if c.restricted(requested.Restrictions) && c.has(requested.Name) {
				matches = append(matches, c.match(false))
			}
		}

		result.Predicates[referent] = matches
	}

	return result, nil
}

func claimFormat(record *credential.W3CRecord) presexch.ClaimFormat {
	if record.ClaimFormat == "" {
		return presexch.FormatLDPVC
	}

	return presexch.ClaimFormat(record.ClaimFormat)
}

func satisfiesDescriptor(record *credential.W3CRecord, descriptor *presexch.InputDescriptor) (bool, error) {
	doc, err := record.Document()
	if err != nil {
		logger.Debugf("credential %s is not a JSON document: %s", record.ID, err)

		return false, nil
	}

	for _, field := range descriptor.Fields() {
		ok, err := satisfiesField(doc, field)
		if err != nil {
			return false, err
		}

		if !ok && !field.Optional {
			return false, nil
		}
	}

	return true, nil
}

func satisfiesField(doc map[string]interface{}, field *presexch.Field) (bool, error) {
	for _, path := range field.Path {
		value, err := presexch.SelectClaim(doc, path)
		if err != nil {
			continue
		}

		if field.Filter == nil {
			return true, nil
		}

		ok, err := filterAccepts(field.Filter, value)
		if err != nil {
			return false, err
		}

		if ok {
			return true, nil
		}
	}

	return false, nil
}

// filterAccepts validates value against the filter. AnonCreds encodes every raw value as a string,
// so numeric strings are also tried as numbers.
func filterAccepts(filter *presexch.Filter, value interface{}) (bool, error) {
	schema, err := json.Marshal(filter)
	if err != nil {
		return false, errors.Wrap(err, "marshal filter")
	}

	loader := gojsonschema.NewBytesLoader(schema)

	values := []interface{}{value}

	if s, ok := value.(string); ok {
		if n, err := strconv.ParseFloat(s, 64); err == nil {
			values = append(values, n)
		}
	}

	for _, v := range values {
		result, err := gojsonschema.Validate(loader, gojsonschema.NewGoLoader(v))
		if err != nil {
			return false, errors.Wrap(err, "validate filter")
		}

		if result.Valid() {
			return true, nil
		}
	}

	return false, nil
}

type candidate struct {
	record     *credential.W3CRecord
	tags       *anoncreds.CredentialTags
	attributes map[string]string
	revoked    bool
}

func newCandidate(record *credential.W3CRecord, exchanges []*credential.ExchangeRecord) (*candidate, error) {
	tags, err := anoncreds.ExtractTags(record.Tags)
	if err != nil {
		return nil, err
	}

	if !tags.Complete() {
		return nil, fmt.Errorf("no AnonCreds tags")
	}

	subject, err := record.Subject()
	if err != nil {
		return nil, err
	}

	attributes := make(map[string]string, len(subject))

	for k, v := range subject {
		if k == "id" {
			continue
		}

		attributes[k] = rawValue(v)
	}

	c := &candidate{record: record, tags: tags, attributes: attributes}

	if exchange, ok := credential.ExchangeRecordForCredential(exchanges, record.ID); ok {
		c.revoked = exchange.Revoked()
	}

	return c, nil
}

func rawValue(v interface{}) string {
	switch value := v.(type) {
	case string:
		return value
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	default:
		b, err := json.Marshal(value)
		if err != nil {
			return fmt.Sprint(value)
		}

		return string(b)
	}
}

// restricted reports whether the candidate satisfies any of the restrictions. An empty list accepts all.
func (c *candidate) restricted(restrictions []anoncreds.Restriction) bool {
	if len(restrictions) == 0 {
		return true
	}

	for _, r := range restrictions {
		if (r.SchemaID == "" || r.SchemaID == c.tags.SchemaID) &&
			(r.CredentialDefinitionID == "" || r.CredentialDefinitionID == c.tags.CredentialDefinitionID) {
			return true
		}
	}

	return false
}

func (c *candidate) has(names ...string) bool {
	if len(names) == 0 {
		return false
	}

	for _, name := range names {
		if _, ok := c.attributes[name]; !ok {
			return false
		}
	}

	return true
}

func (c *candidate) match(revealed bool) *anoncreds.Match {
	timestamp := c.record.CreatedAt.Unix()
	revoked := c.revoked

	return &anoncreds.Match{
		CredentialID: c.record.ID,
		Revealed:     revealed,
		Timestamp:    &timestamp,
		Revoked:      &revoked,
		CredentialInfo: &anoncreds.CredentialInfo{
			CredentialID:           c.record.ID,
			Attributes:             c.attributes,
			SchemaID:               c.tags.SchemaID,
			CredentialDefinitionID: c.tags.CredentialDefinitionID,
			RevocationRegistryID:   c.tags.RevocationRegistryID,
			CredentialRevocationID: c.tags.CredentialRevocationID,
			MethodName:             c.tags.MethodName,
		},
	}
}
