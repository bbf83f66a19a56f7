/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package proofmatch translates presentation definitions into AnonCreds proof requests and reconciles the
// holder search matches with the input descriptors that asked for them.
package proofmatch

import (
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/hyperledger/aries-framework-go/component/log"

	"github.com/hyperledger/aries-pexbridge-go/pkg/doc/anoncreds"
	"github.com/hyperledger/aries-pexbridge-go/pkg/doc/presexch"
)

var logger = log.New("aries-framework/proofmatch")

const (
	defaultProofRequestName    = "Proof request"
	defaultProofRequestVersion = "1.0"
	nonceBytes                 = 10
)

// ReferentKind tells whether a referent requests an attribute or a predicate.
type ReferentKind int

const (
	// AttributeReferent is a key of requested_attributes.
	AttributeReferent ReferentKind = iota
	// PredicateReferent is a key of requested_predicates.
	PredicateReferent
)

// Referent is a generated query key and the descriptor it came from.
type Referent struct {
	ID           string
	Kind         ReferentKind
	DescriptorID string
}

// AttributeReferentID returns the referent of the joint attribute entry of a descriptor.
func AttributeReferentID(descriptorID string) string {
	return descriptorID + "_attribute"
}

// PredicateReferentID returns the referent of the index-th predicate entry of a descriptor.
func PredicateReferentID(descriptorID string, index int) string {
	return fmt.Sprintf("%s_predicate_%d", descriptorID, index)
}

// Query is a translated proof request along with its referents in generation order.
type Query struct {
	Request   *anoncreds.ProofRequest
	Referents []Referent
}

// Referent returns the referent with the given id.
func (q *Query) Referent(id string) (Referent, bool) {
	for _, r := range q.Referents {
		if r.ID == id {
			return r, true
		}
	}

	return Referent{}, false
}

// DescriptorOf returns the descriptor id a referent was generated from.
func (q *Query) DescriptorOf(referentID string) (string, bool) {
	r, ok := q.Referent(referentID)

	return r.DescriptorID, ok
}

// DescriptorReferents returns the referents of a descriptor in generation order.
func (q *Query) DescriptorReferents(descriptorID string) []Referent {
	var referents []Referent

	for _, r := range q.Referents {
		if r.DescriptorID == descriptorID {
			referents = append(referents, r)
		}
	}

	return referents
}

// Descriptors returns the descriptor ids that produced at least one referent, in generation order.
func (q *Query) Descriptors() []string {
	var ids []string

	seen := map[string]struct{}{}

	for _, r := range q.Referents {
		if _, ok := seen[r.DescriptorID]; ok {
			continue
		}

		seen[r.DescriptorID] = struct{}{}
		ids = append(ids, r.DescriptorID)
	}

	return ids
}

// NonRevoked returns the non-revocation interval of a referent, nil when none was requested.
func (q *Query) NonRevoked(referentID string) *anoncreds.NonRevokedInterval {
	if a, ok := q.Request.RequestedAttributes[referentID]; ok {
		return a.NonRevoked
	}

	if p, ok := q.Request.RequestedPredicates[referentID]; ok {
		return p.NonRevoked
	}

	return nil
}

type translateOpts struct {
	revocationFreshness bool
	name                string
	version             string
	nonce               string
}

// TranslateOption configures Translate.
type TranslateOption func(*translateOpts)

// WithRevocationFreshness attaches a zero-width {now, now} non-revocation interval to every entry.
func WithRevocationFreshness(required bool) TranslateOption {
	return func(opts *translateOpts) {
		opts.revocationFreshness = required
	}
}

// WithProofRequestName overrides the proof request name, which defaults to the definition name.
func WithProofRequestName(name string) TranslateOption {
	return func(opts *translateOpts) {
		opts.name = name
	}
}

// WithProofRequestVersion overrides the proof request version.
func WithProofRequestVersion(version string) TranslateOption {
	return func(opts *translateOpts) {
		opts.version = version
	}
}

// WithNonce sets the proof request nonce. A random 80-bit decimal nonce is used otherwise.
func WithNonce(nonce string) TranslateOption {
	return func(opts *translateOpts) {
		opts.nonce = nonce
	}
}

// Translate converts a presentation definition into a restriction-based AnonCreds proof request.
// now is the only clock read of the translation; every interval of the request shares it.
func Translate(pd *presexch.PresentationDefinition, index *DescriptorMetadataIndex, now time.Time,
	opts ...TranslateOption) (*Query, error) {
	options := &translateOpts{version: defaultProofRequestVersion}

	for _, opt := range opts {
		opt(options)
	}

	if pd == nil || len(pd.InputDescriptors) == 0 {
		return nil, &Error{Err: ErrNoRequestedFieldsProduced, Detail: "definition has no input descriptors"}
	}

	if index == nil {
		index = NewDescriptorMetadataIndex()
	}

	b := newRequestBuilder(options.revocationFreshness, now)

	for _, descriptor := range pd.InputDescriptors {
		if len(descriptor.Fields()) == 0 {
			return nil, &Error{Err: ErrEmptyConstraintFields, DescriptorID: descriptor.ID}
		}

		restrictions := index.Restrictions(descriptor.ID)
		if len(restrictions) == 0 {
			return nil, &Error{Err: ErrEmptyRestrictionSet, DescriptorID: descriptor.ID}
		}

		for _, field := range descriptor.Fields() {
			if err := b.reduce(descriptor.ID, restrictions, field); err != nil {
				return nil, err
			}
		}
	}

	if len(b.referents) == 0 {
		return nil, &Error{Err: ErrNoRequestedFieldsProduced, Detail: "no field resolves to a credential subject claim"}
	}

	nonce := options.nonce
	if nonce == "" {
		nonce = newNonce()
	}

	return &Query{
		Request: &anoncreds.ProofRequest{
			Name:                proofRequestName(options.name, pd.Name),
			Version:             options.version,
			Nonce:               nonce,
			RequestedAttributes: b.attributes,
			RequestedPredicates: b.predicates,
		},
		Referents: b.referents,
	}, nil
}

// requestBuilder owns the requested attributes and predicates keyed by referent.
type requestBuilder struct {
	attributes     map[string]*anoncreds.RequestedAttribute
	predicates     map[string]*anoncreds.RequestedPredicate
	referents      []Referent
	nextPredicate  map[string]int
	freshness      bool
	freshnessStamp time.Time
}

func newRequestBuilder(freshness bool, now time.Time) *requestBuilder {
	return &requestBuilder{
		attributes:     map[string]*anoncreds.RequestedAttribute{},
		predicates:     map[string]*anoncreds.RequestedPredicate{},
		nextPredicate:  map[string]int{},
		freshness:      freshness,
		freshnessStamp: now,
	}
}

func (b *requestBuilder) interval() *anoncreds.NonRevokedInterval {
	if !b.freshness {
		return nil
	}

	return anoncreds.NewNonRevokedInterval(b.freshnessStamp)
}

// reduce folds one constraint field into the request.
func (b *requestBuilder) reduce(descriptorID string, restrictions []anoncreds.Restriction, field *presexch.Field) error {
	name, ok := field.ClaimName()
	if !ok {
		logger.Debugf("input descriptor '%s': skipping field %v: %s", descriptorID, field.Path, ErrUnresolvableClaimPath)

		return nil
	}

	if field.IsPredicate() {
		bounds, err := DecodePredicateFilter(field.Filter)
		if err != nil {
			var e *Error
			if errors.As(err, &e) {
				e.DescriptorID = descriptorID
			}

			return err
		}

		for _, bound := range bounds {
			referent := PredicateReferentID(descriptorID, b.nextPredicate[descriptorID])
			b.nextPredicate[descriptorID]++

			b.predicates[referent] = &anoncreds.RequestedPredicate{
				Name:         name,
				PType:        bound.Type,
				PValue:       bound.Threshold,
				Restrictions: append([]anoncreds.Restriction(nil), restrictions...),
				NonRevoked:   b.interval(),
				DescriptorID: descriptorID,
			}
			b.referents = append(b.referents, Referent{ID: referent, Kind: PredicateReferent, DescriptorID: descriptorID})
		}

		return nil
	}

	referent := AttributeReferentID(descriptorID)

	if existing, ok := b.attributes[referent]; ok {
		existing.Names = append(existing.Names, name)

		return nil
	}

	b.attributes[referent] = &anoncreds.RequestedAttribute{
		Names:        []string{name},
		Restrictions: append([]anoncreds.Restriction(nil), restrictions...),
		NonRevoked:   b.interval(),
		DescriptorID: descriptorID,
	}
	b.referents = append(b.referents, Referent{ID: referent, Kind: AttributeReferent, DescriptorID: descriptorID})

	return nil
}

func proofRequestName(option, definitionName string) string {
	switch {
	case option != "":
		return option
	case definitionName != "":
		return definitionName
	default:
		return defaultProofRequestName
	}
}

func newNonce() string {
	id := uuid.New()

	return new(big.Int).SetBytes(id[:nonceBytes]).String()
}
