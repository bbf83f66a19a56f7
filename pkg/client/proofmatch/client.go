/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package proofmatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bluele/gcache"
	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/hyperledger/aries-framework-go/component/log"

	"github.com/hyperledger/aries-pexbridge-go/pkg/doc/anoncreds"
	"github.com/hyperledger/aries-pexbridge-go/pkg/doc/presexch"
	matcher "github.com/hyperledger/aries-pexbridge-go/pkg/proofmatch"
	"github.com/hyperledger/aries-pexbridge-go/pkg/store/credential"
)

// PreparedProofTopic is the notification topic of prepared proofs.
const PreparedProofTopic = "proofmatch"

const (
	defaultCacheSize     = 100
	searchRetryInterval  = 500 * time.Millisecond
	defaultSearchRetries = 3
)

var logger = log.New("aries-framework/client/proofmatch")

var (
	// ErrProofNotFound is returned when no prepared proof is cached for a proof id.
	ErrProofNotFound = errors.New("prepared proof not found")

	errEmptyProofID    = errors.New("proof id is mandatory")
	errEmptyDefinition = errors.New("presentation definition is mandatory")
)

// HolderSearch is the backend queried for the holder's credentials.
type HolderSearch interface {
	CredentialsForRequest(ctx context.Context, pd *presexch.PresentationDefinition) (*matcher.CredentialsForRequest, error)
	CredentialsForProofRequest(ctx context.Context,
		req *anoncreds.ProofRequest) (*anoncreds.CredentialsForProofRequest, error)
}

// ExchangeRecordStore supplies the credential exchange records of the held credentials.
type ExchangeRecordStore interface {
	QueryExchangeRecords(states ...string) ([]*credential.ExchangeRecord, error)
}

// Notifier dispatches prepared proofs to subscribers.
type Notifier interface {
	Notify(topic string, message []byte) error
}

// Provider contains dependencies for the proof match client.
type Provider interface {
	HolderSearch() HolderSearch
	ExchangeRecordStore() ExchangeRecordStore
}

// PreparedProof is the outcome of one proof-preparation cycle.
type PreparedProof struct {
	ProofID      string                  `json:"proofId"`
	CycleID      string                  `json:"cycleId"`
	Sequence     uint64                  `json:"sequence"`
	Stale        bool                    `json:"stale,omitempty"`
	PreparedAt   time.Time               `json:"preparedAt"`
	ProofRequest *anoncreds.ProofRequest `json:"proofRequest"`
	Result       *matcher.Result         `json:"result"`
}

// cycle keeps everything needed to re-evaluate a prepared proof without another backend call.
type cycle struct {
	proof    *PreparedProof
	query    *matcher.Query
	filtered *anoncreds.CredentialsForProofRequest
	records  []*credential.ExchangeRecord
}

type options struct {
	revocationFreshness bool
	clock               func() time.Time
	cacheSize           int
	cacheExpiration     time.Duration
	searchBackOff       func() backoff.BackOff
	notifier            Notifier
}

// Option configures the client.
type Option func(opts *options)

// WithRevocationFreshness requests a non-revocation interval as of the cycle start on every referent.
func WithRevocationFreshness(required bool) Option {
	return func(opts *options) {
		opts.revocationFreshness = required
	}
}

// WithClock overrides the clock read once at the start of every cycle.
func WithClock(clock func() time.Time) Option {
	return func(opts *options) {
		opts.clock = clock
	}
}

// WithCacheSize sets how many proof ids keep their latest cycle cached.
func WithCacheSize(size int) Option {
	return func(opts *options) {
		opts.cacheSize = size
	}
}

// WithCacheExpiration evicts cached cycles after the given duration.
func WithCacheExpiration(expiration time.Duration) Option {
	return func(opts *options) {
		opts.cacheExpiration = expiration
	}
}

// WithSearchBackOff sets the retry policy of the holder search calls.
// The factory is invoked once per call so concurrent cycles never share back-off state.
func WithSearchBackOff(factory func() backoff.BackOff) Option {
	return func(opts *options) {
		opts.searchBackOff = factory
	}
}

// WithNotifier publishes every committed cycle on PreparedProofTopic.
func WithNotifier(notifier Notifier) Option {
	return func(opts *options) {
		opts.notifier = notifier
	}
}

// Client runs proof-preparation cycles.
type Client struct {
	search  HolderSearch
	records ExchangeRecordStore
	opts    *options
	cache   gcache.Cache

	mutex     sync.Mutex
	sequences map[string]uint64
}

// New returns a new proof match client.
func New(ctx Provider, opts ...Option) (*Client, error) {
	options := &options{
		clock:     time.Now,
		cacheSize: defaultCacheSize,
		searchBackOff: func() backoff.BackOff {
			return backoff.WithMaxRetries(backoff.NewConstantBackOff(searchRetryInterval), defaultSearchRetries)
		},
	}

	for _, opt := range opts {
		opt(options)
	}

	if options.cacheSize <= 0 {
		return nil, fmt.Errorf("invalid cache size %d", options.cacheSize)
	}

	search := ctx.HolderSearch()
	if search == nil {
		return nil, errors.New("holder search service is mandatory")
	}

	records := ctx.ExchangeRecordStore()
	if records == nil {
		return nil, errors.New("exchange record store is mandatory")
	}

	builder := gcache.New(options.cacheSize).LRU()
	if options.cacheExpiration > 0 {
		builder = builder.Expiration(options.cacheExpiration)
	}

	return &Client{
		search:    search,
		records:   records,
		opts:      options,
		cache:     builder.Build(),
		sequences: map[string]uint64{},
	}, nil
}

// Prepare runs a full cycle for the given proof id: holder search, translation, proof request search,
// filtering, grouping and the share decision. overrides may be nil.
// Fatal translation and filtering errors are returned as is so callers can inspect them with errors.Is.
// When the latest cycle of a proof id fails, the previously prepared proof is dropped and Get reports
// ErrProofNotFound until a new cycle succeeds.
func (c *Client) Prepare(ctx context.Context, proofID string, pd *presexch.PresentationDefinition,
	overrides matcher.Selection) (*PreparedProof, error) {
	if proofID == "" {
		return nil, errEmptyProofID
	}

	if pd == nil {
		return nil, errEmptyDefinition
	}

	sequence := c.begin(proofID)

	prepared, err := c.prepare(ctx, proofID, sequence, pd, overrides)
	if err != nil {
		c.discard(proofID, sequence)

		return nil, err
	}

	c.commit(prepared)

	return prepared.proof, nil
}

func (c *Client) prepare(ctx context.Context, proofID string, sequence uint64, pd *presexch.PresentationDefinition,
	overrides matcher.Selection) (*cycle, error) {
	now := c.opts.clock()

	var candidates *matcher.CredentialsForRequest

	err := c.retry(ctx, func() error {
		var e error
		candidates, e = c.search.CredentialsForRequest(ctx, pd)

		return e
	})
	if err != nil {
		return nil, fmt.Errorf("search credentials for definition: %w", err)
	}

	index, err := matcher.IndexDescriptorMetadata(candidates)
	if err != nil {
		return nil, err
	}

	query, err := matcher.Translate(pd, index, now, matcher.WithRevocationFreshness(c.opts.revocationFreshness))
	if err != nil {
		return nil, err
	}

	var raw *anoncreds.CredentialsForProofRequest

	err = c.retry(ctx, func() error {
		var e error
		raw, e = c.search.CredentialsForProofRequest(ctx, query.Request)

		return e
	})
	if err != nil {
		return nil, fmt.Errorf("search credentials for proof request: %w", err)
	}

	filtered, err := matcher.FilterMatches(raw, index, query)
	if err != nil {
		return nil, err
	}

	records, err := c.records.QueryExchangeRecords(credential.StateCredentialReceived, credential.StateDone)
	if err != nil {
		return nil, fmt.Errorf("query exchange records: %w", err)
	}

	prepared := &cycle{
		proof: &PreparedProof{
			ProofID:      proofID,
			CycleID:      uuid.New().String(),
			Sequence:     sequence,
			PreparedAt:   now,
			ProofRequest: query.Request,
			Result:       matcher.Evaluate(query, filtered, records, overrides),
		},
		query:    query,
		filtered: filtered,
		records:  records,
	}

	return prepared, nil
}

// Select applies a selection change to the latest cycle of the proof id and re-evaluates it from the
// cached matches. The holder search service is not called.
func (c *Client) Select(proofID string, change matcher.SelectionChange) (*PreparedProof, error) {
	latest, err := c.latest(proofID)
	if err != nil {
		return nil, err
	}

	selection := latest.proof.Result.Selection.Apply(change)

	proof := *latest.proof
	proof.CycleID = uuid.New().String()
	proof.Result = matcher.Evaluate(latest.query, latest.filtered, latest.records, selection)

	reselected := &cycle{
		proof:    &proof,
		query:    latest.query,
		filtered: latest.filtered,
		records:  latest.records,
	}

	c.commit(reselected)

	return reselected.proof, nil
}

// Get returns the latest committed cycle of the proof id.
func (c *Client) Get(proofID string) (*PreparedProof, error) {
	latest, err := c.latest(proofID)
	if err != nil {
		return nil, err
	}

	return latest.proof, nil
}

func (c *Client) latest(proofID string) (*cycle, error) {
	if proofID == "" {
		return nil, errEmptyProofID
	}

	v, err := c.cache.Get(proofID)
	if errors.Is(err, gcache.KeyNotFoundError) {
		return nil, fmt.Errorf("%w: %s", ErrProofNotFound, proofID)
	}

	if err != nil {
		return nil, fmt.Errorf("get cached proof %s: %w", proofID, err)
	}

	latest, ok := v.(*cycle)
	if !ok {
		return nil, fmt.Errorf("unexpected cache entry for proof %s", proofID)
	}

	return latest, nil
}

// begin assigns the next sequence number of the proof id.
func (c *Client) begin(proofID string) uint64 {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.sequences[proofID]++

	return c.sequences[proofID]
}

// discard drops the cached proof of the proof id when the failed cycle is still the latest one.
func (c *Client) discard(proofID string, sequence uint64) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.sequences[proofID] != sequence {
		return
	}

	if c.cache.Remove(proofID) {
		logger.Debugf("cycle %d of proof %s failed, dropping the previously prepared proof", sequence, proofID)
	}
}

// commit caches and notifies the cycle unless a newer one was started for the same proof id,
// in which case the cycle is flagged stale and dropped.
func (c *Client) commit(prepared *cycle) {
	c.mutex.Lock()

	if c.sequences[prepared.proof.ProofID] != prepared.proof.Sequence {
		c.mutex.Unlock()

		prepared.proof.Stale = true

		logger.Debugf("discarding stale cycle %d of proof %s", prepared.proof.Sequence, prepared.proof.ProofID)

		return
	}

	err := c.cache.Set(prepared.proof.ProofID, prepared)

	c.mutex.Unlock()

	if err != nil {
		logger.Warnf("failed to cache proof %s: %s", prepared.proof.ProofID, err)
	}

	c.notify(prepared.proof)
}

func (c *Client) notify(proof *PreparedProof) {
	if c.opts.notifier == nil {
		return
	}

	msg, err := json.Marshal(proof)
	if err != nil {
		logger.Errorf("failed to marshal prepared proof %s: %s", proof.ProofID, err)

		return
	}

	if err := c.opts.notifier.Notify(PreparedProofTopic, msg); err != nil {
		logger.Warnf("failed to notify prepared proof %s: %s", proof.ProofID, err)
	}
}

func (c *Client) retry(ctx context.Context, fn func() error) error {
	return backoff.RetryNotify(fn, backoff.WithContext(c.opts.searchBackOff(), ctx),
		func(err error, d time.Duration) {
			logger.Debugf("holder search failed, retrying in %s: %s", d, err)
		})
}
