/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package credential

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/hyperledger/aries-framework-go/component/log"
	"github.com/hyperledger/aries-framework-go/spi/storage"
)

const (
	// Namespace is the store name of credential records.
	Namespace = "anoncredscredential"

	keyPattern       = "%s_%s"
	w3cKeyPrefix     = "w3c"
	exchangeTag      = "credex"
	exchangeStateTag = "credexstate"
	errMsgInvalidKey = "invalid key"
)

var logger = log.New("aries-framework/store/credential")

// ErrNotFound signals that no record is stored under the given id.
var ErrNotFound = errors.New("credential record not found")

type provider interface {
	StorageProvider() storage.Provider
}

// Store persists W3C credential records and credential exchange records.
type Store struct {
	store storage.Store
}

// New returns a new credential store.
func New(p provider) (*Store, error) {
	store, err := p.StorageProvider().OpenStore(Namespace)
	if err != nil {
		return nil, fmt.Errorf("failed to open credential store: %w", err)
	}

	err = p.StorageProvider().SetStoreConfig(Namespace,
		storage.StoreConfiguration{TagNames: []string{w3cKeyPrefix, exchangeTag, exchangeStateTag}})
	if err != nil {
		return nil, fmt.Errorf("failed to set store config in credential store: %w", err)
	}

	return &Store{store: store}, nil
}

// SaveCredential saves a W3C credential record.
func (s *Store) SaveCredential(record *W3CRecord) error {
	if record == nil || record.ID == "" {
		return errors.New(errMsgInvalidKey)
	}

	recordBytes, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal credential record: %w", err)
	}

	if err := s.store.Put(credentialKey(record.ID), recordBytes, storage.Tag{Name: w3cKeyPrefix}); err != nil {
		return fmt.Errorf("failed to put credential record: %w", err)
	}

	return nil
}

// GetCredential returns the W3C credential record with the given id.
func (s *Store) GetCredential(id string) (*W3CRecord, error) {
	if id == "" {
		return nil, errors.New(errMsgInvalidKey)
	}

	var record W3CRecord

	if err := getAndUnmarshal(credentialKey(id), &record, s.store); err != nil {
		return nil, err
	}

	return &record, nil
}

// DeleteCredential removes a W3C credential record.
func (s *Store) DeleteCredential(id string) error {
	if id == "" {
		return errors.New(errMsgInvalidKey)
	}

	return s.store.Delete(credentialKey(id))
}

// QueryCredentials returns all W3C credential records, oldest first.
func (s *Store) QueryCredentials() ([]*W3CRecord, error) {
	var records []*W3CRecord

	err := s.query(w3cKeyPrefix, func(value []byte) error {
		var record W3CRecord

		if err := json.Unmarshal(value, &record); err != nil {
			return fmt.Errorf("failed to unmarshal credential record: %w", err)
		}

		records = append(records, &record)

		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(records, func(i, j int) bool {
		if records[i].CreatedAt.Equal(records[j].CreatedAt) {
			return records[i].ID < records[j].ID
		}

		return records[i].CreatedAt.Before(records[j].CreatedAt)
	})

	return records, nil
}

// SaveExchangeRecord saves a credential exchange record.
func (s *Store) SaveExchangeRecord(record *ExchangeRecord) error {
	if record == nil || record.ID == "" {
		return errors.New(errMsgInvalidKey)
	}

	if strings.Contains(record.State, ":") {
		return fmt.Errorf("invalid exchange state '%s'", record.State)
	}

	recordBytes, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal exchange record: %w", err)
	}

	tags := []storage.Tag{{Name: exchangeTag}, {Name: exchangeStateTag, Value: record.State}}

	if err := s.store.Put(exchangeKey(record.ID), recordBytes, tags...); err != nil {
		return fmt.Errorf("failed to put exchange record: %w", err)
	}

	return nil
}

// GetExchangeRecord returns the exchange record with the given id.
func (s *Store) GetExchangeRecord(id string) (*ExchangeRecord, error) {
	if id == "" {
		return nil, errors.New(errMsgInvalidKey)
	}

	var record ExchangeRecord

	if err := getAndUnmarshal(exchangeKey(id), &record, s.store); err != nil {
		return nil, err
	}

	return &record, nil
}

// QueryExchangeRecords returns the exchange records in any of the given states, all when none is given.
// Records are returned oldest first.
func (s *Store) QueryExchangeRecords(states ...string) ([]*ExchangeRecord, error) {
	expressions := []string{exchangeTag}

	if len(states) > 0 {
		expressions = expressions[:0]
		for _, state := range states {
			expressions = append(expressions, exchangeStateTag+":"+state)
		}
	}

	var records []*ExchangeRecord

	for _, expression := range expressions {
		err := s.query(expression, func(value []byte) error {
			var record ExchangeRecord

			if err := json.Unmarshal(value, &record); err != nil {
				return fmt.Errorf("failed to unmarshal exchange record: %w", err)
			}

			records = append(records, &record)

			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	sort.SliceStable(records, func(i, j int) bool {
		if records[i].CreatedAt.Equal(records[j].CreatedAt) {
			return records[i].ID < records[j].ID
		}

		return records[i].CreatedAt.Before(records[j].CreatedAt)
	})

	return records, nil
}

// ExchangeRecordForCredential finds the exchange record that produced the given credential record among
// the given records.
func ExchangeRecordForCredential(records []*ExchangeRecord, credentialRecordID string) (*ExchangeRecord, bool) {
	for _, record := range records {
		if record.Holds(credentialRecordID) {
			return record, true
		}
	}

	return nil, false
}

func (s *Store) query(expression string, fn func(value []byte) error) error {
	itr, err := s.store.Query(expression)
	if err != nil {
		return fmt.Errorf("failed to query credential store: %w", err)
	}

	defer storage.Close(itr, logger)

	more, err := itr.Next()
	if err != nil {
		return fmt.Errorf("failed to get next set of data from iterator: %w", err)
	}

	for more {
		value, err := itr.Value()
		if err != nil {
			return fmt.Errorf("failed to get value from iterator: %w", err)
		}

		if err := fn(value); err != nil {
			return err
		}

		more, err = itr.Next()
		if err != nil {
			return fmt.Errorf("failed to get next set of data from iterator: %w", err)
		}
	}

	return nil
}

func getAndUnmarshal(key string, target interface{}, store storage.Store) error {
	bytes, err := store.Get(key)
	if err != nil {
		if errors.Is(err, storage.ErrDataNotFound) {
			return fmt.Errorf("%w: %s", ErrNotFound, key)
		}

		return fmt.Errorf("failed to get record %s: %w", key, err)
	}

	err = json.Unmarshal(bytes, target)
	if err != nil {
		return fmt.Errorf("failed to unmarshal record %s: %w", key, err)
	}

	return nil
}

func credentialKey(id string) string {
	return fmt.Sprintf(keyPattern, w3cKeyPrefix, id)
}

func exchangeKey(id string) string {
	return fmt.Sprintf(keyPattern, exchangeTag, id)
}
