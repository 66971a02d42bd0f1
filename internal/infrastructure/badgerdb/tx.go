package badgerdb

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/jhoicas/boulangerie-api/internal/domain"
	"github.com/jhoicas/boulangerie-api/internal/domain/repository"
)

var _ repository.Tx = (*tx)(nil)

// tx adapta una *badger.Txn a repository.Tx. Las lecturas hechas con Get quedan
// registradas por Badger y provocan ErrConflict en el commit si otro escribió la clave.
type tx struct {
	txn   *badger.Txn
	newID func() string
}

func (t *tx) Get(collection, id string, dest any) error {
	raw, err := t.raw(collection, id)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return persistence("decode "+collection+"/"+id, err)
	}
	return nil
}

func (t *tx) raw(collection, id string) ([]byte, error) {
	item, err := t.txn.Get(docKey(collection, id))
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, fmt.Errorf("%w: %s/%s", domain.ErrNotFound, collection, id)
		}
		return nil, persistence("get", err)
	}
	raw, err := item.ValueCopy(nil)
	if err != nil {
		return nil, persistence("read value", err)
	}
	return raw, nil
}

func (t *tx) Set(collection, id string, doc any) error {
	b, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", collection, id, err)
	}
	if err := t.txn.Set(docKey(collection, id), b); err != nil {
		return persistence("set", err)
	}
	return nil
}

func (t *tx) Create(collection string, doc any) (string, error) {
	id := t.newID()
	if err := t.Set(collection, id, doc); err != nil {
		return "", err
	}
	return id, nil
}

func (t *tx) Update(collection, id string, fields map[string]any) error {
	raw, err := t.raw(collection, id)
	if err != nil {
		return err
	}
	var current map[string]json.RawMessage
	if err := json.Unmarshal(raw, &current); err != nil {
		return persistence("decode "+collection+"/"+id, err)
	}
	for k, v := range fields {
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("encode field %s: %w", k, err)
		}
		current[k] = b
	}
	return t.Set(collection, id, current)
}
