package walletdata

import (
	"fmt"
	"reflect"

	"github.com/asdine/storm"
	"github.com/asdine/storm/q"
)

// TxIndexDBConfig contains properties that are necessary for transaction
// indexing.
type TxIndexDBConfig[Tx any] struct {
	txIDField    string
	makeEmptyTx  func() *Tx
	txUpdateHook func(oldTx, newTx *Tx) (*Tx, error)
}

// NewTxIndexDBConfig creates a TxIndexDBConfig. txIDField names the struct
// field holding the unique tx id; that field must carry a storm "id" tag.
func NewTxIndexDBConfig[Tx any](txIDField string, makeEmptyTx func() *Tx, txUpdateHook func(oldTx, newTx *Tx) (*Tx, error)) *TxIndexDBConfig[Tx] {
	return &TxIndexDBConfig[Tx]{
		txIDField:    txIDField,
		makeEmptyTx:  makeEmptyTx,
		txUpdateHook: txUpdateHook,
	}
}

// TxIndex stores transactions of type Tx in the wallet database.
type TxIndex[Tx any] struct {
	db  *storm.DB
	cfg *TxIndexDBConfig[Tx]
}

// Ensure TxIndex implements TxIndexDB.
var _ TxIndexDB[struct{}] = (*TxIndex[struct{}])(nil)

// NewTxIndex returns a TxIndex that uses db for storage.
func NewTxIndex[Tx any](db *DB, cfg *TxIndexDBConfig[Tx]) *TxIndex[Tx] {
	return &TxIndex[Tx]{db: db.db, cfg: cfg}
}

type SORT struct {
	fieldName string
	reversed  bool
}

func SortAscending(fieldName string) *SORT {
	return &SORT{fieldName: fieldName}
}

func SortDescending(fieldName string) *SORT {
	return &SORT{fieldName: fieldName, reversed: true}
}

// IndexTransaction saves a transaction to the indexed transactions db. Returns
// true if the tx was previously saved.
func (idx *TxIndex[Tx]) IndexTransaction(tx *Tx) (bool, error) {
	// First check if this tx was previously saved.
	txID := reflect.ValueOf(tx).Elem().FieldByName(idx.cfg.txIDField).Interface()
	oldTx, err := idx.FindTransaction(idx.cfg.txIDField, txID)
	if err != nil {
		return false, err
	}

	batchTx, err := idx.db.Begin(true)
	if err != nil {
		return false, fmt.Errorf("database error: %v", err)
	}

	defer batchTx.Rollback()

	isUpdate := oldTx != nil
	if isUpdate && idx.cfg.txUpdateHook != nil {
		tx, err = idx.cfg.txUpdateHook(oldTx, tx)
		if err != nil {
			return false, fmt.Errorf("tx update error: %v", err)
		}
	}

	if err = batchTx.Save(tx); err != nil {
		return false, err
	}

	if err = batchTx.Commit(); err != nil {
		return false, fmt.Errorf("database error: %v", err)
	}

	return isUpdate, nil
}

// FindTransaction looks up a transaction that has the specified value in the
// specified field. It's not an error if no transaction is found to match this
// criteria, instead a nil tx and a nil error are returned.
func (idx *TxIndex[Tx]) FindTransaction(fieldName string, fieldValue interface{}) (*Tx, error) {
	tx := idx.cfg.makeEmptyTx()
	err := idx.db.One(fieldName, fieldValue, tx)
	if err != nil {
		return nil, ignoreStormNotFoundError(err)
	}
	return tx, nil
}

// FindTransactions looks up and returns transactions that match the specified
// criteria and in the order specified by the sort argument. It is not an error
// if no transaction is found to match the provided criteria, instead an empty
// tx list and a nil error are returned. If no matcher is passed, all indexed
// transactions will be returned.
func (idx *TxIndex[Tx]) FindTransactions(offset, limit int, sort *SORT, matchers ...q.Matcher) ([]*Tx, error) {
	query := idx.db.Select(matchers...)
	if offset > 0 {
		query = query.Skip(offset)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	if sort != nil && sort.reversed {
		query = query.OrderBy(sort.fieldName).Reverse()
	} else if sort != nil {
		query = query.OrderBy(sort.fieldName)
	}

	var txs []*Tx
	if err := query.Find(&txs); err != nil && !IsNotFound(err) {
		return nil, err
	}

	return txs, nil
}

// CountTransactions returns the number of transactions that match the specified
// criteria.
func (idx *TxIndex[Tx]) CountTransactions(matchers ...q.Matcher) (int, error) {
	sampleTx := idx.cfg.makeEmptyTx()
	n, err := idx.db.Select(matchers...).Count(sampleTx)
	if err != nil && !IsNotFound(err) {
		return -1, err
	}
	return n, nil
}

// DropTransactions deletes every indexed transaction.
func (idx *TxIndex[Tx]) DropTransactions() error {
	sampleTx := idx.cfg.makeEmptyTx()
	if err := idx.db.Drop(sampleTx); err != nil && !IsBucketNotFound(err) {
		return fmt.Errorf("error deleting indexed transactions: %v", err)
	}
	return nil
}
