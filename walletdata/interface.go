package walletdata

import "github.com/asdine/storm/q"

// SettingsDB defines methods for writing and reading non-secret wallet
// settings to/from a persistent data store.
type SettingsDB interface {
	SaveSetting(key string, value interface{}) error
	ReadSetting(key string, valueOut interface{}) error
	DeleteSetting(key string) error
	ClearSettings() error
}

// SecretsDB defines methods for writing and reading already encrypted
// secrets to/from a persistent data store.
type SecretsDB interface {
	SaveSecret(key string, value []byte) error
	ReadSecret(key string) ([]byte, error)
	DeleteSecret(key string) error
}

// TxIndexDB defines methods for saving and reading transactions to/from an
// indexed database.
type TxIndexDB[T any] interface {
	IndexTransaction(tx *T) (bool, error)
	FindTransaction(fieldName string, fieldValue interface{}) (*T, error)
	FindTransactions(offset, limit int, sort *SORT, matchers ...q.Matcher) ([]*T, error)
	CountTransactions(matchers ...q.Matcher) (int, error)
	DropTransactions() error
}
