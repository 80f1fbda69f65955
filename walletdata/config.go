package walletdata

const (
	settingsBktName = "settings"
	secretsBktName  = "secrets"
)

// SaveSetting saves non-secret wallet settings as a key-value pair.
func (db *DB) SaveSetting(key string, value interface{}) error {
	return db.db.Set(settingsBktName, key, value)
}

// ReadSetting reads a wallet setting from the database. Returns
// storm.ErrNotFound if the setting was never saved.
func (db *DB) ReadSetting(key string, valueOut interface{}) error {
	return db.db.Get(settingsBktName, key, valueOut)
}

// DeleteSetting deletes the wallet setting with the specified key.
func (db *DB) DeleteSetting(key string) error {
	return ignoreStormNotFoundError(db.db.Delete(settingsBktName, key))
}

// ClearSettings deletes all wallet settings.
func (db *DB) ClearSettings() error {
	return db.drop(settingsBktName)
}

// SaveSecret saves an encrypted secret as a key-value pair. The value is
// stored as provided; callers are responsible for encrypting it.
func (db *DB) SaveSecret(key string, value []byte) error {
	return db.db.Set(secretsBktName, key, value)
}

// ReadSecret reads an encrypted secret from the database.
func (db *DB) ReadSecret(key string) ([]byte, error) {
	var value []byte
	if err := db.db.Get(secretsBktName, key, &value); err != nil {
		return nil, err
	}
	return value, nil
}

// DeleteSecret deletes the secret with the specified key.
func (db *DB) DeleteSecret(key string) error {
	return ignoreStormNotFoundError(db.db.Delete(secretsBktName, key))
}
