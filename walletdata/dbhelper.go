package walletdata

import (
	"errors"

	"github.com/asdine/storm"
	"github.com/decred/slog"
)

type SettingsReader interface {
	ReadSetting(key string, valueOut interface{}) error
}

// ReadSetting reads the setting with the specified key into a value of type
// T. The default value, if provided, is returned if the setting cannot be
// read. Read errors other than storm.ErrNotFound are logged if log is not
// nil.
func ReadSetting[T any](db SettingsReader, log slog.Logger, key string, defaultValue ...T) T {
	var v T
	if err := db.ReadSetting(key, &v); err != nil {
		tryLogError("ReadSetting("+key+")", log, err)
		if len(defaultValue) > 0 {
			v = defaultValue[0]
		}
	}
	return v
}

// IsNotFound is true if err means a value was never saved.
func IsNotFound(err error) bool {
	return errors.Is(err, storm.ErrNotFound)
}

func tryLogError(fn string, log slog.Logger, err error) {
	if err == nil || IsNotFound(err) {
		return
	}
	if log != nil {
		log.Errorf("%s error: %v", fn, err)
	}
}

func ignoreStormNotFoundError(err error) error {
	if IsNotFound(err) {
		return nil
	}
	return err
}
