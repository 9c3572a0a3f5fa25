package config

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/zalando/go-keyring"
)

// KeyringService groups shiftline's secrets in the OS keychain.
const KeyringService = "shiftline"

// keyringGet is swapped in tests.
var keyringGet = keyring.Get

// SupabaseKeyResolved returns the configured key, falling back to the OS keychain
// entry named by keyring_account.
func (s StoreConfig) SupabaseKeyResolved() (string, error) {
	if k := strings.TrimSpace(s.SupabaseKey); k != "" {
		return k, nil
	}
	if strings.TrimSpace(s.KeyringAccount) == "" {
		return "", configErrorf("set store.supabase_key or store.keyring_account", "supabase key not configured")
	}
	k, err := keyringGet(KeyringService, s.KeyringAccount)
	if err != nil || strings.TrimSpace(k) == "" {
		if err == nil {
			err = errors.New("empty secret")
		}
		return "", configError(errors.Wrapf(err, "read keyring %s/%s", KeyringService, s.KeyringAccount),
			"store it with `shiftline secret set "+s.KeyringAccount+"`")
	}
	return k, nil
}

// SetSupabaseKey stores key in the OS keychain under account.
func SetSupabaseKey(account, key string) error {
	if strings.TrimSpace(account) == "" {
		return errors.New("keyring account name is empty")
	}
	if strings.TrimSpace(key) == "" {
		return errors.New("key is empty")
	}
	return keyring.Set(KeyringService, account, key)
}
