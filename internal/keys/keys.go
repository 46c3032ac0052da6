package keys

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	gethcrypto "github.com/ethereum/go-ethereum/crypto"
)

var (
	ErrFileNotFound      = errors.New("keystore file not found")
	ErrDecryptionFailed  = errors.New("keystore decryption failed")
	ErrInvalidPrivateKey = errors.New("invalid private key")
)

// Account is an unlocked signing key together with its address.
type Account struct {
	PrivateKey *ecdsa.PrivateKey
	Address    common.Address
}

// Hex returns the checksummed address.
func (a *Account) Hex() string { return a.Address.Hex() }

// KeyHex returns the 0x-prefixed raw private key. Callers decide whether it may be shown.
func (a *Account) KeyHex() string { return hexutil.Encode(gethcrypto.FromECDSA(a.PrivateKey)) }

// UnlockKeystore decrypts a V3 keystore file with the given password.
func UnlockKeystore(path, password string) (*Account, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("could not read keystore: %w", err)
	}
	key, err := keystore.DecryptKey(data, password)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecryptionFailed, err)
	}
	return &Account{PrivateKey: key.PrivateKey, Address: key.Address}, nil
}

// ParsePrivateKey parses a hex ECDSA private key (with / without 0x).
func ParsePrivateKey(s string) (*Account, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "0x")
	if h == "" {
		return nil, fmt.Errorf("%w: empty private key", ErrInvalidPrivateKey)
	}
	prv, err := gethcrypto.HexToECDSA(h)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPrivateKey, err)
	}
	return &Account{PrivateKey: prv, Address: gethcrypto.PubkeyToAddress(prv.PublicKey)}, nil
}

// DeriveAddress computes the address controlled by a raw hex private key.
func DeriveAddress(privateKey string) (common.Address, error) {
	acc, err := ParsePrivateKey(privateKey)
	if err != nil {
		return common.Address{}, err
	}
	return acc.Address, nil
}

// Mask hides everything but the edges of a secret for printing.
func Mask(h string) string {
	h = strings.TrimSpace(h)
	if len(h) <= 10 {
		return "***"
	}
	return h[:6] + "…" + h[len(h)-4:]
}
