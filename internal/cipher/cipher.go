package cipher

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// #region config
// WorkspaceDir holds the cipher key and exchange directory for at-rest
// fixture encryption. Defaults under the user's cache dir; override via
// TOPOLOGY_CIPHER_DIR for tests or multi-tenant deployments.
var (
	WorkspaceDir = defaultWorkspaceDir()
	KeyFile      = filepath.Join(WorkspaceDir, ".cipher_key")
	ExchangeDir  = filepath.Join(WorkspaceDir, "exchange")
)

func defaultWorkspaceDir() string {
	if dir := os.Getenv("TOPOLOGY_CIPHER_DIR"); dir != "" {
		return dir
	}
	base, err := os.UserCacheDir()
	if err != nil {
		base = os.TempDir()
	}
	return filepath.Join(base, "topology-analysis")
}

// #endregion config

// #region key
func ensureKey() ([]byte, error) {
	if err := os.MkdirAll(WorkspaceDir, 0755); err != nil {
		return nil, fmt.Errorf("create workspace dir: %w", err)
	}
	data, err := os.ReadFile(KeyFile)
	if err == nil && len(data) >= 32 {
		return data[:32], nil
	}
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("keygen: %w", err)
	}
	if err := os.WriteFile(KeyFile, key, 0600); err != nil {
		return nil, fmt.Errorf("write key: %w", err)
	}
	return key, nil
}

// #endregion key

// #region keystream
func keystream(key []byte, length int) []byte {
	stream := make([]byte, 0, length+32)
	counter := uint64(0)
	for len(stream) < length {
		buf := make([]byte, len(key)+8)
		copy(buf, key)
		binary.BigEndian.PutUint64(buf[len(key):], counter)
		h := sha256.Sum256(buf)
		stream = append(stream, h[:]...)
		counter++
	}
	return stream[:length]
}

// #endregion keystream

// #region encrypt-decrypt
func Encrypt(plaintext string) (string, error) {
	key, err := ensureKey()
	if err != nil {
		return "", err
	}
	data := []byte(plaintext)
	ks := keystream(key, len(data))
	cipher := make([]byte, len(data))
	for i := range data {
		cipher[i] = data[i] ^ ks[i]
	}
	return base64.StdEncoding.EncodeToString(cipher), nil
}

func Decrypt(b64Ciphertext string) (string, error) {
	key, err := ensureKey()
	if err != nil {
		return "", err
	}
	cipher, err := base64.StdEncoding.DecodeString(b64Ciphertext)
	if err != nil {
		return "", fmt.Errorf("base64 decode: %w", err)
	}
	ks := keystream(key, len(cipher))
	plain := make([]byte, len(cipher))
	for i := range cipher {
		plain[i] = cipher[i] ^ ks[i]
	}
	return string(plain), nil
}

// #endregion encrypt-decrypt

// #region exchange
// ReadImport reads and decrypts import.enc from ExchangeDir. Returns "" if
// no file is present.
func ReadImport() (string, error) {
	path := filepath.Join(ExchangeDir, "import.enc")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return "", nil
	}
	return Decrypt(text)
}

// WriteExport encrypts plaintext and writes it to export.enc.
func WriteExport(plaintext string) error {
	if err := os.MkdirAll(ExchangeDir, 0755); err != nil {
		return fmt.Errorf("create exchange dir: %w", err)
	}
	encrypted, err := Encrypt(plaintext)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(ExchangeDir, "export.enc"), []byte(encrypted), 0644)
}

// WriteExportRaw writes pre-encrypted content to export.enc.
func WriteExportRaw(encrypted string) error {
	if err := os.MkdirAll(ExchangeDir, 0755); err != nil {
		return fmt.Errorf("create exchange dir: %w", err)
	}
	return os.WriteFile(filepath.Join(ExchangeDir, "export.enc"), []byte(encrypted), 0644)
}

// ClearImport removes import.enc after reading so the same fixture isn't re-read.
func ClearImport() {
	os.Remove(filepath.Join(ExchangeDir, "import.enc"))
}

// #endregion exchange
