package keyfile

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kochabx/sealstore/core/crypto/box"
)

// KeyAdder is the part of the key manager LoadDir needs.
type KeyAdder interface {
	AddSecretKey(sec *box.SecretKey) (string, error)
}

// LoadDir loads every *.key file of dir into km and returns the fingerprints
// added. Loading stops at the first file that fails.
func LoadDir(dir string, passphrase []byte, km KeyAdder) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeyFileRead, err)
	}

	var fps []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), SecretKeyExt) {
			continue
		}

		path := filepath.Join(dir, e.Name())
		sec, err := LoadSecretKey(path, passphrase)
		if err != nil {
			return fps, fmt.Errorf("load %s: %w", path, err)
		}

		fp, err := km.AddSecretKey(sec)
		sec.Destroy()
		if err != nil {
			return fps, fmt.Errorf("add %s: %w", path, err)
		}
		fps = append(fps, fp)
	}
	return fps, nil
}
