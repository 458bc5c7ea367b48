package filesystem

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"time"

	"golang.org/x/crypto/blake2b"
)

// HashFile returns the hex BLAKE2b-256 digest of a file's contents.
func HashFile(path string) (string, error) {
	start := time.Now()
	sum, err := hashFile(path)
	if obs := observe(); obs != nil {
		obs.ObserveOperation("hash", time.Since(start).Seconds(), err)
	}
	return sum, err
}

func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h, err := blake2b.New256(nil)
	if err != nil {
		return "", fmt.Errorf("init blake2b: %w", err)
	}
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hash %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
