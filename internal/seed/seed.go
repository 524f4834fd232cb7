// Package seed reads the static document the user collection starts from.
package seed

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"example.com/userstore/internal/domain"
)

// Document is the on-disk shape: {"users":[{"id":1,"name":"..."}]}.
type Document struct {
	Users []domain.User `json:"users"`
}

// Load reads the seed file at path. An empty path yields no users.
func Load(path string) ([]domain.User, error) {
	if path == "" {
		return nil, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open seed: %w", err)
	}
	defer f.Close()
	users, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("seed %s: %w", path, err)
	}
	return users, nil
}

func Decode(r io.Reader) ([]domain.User, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return doc.Users, nil
}
