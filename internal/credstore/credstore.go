// Package credstore persists the login token and username between CLI runs
// in a small JSON file, so a session can be restored without a password.
package credstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Credentials is what gets stored: just enough to call
// user.LoginViaStoredCredentials.
type Credentials struct {
	Token    string `json:"token"`
	Username string `json:"username"`
}

type fileOpener func(name string, flag int, perm os.FileMode) (io.WriteCloser, error)

func openFile(name string, flag int, perm os.FileMode) (io.WriteCloser, error) {
	return os.OpenFile(name, flag, perm)
}

// Store reads and writes one credentials file.
type Store struct {
	fileName string
	openFile fileOpener
}

// New returns a Store backed by fileName. The file is created on first Save.
func New(fileName string) *Store {
	return &Store{
		fileName: fileName,
		openFile: openFile,
	}
}

func writeToJSONFile(open fileOpener, fileName string, data interface{}) error {
	jsonData, err := json.MarshalIndent(data, "", "\t")
	if err != nil {
		return fmt.Errorf("error marshaling JSON: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(fileName), 0700); err != nil {
		return fmt.Errorf("error creating directory: %w", err)
	}

	file, err := open(fileName, os.O_WRONLY|os.O_TRUNC|os.O_CREATE, 0600)
	if err != nil {
		return fmt.Errorf("error opening file: %w", err)
	}

	if _, err = file.Write(jsonData); err != nil {
		_ = file.Close()
		return fmt.Errorf("error writing to file: %w", err)
	}

	if err := file.Close(); err != nil {
		return fmt.Errorf("error closing file: %w", err)
	}

	return nil
}

// Save overwrites the stored credentials.
func (s *Store) Save(creds Credentials) error {
	return writeToJSONFile(s.openFile, s.fileName, creds)
}

// Load returns the stored credentials. found is false when nothing is
// stored or the stored entry is incomplete.
func (s *Store) Load() (creds Credentials, found bool, err error) {
	file, err := os.Open(s.fileName)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Credentials{}, false, nil
		}
		return Credentials{}, false, err
	}
	defer file.Close()

	if err := json.NewDecoder(file).Decode(&creds); err != nil {
		return Credentials{}, false, fmt.Errorf("error decoding %s: %w", s.fileName, err)
	}

	if creds.Token == "" || creds.Username == "" {
		return Credentials{}, false, nil
	}

	return creds, true, nil
}

// Clear forgets the stored credentials. Clearing an empty store is not an error.
func (s *Store) Clear() error {
	if err := os.Remove(s.fileName); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}

	return nil
}
