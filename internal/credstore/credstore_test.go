package credstore

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveLoadClear(t *testing.T) {
	store := New(filepath.Join(t.TempDir(), "nested", "credentials.json"))

	_, found, err := store.Load()
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, store.Save(Credentials{Token: "tok", Username: "alice"}))

	creds, found, err := store.Load()
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, Credentials{Token: "tok", Username: "alice"}, creds)

	require.NoError(t, store.Save(Credentials{Token: "tok2", Username: "bob"}))
	creds, _, err = store.Load()
	require.NoError(t, err)
	assert.Equal(t, "bob", creds.Username)

	require.NoError(t, store.Clear())
	require.NoError(t, store.Clear())

	_, found, err = store.Load()
	require.NoError(t, err)
	assert.False(t, found)
}

func TestLoadIncompleteOrCorrupt(t *testing.T) {
	fileName := filepath.Join(t.TempDir(), "credentials.json")
	store := New(fileName)

	require.NoError(t, os.WriteFile(fileName, []byte(`{"token":"tok"}`), 0600))
	_, found, err := store.Load()
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, os.WriteFile(fileName, []byte(`{"token":`), 0600))
	_, found, err = store.Load()
	assert.Error(t, err)
	assert.False(t, found)
}

func TestSavedFileIsPrivate(t *testing.T) {
	fileName := filepath.Join(t.TempDir(), "credentials.json")
	require.NoError(t, New(fileName).Save(Credentials{Token: "t", Username: "u"}))

	info, err := os.Stat(fileName)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

type flakyFile struct {
	bytes.Buffer
	writeErr error
	closeErr error
	closed   bool
}

func (f *flakyFile) Write(p []byte) (int, error) {
	if f.writeErr != nil {
		return 0, f.writeErr
	}
	return f.Buffer.Write(p)
}

func (f *flakyFile) Close() error {
	f.closed = true
	return f.closeErr
}

func TestSaveReportsWriteAndCloseErrors(t *testing.T) {
	errDiskFull := errors.New("no space left on device")

	type tTestCase struct {
		name string
		file *flakyFile
	}
	testCases := []tTestCase{
		{name: "close_fails", file: &flakyFile{closeErr: errDiskFull}},
		{name: "write_fails", file: &flakyFile{writeErr: errDiskFull}},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			store := New(filepath.Join(t.TempDir(), "credentials.json"))
			store.openFile = func(string, int, os.FileMode) (io.WriteCloser, error) {
				return testCase.file, nil
			}

			err := store.Save(Credentials{Token: "tok", Username: "alice"})
			assert.ErrorIs(t, err, errDiskFull)
			assert.True(t, testCase.file.closed)
		})
	}
}
