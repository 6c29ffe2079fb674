package voiceagent

import (
	"errors"
	"os"
	"testing"

	"github.com/google/uuid"
)

func TestDiscoverAgentID(t *testing.T) {
	noFile := func(string) ([]byte, error) { return nil, os.ErrNotExist }

	tests := []struct {
		name     string
		env      string
		readFile func(string) ([]byte, error)
		want     string
	}{
		{"env wins", " kitchen-1 ", func(string) ([]byte, error) { return []byte("file-id"), nil }, "kitchen-1"},
		{"file", "", func(string) ([]byte, error) { return []byte("file-id\n"), nil }, "file-id"},
		{"blank file", "", func(string) ([]byte, error) { return []byte("  \n"), nil }, ""},
		{"unreadable file", "", func(string) ([]byte, error) { return nil, errors.New("permission denied") }, ""},
		{"nothing", "", noFile, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := discoverAgentID(func(string) string { return tt.env }, tt.readFile)
			if tt.want != "" {
				if got != tt.want {
					t.Errorf("got %q, want %q", got, tt.want)
				}
				return
			}
			if _, err := uuid.Parse(got); err != nil {
				t.Errorf("fallback ID %q is not a UUID: %v", got, err)
			}
		})
	}
}
