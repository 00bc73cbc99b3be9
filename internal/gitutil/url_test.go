package gitutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePullRequestURL(t *testing.T) {
	tests := []struct {
		name      string
		url       string
		wantOwner string
		wantRepo  string
		wantID    int
		wantErr   bool
	}{
		{
			name:      "valid https URL",
			url:       "https://github.com/octo/demo/pull/123",
			wantOwner: "octo",
			wantRepo:  "demo",
			wantID:    123,
		},
		{
			name:      "URL without scheme",
			url:       "github.com/octo/demo/pull/456",
			wantOwner: "octo",
			wantRepo:  "demo",
			wantID:    456,
		},
		{
			name:      "trailing slash",
			url:       "https://github.com/octo/demo/pull/789/",
			wantOwner: "octo",
			wantRepo:  "demo",
			wantID:    789,
		},
		{
			name:    "not a pull URL",
			url:     "https://github.com/octo/demo/issues/123",
			wantErr: true,
		},
		{
			name:    "extra path segments",
			url:     "https://github.com/octo/demo/pull/123/files",
			wantErr: true,
		},
		{
			name:    "empty",
			url:     "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			owner, repo, id, err := ParsePullRequestURL(tt.url)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.wantOwner, owner)
			assert.Equal(t, tt.wantRepo, repo)
			assert.Equal(t, tt.wantID, id)
		})
	}
}
