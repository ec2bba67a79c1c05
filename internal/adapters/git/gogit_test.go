package git

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flagops/flagpr/internal/domain"
)

func TestParseRemoteRef(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		want    domain.RemoteRepoRef
		wantErr bool
	}{
		{
			name: "HTTPS URL with .git suffix",
			url:  "https://github.com/flagops/flagpr.git",
			want: domain.RemoteRepoRef{Owner: "flagops", Repo: "flagpr"},
		},
		{
			name: "HTTPS URL without .git suffix",
			url:  "https://github.com/flagops/flagpr",
			want: domain.RemoteRepoRef{Owner: "flagops", Repo: "flagpr"},
		},
		{
			name: "SSH URL with .git suffix",
			url:  "git@github.com:flagops/flagpr.git",
			want: domain.RemoteRepoRef{Owner: "flagops", Repo: "flagpr"},
		},
		{
			name: "SSH URL without .git suffix",
			url:  "git@github.com:flagops/flagpr",
			want: domain.RemoteRepoRef{Owner: "flagops", Repo: "flagpr"},
		},
		{
			name: "HTTPS URL with different host",
			url:  "https://gitlab.com/owner/project.git",
			want: domain.RemoteRepoRef{Owner: "owner", Repo: "project"},
		},
		{
			name: "URL with whitespace trimmed",
			url:  "  https://github.com/owner/repo.git  ",
			want: domain.RemoteRepoRef{Owner: "owner", Repo: "repo"},
		},
		{
			name: "HTTP URL (not HTTPS)",
			url:  "http://github.com/owner/repo.git",
			want: domain.RemoteRepoRef{Owner: "owner", Repo: "repo"},
		},
		{
			name:    "invalid URL - no path",
			url:     "https://github.com",
			wantErr: true,
		},
		{
			name:    "invalid URL - only owner",
			url:     "https://github.com/owner",
			wantErr: true,
		},
		{
			name:    "invalid URL - empty string",
			url:     "",
			wantErr: true,
		},
		{
			name:    "invalid URL - random string",
			url:     "not-a-url",
			wantErr: true,
		},
		{
			name:    "invalid URL - file path",
			url:     "/path/to/repo",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ref, err := ParseRemoteRef(tt.url)

			if tt.wantErr {
				require.Error(t, err, "expected error for URL: %s", tt.url)
				assert.ErrorIs(t, err, domain.ErrInvalidRemoteURL)
				return
			}

			require.NoError(t, err, "unexpected error for URL: %s", tt.url)
			assert.Equal(t, tt.want, ref)
		})
	}
}
