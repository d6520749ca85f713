package gravatar

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"testlab/internal/config"
)

func TestEmailHash(t *testing.T) {
	tests := []struct {
		name  string
		email string
		want  string
	}{
		{
			name:  "canonical form",
			email: "alice@example.com",
			want:  "c160f8cc69a4f0bf2b0362752353d060",
		},
		{
			name:  "case and whitespace are normalized",
			email: "  ALICE@Example.COM ",
			want:  "c160f8cc69a4f0bf2b0362752353d060",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EmailHash(tt.email))
		})
	}
}

func TestImageURL(t *testing.T) {
	assert.Equal(t,
		"https://www.gravatar.com/avatar/c160f8cc69a4f0bf2b0362752353d060",
		ImageURL(EmailHash("alice@example.com")))
}

func newTestClient(baseURL string) *Client {
	return NewClient(config.GravatarConfig{BaseURL: baseURL, TimeoutSec: 1})
}

func TestClient_Has(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		want    bool
		wantErr bool
	}{
		{name: "avatar exists", status: http.StatusOK, want: true},
		{name: "avatar missing", status: http.StatusNotFound, want: false},
		{name: "server error", status: http.StatusInternalServerError, wantErr: true},
		{name: "rate limited", status: http.StatusTooManyRequests, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotPath, gotQuery string
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotPath = r.URL.Path
				gotQuery = r.URL.RawQuery
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			cli := newTestClient(srv.URL)
			got, err := cli.Has(context.Background(), "alice@example.com")

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}

			assert.Equal(t, "/avatar/c160f8cc69a4f0bf2b0362752353d060", gotPath)
			assert.Equal(t, "d=404", gotQuery)
		})
	}
}

func TestClient_Has_ContextCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	cli := newTestClient(srv.URL)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := cli.Has(ctx, "alice@example.com")
	assert.Error(t, err)
}

func TestClient_Has_ServerUnreachable(t *testing.T) {
	// Port 0 is never dialable; the request must fail fast rather than panic.
	cli := newTestClient("http://127.0.0.1:0")

	_, err := cli.Has(context.Background(), "alice@example.com")
	assert.Error(t, err)
}
