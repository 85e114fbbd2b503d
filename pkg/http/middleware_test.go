package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nully0x/bitcoin-regtest-tui/pkg/logger"
)

func TestResourceMiddleware(t *testing.T) {
	tests := []struct {
		method     string
		path       string
		wantName   string
		wantAction string
	}{
		{http.MethodGet, "/api/v1/networks", "", "view"},
		{http.MethodPost, "/api/v1/networks/alice/start", "alice", "create"},
		{http.MethodDelete, "/api/v1/networks/alice", "alice", "delete"},
		{http.MethodPatch, "/api/v1/networks/bob/", "bob", "update"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			var got Resource
			h := ResourceMiddleware("networks", logger.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got, _ = ResourceFromContext(r)
				w.WriteHeader(http.StatusTeapot)
			}))

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))

			assert.Equal(t, http.StatusTeapot, rec.Code)
			assert.Equal(t, "networks", got.Type)
			assert.Equal(t, tt.wantName, got.Name)
			assert.Equal(t, tt.wantAction, got.Action)
		})
	}
}
