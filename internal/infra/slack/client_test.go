package slack

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewClient(t *testing.T) {
	client := NewClient("https://hooks.slack.com/services/T000/B000/test", 5*time.Second)
	assert.NotNil(t, client)
}

func TestClient_SendMessage(t *testing.T) {
	tests := []struct {
		name           string
		serverResponse int
		serverBody     string
		wantError      bool
	}{
		{name: "ok response", serverResponse: http.StatusOK, serverBody: "ok", wantError: false},
		{name: "server error", serverResponse: http.StatusInternalServerError, serverBody: "server error", wantError: true},
		{name: "non-ok body", serverResponse: http.StatusOK, serverBody: "invalid_payload", wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				w.WriteHeader(tt.serverResponse)
				_, _ = w.Write([]byte(tt.serverBody))
			}))
			defer server.Close()

			client := NewClient(server.URL, 5*time.Second)
			err := client.SendMessage("test message")

			if tt.wantError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestClient_SendMessage_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(100 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}))
	defer server.Close()

	client := NewClient(server.URL, 10*time.Millisecond)
	err := client.SendMessage("test message")
	assert.Error(t, err)
}

func TestClient_SendMessage_InvalidURL(t *testing.T) {
	client := NewClient("://not-a-valid-url", 5*time.Second)
	err := client.SendMessage("test message")
	assert.Error(t, err)
}
