package bot

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeNetError struct{}

func (fakeNetError) Error() string   { return "dial tcp: i/o timeout" }
func (fakeNetError) Timeout() bool   { return true }
func (fakeNetError) Temporary() bool { return true }

func TestClassifyDeliveryError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected Outcome
	}{
		{"NoError", nil, OutcomeDelivered},
		{"Forbidden", &tgbotapi.Error{Code: 403, Message: "Forbidden: bot was blocked by the user"}, OutcomeBlocked},
		{"BadRequest", &tgbotapi.Error{Code: 400, Message: "Bad Request: chat not found"}, OutcomeTransient},
		{"TooManyRequests", &tgbotapi.Error{Code: 429, Message: "Too Many Requests"}, OutcomeTransient},
		{"ServerError", &tgbotapi.Error{Code: 500, Message: "Internal Server Error"}, OutcomeOther},
		{"WrappedForbidden", fmt.Errorf("copy failed: %w", &tgbotapi.Error{Code: 403}), OutcomeBlocked},
		{"NetworkError", fakeNetError{}, OutcomeTransient},
		{"PlainError", fmt.Errorf("something else"), OutcomeOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, classifyDeliveryError(tt.err))
		})
	}
}

func TestBot_FetchFile(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("image-bytes"))
		}))
		defer srv.Close()

		b := &Bot{
			httpClient:           srv.Client(),
			getFileDirectURLFunc: func(string) (string, error) { return srv.URL, nil },
		}

		data, err := b.FetchFile("file-1")
		require.NoError(t, err)
		assert.Equal(t, []byte("image-bytes"), data)
	})

	t.Run("ResolveError", func(t *testing.T) {
		b := &Bot{
			httpClient:           http.DefaultClient,
			getFileDirectURLFunc: func(string) (string, error) { return "", fmt.Errorf("file not found") },
		}

		_, err := b.FetchFile("file-1")
		assert.Error(t, err)
	})

	t.Run("UnexpectedStatus", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer srv.Close()

		b := &Bot{
			httpClient:           srv.Client(),
			getFileDirectURLFunc: func(string) (string, error) { return srv.URL, nil },
		}

		_, err := b.FetchFile("file-1")
		assert.Error(t, err)
	})
}
