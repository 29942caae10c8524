package emails

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBrevoClient_NoKeyIsNoop(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	c := &BrevoClient{Endpoint: srv.URL}
	require.NoError(t, c.SendWelcome(context.Background(), "a@b.com", "Asha"))
	assert.False(t, called)
}

func TestBrevoClient_SendReservationConfirmed(t *testing.T) {
	var got BrevoSendRequest
	var apiKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		apiKey = r.Header.Get("api-key")
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	c := &BrevoClient{APIKey: "k-123", MailFrom: "hello@sunshare.energy", Endpoint: srv.URL}
	err := c.SendReservationConfirmed(context.Background(), "asha@example.com", "", ReservationDetails{
		ProjectName: "Pune <Rooftop>", Kw: 5, MonthlySavings: 3000, ReservationFee: 250000,
	})
	require.NoError(t, err)
	assert.Equal(t, "k-123", apiKey)
	assert.Equal(t, "hello@sunshare.energy", got.Sender.Email)
	require.Len(t, got.To, 1)
	assert.Equal(t, "asha@example.com", got.To[0].Email)
	assert.Equal(t, "Your 5.00 kW reservation at Pune <Rooftop>", got.Subject)
	assert.Contains(t, got.HTMLContent, "Pune &lt;Rooftop&gt;")
	assert.Contains(t, got.HTMLContent, "Hi there")
}

func TestBrevoClient_Non2xxIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := &BrevoClient{APIKey: "bad", Endpoint: srv.URL}
	err := c.SendWaitlistJoined(context.Background(), "a@b.com", "A")
	assert.EqualError(t, err, "brevo send failed: status 401")
}
