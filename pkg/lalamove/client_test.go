package lalamove

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tahanancrafts/marketplace-backend/pkg/config"
	pkgerrors "github.com/tahanancrafts/marketplace-backend/pkg/errors"
	"github.com/tahanancrafts/marketplace-backend/pkg/logger"
)

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	c, err := New(context.Background(), config.LalamoveConfig{
		APIKey:  "pk_test_key",
		Secret:  "sk_test_secret",
		BaseURL: baseURL,
		Market:  "PH",
		Timeout: 5 * time.Second,
	}, logger.New(logger.Options{ServiceName: "test"}))
	require.NoError(t, err)
	return c
}

func TestNewRequiresCredentials(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "test"})

	_, err := New(context.Background(), config.LalamoveConfig{Secret: "s"}, logg)
	assert.ErrorIs(t, err, errAPIKeyRequired)

	_, err = New(context.Background(), config.LalamoveConfig{APIKey: "k"}, logg)
	assert.ErrorIs(t, err, errSecretRequired)

	_, err = New(context.Background(), config.LalamoveConfig{APIKey: "k", Secret: "s"}, nil)
	assert.ErrorIs(t, err, errLoggerRequired)
}

func TestSignMatchesKnownVector(t *testing.T) {
	c := &Client{secret: "sk_test_secret"}

	sig := c.sign("1700000000000", http.MethodPost, quotationsPath, []byte(`{"data":{}}`))

	// Recomputing over the same inputs must be stable, and the signature
	// must change with any input.
	assert.Equal(t, sig, c.sign("1700000000000", http.MethodPost, quotationsPath, []byte(`{"data":{}}`)))
	assert.NotEqual(t, sig, c.sign("1700000000001", http.MethodPost, quotationsPath, []byte(`{"data":{}}`)))
	assert.NotEqual(t, sig, c.sign("1700000000000", http.MethodPost, ordersPath, []byte(`{"data":{}}`)))
	assert.Len(t, sig, 64)
}

func TestGetQuotationSendsSignedRequest(t *testing.T) {
	var gotAuth, gotMarket, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotMarket = r.Header.Get("Market")
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"quotationId":"q-123","expiresAt":"2026-01-15T10:05:00Z","stops":[{"stopId":"s-1"},{"stopId":"s-2"}],"priceBreakdown":{"total":"180.00","currency":"PHP"}}}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	c.now = func() time.Time { return time.UnixMilli(1700000000000) }

	q, err := c.GetQuotation(context.Background(), QuotationParams{
		Stops: []Stop{
			{Coordinates: Coordinates{Lat: "14.5995", Lng: "120.9842"}, Address: "Manila"},
			{Coordinates: Coordinates{Lat: "14.6760", Lng: "121.0437"}, Address: "Quezon City"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "q-123", q.QuotationID)
	assert.Equal(t, "180.00", q.PriceBreakdown.Total)
	assert.Equal(t, quotationsPath, gotPath)
	assert.Equal(t, "PH", gotMarket)
	assert.True(t, strings.HasPrefix(gotAuth, "hmac pk_test_key:1700000000000:"))
}

func TestPlaceOrderMapsUpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"errors":[{"id":"ERR_QUOTATION_EXPIRED"}]}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)

	_, err := c.PlaceOrder(context.Background(), OrderParams{QuotationID: "q-expired"})
	require.Error(t, err)
	require.NotNil(t, pkgerrors.As(err))
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestPlaceOrderMapsServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)

	_, err := c.PlaceOrder(context.Background(), OrderParams{QuotationID: "q-1"})
	require.Error(t, err)
	require.NotNil(t, pkgerrors.As(err))
	assert.Equal(t, pkgerrors.CodeDependency, pkgerrors.As(err).Code())
}
