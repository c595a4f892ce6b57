package gateway

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticToken string

func (s staticToken) Token() string { return string(s) }

func newTestClient(t *testing.T, h http.HandlerFunc, tokens TokenSource) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(srv.Client(), srv.URL, tokens)
}

func TestDoDecodesEnvelopeData(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/bookings/my", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"message":"ok","statusCode":200,"data":[{"id":"b1","stationId":"st1","slotNumber":3}]}`))
	}, nil)

	bookings, err := c.ListMyBookings(context.Background())
	require.NoError(t, err)
	require.Len(t, bookings, 1)
	assert.Equal(t, "b1", bookings[0].ID)
	assert.Equal(t, "st1", bookings[0].StationID)
	assert.Equal(t, 3, bookings[0].SlotNumber)
}

func TestDoRejectsSuccessFalse(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		// Domain failures arrive with HTTP 200 and success=false.
		_, _ = w.Write([]byte(`{"success":false,"message":"Slot already taken","statusCode":409,"data":null}`))
	}, nil)

	_, err := c.GetBooking(context.Background(), "b1")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 409, apiErr.StatusCode)
	assert.Equal(t, "Slot already taken", apiErr.Message)
}

func TestDoRejectsNullDataWhenPayloadExpected(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":true,"message":"ok","statusCode":200,"data":null}`))
	}, nil)

	_, err := c.GetStation(context.Background(), "st1")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
}

func TestDoAcceptsNullDataOnVoidCalls(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/api/bookings/b1", r.URL.Path)
		_, _ = w.Write([]byte(`{"success":true,"message":"Booking cancelled","statusCode":200,"data":null}`))
	}, nil)

	require.NoError(t, c.CancelBooking(context.Background(), "b1"))
}

func TestDoMapsHTTP401ToErrUnauthorized(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"success":false,"message":"Invalid credentials","statusCode":401,"data":null}`))
	}, nil)

	_, err := c.LoginOwner(context.Background(), "owner@ev.example", "wrong")
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestDoAttachesBearerToken(t *testing.T) {
	var gotAuth string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{"success":true,"message":"ok","statusCode":200,"data":{"id":"st1","name":"Harbor","location":"Pier 4"}}`))
	}, staticToken("abc123"))

	_, err := c.GetStation(context.Background(), "st1")
	require.NoError(t, err)
	assert.Equal(t, "Bearer abc123", gotAuth)
}

func TestDoOmitsAuthorizationWhenTokenEmpty(t *testing.T) {
	var gotAuth string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{"success":true,"message":"ok","statusCode":200,"data":{"id":"st1"}}`))
	}, staticToken(""))

	_, err := c.GetStation(context.Background(), "st1")
	require.NoError(t, err)
	assert.Empty(t, gotAuth)
}

func TestDoRejectsNonJSONBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("<html>upstream error</html>"))
	}, nil)

	_, err := c.ListStations(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode envelope")
}
