package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/garyjia/billed/internal/domain/entity"
)

var employee = entity.User{Type: entity.UserTypeEmployee, Email: "employee@test.tld"}

func TestClient_List(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/bills", r.URL.Path)
		assert.Equal(t, "employee@test.tld", r.URL.Query().Get("email"))
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"id":"47qAXb6fIm2zOKkLzMro","email":"employee@test.tld","type":"Hôtel et logement","name":"encore",
			 "date":"2004-04-04","amount":400,"vat":"80","pct":20,"status":"pending","fileUrl":"https://x/receipt.jpg"},
			{"id":"BeKy5Mo4jkmdfPGYpTxZ","date":"2001-01-01","amount":"100.50","status":"refused"}
		]`))
	}))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL + "/", Token: "secret"}, zap.NewNop())
	bills, err := client.ForUser(employee).Bills().List(context.Background())

	require.NoError(t, err)
	require.Len(t, bills, 2)
	assert.Equal(t, "47qAXb6fIm2zOKkLzMro", bills[0].ID)
	assert.True(t, decimal.NewFromInt(400).Equal(bills[0].Amount))
	assert.Equal(t, entity.BillStatusPending, bills[0].Status)
	assert.Equal(t, "100.5", bills[1].Amount.String())
}

func TestClient_List_SkipsMalformedRecords(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"id":"good-1","date":"2004-04-04","amount":400,"status":"pending"},
			{"id":"bad-amount","date":"2003-03-03","amount":"quatre cents","status":"pending"},
			{"id":"bad-pct","date":"2002-02-02","amount":1,"pct":"vingt","status":"pending"},
			{"id":"good-2","date":"2001-01-01","amount":"100","status":"refused"}
		]`))
	}))
	defer srv.Close()

	core, logs := observer.New(zap.ErrorLevel)
	client := NewClient(Config{BaseURL: srv.URL}, zap.New(core))
	bills, err := client.ForUser(employee).Bills().List(context.Background())

	require.NoError(t, err)
	require.Len(t, bills, 2)
	assert.Equal(t, "good-1", bills[0].ID)
	assert.Equal(t, "good-2", bills[1].ID)
	assert.Equal(t, 2, logs.FilterMessage("Skipping malformed bill record").Len())
}

func TestClient_List_StatusErrors(t *testing.T) {
	for _, code := range []int{http.StatusNotFound, http.StatusInternalServerError} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "nope", code)
		}))

		_, err := NewClient(Config{BaseURL: srv.URL}, zap.NewNop()).ForUser(employee).Bills().List(context.Background())
		srv.Close()

		require.Error(t, err)
		var statusErr *StatusError
		require.True(t, errors.As(err, &statusErr))
		assert.Equal(t, code, statusErr.Code)
	}

	assert.EqualError(t, &StatusError{Code: 404}, "Erreur 404")
	assert.EqualError(t, &StatusError{Code: 500}, "Erreur 500")
}

func TestClient_Create(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "employee@test.tld", body["email"])
		assert.Equal(t, 348.5, body["amount"])
		assert.Equal(t, "pending", body["status"])

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"new-id"}`))
	}))
	defer srv.Close()

	bill := &entity.Bill{
		Email:  "forged@test.tld",
		Date:   "2022-04-12",
		Amount: decimal.RequireFromString("348.50"),
		Status: entity.BillStatusPending,
	}
	err := NewClient(Config{BaseURL: srv.URL}, zap.NewNop()).ForUser(employee).Bills().Create(context.Background(), bill)

	require.NoError(t, err)
	assert.Equal(t, "new-id", bill.ID)
	assert.Equal(t, "employee@test.tld", bill.Email)
}

func TestClient_Update(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL}, zap.NewNop()).ForUser(entity.User{Type: entity.UserTypeAdmin, Email: "admin@test.tld"})
	err := client.Bills().Update(context.Background(), &entity.Bill{ID: "abc", Status: entity.BillStatusAccepted})

	require.NoError(t, err)
	assert.Equal(t, "/bills/abc", gotPath)

	err = client.Bills().Update(context.Background(), &entity.Bill{})
	assert.ErrorIs(t, err, entity.ErrBillNotFound)
}

func TestClient_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	_, err := NewClient(Config{BaseURL: srv.URL}, zap.NewNop()).ForUser(employee).Bills().List(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bills api GET /bills")
}
