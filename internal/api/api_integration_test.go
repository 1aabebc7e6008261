// internal/api/api_integration_test.go
package api_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	app "money-transfer-api/internal"
)

const webhookSecret = "integration-webhook-secret"

// testApp is the global application instance for testing.
var testApp *app.Application

// testServer is the httptest server.
var testServer *httptest.Server

// gatewayFails makes the fake provider reject transfers when set.
var gatewayFails atomic.Bool

// TestMain runs against a real PostgreSQL database with migrations/ applied.
// Set INTEGRATION_TEST=1 to enable.
func TestMain(m *testing.M) {
	if os.Getenv("INTEGRATION_TEST") != "1" {
		fmt.Println("Skipping API integration tests; set INTEGRATION_TEST=1 to run them.")
		os.Exit(0)
	}

	gateway := httptest.NewServer(http.HandlerFunc(fakeGateway))
	defer gateway.Close()

	setupEnvVars(gateway.URL)

	testApp = app.NewApplication()
	if err := testApp.Initialize(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize test application: %v\n", err)
		os.Exit(1)
	}

	testServer = httptest.NewServer(testApp.HTTPHandler)

	code := m.Run()

	testServer.Close()
	if err := testApp.Shutdown(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to shutdown test application: %v\n", err)
		os.Exit(1)
	}

	os.Exit(code)
}

// fakeGateway mimics the disbursement provider's POST /transfers.
func fakeGateway(w http.ResponseWriter, r *http.Request) {
	if gatewayFails.Load() {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"message":"upstream bank unavailable"}`))
		return
	}
	var req struct {
		Reference string `json:"reference"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)
	w.Header().Set("Content-Type", "application/json")
	_, _ = fmt.Fprintf(w, `{"reference":"GW-%s","status":"success","message":"Transfer queued"}`, req.Reference)
}

// setupEnvVars sets defaults for variables the caller did not provide.
func setupEnvVars(gatewayURL string) {
	defaults := map[string]string{
		"APP_ENV":         "test",
		"DB_HOST":         "localhost",
		"DB_PORT":         "5432",
		"DB_USER":         "user",
		"DB_PASSWORD":     "password",
		"DB_NAME":         "money_transfer_test",
		"DB_SSLMODE":      "disable",
		"JWT_SECRET":      "integration-jwt-secret",
		"BCRYPT_COST":     "4",
		"WEBHOOK_SECRET":  webhookSecret,
		"GATEWAY_TIMEOUT": "5s",
	}
	for key, value := range defaults {
		if os.Getenv(key) == "" {
			_ = os.Setenv(key, value)
		}
	}
	_ = os.Setenv("GATEWAY_BASE_URL", gatewayURL)
	_ = os.Setenv("GATEWAY_SECRET_KEY", "sk_test")
}

// clearDatabase truncates all tables so each test starts clean.
func clearDatabase(t *testing.T) {
	_, err := testApp.DB.Exec("TRUNCATE TABLE transactions, users RESTART IDENTITY CASCADE;")
	require.NoError(t, err)
}

type apiResponse struct {
	Success    bool            `json:"success"`
	Message    string          `json:"message"`
	Data       json.RawMessage `json:"data"`
	Pagination *struct {
		Total int `json:"total"`
	} `json:"pagination"`
}

// makeRequest sends an HTTP request to the test server and decodes the envelope.
func makeRequest(t *testing.T, method, path, token string, headers map[string]string, body string) (int, apiResponse) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, testServer.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out apiResponse
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	return resp.StatusCode, out
}

type signedUpUser struct {
	Token string
	ID    int64
	VAN   string
}

func signup(t *testing.T, email string) signedUpUser {
	t.Helper()
	body := fmt.Sprintf(`{"full_name":"Test User","email":%q,"password":"supersecret","phone_number":"08031234567"}`, email)
	status, resp := makeRequest(t, http.MethodPost, "/api/v1/auth/signup", "", nil, body)
	require.Equal(t, http.StatusCreated, status, resp.Message)

	var data struct {
		Token string `json:"token"`
		User  struct {
			ID                   int64  `json:"id"`
			VirtualAccountNumber string `json:"virtual_account_number"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	return signedUpUser{Token: data.Token, ID: data.User.ID, VAN: data.User.VirtualAccountNumber}
}

func TestAuthIntegration(t *testing.T) {
	clearDatabase(t)
	user := signup(t, "jane@example.com")
	assert.Len(t, user.VAN, 10)
	assert.True(t, strings.HasPrefix(user.VAN, "99"))

	t.Run("DuplicateEmail", func(t *testing.T) {
		body := `{"full_name":"Jane Two","email":"jane@example.com","password":"supersecret","phone_number":"08031234567"}`
		status, _ := makeRequest(t, http.MethodPost, "/api/v1/auth/signup", "", nil, body)
		assert.Equal(t, http.StatusConflict, status)
	})

	t.Run("Login", func(t *testing.T) {
		status, _ := makeRequest(t, http.MethodPost, "/api/v1/auth/login", "", nil, `{"email":"jane@example.com","password":"supersecret"}`)
		assert.Equal(t, http.StatusOK, status)

		status, _ = makeRequest(t, http.MethodPost, "/api/v1/auth/login", "", nil, `{"email":"jane@example.com","password":"wrongpass"}`)
		assert.Equal(t, http.StatusUnauthorized, status)
	})

	t.Run("Profile", func(t *testing.T) {
		status, _ := makeRequest(t, http.MethodGet, "/api/v1/users/profile", user.Token, nil, "")
		assert.Equal(t, http.StatusOK, status)

		status, _ = makeRequest(t, http.MethodGet, "/api/v1/users/profile", "", nil, "")
		assert.Equal(t, http.StatusUnauthorized, status)
	})

	t.Run("VirtualAccountIsStable", func(t *testing.T) {
		status, resp := makeRequest(t, http.MethodPost, "/api/v1/users/virtual-account", user.Token, nil, "")
		require.Equal(t, http.StatusOK, status)
		assert.Contains(t, string(resp.Data), user.VAN)
	})
}

func TestDepositWebhookIntegration(t *testing.T) {
	clearDatabase(t)
	user := signup(t, "depositor@example.com")
	secret := map[string]string{"X-Webhook-Secret": webhookSecret}
	body := fmt.Sprintf(`{"reference":"DEP-100","amount":2500,"account_number":%q,"sender_name":"John"}`, user.VAN)

	status, resp := makeRequest(t, http.MethodPost, "/api/v1/webhooks/deposit", "", secret, body)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Deposit processed successfully", resp.Message)

	// Redelivery is absorbed.
	status, _ = makeRequest(t, http.MethodPost, "/api/v1/webhooks/deposit", "", secret, body)
	require.Equal(t, http.StatusOK, status)

	status, resp = makeRequest(t, http.MethodGet, "/api/v1/transactions?type=deposit", user.Token, nil, "")
	require.Equal(t, http.StatusOK, status)
	require.NotNil(t, resp.Pagination)
	assert.Equal(t, 1, resp.Pagination.Total)

	status, resp = makeRequest(t, http.MethodPost, "/api/v1/webhooks/deposit", "", secret,
		`{"reference":"DEP-101","amount":10,"account_number":"9900000000"}`)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Webhook received but no matching account found", resp.Message)

	status, _ = makeRequest(t, http.MethodPost, "/api/v1/webhooks/deposit", "", map[string]string{"X-Webhook-Secret": "wrong"}, body)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestTransferIntegration(t *testing.T) {
	clearDatabase(t)
	user := signup(t, "sender@example.com")
	other := signup(t, "other@example.com")
	body := `{"recipient_account_number":"0123456789","recipient_bank_code":"058","amount":1500.50,"description":"rent"}`

	var transferID int64
	t.Run("Success", func(t *testing.T) {
		gatewayFails.Store(false)
		status, resp := makeRequest(t, http.MethodPost, "/api/v1/transactions/transfer", user.Token, nil, body)
		require.Equal(t, http.StatusCreated, status, resp.Message)

		var tx struct {
			ID        int64  `json:"id"`
			Status    string `json:"status"`
			Reference string `json:"reference"`
		}
		require.NoError(t, json.Unmarshal(resp.Data, &tx))
		assert.Equal(t, "success", tx.Status)
		assert.Regexp(t, `^TXN_\d+_[0-9A-F]{6}$`, tx.Reference)
		transferID = tx.ID
	})

	t.Run("GatewayFailureIsRecorded", func(t *testing.T) {
		gatewayFails.Store(true)
		defer gatewayFails.Store(false)

		status, _ := makeRequest(t, http.MethodPost, "/api/v1/transactions/transfer", user.Token, nil, body)
		assert.Equal(t, http.StatusInternalServerError, status)

		var failed int
		require.NoError(t, testApp.DB.Get(&failed, "SELECT COUNT(*) FROM transactions WHERE user_id = $1 AND status = 'failed'", user.ID))
		assert.Equal(t, 1, failed)
	})

	t.Run("OverLimit", func(t *testing.T) {
		status, _ := makeRequest(t, http.MethodPost, "/api/v1/transactions/transfer", user.Token, nil,
			`{"recipient_account_number":"0123456789","recipient_bank_code":"058","amount":10000.01}`)
		assert.Equal(t, http.StatusBadRequest, status)
	})

	t.Run("History", func(t *testing.T) {
		status, resp := makeRequest(t, http.MethodGet, "/api/v1/transactions?type=transfer&page=1&limit=10", user.Token, nil, "")
		require.Equal(t, http.StatusOK, status)
		require.NotNil(t, resp.Pagination)
		assert.Equal(t, 2, resp.Pagination.Total)

		status, _ = makeRequest(t, http.MethodGet, "/api/v1/transactions?limit=101", user.Token, nil, "")
		assert.Equal(t, http.StatusBadRequest, status)
	})

	t.Run("Ownership", func(t *testing.T) {
		path := fmt.Sprintf("/api/v1/transactions/%d", transferID)
		status, _ := makeRequest(t, http.MethodGet, path, user.Token, nil, "")
		assert.Equal(t, http.StatusOK, status)

		status, _ = makeRequest(t, http.MethodGet, path, other.Token, nil, "")
		assert.Equal(t, http.StatusNotFound, status)
	})
}
