package http_api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/core-coin/vendere/internal/config"
	"github.com/core-coin/vendere/internal/funds"
	"github.com/core-coin/vendere/internal/repository"
	"github.com/core-coin/vendere/internal/vendere"
	"github.com/core-coin/vendere/pkg/logger"
)

var (
	adminAddr    = strings.Repeat("aa", 22)
	buyerAddr    = strings.Repeat("b1", 22)
	receiverAddr = strings.Repeat("cc", 22)
	feeAddr      = strings.Repeat("fe", 22)
	payTokenAddr = strings.Repeat("70", 22)
)

func newTestServer(t *testing.T) *HTTPServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		AdminAddress:     adminAddr,
		FeeReceiver:      feeAddr,
		ServiceAddress:   adminAddr,
		FeeBasisPoints:   500,
		CollectionName:   "Vendere",
		CollectionSymbol: "VND",
	}
	repo := repository.NewMemoryDB()
	distributor := funds.NewDistributor(feeAddr, adminAddr, cfg.FeeBasisPoints, logger.NewNop())
	engine, err := vendere.NewVendere(repo, distributor, nil, logger.NewNop(), cfg)
	require.NoError(t, err)

	server := &HTTPServer{
		router: gin.New(),
		engine: engine,
		config: cfg,
		logger: logger.NewNop(),
	}
	server.routes()
	return server
}

func (s *HTTPServer) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	s.router.ServeHTTP(recorder, req)
	return recorder
}

func decode(t *testing.T, recorder *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &result))
	return result
}

func addNativeToken(t *testing.T, s *HTTPServer, price string) uint64 {
	t.Helper()
	recorder := s.do(t, http.MethodPost, "/api/v1/tokens", TermsRequest{
		Caller:   adminAddr,
		Receiver: receiverAddr,
		Price:    price,
	})
	require.Equal(t, http.StatusCreated, recorder.Code, recorder.Body.String())
	return uint64(decode(t, recorder)["token_id"].(float64))
}

func TestInfoEndpoint(t *testing.T) {
	s := newTestServer(t)

	recorder := s.do(t, http.MethodGet, "/api/v1/info", nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	body := decode(t, recorder)
	assert.Equal(t, "Vendere", body["name"])
	assert.Equal(t, "VND", body["symbol"])
	assert.Equal(t, float64(500), body["fee_basis_points"])
	assert.Equal(t, adminAddr, body["admin"])
}

func TestNativePurchaseFlow(t *testing.T) {
	s := newTestServer(t)
	tokenID := addNativeToken(t, s, "10000")

	// Wrong value is rejected with the price taxonomy error.
	recorder := s.do(t, http.MethodPost, fmt.Sprintf("/api/v1/tokens/%d/mint", tokenID), MintRequest{
		Caller:    buyerAddr,
		Recipient: buyerAddr,
		Value:     "10000",
	})
	require.Equal(t, http.StatusPaymentRequired, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "incorrect token price")

	// Exact price + fee succeeds.
	recorder = s.do(t, http.MethodPost, fmt.Sprintf("/api/v1/tokens/%d/mint", tokenID), MintRequest{
		Caller:    buyerAddr,
		Recipient: buyerAddr,
		Value:     "10500",
	})
	require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())

	recorder = s.do(t, http.MethodGet, fmt.Sprintf("/api/v1/tokens/%d/owner", tokenID), nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, buyerAddr, decode(t, recorder)["owner"])

	// Second purchase of the same id conflicts.
	recorder = s.do(t, http.MethodPost, fmt.Sprintf("/api/v1/tokens/%d/mint", tokenID), MintRequest{
		Caller:    buyerAddr,
		Recipient: buyerAddr,
		Value:     "10500",
	})
	assert.Equal(t, http.StatusConflict, recorder.Code)

	// Receiver funds landed.
	recorder = s.do(t, http.MethodGet, "/api/v1/balances/"+receiverAddr, nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "10000", decode(t, recorder)["native"])

	recorder = s.do(t, http.MethodGet, "/api/v1/balances/"+feeAddr, nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "500", decode(t, recorder)["native"])

	// And the audit trail has the purchase.
	recorder = s.do(t, http.MethodGet, "/api/v1/payments", nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	payments := decode(t, recorder)["payments"].([]interface{})
	assert.Len(t, payments, 1)
}

func TestTokenPurchaseFlow(t *testing.T) {
	s := newTestServer(t)

	recorder := s.do(t, http.MethodPost, "/api/v1/tokens", TermsRequest{
		Caller:       adminAddr,
		Receiver:     receiverAddr,
		PaymentToken: payTokenAddr,
		Price:        "10000",
	})
	require.Equal(t, http.StatusCreated, recorder.Code)

	recorder = s.do(t, http.MethodPost, "/api/v1/funds/deposit", DepositRequest{
		Token:  payTokenAddr,
		Holder: buyerAddr,
		Amount: "10500",
	})
	require.Equal(t, http.StatusOK, recorder.Code)

	recorder = s.do(t, http.MethodPost, "/api/v1/funds/approve", ApproveRequest{
		Token:   payTokenAddr,
		Owner:   buyerAddr,
		Spender: adminAddr,
		Amount:  "10500",
	})
	require.Equal(t, http.StatusOK, recorder.Code)

	recorder = s.do(t, http.MethodPost, "/api/v1/tokens/0/mint", MintRequest{
		Caller:    buyerAddr,
		Recipient: buyerAddr,
	})
	require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())

	recorder = s.do(t, http.MethodGet, "/api/v1/balances/"+receiverAddr, nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	tokens := decode(t, recorder)["tokens"].(map[string]interface{})
	assert.Equal(t, "10000", tokens[payTokenAddr])
}

func TestTokenPurchaseInsufficientAllowance(t *testing.T) {
	s := newTestServer(t)

	recorder := s.do(t, http.MethodPost, "/api/v1/tokens", TermsRequest{
		Caller:       adminAddr,
		Receiver:     receiverAddr,
		PaymentToken: payTokenAddr,
		Price:        "10000",
	})
	require.Equal(t, http.StatusCreated, recorder.Code)

	recorder = s.do(t, http.MethodPost, "/api/v1/tokens/0/mint", MintRequest{
		Caller:    buyerAddr,
		Recipient: buyerAddr,
	})
	assert.Equal(t, http.StatusPaymentRequired, recorder.Code)
}

func TestAddTokenUnauthorized(t *testing.T) {
	s := newTestServer(t)

	recorder := s.do(t, http.MethodPost, "/api/v1/tokens", TermsRequest{
		Caller:   buyerAddr,
		Receiver: receiverAddr,
		Price:    "10000",
	})
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestUnknownTokenIs404(t *testing.T) {
	s := newTestServer(t)

	recorder := s.do(t, http.MethodGet, "/api/v1/tokens/9", nil)
	assert.Equal(t, http.StatusNotFound, recorder.Code)

	recorder = s.do(t, http.MethodPut, "/api/v1/tokens/9", TermsRequest{
		Caller:   adminAddr,
		Receiver: receiverAddr,
		Price:    "10000",
	})
	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestBadRequests(t *testing.T) {
	s := newTestServer(t)

	// Missing required fields.
	recorder := s.do(t, http.MethodPost, "/api/v1/tokens", map[string]string{"caller": adminAddr})
	assert.Equal(t, http.StatusBadRequest, recorder.Code)

	// Malformed token id.
	recorder = s.do(t, http.MethodGet, "/api/v1/tokens/abc", nil)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)

	// Malformed address.
	recorder = s.do(t, http.MethodPost, "/api/v1/tokens", TermsRequest{
		Caller:   adminAddr,
		Receiver: "not-an-address",
		Price:    "10000",
	})
	assert.Equal(t, http.StatusBadRequest, recorder.Code)

	// Malformed price.
	recorder = s.do(t, http.MethodPost, "/api/v1/tokens", TermsRequest{
		Caller:   adminAddr,
		Receiver: receiverAddr,
		Price:    "ten",
	})
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestAdminMintEndpoint(t *testing.T) {
	s := newTestServer(t)

	// Uncatalogued id, no payment, admin only.
	recorder := s.do(t, http.MethodPost, "/api/v1/tokens/42/admin-mint", AdminMintRequest{
		Caller:    buyerAddr,
		Recipient: buyerAddr,
	})
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)

	recorder = s.do(t, http.MethodPost, "/api/v1/tokens/42/admin-mint", AdminMintRequest{
		Caller:    adminAddr,
		Recipient: buyerAddr,
	})
	require.Equal(t, http.StatusOK, recorder.Code)

	recorder = s.do(t, http.MethodGet, "/api/v1/tokens/42/owner", nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, buyerAddr, decode(t, recorder)["owner"])
}

func TestMetadataEndpoints(t *testing.T) {
	s := newTestServer(t)
	tokenID := addNativeToken(t, s, "10000")

	recorder := s.do(t, http.MethodPut, "/api/v1/base-uri", URIRequest{Caller: adminAddr, URI: "https://x/"})
	require.Equal(t, http.StatusOK, recorder.Code)

	recorder = s.do(t, http.MethodGet, fmt.Sprintf("/api/v1/tokens/%d/uri", tokenID), nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, fmt.Sprintf("https://x/%d", tokenID), decode(t, recorder)["uri"])

	recorder = s.do(t, http.MethodPut, fmt.Sprintf("/api/v1/tokens/%d/uri", tokenID), URIRequest{Caller: adminAddr, URI: "custom"})
	require.Equal(t, http.StatusOK, recorder.Code)

	recorder = s.do(t, http.MethodGet, fmt.Sprintf("/api/v1/tokens/%d/uri", tokenID), nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "custom", decode(t, recorder)["uri"])
}

func TestTransferAdminEndpoint(t *testing.T) {
	s := newTestServer(t)
	newAdmin := strings.Repeat("ad", 22)

	recorder := s.do(t, http.MethodPost, "/api/v1/admin/transfer", TransferAdminRequest{
		Caller:   buyerAddr,
		NewAdmin: newAdmin,
	})
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)

	recorder = s.do(t, http.MethodPost, "/api/v1/admin/transfer", TransferAdminRequest{
		Caller:   adminAddr,
		NewAdmin: newAdmin,
	})
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, newAdmin, decode(t, recorder)["admin"])
}
