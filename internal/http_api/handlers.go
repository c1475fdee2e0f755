package http_api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/core-coin/vendere/internal/models"
	"github.com/core-coin/vendere/pkg/validation"
	"github.com/gin-gonic/gin"
)

// TermsRequest represents the JSON body for addToken and updateToken
type TermsRequest struct {
	Caller       string `json:"caller" binding:"required"`
	Receiver     string `json:"receiver" binding:"required"`
	PaymentToken string `json:"payment_token"` // empty or zero address = native XCB
	Price        string `json:"price" binding:"required"`
}

// MintRequest represents the JSON body for the public mint
type MintRequest struct {
	Caller    string `json:"caller" binding:"required"`
	Recipient string `json:"recipient" binding:"required"`
	Value     string `json:"value"` // attached native value, base-10
}

// AdminMintRequest represents the JSON body for the fee-free admin mint
type AdminMintRequest struct {
	Caller    string `json:"caller" binding:"required"`
	Recipient string `json:"recipient" binding:"required"`
}

// URIRequest represents the JSON body for setBaseUri and updateTokenUri
type URIRequest struct {
	Caller string `json:"caller" binding:"required"`
	URI    string `json:"uri"`
}

// TransferAdminRequest represents the JSON body for the admin handover
type TransferAdminRequest struct {
	Caller   string `json:"caller" binding:"required"`
	NewAdmin string `json:"new_admin" binding:"required"`
}

// DepositRequest represents the JSON body for funding the payment token double
type DepositRequest struct {
	Token  string `json:"token" binding:"required"`
	Holder string `json:"holder" binding:"required"`
	Amount string `json:"amount" binding:"required"`
}

// ApproveRequest represents the JSON body for setting a payment token allowance
type ApproveRequest struct {
	Token   string `json:"token" binding:"required"`
	Owner   string `json:"owner" binding:"required"`
	Spender string `json:"spender" binding:"required"`
	Amount  string `json:"amount" binding:"required"`
}

// TokenResponse is the read model for one catalog entry, amounts as base-10 strings
type TokenResponse struct {
	TokenID      uint64 `json:"token_id"`
	Receiver     string `json:"receiver"`
	PaymentToken string `json:"payment_token"`
	Price        string `json:"price"`
	Fee          string `json:"fee"`
	Issued       bool   `json:"issued"`
	Owner        string `json:"owner,omitempty"`
}

func tokenResponse(info *models.TokenInfo) TokenResponse {
	return TokenResponse{
		TokenID:      info.TokenID,
		Receiver:     info.Receiver,
		PaymentToken: info.PaymentToken,
		Price:        info.Price.String(),
		Fee:          info.Fee.String(),
		Issued:       info.Issued,
		Owner:        info.Owner,
	}
}

// respondError maps engine errors to HTTP statuses with the taxonomy reason string.
func (s *HTTPServer) respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, models.ErrInvalidItem):
		status = http.StatusNotFound
	case errors.Is(err, models.ErrAlreadyIssued):
		status = http.StatusConflict
	case errors.Is(err, models.ErrIncorrectPrice), errors.Is(err, models.ErrInsufficientFunds):
		status = http.StatusPaymentRequired
	case errors.Is(err, models.ErrUnauthorized):
		status = http.StatusUnauthorized
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("Request failed ", "error ", err)
		c.JSON(status, gin.H{"success": false, "error": "internal error"})
		return
	}
	c.JSON(status, gin.H{"success": false, "error": err.Error()})
}

func (s *HTTPServer) tokenID(c *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid token id"})
		return 0, false
	}
	return id, true
}

// info returns the collection constants fixed at startup.
func (s *HTTPServer) info(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"name":             s.config.CollectionName,
		"symbol":           s.config.CollectionSymbol,
		"fee_receiver":     validation.NormalizeAddress(s.config.FeeReceiver),
		"fee_basis_points": s.config.FeeBasisPoints,
		"admin":            s.engine.Admin(),
	})
}

// addToken is a handler for registering a new item record.
func (s *HTTPServer) addToken(c *gin.Context) {
	var req TermsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request body: " + err.Error()})
		return
	}

	terms, err := s.parseTerms(&req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	tokenID, err := s.engine.AddToken(req.Caller, *terms)
	if err != nil {
		s.respondError(c, err)
		return
	}

	s.logger.Info("Token registered ", "id ", tokenID)
	c.JSON(http.StatusCreated, gin.H{"success": true, "token_id": tokenID})
}

// updateToken is a handler for amending an existing item record.
func (s *HTTPServer) updateToken(c *gin.Context) {
	tokenID, ok := s.tokenID(c)
	if !ok {
		return
	}
	var req TermsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request body: " + err.Error()})
		return
	}

	terms, err := s.parseTerms(&req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	if err := s.engine.UpdateToken(req.Caller, tokenID, *terms); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "token_id": tokenID})
}

func (s *HTTPServer) parseTerms(req *TermsRequest) (*models.TokenTerms, error) {
	if err := validation.ValidateAddress(req.Receiver); err != nil {
		return nil, errors.New("invalid receiver address: " + err.Error())
	}
	if req.PaymentToken != "" && !models.IsNativePayment(req.PaymentToken) {
		if err := validation.ValidateAddress(req.PaymentToken); err != nil {
			return nil, errors.New("invalid payment token address: " + err.Error())
		}
	}
	price, err := validation.ParseAmount(req.Price)
	if err != nil {
		return nil, errors.New("invalid price: " + err.Error())
	}
	return &models.TokenTerms{
		Receiver:     req.Receiver,
		PaymentToken: req.PaymentToken,
		Price:        price,
	}, nil
}

// getTokenInfo is a handler for reading one item record with its derived fee.
func (s *HTTPServer) getTokenInfo(c *gin.Context) {
	tokenID, ok := s.tokenID(c)
	if !ok {
		return
	}
	info, err := s.engine.GetTokenInfo(tokenID)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tokenResponse(info))
}

// listTokens is a handler for reading the whole catalog.
func (s *HTTPServer) listTokens(c *gin.Context) {
	infos, err := s.engine.ListTokens()
	if err != nil {
		s.respondError(c, err)
		return
	}
	tokens := make([]TokenResponse, 0, len(infos))
	for _, info := range infos {
		tokens = append(tokens, tokenResponse(info))
	}
	c.JSON(http.StatusOK, gin.H{"tokens": tokens})
}

// mint is a handler for the public paid issuance path.
func (s *HTTPServer) mint(c *gin.Context) {
	tokenID, ok := s.tokenID(c)
	if !ok {
		return
	}
	var req MintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request body: " + err.Error()})
		return
	}

	if err := validation.ValidateAddress(req.Caller); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid caller address: " + err.Error()})
		return
	}
	if err := validation.ValidateAddress(req.Recipient); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid recipient address: " + err.Error()})
		return
	}
	value, err := validation.ParseAmount(req.Value)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid value: " + err.Error()})
		return
	}

	if err := s.engine.Mint(req.Caller, req.Recipient, tokenID, value); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "token_id": tokenID, "owner": validation.NormalizeAddress(req.Recipient)})
}

// adminMint is a handler for fee-free issuance by the admin.
func (s *HTTPServer) adminMint(c *gin.Context) {
	tokenID, ok := s.tokenID(c)
	if !ok {
		return
	}
	var req AdminMintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request body: " + err.Error()})
		return
	}

	if err := validation.ValidateAddress(req.Recipient); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid recipient address: " + err.Error()})
		return
	}

	if err := s.engine.AdminMint(req.Caller, req.Recipient, tokenID); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "token_id": tokenID, "owner": validation.NormalizeAddress(req.Recipient)})
}

// ownerOf is a handler for reading the current owner of an issued token.
func (s *HTTPServer) ownerOf(c *gin.Context) {
	tokenID, ok := s.tokenID(c)
	if !ok {
		return
	}
	owner, err := s.engine.OwnerOf(tokenID)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token_id": tokenID, "owner": owner})
}

// tokenURI is a handler for resolving the metadata descriptor of a token.
func (s *HTTPServer) tokenURI(c *gin.Context) {
	tokenID, ok := s.tokenID(c)
	if !ok {
		return
	}
	uri, err := s.engine.TokenURI(tokenID)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token_id": tokenID, "uri": uri})
}

// updateTokenURI is a handler for setting a per-item metadata override.
func (s *HTTPServer) updateTokenURI(c *gin.Context) {
	tokenID, ok := s.tokenID(c)
	if !ok {
		return
	}
	var req URIRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request body: " + err.Error()})
		return
	}

	if err := s.engine.UpdateTokenURI(req.Caller, tokenID, req.URI); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "token_id": tokenID})
}

// setBaseURI is a handler for replacing the catalog-wide base URI.
func (s *HTTPServer) setBaseURI(c *gin.Context) {
	var req URIRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request body: " + err.Error()})
		return
	}

	if err := s.engine.SetBaseURI(req.Caller, req.URI); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// transferAdmin is a handler for handing over the admin capability.
func (s *HTTPServer) transferAdmin(c *gin.Context) {
	var req TransferAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request body: " + err.Error()})
		return
	}

	if err := s.engine.TransferAdmin(req.Caller, req.NewAdmin); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "admin": s.engine.Admin()})
}

// listPayments is a handler for the payment audit trail.
func (s *HTTPServer) listPayments(c *gin.Context) {
	payments, err := s.engine.ListPayments()
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payments": payments})
}

// depositToken is a handler for funding the payment token double.
func (s *HTTPServer) depositToken(c *gin.Context) {
	var req DepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request body: " + err.Error()})
		return
	}

	amount, err := validation.ParseAmount(req.Amount)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid amount: " + err.Error()})
		return
	}
	if err := validation.ValidateAddress(req.Token); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid token address: " + err.Error()})
		return
	}
	if err := validation.ValidateAddress(req.Holder); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid holder address: " + err.Error()})
		return
	}

	if err := s.engine.DepositToken(req.Token, req.Holder, amount); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// approveToken is a handler for setting a payment token allowance.
func (s *HTTPServer) approveToken(c *gin.Context) {
	var req ApproveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request body: " + err.Error()})
		return
	}

	amount, err := validation.ParseAmount(req.Amount)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid amount: " + err.Error()})
		return
	}
	for name, addr := range map[string]string{"token": req.Token, "owner": req.Owner, "spender": req.Spender} {
		if err := validation.ValidateAddress(addr); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid " + name + " address: " + err.Error()})
			return
		}
	}

	if err := s.engine.ApproveToken(req.Token, req.Owner, req.Spender, amount); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// getFunds is a handler for reading the balances of an address.
func (s *HTTPServer) getFunds(c *gin.Context) {
	address := c.Param("address")
	if err := validation.ValidateAddress(address); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid address format: " + err.Error()})
		return
	}

	funds, err := s.engine.GetFunds(address)
	if err != nil {
		s.respondError(c, err)
		return
	}

	tokens := make(map[string]string, len(funds.Tokens))
	for token, amount := range funds.Tokens {
		tokens[token] = amount.String()
	}
	c.JSON(http.StatusOK, gin.H{
		"address": funds.Address,
		"native":  funds.Native.String(),
		"tokens":  tokens,
	})
}
