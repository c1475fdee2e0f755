package http_api

// routes sets up the routes for the HTTP server.
func (s *HTTPServer) routes() {
	s.router.GET("/api/v1/info", s.info)

	s.router.POST("/api/v1/tokens", s.addToken)
	s.router.GET("/api/v1/tokens", s.listTokens)
	s.router.GET("/api/v1/tokens/:id", s.getTokenInfo)
	s.router.PUT("/api/v1/tokens/:id", s.updateToken)

	s.router.POST("/api/v1/tokens/:id/mint", s.mint)
	s.router.POST("/api/v1/tokens/:id/admin-mint", s.adminMint)
	s.router.GET("/api/v1/tokens/:id/owner", s.ownerOf)

	s.router.GET("/api/v1/tokens/:id/uri", s.tokenURI)
	s.router.PUT("/api/v1/tokens/:id/uri", s.updateTokenURI)
	s.router.PUT("/api/v1/base-uri", s.setBaseURI)

	s.router.POST("/api/v1/admin/transfer", s.transferAdmin)

	s.router.GET("/api/v1/payments", s.listPayments)
	s.router.POST("/api/v1/funds/deposit", s.depositToken)
	s.router.POST("/api/v1/funds/approve", s.approveToken)
	s.router.GET("/api/v1/balances/:address", s.getFunds)
}
