package httpserver

func (s *Server) setupRoutes() {
	s.echo.GET("/health", s.healthCheck)
	s.echo.GET("/metrics", s.metricsEndpoint)

	s.echo.POST("/users", s.signUp)

	s.echo.GET("/email-verifications/:token", s.verifyEmail)
	s.echo.POST("/email-verifications/resend", s.resendVerificationEmail)
}
