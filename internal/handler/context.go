package handler

import (
	"net/http"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"

	"secondhand/internal/auth"
)

// CallerPrincipal extracts the authenticated caller from the JWT placed in
// the echo context by the auth middleware.
func CallerPrincipal(c echo.Context) (auth.Principal, error) {
	token, ok := c.Get("user").(*jwt.Token)
	if !ok {
		return auth.Principal{}, echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
	}
	claims, ok := token.Claims.(*auth.Claims)
	if !ok {
		return auth.Principal{}, echo.NewHTTPError(http.StatusUnauthorized, "invalid token claims")
	}
	return claims.Principal(), nil
}
