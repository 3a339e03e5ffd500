// Copyright (c) 2026 Craftly. All rights reserved.
// Author: eng@craftly.app

package auth_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/craftlyhq/craftly/internal/auth"
)

// sessionCookie pulls the token cookie out of a recorded response.
func sessionCookie(t *testing.T, recorder *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()

	for _, cookie := range recorder.Result().Cookies() {
		if cookie.Name == "token" {
			return cookie
		}
	}

	t.Fatal("no token cookie in response")
	return nil
}

/*
TestHandler_Login_CookieSecurity verifies the Secure attribute follows the
deployment mode: HTTPS-only in production, relaxed for local plain-HTTP work.
*/
func TestHandler_Login_CookieSecurity(t *testing.T) {
	service, _, _, _, _ := newTestService(t)

	_, err := service.Register(context.Background(), auth.RegisterInput{
		Handle: "quinn", Email: "quinn@example.com", Password: "correct-horse",
	})
	require.NoError(t, err)

	login := func(handler *auth.Handler) *httptest.ResponseRecorder {
		body := `{"login": "quinn@example.com", "password": "correct-horse"}`
		request := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(body))
		recorder := httptest.NewRecorder()
		handler.Routes().ServeHTTP(recorder, request)
		require.Equal(t, http.StatusOK, recorder.Code)
		return recorder
	}

	// 1. Production handler marks the cookie HTTPS-only
	production := sessionCookie(t, login(auth.NewHandler(service, true)))
	assert.True(t, production.Secure)
	assert.True(t, production.HttpOnly)
	assert.NotEmpty(t, production.Value)

	// 2. Development handler leaves Secure off so plain HTTP keeps the cookie
	development := sessionCookie(t, login(auth.NewHandler(service, false)))
	assert.False(t, development.Secure)
	assert.True(t, development.HttpOnly)
}
