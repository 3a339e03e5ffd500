// Copyright (c) 2026 Craftly. All rights reserved.
// Author: eng@craftly.app

package credits

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/craftlyhq/craftly/internal/platform/middleware"
	requestutil "github.com/craftlyhq/craftly/internal/platform/request"
	"github.com/craftlyhq/craftly/internal/platform/respond"
)

// Handler implements quota-related HTTP endpoints.
type Handler struct {
	meter *Meter
}

// NewHandler constructs a new [Handler] with its meter dependency.
func NewHandler(meter *Meter) *Handler {
	return &Handler{meter: meter}
}

// Routes returns a [chi.Router] configured with credit routes.
//
// # Endpoints
//   - GET / : Returns the caller's current daily balance.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/", handler.balance)
	})

	return router
}

/*
Balance reports the caller's remaining daily credits.

GET /api/v1/credits

Response:
  - 200: Balance: Remaining credits, allotment, and next UTC reset
  - 401: ErrUnauthorized: Authentication required
*/
func (handler *Handler) balance(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	balance, err := handler.meter.Balance(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, balance)
}
