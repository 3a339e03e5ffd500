// Copyright (c) 2026 Craftly. All rights reserved.
// Author: eng@craftly.app

package account

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/craftlyhq/craftly/internal/platform/middleware"
	requestutil "github.com/craftlyhq/craftly/internal/platform/request"
	"github.com/craftlyhq/craftly/internal/platform/respond"
	"github.com/craftlyhq/craftly/internal/platform/validate"
)

// Handler exposes the profile endpoints over HTTP.
type Handler struct {
	service *Service
}

// NewHandler wires the profile HTTP layer.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the profile router. Profiles by handle are visible to
// anonymous visitors; the caller's own profile requires a session.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/me", handler.ownProfile)
		r.Put("/me", handler.update)
	})

	router.Get("/{handle}", handler.byHandle)

	return router
}

func (handler *Handler) byHandle(writer http.ResponseWriter, request *http.Request) {
	profile, err := handler.service.ProfileByHandle(request.Context(), requestutil.Param(request, "handle"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, profile)
}

func (handler *Handler) ownProfile(writer http.ResponseWriter, request *http.Request) {
	identity, err := requestutil.RequiredIdentity(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	profile, err := handler.service.OwnProfile(request.Context(), identity.UserID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, profile)
}

func (handler *Handler) update(writer http.ResponseWriter, request *http.Request) {
	identity, err := requestutil.RequiredIdentity(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input UpdateInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	profile, err := handler.service.Update(request.Context(), identity.UserID, input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, profile)
}
