// Copyright (c) 2026 Craftly. All rights reserved.
// Author: eng@craftly.app

package community

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/craftlyhq/craftly/internal/platform/middleware"
	requestutil "github.com/craftlyhq/craftly/internal/platform/request"
	"github.com/craftlyhq/craftly/internal/platform/respond"
	"github.com/craftlyhq/craftly/internal/platform/validate"
	"github.com/craftlyhq/craftly/pkg/pagination"
)

// Handler exposes the social endpoints over HTTP.
type Handler struct {
	service *Service
}

// NewHandler wires the social HTTP layer.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the social router. Browsing public components is open to
// anonymous visitors; likes and comments act on behalf of the caller's
// identity and require a session.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// Open reads
	router.Get("/feed", handler.feed)
	router.Get("/components/{id}", handler.publicComponent)
	router.Get("/components/{id}/comments", handler.listComments)

	// Identity-bound mutations
	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Post("/components/{id}/like", handler.toggleLike)
		r.Post("/components/{id}/comments", handler.addComment)
		r.Delete("/comments/{id}", handler.deleteComment)
	})

	return router
}

func (handler *Handler) feed(writer http.ResponseWriter, request *http.Request) {
	params := pagination.FromRequestWithLimits(request, FeedDefaultLimit, FeedMaxLimit)
	sort := ParseFeedSort(request.URL.Query().Get(FieldSort))

	items, total, err := handler.service.Feed(request.Context(), sort, params.Limit, params.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, items, pagination.NewMeta(params.Page, params.Limit, total))
}

func (handler *Handler) publicComponent(writer http.ResponseWriter, request *http.Request) {
	item, err := handler.service.PublicComponent(request.Context(), requestutil.ID(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, item)
}

func (handler *Handler) toggleLike(writer http.ResponseWriter, request *http.Request) {
	identity, err := requestutil.RequiredIdentity(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	liked, err := handler.service.ToggleLike(request.Context(), identity.UserID, requestutil.ID(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]bool{"liked": liked})
}

type commentRequest struct {
	Body string `json:"body"`
}

func (handler *Handler) addComment(writer http.ResponseWriter, request *http.Request) {
	identity, err := requestutil.RequiredIdentity(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var payload commentRequest
	if err := requestutil.DecodeJSON(request, &payload); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	comment, err := handler.service.AddComment(request.Context(), identity.UserID, requestutil.ID(request), payload.Body)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, comment)
}

func (handler *Handler) listComments(writer http.ResponseWriter, request *http.Request) {
	params := pagination.FromRequest(request)

	comments, total, err := handler.service.Comments(request.Context(), requestutil.ID(request), params.Limit, params.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, comments, pagination.NewMeta(params.Page, params.Limit, total))
}

func (handler *Handler) deleteComment(writer http.ResponseWriter, request *http.Request) {
	identity, err := requestutil.RequiredIdentity(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.DeleteComment(request.Context(), identity.UserID, requestutil.ID(request)); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}
