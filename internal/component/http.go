// Copyright (c) 2026 Craftly. All rights reserved.
// Author: eng@craftly.app

/*
Package component provides the HTTP interface for the owner-facing studio.

# Routing Strategy

Every endpoint here requires authentication: the studio is the caller's own
library. Public discovery lives in the community package.
*/
package component

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/craftlyhq/craftly/internal/platform/middleware"
	requestutil "github.com/craftlyhq/craftly/internal/platform/request"
	"github.com/craftlyhq/craftly/internal/platform/respond"
	"github.com/craftlyhq/craftly/internal/platform/validate"
	"github.com/craftlyhq/craftly/pkg/pagination"
)

// # Handler Implementation

// Handler implements the HTTP layer for component management.
type Handler struct {
	service *Service
}

// NewHandler constructs a new component [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns a [chi.Router] configured with studio routes.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Post("/", handler.create)
		r.Get("/", handler.list)
		r.Get("/{id}", handler.get)
		r.Put("/{id}", handler.update)
		r.Delete("/{id}", handler.remove)
		r.Post("/{id}/publish", handler.publish)
		r.Post("/{id}/unpublish", handler.unpublish)
		r.Post("/{id}/deploy", handler.deploy)
	})

	return router
}

// # Request Payloads

type createComponentRequest struct {
	Title        string `json:"title"`
	Prompt       string `json:"prompt"`
	HTML         string `json:"html"`
	CSS          string `json:"css"`
	JS           string `json:"js"`
	WithResearch bool   `json:"with_research"`
}

type updateComponentRequest struct {
	Title  string `json:"title"`
	Prompt string `json:"prompt"`
	HTML   string `json:"html"`
	CSS    string `json:"css"`
	JS     string `json:"js"`
}

type publishRequest struct {
	Description string `json:"description"`
}

/*
Create persists a freshly generated component.

POST /api/v1/components

Description: Charges the generation (and optional research) cost against the
caller's daily quota, then stores the artifact as private with a running
retention countdown.

Request:
  - Body: createComponentRequest

Response:
  - 201: Component: Created entity
  - 400: ErrInvalidJSON: Bad input or validation failure
  - 402: QuotaExceeded: Daily credits exhausted
*/
func (handler *Handler) create(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input createComponentRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldTitle, input.Title).
		MaxLen(FieldTitle, input.Title, MaxTitleLen).
		Required(FieldPrompt, input.Prompt).
		MaxLen(FieldPrompt, input.Prompt, MaxPromptLen).
		Required(FieldHTML, input.HTML)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	component, err := handler.service.Create(request.Context(), userID, CreateInput{
		Title:        input.Title,
		Prompt:       input.Prompt,
		HTML:         input.HTML,
		CSS:          input.CSS,
		JS:           input.JS,
		WithResearch: input.WithResearch,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, component)
}

/*
List returns the caller's own components, newest first.

GET /api/v1/components

Request:
  - page: int
  - limit: int

Response:
  - 200: []Component: Paginated list
*/
func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	params := pagination.FromRequest(request)

	components, total, err := handler.service.ListOwned(request.Context(), userID, params.Limit, params.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, components, pagination.NewMeta(params.Page, params.Limit, total))
}

/*
Get returns a single component visible to the caller.

GET /api/v1/components/{id}

Response:
  - 200: Component
  - 404: ErrNotFound: Missing, or private and not owned by the caller
*/
func (handler *Handler) get(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	component, err := handler.service.Get(request.Context(), userID, requestutil.ID(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, component)
}

/*
Update replaces the component's content fields.

PUT /api/v1/components/{id}

Response:
  - 200: Component: Updated entity
  - 403: ErrForbidden: Caller does not own the component
  - 404: ErrNotFound: Component missing
*/
func (handler *Handler) update(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input updateComponentRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldTitle, input.Title).
		MaxLen(FieldTitle, input.Title, MaxTitleLen).
		Required(FieldHTML, input.HTML)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	component, err := handler.service.Update(request.Context(), userID, requestutil.ID(request), UpdateInput{
		Title:  input.Title,
		Prompt: input.Prompt,
		HTML:   input.HTML,
		CSS:    input.CSS,
		JS:     input.JS,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, component)
}

/*
Remove deletes a component together with its likes and comments.

DELETE /api/v1/components/{id}

Response:
  - 204: No Content
  - 403: ErrForbidden: Caller does not own the component
  - 404: ErrNotFound: Component missing
*/
func (handler *Handler) remove(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.Delete(request.Context(), userID, requestutil.ID(request)); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

/*
Publish makes a component publicly listed and permanent.

POST /api/v1/components/{id}/publish

Request:
  - Body: publishRequest (Description)

Response:
  - 200: Component: Now public, expiry cleared
  - 400: ErrValidation: Description too short or empty output
  - 403: ErrForbidden: Caller does not own the component
*/
func (handler *Handler) publish(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input publishRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	component, err := handler.service.Publish(request.Context(), userID, requestutil.ID(request), input.Description)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, component)
}

/*
Unpublish returns a component to private with a fresh retention countdown.

POST /api/v1/components/{id}/unpublish

Response:
  - 200: Component: Now private, expiry set
  - 403: ErrForbidden: Caller does not own the component
*/
func (handler *Handler) unpublish(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	component, err := handler.service.Unpublish(request.Context(), userID, requestutil.ID(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, component)
}

/*
Deploy charges the deployment cost and returns the hosted URL.

POST /api/v1/components/{id}/deploy

Response:
  - 200: DeployURL
  - 402: QuotaExceeded: Daily credits exhausted
  - 403: ErrForbidden: Caller does not own the component
*/
func (handler *Handler) deploy(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	deployURL, err := handler.service.Deploy(request.Context(), userID, requestutil.ID(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{
		FieldDeployURL: deployURL,
	})
}
