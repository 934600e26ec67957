// Package api exposes the package search gateway over fiber.
package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/ortelius/scec-spog/model"
	"github.com/ortelius/scec-spog/sbom"
)

// DefaultLimit is the page size used when a search does not pass limit
const DefaultLimit = 10

// Service is the aggregation core behind the handlers
type Service interface {
	Search(ctx context.Context, q string, offset, limit int) (*model.SearchResult[[]model.PackageSummary], error)
	Get(ctx context.Context, id string) (*http.Response, error)
}

// QueryParams are the parameters of a package search
type QueryParams struct {
	Q      string `query:"q"`
	Offset int    `query:"offset"`
	Limit  int    `query:"limit"`
}

// GetParams are the parameters of a package fetch
type GetParams struct {
	ID string `query:"id"`
}

// Handler serves the package endpoints
type Handler struct {
	service Service
}

// NewHandler creates a Handler over service
func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// SearchPackages handles GET /api/v1/package/search
func (h *Handler) SearchPackages(c *fiber.Ctx) error {
	params := QueryParams{Limit: DefaultLimit}
	if err := c.QueryParser(&params); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid query parameters: "+err.Error())
	}
	if params.Offset < 0 || params.Limit < 0 {
		return fiber.NewError(fiber.StatusBadRequest, "offset and limit must not be negative")
	}

	result, err := h.service.Search(c.UserContext(), params.Q, params.Offset, params.Limit)
	if err != nil {
		// upstream statuses are relayed as is, everything else is a bare 500
		var statusErr *sbom.StatusError
		if errors.As(err, &statusErr) {
			c.Status(statusErr.StatusCode)
			return nil
		}
		c.Status(fiber.StatusInternalServerError)
		return nil
	}

	return c.JSON(result)
}

// GetPackage handles GET /api/v1/package, relaying the backend SBOM document
func (h *Handler) GetPackage(c *fiber.Ctx) error {
	if !c.Context().QueryArgs().Has("id") {
		return fiber.NewError(fiber.StatusBadRequest, "id is a required parameter")
	}
	var params GetParams
	if err := c.QueryParser(&params); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid query parameters: "+err.Error())
	}

	resp, err := h.service.Get(c.UserContext(), params.ID)
	if err != nil {
		c.Status(fiber.StatusInternalServerError)
		return nil
	}

	c.Status(resp.StatusCode)
	if contentType := resp.Header.Get(fiber.HeaderContentType); contentType != "" {
		c.Set(fiber.HeaderContentType, contentType)
	}
	// fasthttp closes the body once it has been written out
	c.Response().SetBodyStream(resp.Body, int(resp.ContentLength))
	return nil
}
