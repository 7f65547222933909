package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/velora-cms/velora/internal/middleware"
	"github.com/velora-cms/velora/internal/model"
	"github.com/velora-cms/velora/internal/repository"
)

// ContentHandler serves the content item CRUD API. Posts and products
// share the endpoint; the kind field tells them apart.
type ContentHandler struct {
	Items *repository.ContentRepo
}

func NewContentHandler(items *repository.ContentRepo) *ContentHandler {
	return &ContentHandler{Items: items}
}

type itemPart struct {
	ID        uint64    `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Kind      string    `json:"kind"`
	Published bool      `json:"published"`
	AuthorID  uint64    `json:"authorId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func itemResp(it *model.ContentItem) itemPart {
	return itemPart{
		ID:        it.ID,
		Title:     it.Title,
		Body:      it.Body,
		Kind:      it.Kind,
		Published: it.Published,
		AuthorID:  it.AuthorID,
		CreatedAt: it.CreatedAt,
		UpdatedAt: it.UpdatedAt,
	}
}

type createItemReq struct {
	Title     string `json:"title"`
	Body      string `json:"body"`
	Kind      string `json:"kind"`
	Published bool   `json:"published"`
}

type updateItemReq struct {
	Title     *string `json:"title"`
	Body      *string `json:"body"`
	Kind      *string `json:"kind"`
	Published *bool   `json:"published"`
}

func validKind(k string) bool {
	return k == model.ContentKindPost || k == model.ContentKindProduct
}

// List returns published items. Public; the response cache sits in
// front of it.
func (h *ContentHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, err := h.Items.List(ctx, true)
	if err != nil {
		c.Logger().Errorf("content: list: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch content items"})
	}
	out := make([]itemPart, 0, len(items))
	for i := range items {
		out = append(out, itemResp(&items[i]))
	}
	return c.JSON(http.StatusOK, out)
}

// Create inserts a new item authored by the current user.
func (h *ContentHandler) Create(c echo.Context) error {
	ident, ok := middleware.CurrentIdentity(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	var req createItemReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Title == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title is required"})
	}
	if req.Kind == "" {
		req.Kind = model.ContentKindPost
	}
	if !validKind(req.Kind) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown kind"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	it, err := h.Items.Create(ctx, req.Title, req.Body, req.Kind, req.Published, ident.ID)
	if err != nil {
		c.Logger().Errorf("content: create: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create content item"})
	}
	return c.JSON(http.StatusCreated, itemResp(it))
}

// Update applies a partial update to an item.
func (h *ContentHandler) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req updateItemReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Kind != nil && !validKind(*req.Kind) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown kind"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	it, err := h.Items.Update(ctx, id, repository.ContentUpdate{
		Title:     req.Title,
		Body:      req.Body,
		Kind:      req.Kind,
		Published: req.Published,
	})
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
		}
		c.Logger().Errorf("content: update: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update content item"})
	}
	return c.JSON(http.StatusOK, itemResp(it))
}

// Delete removes an item.
func (h *ContentHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Items.Delete(ctx, id); err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
		}
		c.Logger().Errorf("content: delete: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete content item"})
	}
	return c.NoContent(http.StatusNoContent)
}

func pathID(c echo.Context) (uint64, error) {
	return strconv.ParseUint(c.Param("id"), 10, 64)
}
