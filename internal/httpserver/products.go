package httpserver

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	productsvc "pos-admin/internal/service/product"
)

// listProducts serves the catalog cache, filtered by ?q= and ?category=.
func (h *handlers) listProducts(c *gin.Context) {
	if _, err := h.Catalog.Load(c.Request.Context()); err != nil {
		h.logger.Warn().Err(err).Msg("http: catalog unavailable")
	}
	resp := gin.H{
		"items":      h.Catalog.Filter(c.Query("q"), c.Query("category")),
		"categories": h.Catalog.Categories(),
	}
	if err := h.Catalog.Err(); err != nil {
		resp["catalogError"] = err.Error()
	}
	c.JSON(http.StatusOK, resp)
}

func (h *handlers) createProduct(c *gin.Context) {
	var in productsvc.Input
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	item, err := h.Products.Create(c.Request.Context(), in)
	if err != nil {
		h.writeError(c, err)
		return
	}
	h.reloadCatalog(c.Request.Context())
	c.JSON(http.StatusCreated, item)
}

func (h *handlers) updateProduct(c *gin.Context) {
	var in productsvc.Input
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	item, err := h.Products.Update(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		h.writeError(c, err)
		return
	}
	h.reloadCatalog(c.Request.Context())
	c.JSON(http.StatusOK, item)
}

func (h *handlers) deleteProduct(c *gin.Context) {
	if err := h.Products.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.writeError(c, err)
		return
	}
	h.reloadCatalog(c.Request.Context())
	c.Status(http.StatusNoContent)
}

// reloadCatalog refreshes the cache after a mutation. A failed reload is
// visible through the catalogError field of the next listing.
func (h *handlers) reloadCatalog(ctx context.Context) {
	if _, err := h.Catalog.Reload(ctx); err != nil {
		h.logger.Warn().Err(err).Msg("http: catalog reload failed")
	}
}
