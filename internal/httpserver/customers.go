package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	customersvc "pos-admin/internal/service/customer"
)

func (h *handlers) listCustomers(c *gin.Context) {
	customers, err := h.Customers.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, customers)
}

func (h *handlers) createCustomer(c *gin.Context) {
	var in customersvc.Input
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	created, err := h.Customers.Create(c.Request.Context(), in)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *handlers) updateCustomer(c *gin.Context) {
	var in customersvc.Input
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	updated, err := h.Customers.Update(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *handlers) deleteCustomer(c *gin.Context) {
	if err := h.Customers.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// customerInvoices is the purchase history of one customer, newest first.
func (h *handlers) customerInvoices(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")
	if _, err := h.Customers.Get(ctx, id); err != nil {
		h.writeError(c, err)
		return
	}
	invoices, err := h.Invoices.ListByCustomer(ctx, id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, invoices)
}
