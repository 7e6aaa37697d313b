package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pos-admin/internal/cart"
	"pos-admin/internal/domain"
)

type addItemRequest struct {
	ItemID string `json:"itemId" binding:"required"`
}

type quantityRequest struct {
	Quantity int `json:"quantity"`
}

type scanRequest struct {
	Code string `json:"code"`
}

type discountRequest struct {
	Amount any `json:"amount"`
}

type customerRequest struct {
	CustomerID string `json:"customerId"`
}

type resumeRequest struct {
	InvoiceNumber string `json:"invoiceNumber" binding:"required"`
}

func (h *handlers) openSession(c *gin.Context) {
	s := h.Sessions.Open()
	c.JSON(http.StatusCreated, s.View())
}

func (h *handlers) getSession(c *gin.Context) {
	s, err := h.Sessions.Get(c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, s.View())
}

func (h *handlers) closeSession(c *gin.Context) {
	if err := h.Sessions.Close(c.Param("id")); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// edit runs fn on the session cart and responds with the updated view.
func (h *handlers) edit(c *gin.Context, fn func(*cart.Engine) error) {
	s, err := h.Sessions.Get(c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	if err := s.Do(fn); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, s.View())
}

func (h *handlers) addItem(c *gin.Context) {
	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	item, ok := h.Catalog.Get(req.ItemID)
	if !ok {
		h.writeError(c, &domain.LookupMissError{Query: req.ItemID})
		return
	}
	h.edit(c, func(e *cart.Engine) error {
		e.AddItem(item)
		return nil
	})
}

func (h *handlers) setQuantity(c *gin.Context) {
	var req quantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	h.edit(c, func(e *cart.Engine) error {
		e.SetQuantity(c.Param("itemId"), req.Quantity)
		return nil
	})
}

func (h *handlers) removeItem(c *gin.Context) {
	h.edit(c, func(e *cart.Engine) error {
		e.RemoveItem(c.Param("itemId"))
		return nil
	})
}

// scan adds the item matching a barcode, SKU or name. Blank codes leave the
// cart as it is.
func (h *handlers) scan(c *gin.Context) {
	var req scanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	h.edit(c, func(e *cart.Engine) error {
		_, err := e.ScanBarcode(req.Code)
		return err
	})
}

func (h *handlers) setDiscount(c *gin.Context) {
	var req discountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	h.edit(c, func(e *cart.Engine) error {
		e.SetDiscount(req.Amount)
		return nil
	})
}

func (h *handlers) setCustomer(c *gin.Context) {
	var req customerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	h.edit(c, func(e *cart.Engine) error {
		e.SetCustomer(req.CustomerID)
		return nil
	})
}

func (h *handlers) clearCart(c *gin.Context) {
	h.edit(c, func(e *cart.Engine) error {
		e.Clear()
		return nil
	})
}

func (h *handlers) commit(c *gin.Context) {
	res, err := h.Sessions.Commit(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

func (h *handlers) hold(c *gin.Context) {
	res, err := h.Sessions.Hold(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

func (h *handlers) resume(c *gin.Context) {
	var req resumeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	res, err := h.Sessions.Resume(c.Request.Context(), c.Param("id"), req.InvoiceNumber)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
