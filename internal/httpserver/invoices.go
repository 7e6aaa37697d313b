package httpserver

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"

	"pos-admin/internal/report"
)

func (h *handlers) listInvoices(c *gin.Context) {
	all, err := h.Invoices.ListDetailed(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, report.Search(all, c.Query("q")))
}

func (h *handlers) getInvoice(c *gin.Context) {
	inv, err := h.Invoices.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, inv)
}

// getReceipt renders a stored invoice; ?format=text returns the printable layout.
func (h *handlers) getReceipt(c *gin.Context) {
	rec, err := h.Receipts.Render(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	if c.Query("format") == "text" {
		c.String(http.StatusOK, rec.Text())
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (h *handlers) printReceipt(c *gin.Context) {
	rec, err := h.Receipts.Print(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (h *handlers) sales(c *gin.Context) {
	period, err := report.ParsePeriod(c.Query("period"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	all, err := h.Invoices.ListDetailed(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, report.Sales(all, period, h.Now()))
}

func (h *handlers) today(c *gin.Context) {
	all, err := h.Invoices.ListDetailed(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, report.SummarizeToday(all, h.Now()))
}

func (h *handlers) exportInvoices(c *gin.Context) {
	all, err := h.Invoices.ListDetailed(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	var buf bytes.Buffer
	if err := report.WriteCSV(&buf, report.Search(all, c.Query("q"))); err != nil {
		h.writeError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="invoices.csv"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}
