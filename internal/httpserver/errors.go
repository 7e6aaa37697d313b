package httpserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"pos-admin/internal/domain"
)

// writeError maps domain errors to status codes. Unknown errors are 500 and logged.
func (h *handlers) writeError(c *gin.Context, err error) {
	var (
		validation *domain.ValidationError
		miss       *domain.LookupMissError
		header     *domain.InvoiceHeaderWriteError
		lines      *domain.InvoiceLinesWriteError
		unknown    *domain.UnknownItemsError
	)
	switch {
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "fields": validation.Fields})
	case errors.As(err, &miss):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error(), "query": miss.Query})
	case errors.As(err, &unknown):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "itemIds": unknown.ItemIDs})
	case errors.As(err, &lines):
		c.JSON(http.StatusBadGateway, gin.H{
			"error":         err.Error(),
			"invoiceId":     lines.InvoiceID,
			"invoiceNumber": lines.InvoiceNumber,
		})
	case errors.As(err, &header):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrEmptyCart):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrCommitInProgress),
		errors.Is(err, domain.ErrCartChanged),
		errors.Is(err, domain.ErrAlreadyExists):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		h.logger.Error().Err(err).Str("path", c.FullPath()).Msg("http: unhandled error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}
