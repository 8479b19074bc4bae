package api

import (
	"bytes"
	"net/http"
	"strconv"

	"pos-service/internal/export"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type addLineRequest struct {
	ProductID int64 `json:"product_id" binding:"required"`
	Quantity  int   `json:"quantity"`
}

type checkoutRequest struct {
	Tendered *decimal.Decimal `json:"tendered"`
}

func (h *Handler) createCart(c *gin.Context) {
	ct, err := h.carts.CreateCart(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ct)
}

func (h *Handler) getCart(c *gin.Context) {
	ct, err := h.carts.GetCart(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cart": ct, "total": ct.Total()})
}

func (h *Handler) discardCart(c *gin.Context) {
	if err := h.carts.DiscardCart(c.Request.Context(), c.Param("id")); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) addCartLine(c *gin.Context) {
	var req addLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body", err)
		return
	}

	ct, err := h.carts.AddItem(c.Request.Context(), c.Param("id"), req.ProductID, req.Quantity)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cart": ct, "total": ct.Total()})
}

func (h *Handler) removeCartLine(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		badRequest(c, "Invalid index", err)
		return
	}

	ct, err := h.carts.RemoveItem(c.Request.Context(), c.Param("id"), index)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cart": ct, "total": ct.Total()})
}

func (h *Handler) checkoutCart(c *gin.Context) {
	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body", err)
		return
	}
	if req.Tendered == nil {
		badRequest(c, "Tendered amount is required", nil)
		return
	}

	result, err := h.carts.CheckoutCart(c.Request.Context(), c.Param("id"), *req.Tendered)
	if err != nil {
		h.writeError(c, err)
		return
	}

	var receipt bytes.Buffer
	err = export.RenderReceipt(&receipt, export.Receipt{
		StoreName: h.storeName,
		Sale:      result.Sale,
		Items:     result.Items,
		Tendered:  result.Tendered,
		Change:    result.Change,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"sale":     result.Sale,
		"items":    result.Items,
		"tendered": result.Tendered,
		"change":   result.Change,
		"receipt":  receipt.String(),
	})
}

func (h *Handler) getSale(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	sale, err := h.sales.GetSale(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sale)
}

// getReceipt reprints a stored sale. Tendered and change are not stored, so
// they are omitted.
func (h *Handler) getReceipt(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	sale, err := h.sales.GetSale(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}

	var buf bytes.Buffer
	err = export.RenderReceipt(&buf, export.Receipt{
		StoreName: h.storeName,
		Sale:      sale.Sale,
		Items:     sale.Items,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.Data(http.StatusOK, "text/plain; charset=utf-8", buf.Bytes())
}
