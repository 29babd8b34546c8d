package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"netita/server/internal/apperr"
	"netita/server/internal/database"
	"netita/server/internal/models"
)

func (h *Handler) propertyID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_ID", "Property id must be a number")
		return 0, false
	}
	return id, true
}

// storeError maps a store failure to a response. Not-found and validation errors are
// passed through; anything else is logged and reported as failureCode.
func (h *Handler) storeError(c *gin.Context, err error, failureCode, failureMessage string) {
	if errors.Is(err, database.ErrNotFound) {
		writeError(c, http.StatusNotFound, "NOT_FOUND", "Property not found")
		return
	}
	if e, ok := apperr.As(err); ok {
		writeError(c, e.Status(), e.Code, e.Message)
		return
	}
	h.logger.WithError(err).Error(failureMessage)
	writeError(c, http.StatusInternalServerError, failureCode, failureMessage)
}

func (h *Handler) GetAllProperties(c *gin.Context) {
	properties, err := h.db.GetAllProperties()
	if err != nil {
		h.storeError(c, err, "STORE_READ_FAILED", "Failed to read properties store")
		return
	}
	c.JSON(http.StatusOK, properties)
}

func (h *Handler) GetProperty(c *gin.Context) {
	id, ok := h.propertyID(c)
	if !ok {
		return
	}
	property, err := h.db.GetProperty(id)
	if err != nil {
		h.storeError(c, err, "STORE_READ_FAILED", "Failed to read properties store")
		return
	}
	c.JSON(http.StatusOK, property)
}

func (h *Handler) CreateProperty(c *gin.Context) {
	var input models.PropertyInput
	if !bindJSON(c, &input, true) {
		return
	}
	property, err := h.db.CreateProperty(input)
	if err != nil {
		h.storeError(c, err, "STORE_WRITE_FAILED", "Failed to save property")
		return
	}
	c.JSON(http.StatusCreated, property)
}

func (h *Handler) UpdateProperty(c *gin.Context) {
	id, ok := h.propertyID(c)
	if !ok {
		return
	}
	var patch models.PropertyPatch
	if !bindJSON(c, &patch, true) {
		return
	}
	property, err := h.db.UpdateProperty(id, patch)
	if err != nil {
		h.storeError(c, err, "STORE_WRITE_FAILED", "Failed to update property")
		return
	}
	c.JSON(http.StatusOK, property)
}

func (h *Handler) DeleteProperty(c *gin.Context) {
	id, ok := h.propertyID(c)
	if !ok {
		return
	}
	property, err := h.db.DeleteProperty(id)
	if err != nil {
		h.storeError(c, err, "STORE_WRITE_FAILED", "Failed to delete property")
		return
	}
	c.JSON(http.StatusOK, property)
}
