// internal/handlers/admin.go
package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/javajoker/story-mcp/internal/services"
	"github.com/javajoker/story-mcp/internal/utils"
)

type AdminHandler struct {
	auditService *services.AuditService
}

func NewAdminHandler(auditService *services.AuditService) *AdminHandler {
	return &AdminHandler{
		auditService: auditService,
	}
}

// GET /admin/invocations
func (h *AdminHandler) GetInvocations(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	// Build filter parameters
	filter := services.InvocationFilter{
		PaginationParams: params,
		Operator:         c.Query("operator"),
		TxHash:           c.Query("tx_hash"),
	}

	if createdAfter := c.Query("created_after"); createdAfter != "" {
		if t, err := time.Parse("2006-01-02", createdAfter); err == nil {
			filter.CreatedAfter = &t
		}
	}

	if createdBefore := c.Query("created_before"); createdBefore != "" {
		if t, err := time.Parse("2006-01-02", createdBefore); err == nil {
			end := t.Add(24*time.Hour - time.Nanosecond)
			filter.CreatedBefore = &end
		}
	}

	invocations, total, err := h.auditService.ListInvocations(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	result := utils.CreatePaginationResult(invocations, total, params)
	utils.PaginatedResponse(c, result)
}
