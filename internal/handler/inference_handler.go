package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/modesense/tmd-backend-go/internal/models"
	"github.com/modesense/tmd-backend-go/internal/service"
	"github.com/modesense/tmd-backend-go/pkg/response"
)

// InferenceHandler handles HTTP requests for transport mode inference
type InferenceHandler struct {
	inferenceService *service.InferenceService
}

// NewInferenceHandler creates a new inference handler
func NewInferenceHandler(inferenceService *service.InferenceService) *InferenceHandler {
	return &InferenceHandler{
		inferenceService: inferenceService,
	}
}

// Infer handles POST /api/v1/inference
func (h *InferenceHandler) Infer(c *gin.Context) {
	var req models.InferenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid inference request: "+err.Error())
		return
	}

	result, err := h.inferenceService.Infer(c.Request.Context(), req)
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}

	response.Success(c, result)
}

// GetModelInfo handles GET /api/v1/model/info
func (h *InferenceHandler) GetModelInfo(c *gin.Context) {
	response.Success(c, h.inferenceService.ModelInfo(c.Request.Context()))
}

// GetModes handles GET /api/v1/modes
func (h *InferenceHandler) GetModes(c *gin.Context) {
	response.Success(c, gin.H{
		"modes":         models.TransportModes,
		"transit_modes": transitModeList(),
	})
}

func transitModeList() []string {
	var modes []string
	for _, mode := range models.TransportModes {
		if models.TransitModes[mode] {
			modes = append(modes, mode)
		}
	}
	return modes
}
