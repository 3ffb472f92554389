package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/modesense/tmd-backend-go/internal/models"
	"github.com/modesense/tmd-backend-go/internal/service"
	"github.com/modesense/tmd-backend-go/pkg/response"
)

// VehicleHandler handles HTTP requests for transit vehicle positions
type VehicleHandler struct {
	vehicleService *service.VehicleService
}

// NewVehicleHandler creates a new vehicle handler
func NewVehicleHandler(vehicleService *service.VehicleService) *VehicleHandler {
	return &VehicleHandler{
		vehicleService: vehicleService,
	}
}

// IngestRequest is the vehicle-feed ingestion payload.
type IngestRequest struct {
	Vehicles []models.VehiclePosition `json:"vehicles" binding:"required,min=1"`
}

// Ingest handles POST /api/v1/vehicles
func (h *VehicleHandler) Ingest(c *gin.Context) {
	var req IngestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid vehicle payload: "+err.Error())
		return
	}

	count, err := h.vehicleService.Ingest(c.Request.Context(), req.Vehicles)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	response.Success(c, gin.H{"stored": count})
}

// GetNearby handles GET /api/v1/vehicles/nearby
func (h *VehicleHandler) GetNearby(c *gin.Context) {
	var query models.VehicleQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	vehicles, err := h.vehicleService.Nearby(c.Request.Context(), query, time.Now().Unix())
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}

	response.Success(c, gin.H{
		"vehicles": vehicles,
		"count":    len(vehicles),
	})
}
