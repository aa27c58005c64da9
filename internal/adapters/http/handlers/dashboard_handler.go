package handlers

import (
	"github.com/gofiber/fiber/v2"

	"sacco-ledger/internal/core/services"
	"sacco-ledger/internal/pkg/response"
)

// DashboardHandler handles dashboard and settings endpoints
type DashboardHandler struct {
	reportService   *services.ReportService
	settingsService *services.SettingsService
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(reportService *services.ReportService, settingsService *services.SettingsService) *DashboardHandler {
	return &DashboardHandler{
		reportService:   reportService,
		settingsService: settingsService,
	}
}

// Stats returns the operations dashboard summary
func (h *DashboardHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.reportService.Dashboard(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to build dashboard")
	}

	return response.Success(c, "Dashboard retrieved successfully", stats)
}

// SettingRequest represents setting update request body
type SettingRequest struct {
	Key         string `json:"key"`
	Value       string `json:"value"`
	Description string `json:"description"`
}

// ListSettings lists every stored setting
func (h *DashboardHandler) ListSettings(c *fiber.Ctx) error {
	settings, err := h.settingsService.All(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to list settings")
	}

	return response.Success(c, "Settings retrieved successfully", settings)
}

// UpdateSetting writes one setting through the cache
func (h *DashboardHandler) UpdateSetting(c *fiber.Ctx) error {
	var req SettingRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.Key == "" || req.Value == "" {
		return response.BadRequest(c, "Key and value are required")
	}

	if err := h.settingsService.Set(c.Context(), req.Key, req.Value, req.Description); err != nil {
		return response.InternalServerError(c, "Failed to update setting")
	}

	return response.Success(c, "Setting updated successfully", nil)
}
