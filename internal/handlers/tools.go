package handlers

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"

	"neuroinsights/internal/tools"
)

// ToolsHandler handles tool-related requests
type ToolsHandler struct {
	registry *tools.Registry
}

// NewToolsHandler creates a new tools handler
func NewToolsHandler(registry *tools.Registry) *ToolsHandler {
	return &ToolsHandler{registry: registry}
}

// ListTools handles GET /api/tools: full metadata for every registered tool.
func (h *ToolsHandler) ListTools(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"count":      h.registry.Count(),
		"categories": h.registry.GetCategories(),
		"tools":      h.registry.ListDetailed(),
	})
}

// executeToolRequest is the POST /api/tools/execute body
type executeToolRequest struct {
	Tool      string                 `json:"tool"`
	Arguments map[string]interface{} `json:"arguments"`
}

// ExecuteTool handles POST /api/tools/execute
func (h *ToolsHandler) ExecuteTool(c *fiber.Ctx) error {
	var req executeToolRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.Tool == "" {
		return fiber.NewError(fiber.StatusBadRequest, "tool name is required")
	}
	if _, exists := h.registry.Get(req.Tool); !exists {
		return fiber.NewError(fiber.StatusNotFound, "unknown tool: "+req.Tool)
	}

	result, err := h.registry.Execute(req.Tool, req.Arguments)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"tool":  req.Tool,
			"error": err.Error(),
		})
	}

	// Tool results are JSON strings; pass them through without re-encoding.
	return c.JSON(fiber.Map{
		"tool":   req.Tool,
		"result": json.RawMessage(result),
	})
}
