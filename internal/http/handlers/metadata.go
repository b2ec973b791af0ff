package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/philoatlas-backend/internal/http/response"
	"github.com/yungbote/philoatlas-backend/internal/services"
)

type MetadataHandler struct {
	schemaService services.MetadataSchemaService
}

func NewMetadataHandler(schemaService services.MetadataSchemaService) *MetadataHandler {
	return &MetadataHandler{schemaService: schemaService}
}

// GET /api/metadata/types
func (h *MetadataHandler) Types(c *gin.Context) {
	response.RespondOK(c, h.schemaService.ListTypes())
}

// GET /api/metadata/schema/:type
func (h *MetadataHandler) GetSchema(c *gin.Context) {
	defs, err := h.schemaService.GetMetadataSchema(c.Request.Context(), c.Param("type"))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, defs)
}

// POST /api/metadata/schema/:type
func (h *MetadataHandler) UpsertSchema(c *gin.Context) {
	var req services.MetadataSchemaInput
	if err := bindJSON(c, &req); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	def, err := h.schemaService.UpsertMetadataSchema(c.Request.Context(), c.Param("type"), req)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, def)
}

// DELETE /api/metadata/schema/:id
func (h *MetadataHandler) DeleteSchema(c *gin.Context) {
	id, err := pathUUID(c, "id")
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	if err := h.schemaService.DeleteMetadataSchema(c.Request.Context(), id); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondNoContent(c)
}

// GET /api/metadata/keys?type=
func (h *MetadataHandler) Keys(c *gin.Context) {
	keys, err := h.schemaService.ListKeys(c.Request.Context(), c.Query("type"))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, keys)
}

// POST /api/metadata/validate/:type
func (h *MetadataHandler) Validate(c *gin.Context) {
	var req map[string]any
	if err := bindJSON(c, &req); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	out, err := h.schemaService.ValidateMetadata(c.Request.Context(), c.Param("type"), req)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, out)
}
