package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/philoatlas-backend/internal/http/response"
	"github.com/yungbote/philoatlas-backend/internal/platform/apierr"
	"github.com/yungbote/philoatlas-backend/internal/services"
)

type ContentHandler struct {
	contentService services.ContentService
}

func NewContentHandler(contentService services.ContentService) *ContentHandler {
	return &ContentHandler{contentService: contentService}
}

// POST /api/content
func (h *ContentHandler) Create(c *gin.Context) {
	var req services.CreateContentInput
	if err := bindJSON(c, &req); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	view, err := h.contentService.Create(c.Request.Context(), req)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondCreated(c, view)
}

// GET /api/content?page&limit&search&type
func (h *ContentHandler) List(c *gin.Context) {
	page, err := queryInt(c, "page")
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	limit, err := queryInt(c, "limit")
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	out, err := h.contentService.FindAll(c.Request.Context(), services.ListContentQuery{
		Page:   page,
		Limit:  limit,
		Search: c.Query("search"),
		Type:   c.Query("type"),
	})
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, out)
}

// GET /api/content/:id
func (h *ContentHandler) Get(c *gin.Context) {
	id, err := pathUUID(c, "id")
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	view, err := h.contentService.FindOne(c.Request.Context(), id)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, view)
}

// PATCH /api/content/:id
func (h *ContentHandler) Update(c *gin.Context) {
	id, err := pathUUID(c, "id")
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	var req services.UpdateContentInput
	if err := bindJSON(c, &req); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	view, err := h.contentService.Update(c.Request.Context(), id, req)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, view)
}

// DELETE /api/content/:id
func (h *ContentHandler) Delete(c *gin.Context) {
	id, err := pathUUID(c, "id")
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	if err := h.contentService.Remove(c.Request.Context(), id); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondNoContent(c)
}

type linkRequest struct {
	ContentID1 uuid.UUID `json:"contentId1"`
	ContentID2 uuid.UUID `json:"contentId2"`
}

// POST /api/content/relationship
func (h *ContentHandler) Link(c *gin.Context) {
	var req linkRequest
	if err := bindJSON(c, &req); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	if req.ContentID1 == uuid.Nil || req.ContentID2 == uuid.Nil {
		response.RespondAPIError(c, apierr.Validation("contentId1 and contentId2 are required"))
		return
	}
	if err := h.contentService.LinkContents(c.Request.Context(), req.ContentID1, req.ContentID2); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondCreated(c, req)
}

// GET /api/content/:id/related?type=
func (h *ContentHandler) Related(c *gin.Context) {
	id, err := pathUUID(c, "id")
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	related, err := h.contentService.FindRelated(c.Request.Context(), id, c.Query("type"))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, related)
}
