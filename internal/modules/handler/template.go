package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/planloop-io/planloop/internal/modules/model"
	"github.com/planloop-io/planloop/internal/modules/serializer"
	"github.com/planloop-io/planloop/internal/modules/service"
	"gorm.io/datatypes"
)

type TemplateHandler struct {
	svc service.TemplateService
}

func NewTemplateHandler(s service.TemplateService) *TemplateHandler {
	return &TemplateHandler{svc: s}
}

// GetTemplates godoc
//
//	@Summary		List templates
//	@Description	List all task templates
//	@Tags			template
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=[]model.Template}
//	@Router			/template [get]
func (h *TemplateHandler) GetTemplates(c *gin.Context) {
	items, err := h.svc.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, serializer.DBErr("", err))
		return
	}

	c.JSON(http.StatusOK, serializer.Response{Data: items})
}

type CreateTemplateReq struct {
	Title       string                 `json:"title" binding:"required"`
	Description *string                `json:"description"`
	Points      int                    `json:"points" binding:"required,min=1"`
	Kind        string                 `json:"kind" binding:"required,oneof=DAILY WEEKLY AD_HOC"`
	Frequency   int                    `json:"frequency" binding:"omitempty,min=1"`
	Meta        map[string]interface{} `json:"meta"`
}

// CreateTemplate godoc
//
//	@Summary		Create template
//	@Description	Create a reusable task template
//	@Tags			template
//	@Accept			json
//	@Produce		json
//	@Param			payload	body	handler.CreateTemplateReq	true	"CreateTemplate payload"
//	@Security		BearerAuth
//	@Success		201	{object}	serializer.Response{data=model.Template}
//	@Router			/template [post]
func (h *TemplateHandler) CreateTemplate(c *gin.Context) {
	req := CreateTemplateReq{}
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	tmpl := model.Template{
		Title:       req.Title,
		Description: req.Description,
		Points:      req.Points,
		Kind:        model.RecurrenceKind(req.Kind),
		Frequency:   req.Frequency,
		Meta:        datatypes.JSONMap(req.Meta),
	}
	if err := h.svc.Create(c.Request.Context(), &tmpl); err != nil {
		c.JSON(http.StatusInternalServerError, serializer.DBErr("", err))
		return
	}

	c.JSON(http.StatusCreated, serializer.Response{Data: tmpl})
}

type UpdateTemplateReq struct {
	Title       *string                `json:"title"`
	Description *string                `json:"description"`
	Points      *int                   `json:"points" binding:"omitempty,min=1"`
	Kind        *string                `json:"kind" binding:"omitempty,oneof=DAILY WEEKLY AD_HOC"`
	Frequency   *int                   `json:"frequency" binding:"omitempty,min=1"`
	Meta        map[string]interface{} `json:"meta"`
}

// UpdateTemplate godoc
//
//	@Summary		Update template
//	@Description	Update a template's defaults. Recurrence kind is immutable and rejected with 409.
//	@Tags			template
//	@Accept			json
//	@Produce		json
//	@Param			template_id	path	string						true	"Template ID"	Format(uuid)
//	@Param			payload		body	handler.UpdateTemplateReq	true	"UpdateTemplate payload"
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=model.Template}
//	@Failure		404	{object}	serializer.Response
//	@Failure		409	{object}	serializer.Response
//	@Router			/template/{template_id} [put]
func (h *TemplateHandler) UpdateTemplate(c *gin.Context) {
	templateID, err := uuid.Parse(c.Param("template_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	req := UpdateTemplateReq{}
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	in := service.UpdateTemplateInput{
		Title:       req.Title,
		Description: req.Description,
		Points:      req.Points,
		Frequency:   req.Frequency,
		Meta:        req.Meta,
	}
	if req.Kind != nil {
		kind := model.RecurrenceKind(*req.Kind)
		in.Kind = &kind
	}

	tmpl, err := h.svc.Update(c.Request.Context(), templateID, in)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrTemplateNotFound):
			c.JSON(http.StatusNotFound, serializer.NotFoundErr("template not found", err))
		case errors.Is(err, model.ErrKindImmutable):
			c.JSON(http.StatusConflict, serializer.ConflictErr("recurrence kind is immutable", err))
		default:
			c.JSON(http.StatusInternalServerError, serializer.DBErr("", err))
		}
		return
	}

	c.JSON(http.StatusOK, serializer.Response{Data: tmpl})
}

// DeleteTemplate godoc
//
//	@Summary		Delete template
//	@Description	Delete a template. Generated instances keep their snapshot copies.
//	@Tags			template
//	@Accept			json
//	@Produce		json
//	@Param			template_id	path	string	true	"Template ID"	Format(uuid)
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response
//	@Failure		404	{object}	serializer.Response
//	@Router			/template/{template_id} [delete]
func (h *TemplateHandler) DeleteTemplate(c *gin.Context) {
	templateID, err := uuid.Parse(c.Param("template_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	if err := h.svc.Delete(c.Request.Context(), templateID); err != nil {
		if errors.Is(err, model.ErrTemplateNotFound) {
			c.JSON(http.StatusNotFound, serializer.NotFoundErr("template not found", err))
			return
		}
		c.JSON(http.StatusInternalServerError, serializer.DBErr("", err))
		return
	}

	c.JSON(http.StatusOK, serializer.Response{})
}
