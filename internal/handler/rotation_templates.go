package handler

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/sysu-ecnc-dev/roster-manager/backend/internal/domain"
	"github.com/sysu-ecnc-dev/roster-manager/backend/internal/utils"
)

func (h *Handler) GetAllRotationTemplates(w http.ResponseWriter, r *http.Request) {
	templates, err := h.repository.GetAllRotationTemplates()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取轮换模板列表成功", templates)
}

func (h *Handler) GetRotationTemplate(w http.ResponseWriter, r *http.Request) {
	template := r.Context().Value(RotationTemplateCtx).(*domain.RotationTemplate)
	h.successResponse(w, r, "获取轮换模板成功", template)
}

func (h *Handler) CreateRotationTemplate(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)

	var req struct {
		Name                string                `json:"name" validate:"required"`
		Description         string                `json:"description"`
		IsDefault           bool                  `json:"isDefault"`
		RotationLengthWeeks int32                 `json:"rotationLengthWeeks" validate:"required"`
		Weeks               []domain.TemplateWeek `json:"weeks" validate:"required"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	template := &domain.RotationTemplate{
		Name:                req.Name,
		Description:         req.Description,
		Status:              domain.TemplateStatusActive,
		IsDefault:           req.IsDefault,
		RotationLengthWeeks: req.RotationLengthWeeks,
		Weeks:               req.Weeks,
	}

	// 结构不完整的模板不允许入库，避免生成班次时遇到缺周缺天的情况
	if violations := utils.ValidateRotationTemplate(template); len(violations) > 0 {
		h.errorResponseWithData(w, r, strings.Join(violations, "；"), violations)
		return
	}

	if err := h.repository.CreateRotationTemplate(template); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	if err := h.publishAudit(myInfo, "create", "rotation_template", template.ID, fmt.Sprintf("创建轮换模板 %s", template.Name), nil, template); err != nil {
		slog.Error("发送审计记录失败", "error", err)
	}

	h.successResponse(w, r, "创建轮换模板成功", template)
}

func (h *Handler) UpdateRotationTemplate(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)
	template := r.Context().Value(RotationTemplateCtx).(*domain.RotationTemplate)

	var req struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
		Status      *string `json:"status" validate:"omitempty,oneof=active inactive"`
		IsDefault   *bool   `json:"isDefault"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if req.Name != nil {
		template.Name = *req.Name
	}
	if req.Description != nil {
		template.Description = *req.Description
	}
	if req.Status != nil {
		template.Status = domain.TemplateStatus(*req.Status)
	}
	if req.IsDefault != nil {
		template.IsDefault = *req.IsDefault
	}

	if err := h.repository.UpdateRotationTemplateMeta(template); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "更新轮换模板失败，请重试")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	if err := h.publishAudit(myInfo, "update", "rotation_template", template.ID, fmt.Sprintf("更新轮换模板 %s", template.Name), nil, template); err != nil {
		slog.Error("发送审计记录失败", "error", err)
	}

	h.successResponse(w, r, "更新轮换模板成功", template)
}

func (h *Handler) DeleteRotationTemplate(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)
	template := r.Context().Value(RotationTemplateCtx).(*domain.RotationTemplate)

	// 被分配记录引用过的模板不允许删除，只能停用
	isReferenced, err := h.repository.IsTemplateReferenced(template.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	if isReferenced {
		h.errorResponse(w, r, "模板已被分配记录引用，无法删除，请改为停用")
		return
	}

	if err := h.repository.DeleteRotationTemplate(template.ID); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	if err := h.publishAudit(myInfo, "delete", "rotation_template", template.ID, fmt.Sprintf("删除轮换模板 %s", template.Name), template, nil); err != nil {
		slog.Error("发送审计记录失败", "error", err)
	}

	h.successResponse(w, r, "删除轮换模板成功", nil)
}
