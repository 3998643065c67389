package handler

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/sysu-ecnc-dev/roster-manager/backend/internal/domain"
	"github.com/sysu-ecnc-dev/roster-manager/backend/internal/rota"
	"github.com/sysu-ecnc-dev/roster-manager/backend/internal/utils"
)

func (h *Handler) GetEmployeeAssignments(w http.ResponseWriter, r *http.Request) {
	user := r.Context().Value(UserInfoCtx).(*domain.User)

	assignments, err := h.repository.GetAssignmentsByEmployee(user.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取分配记录成功", assignments)
}

func (h *Handler) AssignTemplate(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)
	user := r.Context().Value(UserInfoCtx).(*domain.User)

	var req struct {
		TemplateID         int64   `json:"templateID" validate:"required"`
		EffectiveStartDate string  `json:"effectiveStartDate" validate:"required"`
		EffectiveEndDate   *string `json:"effectiveEndDate"`
		Notes              string  `json:"notes"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	startDate, err := time.ParseInLocation("2006-01-02", req.EffectiveStartDate, time.UTC)
	if err != nil {
		h.errorResponse(w, r, "生效开始日期格式错误")
		return
	}

	assignment := &domain.TemplateAssignment{
		EmployeeID:         user.ID,
		TemplateID:         req.TemplateID,
		EffectiveStartDate: startDate,
		Notes:              req.Notes,
	}

	if req.EffectiveEndDate != nil {
		endDate, err := time.ParseInLocation("2006-01-02", *req.EffectiveEndDate, time.UTC)
		if err != nil {
			h.errorResponse(w, r, "生效结束日期格式错误")
			return
		}
		assignment.EffectiveEndDate = &endDate
	}

	if err := utils.ValidateAssignmentDates(assignment); err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}

	// 只能分配可复用的、处于启用状态的模板
	template, err := h.repository.GetRotationTemplate(req.TemplateID)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "模板不存在")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}
	if template.EmployeeID != nil {
		h.errorResponse(w, r, "自定义班表不能分配给其他员工")
		return
	}
	if template.Status != domain.TemplateStatusActive {
		h.errorResponse(w, r, "模板已停用，无法分配")
		return
	}

	if err := h.repository.CreateAssignment(assignment); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	// 分配后立即重新生成该员工的草稿班次
	acquired, release, err := h.acquireGenerateLock(r.Context(), user.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	if !acquired {
		h.errorResponse(w, r, "该员工的班次正在生成中，请稍后手动重新生成")
		return
	}
	defer release()

	shifts, _, err := h.regenerateEmployeeShifts(user.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	if err := h.publishAudit(myInfo, "assign", "template_assignment", assignment.ID, fmt.Sprintf("为员工 %s 分配模板 %s", user.Username, template.Name), nil, assignment); err != nil {
		slog.Error("发送审计记录失败", "error", err)
	}

	h.successResponse(w, r, fmt.Sprintf("分配模板成功，已生成 %d 个草稿班次", len(shifts)), assignment)
}

func (h *Handler) UnassignTemplate(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)
	assignment := r.Context().Value(AssignmentCtx).(*domain.TemplateAssignment)

	if assignment.EffectiveEndDate != nil {
		h.errorResponse(w, r, "该分配记录已经结束")
		return
	}

	endDate := rota.TruncateToDate(time.Now())

	if err := h.repository.UnassignAssignment(assignment, endDate); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "取消分配失败，请重试")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	if err := h.publishAudit(myInfo, "unassign", "template_assignment", assignment.ID, fmt.Sprintf("结束员工 %d 的模板分配", assignment.EmployeeID), nil, assignment); err != nil {
		slog.Error("发送审计记录失败", "error", err)
	}

	h.successResponse(w, r, "取消分配成功，今天之后的草稿班次已删除", assignment)
}
