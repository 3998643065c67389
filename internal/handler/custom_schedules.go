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

func (h *Handler) GetCustomSchedule(w http.ResponseWriter, r *http.Request) {
	user := r.Context().Value(UserInfoCtx).(*domain.User)

	schedule, err := h.repository.GetActiveCustomSchedule(user.ID)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			// 没有自定义班表不算错误，前端据此回退展示模板排班
			h.successResponse(w, r, "该员工没有自定义班表", nil)
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "获取自定义班表成功", schedule)
}

func (h *Handler) ReplaceCustomSchedule(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)
	user := r.Context().Value(UserInfoCtx).(*domain.User)

	var req struct {
		Name                string                `json:"name" validate:"required"`
		Description         string                `json:"description"`
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

	employeeID := user.ID
	schedule := &domain.RotationTemplate{
		Name:                req.Name,
		Description:         req.Description,
		Status:              domain.TemplateStatusActive,
		EmployeeID:          &employeeID,
		RotationLengthWeeks: req.RotationLengthWeeks,
		Weeks:               req.Weeks,
	}

	if violations := utils.ValidateRotationTemplate(schedule); len(violations) > 0 {
		h.errorResponseWithData(w, r, strings.Join(violations, "；"), violations)
		return
	}

	if err := h.repository.ReplaceCustomSchedule(schedule); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	if err := h.publishAudit(myInfo, "replace", "custom_schedule", user.ID, fmt.Sprintf("更新员工 %s 的自定义班表", user.Username), nil, schedule); err != nil {
		slog.Error("发送审计记录失败", "error", err)
	}

	h.successResponse(w, r, "更新自定义班表成功", schedule)
}

func (h *Handler) DeleteCustomSchedule(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)
	user := r.Context().Value(UserInfoCtx).(*domain.User)

	schedule, err := h.repository.GetActiveCustomSchedule(user.ID)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "该员工没有自定义班表")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	if err := h.repository.DeleteRotationTemplate(schedule.ID); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	if err := h.publishAudit(myInfo, "delete", "custom_schedule", user.ID, fmt.Sprintf("删除员工 %s 的自定义班表", user.Username), schedule, nil); err != nil {
		slog.Error("发送审计记录失败", "error", err)
	}

	h.successResponse(w, r, "删除自定义班表成功", nil)
}
