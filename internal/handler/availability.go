package handler

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/sysu-ecnc-dev/roster-manager/backend/internal/domain"
	"github.com/sysu-ecnc-dev/roster-manager/backend/internal/utils"
)

func (h *Handler) GetEmployeeAvailability(w http.ResponseWriter, r *http.Request) {
	user := r.Context().Value(UserInfoCtx).(*domain.User)

	items, err := h.repository.GetAvailabilityByEmployee(user.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取可用性配置成功", items)
}

func (h *Handler) ReplaceEmployeeAvailability(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)
	user := r.Context().Value(UserInfoCtx).(*domain.User)

	var req struct {
		Items []domain.EmployeeAvailability `json:"items" validate:"required"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := utils.ValidateAvailabilitySet(req.Items); err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}

	if err := h.repository.ReplaceAvailability(user.ID, req.Items); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	if err := h.publishAudit(myInfo, "replace", "employee_availability", user.ID, fmt.Sprintf("更新员工 %s 的可用性配置", user.Username), nil, req.Items); err != nil {
		slog.Error("发送审计记录失败", "error", err)
	}

	h.successResponse(w, r, "更新可用性配置成功", req.Items)
}
