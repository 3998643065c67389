package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"slices"

	"github.com/sysu-ecnc-dev/roster-manager/backend/internal/domain"
)

func (h *Handler) PublishShifts(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)

	var req struct {
		ShiftIDs []int64 `json:"shiftIDs" validate:"required,min=1"`
		Notes    string  `json:"notes"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	// 发布前先检查所有班次都处于草稿状态，事务里还会再检查一次
	shifts, err := h.repository.GetShiftsByIDs(req.ShiftIDs)
	if err != nil {
		h.errorResponse(w, r, "存在无效的班次 ID")
		return
	}
	for _, shift := range shifts {
		if shift.Status != domain.ShiftStatusDraft {
			h.errorResponse(w, r, fmt.Sprintf("班次 %d 不是草稿状态，无法发布", shift.ID))
			return
		}
	}

	// 统计受影响的员工
	affectedEmployeeIDs := make([]int64, 0)
	for _, shift := range shifts {
		if !slices.Contains(affectedEmployeeIDs, shift.EmployeeID) {
			affectedEmployeeIDs = append(affectedEmployeeIDs, shift.EmployeeID)
		}
	}

	// 给所有受影响的员工加锁，避免发布和重新生成同时进行
	releases := make([]func(), 0, len(affectedEmployeeIDs))
	defer func() {
		for _, release := range releases {
			release()
		}
	}()
	for _, employeeID := range affectedEmployeeIDs {
		acquired, release, err := h.acquireGenerateLock(r.Context(), employeeID)
		if err != nil {
			h.internalServerError(w, r, err)
			return
		}
		if !acquired {
			h.errorResponse(w, r, fmt.Sprintf("员工 %d 的班次正在生成中，请稍后再试", employeeID))
			return
		}
		releases = append(releases, release)
	}

	batch := &domain.PublishBatch{
		PublishedBy:         myInfo.ID,
		ShiftsCount:         int32(len(shifts)),
		AffectedEmployeeIDs: affectedEmployeeIDs,
		Notes:               req.Notes,
	}

	if err := h.repository.PublishShifts(batch, req.ShiftIDs); err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}

	// 给每个受影响的员工发一封通知邮件
	for _, employeeID := range affectedEmployeeIDs {
		employee, err := h.repository.GetUserByID(employeeID)
		if err != nil {
			slog.Error("获取员工信息失败，跳过发布通知邮件", "employeeID", employeeID, "error", err)
			continue
		}

		shiftsCount := int32(0)
		for _, shift := range shifts {
			if shift.EmployeeID == employeeID {
				shiftsCount++
			}
		}

		mailMessage := domain.MailMessage{
			Type: "schedule_published",
			To:   employee.Email,
			Data: domain.SchedulePublishedMailData{
				FullName:    employee.FullName,
				ShiftsCount: shiftsCount,
				Notes:       req.Notes,
			},
		}
		if err := h.publishMail(mailMessage); err != nil {
			slog.Error("发送发布通知邮件失败", "employeeID", employeeID, "error", err)
		}
	}

	if err := h.publishAudit(myInfo, "publish", "publish_batch", batch.ID, fmt.Sprintf("发布了 %d 个班次，涉及 %d 名员工", batch.ShiftsCount, len(affectedEmployeeIDs)), nil, batch); err != nil {
		slog.Error("发送审计记录失败", "error", err)
	}

	h.successResponse(w, r, "发布班次成功", batch)
}

func (h *Handler) GetAllPublishBatches(w http.ResponseWriter, r *http.Request) {
	batches, err := h.repository.GetAllPublishBatches()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取发布记录成功", batches)
}
