package handler

import (
	"context"
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

// acquireGenerateLock 获取员工级别的生成锁，防止同一个员工的班次被并发地重新生成。
// 返回的 release 函数用于提前释放锁，锁本身带有过期时间，即使没有释放也不会死锁。
func (h *Handler) acquireGenerateLock(ctx context.Context, employeeID int64) (bool, func(), error) {
	key := fmt.Sprintf("generate_lock_%d", employeeID)

	acquired, err := h.redisClient.SetNX(ctx, key, "1", time.Duration(h.config.Generation.LockTimeout)*time.Second).Result()
	if err != nil {
		return false, nil, err
	}
	if !acquired {
		return false, nil, nil
	}

	release := func() {
		if err := h.redisClient.Del(context.Background(), key).Err(); err != nil {
			slog.Error("释放生成锁失败", "employeeID", employeeID, "error", err)
		}
	}
	return true, release, nil
}

// regenerateEmployeeShifts 根据员工当前生效的班表来源重新生成草稿班次。
// 自定义班表优先于模板分配；两者都不存在时只清空已有的模板草稿。
// 手动创建的班次和已发布的班次不受影响。
func (h *Handler) regenerateEmployeeShifts(employeeID int64) ([]*domain.Shift, rota.ScheduleSourceKind, error) {
	custom, err := h.repository.GetActiveCustomSchedule(employeeID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, rota.ScheduleSourceNone, err
	}

	var assignment *domain.TemplateAssignment
	var template *domain.RotationTemplate

	assignment, err = h.repository.GetOpenAssignment(employeeID)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, rota.ScheduleSourceNone, err
		}
		assignment = nil
	}
	if assignment != nil {
		template, err = h.repository.GetRotationTemplate(assignment.TemplateID)
		if err != nil {
			if !errors.Is(err, sql.ErrNoRows) {
				return nil, rota.ScheduleSourceNone, err
			}
			template = nil
		}
	}

	source := rota.ResolveScheduleSource(custom, assignment, template, time.Now())

	shifts := make([]*domain.Shift, 0)
	if source.Kind != rota.ScheduleSourceNone {
		horizonEnd := rota.TruncateToDate(time.Now()).AddDate(0, 0, h.config.Generation.HorizonWeeks*7)
		shifts = rota.Generate(source.Assignment, source.Template, horizonEnd)
	}

	if err := h.repository.ReplaceTemplateDraftShifts(employeeID, shifts); err != nil {
		return nil, source.Kind, err
	}

	return shifts, source.Kind, nil
}

// checkShiftAvailability 返回候选班次相对于员工可用性配置的提醒状态。
// 可用性只是提醒，任何状态都不会阻止保存。
func (h *Handler) checkShiftAvailability(shift *domain.Shift) (rota.AvailabilityStatus, error) {
	weekday := int32(shift.Date.Weekday())
	if weekday == 0 {
		weekday = 7
	}

	availability, err := h.repository.GetAvailabilityByEmployeeAndWeekday(shift.EmployeeID, weekday)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return rota.CheckAvailability(shift, nil), nil
		}
		return "", err
	}

	return rota.CheckAvailability(shift, availability), nil
}

func (h *Handler) GetEmployeeShifts(w http.ResponseWriter, r *http.Request) {
	user := r.Context().Value(UserInfoCtx).(*domain.User)

	fromParam := r.URL.Query().Get("from")
	toParam := r.URL.Query().Get("to")

	from, err := time.ParseInLocation("2006-01-02", fromParam, time.UTC)
	if err != nil {
		h.errorResponse(w, r, "起始日期格式错误")
		return
	}
	to, err := time.ParseInLocation("2006-01-02", toParam, time.UTC)
	if err != nil {
		h.errorResponse(w, r, "结束日期格式错误")
		return
	}
	if to.Before(from) {
		h.errorResponse(w, r, "结束日期不能早于起始日期")
		return
	}

	shifts, err := h.repository.GetShiftsByEmployeeAndDateRange(user.ID, from, to)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取班次列表成功", shifts)
}

func (h *Handler) CreateShift(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)
	user := r.Context().Value(UserInfoCtx).(*domain.User)

	var req struct {
		Date          string  `json:"date" validate:"required"`
		StartTime     string  `json:"startTime" validate:"required"`
		EndTime       string  `json:"endTime" validate:"required"`
		BreakMinutes  int32   `json:"breakMinutes"`
		ExpectedHours float64 `json:"expectedHours"`
		LocationID    *int64  `json:"locationID"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	date, err := time.ParseInLocation("2006-01-02", req.Date, time.UTC)
	if err != nil {
		h.errorResponse(w, r, "日期格式错误")
		return
	}

	shift := &domain.Shift{
		EmployeeID:    user.ID,
		Date:          date,
		StartTime:     req.StartTime,
		EndTime:       req.EndTime,
		BreakMinutes:  req.BreakMinutes,
		ExpectedHours: req.ExpectedHours,
		LocationID:    req.LocationID,
		Source:        domain.ShiftSourceManual,
		Status:        domain.ShiftStatusDraft,
	}

	if err := utils.ValidateShiftTime(shift); err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}

	// 时间重叠是硬性冲突，必须阻止保存
	sameDayShifts, err := h.repository.GetShiftsByEmployeeAndDate(user.ID, date)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	if conflict := rota.CheckOverlap(shift, sameDayShifts); conflict != nil {
		h.errorResponseWithData(w, r, conflict.Reason, conflict)
		return
	}

	availabilityStatus, err := h.checkShiftAvailability(shift)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	if err := h.repository.CreateShift(shift); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	if err := h.publishAudit(myInfo, "create", "shift", shift.ID, fmt.Sprintf("为员工 %s 手动创建班次", user.Username), nil, shift); err != nil {
		slog.Error("发送审计记录失败", "error", err)
	}

	h.successResponse(w, r, "创建班次成功", map[string]any{
		"shift":              shift,
		"availabilityStatus": availabilityStatus,
	})
}

func (h *Handler) UpdateShift(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)
	shift := r.Context().Value(ShiftCtx).(*domain.Shift)

	if shift.Status == domain.ShiftStatusPublished {
		h.errorResponse(w, r, "已发布的班次不允许修改")
		return
	}

	var req struct {
		Date          *string  `json:"date"`
		StartTime     *string  `json:"startTime"`
		EndTime       *string  `json:"endTime"`
		BreakMinutes  *int32   `json:"breakMinutes"`
		ExpectedHours *float64 `json:"expectedHours"`
		LocationID    *int64   `json:"locationID"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if req.Date != nil {
		date, err := time.ParseInLocation("2006-01-02", *req.Date, time.UTC)
		if err != nil {
			h.errorResponse(w, r, "日期格式错误")
			return
		}
		shift.Date = date
	}
	if req.StartTime != nil {
		shift.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		shift.EndTime = *req.EndTime
	}
	if req.BreakMinutes != nil {
		shift.BreakMinutes = *req.BreakMinutes
	}
	if req.ExpectedHours != nil {
		shift.ExpectedHours = *req.ExpectedHours
	}
	if req.LocationID != nil {
		shift.LocationID = req.LocationID
	}

	if err := utils.ValidateShiftTime(shift); err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}

	sameDayShifts, err := h.repository.GetShiftsByEmployeeAndDate(shift.EmployeeID, shift.Date)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	if conflict := rota.CheckOverlap(shift, sameDayShifts); conflict != nil {
		h.errorResponseWithData(w, r, conflict.Reason, conflict)
		return
	}

	availabilityStatus, err := h.checkShiftAvailability(shift)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	// 修改过的模板班次不再属于模板，重新生成时不会被删除
	if shift.Source == domain.ShiftSourceTemplate {
		shift.Source = domain.ShiftSourceOverride
	}

	if err := h.repository.UpdateShift(shift); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "更新班次失败，请重试")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	if err := h.publishAudit(myInfo, "update", "shift", shift.ID, fmt.Sprintf("修改员工 %d 的班次", shift.EmployeeID), nil, shift); err != nil {
		slog.Error("发送审计记录失败", "error", err)
	}

	h.successResponse(w, r, "更新班次成功", map[string]any{
		"shift":              shift,
		"availabilityStatus": availabilityStatus,
	})
}

func (h *Handler) DeleteShift(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)
	shift := r.Context().Value(ShiftCtx).(*domain.Shift)

	if shift.Status == domain.ShiftStatusPublished {
		h.errorResponse(w, r, "已发布的班次不允许删除")
		return
	}

	if err := h.repository.DeleteShift(shift.ID); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	if err := h.publishAudit(myInfo, "delete", "shift", shift.ID, fmt.Sprintf("删除员工 %d 的班次", shift.EmployeeID), shift, nil); err != nil {
		slog.Error("发送审计记录失败", "error", err)
	}

	h.successResponse(w, r, "删除班次成功", nil)
}

func (h *Handler) GenerateShifts(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)
	user := r.Context().Value(UserInfoCtx).(*domain.User)

	acquired, release, err := h.acquireGenerateLock(r.Context(), user.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	if !acquired {
		h.errorResponse(w, r, "该员工的班次正在生成中，请稍后再试")
		return
	}
	defer release()

	shifts, sourceKind, err := h.regenerateEmployeeShifts(user.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	if sourceKind == rota.ScheduleSourceNone {
		h.successResponse(w, r, "该员工没有生效的班表，已清空模板草稿班次", map[string]any{
			"sourceKind": sourceKind,
			"shifts":     shifts,
		})
		return
	}

	if err := h.publishAudit(myInfo, "generate", "shift", user.ID, fmt.Sprintf("为员工 %s 重新生成了 %d 个草稿班次", user.Username, len(shifts)), nil, nil); err != nil {
		slog.Error("发送审计记录失败", "error", err)
	}

	h.successResponse(w, r, fmt.Sprintf("生成班次成功，共 %d 个草稿班次", len(shifts)), map[string]any{
		"sourceKind": sourceKind,
		"shifts":     shifts,
	})
}
