package seed

import (
	"log/slog"
	"time"

	"github.com/sysu-ecnc-dev/roster-manager/backend/internal/config"
	"github.com/sysu-ecnc-dev/roster-manager/backend/internal/domain"
	"github.com/sysu-ecnc-dev/roster-manager/backend/internal/repository"
	"github.com/sysu-ecnc-dev/roster-manager/backend/internal/rota"
	"github.com/sysu-ecnc-dev/roster-manager/backend/internal/utils"
)

// demoPattern 构建一条工作日的安排，非工作日传入空的时间即可。
func demoPattern(weekday int32, startTime string, endTime string, breakMinutes int32, expectedHours float64) domain.WeekdayPattern {
	return domain.WeekdayPattern{
		Weekday:       weekday,
		IsWorkingDay:  startTime != "",
		StartTime:     startTime,
		EndTime:       endTime,
		BreakMinutes:  breakMinutes,
		ExpectedHours: expectedHours,
	}
}

// demoTemplate 是一个两周轮换的演示模板：第一周周一到周五早班加周六半天，
// 第二周周一到周五晚班，周日固定休息。
func demoTemplate() *domain.RotationTemplate {
	return &domain.RotationTemplate{
		Name:                "两周轮换演示模板",
		Description:         "早晚班隔周轮换，周日固定休息",
		Status:              domain.TemplateStatusActive,
		IsDefault:           true,
		RotationLengthWeeks: 2,
		Weeks: []domain.TemplateWeek{
			{
				WeekIndex: 1,
				Label:     "早班周",
				Patterns: []domain.WeekdayPattern{
					demoPattern(1, "09:00", "17:00", 60, 7),
					demoPattern(2, "09:00", "17:00", 60, 7),
					demoPattern(3, "09:00", "17:00", 60, 7),
					demoPattern(4, "09:00", "17:00", 60, 7),
					demoPattern(5, "09:00", "17:00", 60, 7),
					demoPattern(6, "09:00", "13:00", 0, 4),
					demoPattern(7, "", "", 0, 0),
				},
			},
			{
				WeekIndex: 2,
				Label:     "晚班周",
				Patterns: []domain.WeekdayPattern{
					demoPattern(1, "13:00", "21:00", 60, 7),
					demoPattern(2, "13:00", "21:00", 60, 7),
					demoPattern(3, "13:00", "21:00", 60, 7),
					demoPattern(4, "13:00", "21:00", 60, 7),
					demoPattern(5, "13:00", "21:00", 60, 7),
					demoPattern(6, "", "", 0, 0),
					demoPattern(7, "", "", 0, 0),
				},
			},
		},
	}
}

// SeedDemoData 构建一套可以直接演示的完整数据：
// 地点、轮换模板、若干员工及其可用性、分配记录和未来四周的草稿班次。
func SeedDemoData(r *repository.Repository, cfg *config.Config) {
	// 插入地点
	locations := []*domain.Location{
		{Name: "总店", Address: "新港西路 135 号"},
		{Name: "东门店", Address: "东川路 18 号"},
	}
	for _, location := range locations {
		if err := r.CreateLocation(location); err != nil {
			slog.Error("插入地点失败", "name", location.Name, "error", err)
			return
		}
	}

	// 插入演示模板
	template := demoTemplate()
	if err := r.CreateRotationTemplate(template); err != nil {
		slog.Error("插入轮换模板失败", "error", err)
		return
	}

	// 插入员工、可用性、分配记录和草稿班次
	monday := rota.MondayOnOrBefore(time.Now())
	horizonEnd := rota.TruncateToDate(time.Now()).AddDate(0, 0, cfg.Generation.HorizonWeeks*7)

	for i := 0; i < 5; i++ {
		user, err := utils.GenerateRandomUser(cfg.Seed.User.Password, cfg.Email.UserDomain)
		if err != nil {
			slog.Error("生成随机员工失败", "error", err)
			continue
		}
		user.Role = domain.RoleEmployee
		user.MainLocationID = &locations[i%len(locations)].ID

		if err := r.CreateUser(user); err != nil {
			slog.Error("插入员工失败", "error", err)
			continue
		}

		if err := r.ReplaceAvailability(user.ID, utils.GenerateRandomAvailabilitySet(user.ID)); err != nil {
			slog.Error("插入可用性配置失败", "username", user.Username, "error", err)
			continue
		}

		assignment := &domain.TemplateAssignment{
			EmployeeID:         user.ID,
			TemplateID:         template.ID,
			EffectiveStartDate: monday,
			Notes:              "演示数据",
		}
		if err := r.CreateAssignment(assignment); err != nil {
			slog.Error("插入分配记录失败", "username", user.Username, "error", err)
			continue
		}

		shifts := rota.Generate(assignment, template, horizonEnd)
		if err := r.ReplaceTemplateDraftShifts(user.ID, shifts); err != nil {
			slog.Error("插入草稿班次失败", "username", user.Username, "error", err)
			continue
		}

		slog.Info("员工演示数据就绪", "username", user.Username, "shifts", len(shifts))
	}

	slog.Info("插入演示数据完成")
}
