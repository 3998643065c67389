package rota

import (
	"time"

	"github.com/sysu-ecnc-dev/roster-manager/backend/internal/domain"
)

type ScheduleSourceKind string

const (
	ScheduleSourceTemplate ScheduleSourceKind = "template"
	ScheduleSourceCustom   ScheduleSourceKind = "custom"
	ScheduleSourceNone     ScheduleSourceKind = "none"
)

// ScheduleSource 是员工当前生效的班表来源。
// 自定义班表的优先级高于模板分配，两者都不存在时为 none。
type ScheduleSource struct {
	Kind       ScheduleSourceKind
	Assignment *domain.TemplateAssignment
	Template   *domain.RotationTemplate
}

// ResolveScheduleSource 在调用生成器之前确定应该使用哪个班表来源。
// custom 是员工的自定义班表（可以为 nil），assignment/template 是员工
// 当前未结束的模板分配和对应的模板（可以为 nil）。
//
// 对自定义班表会合成一条以本周周一为生效开始日期的分配记录，
// 使生成器的输入始终是一对 (assignment, template)。合成的分配记录
// 没有持久化，ID 保持为 0，生成器据此不会让班次引用它。
func ResolveScheduleSource(custom *domain.RotationTemplate, assignment *domain.TemplateAssignment, template *domain.RotationTemplate, now time.Time) ScheduleSource {
	if custom != nil && custom.Status == domain.TemplateStatusActive {
		return ScheduleSource{
			Kind: ScheduleSourceCustom,
			Assignment: &domain.TemplateAssignment{
				EmployeeID:         *custom.EmployeeID,
				TemplateID:         custom.ID,
				EffectiveStartDate: MondayOnOrBefore(now),
			},
			Template: custom,
		}
	}

	if assignment != nil && template != nil {
		return ScheduleSource{
			Kind:       ScheduleSourceTemplate,
			Assignment: assignment,
			Template:   template,
		}
	}

	return ScheduleSource{Kind: ScheduleSourceNone}
}
