package rota

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/roster-manager/backend/internal/domain"
)

func TestResolveScheduleSource(t *testing.T) {
	employeeID := int64(42)
	custom := &domain.RotationTemplate{
		ID:                  7,
		Status:              domain.TemplateStatusActive,
		EmployeeID:          &employeeID,
		RotationLengthWeeks: 1,
	}
	template := &domain.RotationTemplate{ID: 3, Status: domain.TemplateStatusActive, RotationLengthWeeks: 2}
	assignment := &domain.TemplateAssignment{ID: 5, EmployeeID: employeeID, TemplateID: template.ID, EffectiveStartDate: date(2024, 1, 1)}

	now := date(2024, 3, 6) // 周三

	t.Run("自定义班表优先", func(t *testing.T) {
		source := ResolveScheduleSource(custom, assignment, template, now)
		assert.Equal(t, ScheduleSourceCustom, source.Kind)
		assert.Equal(t, custom, source.Template)
		// 合成的分配记录以本周周一为生效开始日期
		require.NotNil(t, source.Assignment)
		assert.Equal(t, employeeID, source.Assignment.EmployeeID)
		assert.Equal(t, custom.ID, source.Assignment.TemplateID)
		assert.Equal(t, date(2024, 3, 4), source.Assignment.EffectiveStartDate)
	})

	t.Run("停用的自定义班表不生效", func(t *testing.T) {
		inactive := *custom
		inactive.Status = domain.TemplateStatusInactive
		source := ResolveScheduleSource(&inactive, assignment, template, now)
		assert.Equal(t, ScheduleSourceTemplate, source.Kind)
		assert.Equal(t, assignment, source.Assignment)
		assert.Equal(t, template, source.Template)
	})

	t.Run("只有模板分配", func(t *testing.T) {
		source := ResolveScheduleSource(nil, assignment, template, now)
		assert.Equal(t, ScheduleSourceTemplate, source.Kind)
		assert.Equal(t, assignment, source.Assignment)
	})

	t.Run("分配存在但模板缺失", func(t *testing.T) {
		source := ResolveScheduleSource(nil, assignment, nil, now)
		assert.Equal(t, ScheduleSourceNone, source.Kind)
	})

	t.Run("什么都没有", func(t *testing.T) {
		source := ResolveScheduleSource(nil, nil, nil, now)
		assert.Equal(t, ScheduleSourceNone, source.Kind)
		assert.Nil(t, source.Assignment)
		assert.Nil(t, source.Template)
	})
}
