package utils

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/mozillazg/go-pinyin"
	"github.com/sysu-ecnc-dev/roster-manager/backend/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

var commonSurnames = []string{
	"王", "李", "张", "刘", "陈", "杨", "赵", "黄", "周", "吴",
	"徐", "孙", "胡", "朱", "高", "林", "何", "郭", "马", "罗",
}
var commonNameCharacters = []string{
	"伟", "强", "芳", "敏", "静", "丽", "刚", "杰", "娟", "勇",
	"艳", "涛", "明", "军", "磊", "洋", "勇", "霞", "飞", "玲",
	"超", "华", "平", "辉", "梅", "鑫", "龙", "鹏", "玉", "斌",
	"庆", "建", "丹", "彬", "凤", "旭", "宁", "乐", "成", "欣",
}

func GenerateRandomChineseName() string {
	surname := commonSurnames[rand.Intn(len(commonSurnames))]
	nameLength := rand.Intn(2) + 1
	name := ""

	for i := 0; i < nameLength; i++ {
		name += commonNameCharacters[rand.Intn(len(commonNameCharacters))]
	}
	return surname + name
}

var roles = []domain.Role{
	domain.RoleEmployee,
	domain.RoleEmployee,
	domain.RoleEmployee,
	domain.RoleScheduler,
	domain.RoleAdmin,
}

// GenerateRandomRole 偏向生成普通员工，毕竟真实组织里管理员是少数
func GenerateRandomRole() domain.Role {
	return roles[rand.Intn(len(roles))]
}

var digits = "0123456789"

func GenerateUsernameFromChineseName(chineseName string) string {
	pinyinArray := pinyin.LazyConvert(chineseName, nil)
	username := ""

	for _, pinyin := range pinyinArray {
		length := rand.Intn(len(pinyin)) + 1
		username += pinyin[:length]
	}

	digitsLength := rand.Intn(3) + 1
	for i := 0; i < digitsLength; i++ {
		username += string(digits[rand.Intn(len(digits))])
	}

	return username
}

func GenerateRandomUser(password string, emailDomainName string) (*domain.User, error) {
	fullName := GenerateRandomChineseName()
	username := GenerateUsernameFromChineseName(fullName)
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Username:     username,
		PasswordHash: string(passwordHash),
		FullName:     fullName,
		Email:        username + "@" + emailDomainName,
		Role:         GenerateRandomRole(),
	}

	return user, nil
}

func GenerateRandomOTP() string {
	return fmt.Sprintf("%06d", rand.Intn(1000000))
}

var letters = []rune("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%^&*")

func GenerateRandomPassword(length int) string {
	random_password := make([]rune, length)
	for i := range random_password {
		random_password[i] = letters[rand.Intn(len(letters))]
	}
	return string(random_password)
}

func GenerateRandomID(letterLength int, digitLength int) string {
	random_id := make([]rune, letterLength+digitLength)
	for i := range random_id {
		if i < letterLength {
			random_id[i] = letters[rand.Intn(len(letters))]
		} else {
			random_id[i] = rune(digits[rand.Intn(len(digits))])
		}
	}
	return string(random_id)
}

var locationNames = []string{"总店", "东门店", "西门店", "北门店", "科技园店", "仓库"}

func GenerateRandomLocation() *domain.Location {
	return &domain.Location{
		Name:    locationNames[rand.Intn(len(locationNames))] + GenerateRandomID(0, 3),
		Address: "测试地址" + GenerateRandomID(5, 5),
	}
}

// GenerateRandomWeekdayPattern 随机生成一天的工作安排，周末休息的概率更高一些
func GenerateRandomWeekdayPattern(weekday int32) domain.WeekdayPattern {
	pattern := domain.WeekdayPattern{
		Weekday:      weekday,
		IsWorkingDay: rand.Intn(10) < 7,
	}
	if weekday >= 6 {
		pattern.IsWorkingDay = rand.Intn(10) < 2
	}

	if !pattern.IsWorkingDay {
		return pattern
	}

	startHour := rand.Intn(4) + 7 // 7~10 点上班
	workHours := rand.Intn(4) + 6 // 工作 6~9 小时

	pattern.StartTime = fmt.Sprintf("%02d:%02d", startHour, rand.Intn(2)*30)
	pattern.EndTime = fmt.Sprintf("%02d:%02d", startHour+workHours, rand.Intn(2)*30)
	pattern.BreakMinutes = int32(rand.Intn(3) * 30)
	pattern.ExpectedHours = float64(workHours) - float64(pattern.BreakMinutes)/60

	return pattern
}

func GenerateRandomRotationTemplate() *domain.RotationTemplate {
	rotationLength := int32(rand.Intn(4) + 1)

	template := &domain.RotationTemplate{
		Name:                "轮换模板" + GenerateRandomID(3, 3),
		Description:         "轮换模板描述" + GenerateRandomID(10, 5),
		Status:              domain.TemplateStatusActive,
		RotationLengthWeeks: rotationLength,
		Weeks:               make([]domain.TemplateWeek, rotationLength),
	}

	for i := int32(0); i < rotationLength; i++ {
		week := domain.TemplateWeek{
			WeekIndex: i + 1,
			Label:     fmt.Sprintf("第 %d 周", i+1),
			Patterns:  make([]domain.WeekdayPattern, 7),
		}
		for weekday := int32(1); weekday <= 7; weekday++ {
			week.Patterns[weekday-1] = GenerateRandomWeekdayPattern(weekday)
		}
		template.Weeks[i] = week
	}

	return template
}

func GenerateRandomAvailabilitySet(employeeID int64) []domain.EmployeeAvailability {
	items := make([]domain.EmployeeAvailability, 7)
	for weekday := int32(1); weekday <= 7; weekday++ {
		item := domain.EmployeeAvailability{
			EmployeeID:  employeeID,
			Weekday:     weekday,
			IsAvailable: rand.Intn(10) < 8,
		}
		if item.IsAvailable {
			item.StartTime = "07:00"
			item.EndTime = "22:00"
			item.MaxHours = float64(rand.Intn(5) + 6)
		}
		items[weekday-1] = item
	}
	return items
}

// GenerateRandomAssignment 生成一条从最近的周一开始、未结束的分配记录
func GenerateRandomAssignment(employeeID int64, templateID int64, now time.Time) *domain.TemplateAssignment {
	start := now.AddDate(0, 0, -rand.Intn(28))
	return &domain.TemplateAssignment{
		EmployeeID:         employeeID,
		TemplateID:         templateID,
		EffectiveStartDate: time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC),
		Notes:              "随机生成的分配记录",
	}
}
