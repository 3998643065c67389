package domain

import (
	"time"
)

type Role string

const (
	RoleEmployee  Role = "员工"
	RoleScheduler Role = "排班管理员"
	RoleAdmin     Role = "管理员"
)

type User struct {
	ID             int64     `json:"id"`
	Username       string    `json:"username"`
	PasswordHash   string    `json:"-"`
	FullName       string    `json:"fullName"`
	Email          string    `json:"email"`
	Role           Role      `json:"role"`
	IsActive       bool      `json:"isActive"`
	MainLocationID *int64    `json:"mainLocationID"` // 员工的默认工作地点，可以为空
	CreatedAt      time.Time `json:"createdAt"`
	Version        int32     `json:"-"`
}
