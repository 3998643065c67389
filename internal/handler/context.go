package handler

type ContextKey string

var (
	RoleCtxKey          ContextKey = "role"
	SubCtxKey           ContextKey = "sub"
	MyInfoCtx           ContextKey = "myInfo"
	UserInfoCtx         ContextKey = "userInfo"
	LocationCtx         ContextKey = "location"
	RotationTemplateCtx ContextKey = "rotationTemplate"
	AssignmentCtx       ContextKey = "assignment"
	ShiftCtx            ContextKey = "shift"
)
