package handler

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/sysu-ecnc-dev/roster-manager/backend/internal/config"
	"github.com/sysu-ecnc-dev/roster-manager/backend/internal/domain"
	"github.com/sysu-ecnc-dev/roster-manager/backend/internal/repository"
)

type Handler struct {
	validate     *validator.Validate
	config       *config.Config
	repository   *repository.Repository
	translator   ut.Translator
	queueChannel *amqp.Channel
	redisClient  *redis.Client

	Mux *chi.Mux
}

func NewHandler(cfg *config.Config, repo *repository.Repository, queueCh *amqp.Channel, rdb *redis.Client) (*Handler, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	zh := zh.New()
	uni := ut.New(zh, zh)
	trans, _ := uni.GetTranslator("zh")
	if err := zh_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}

	return &Handler{
		validate:     validate,
		config:       cfg,
		repository:   repo,
		translator:   trans,
		queueChannel: queueCh,
		redisClient:  rdb,

		Mux: chi.NewRouter(),
	}, nil
}

func (h *Handler) RegisterRoutes() {
	h.Mux.Use(h.logger)
	h.Mux.Use(h.recoverer)

	// 认证相关
	h.Mux.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.Login)
		r.Post("/logout", h.Logout)
		r.Route("/reset-password", func(r chi.Router) {
			r.Post("/require", h.RequireResetPassword)
			r.Post("/confirm", h.ConfirmResetPassword)
		})
	})

	// 以下 API 必须要在登录后才允许调用
	h.Mux.Group(func(r chi.Router) {
		r.Use(h.auth)
		r.Route("/my-info", func(r chi.Router) {
			r.Use(h.myInfo)
			r.Get("/", h.GetMyInfo)
			r.Patch("/password", h.UpdateMyPassword)
			r.Route("/update-email", func(r chi.Router) {
				r.Post("/require", h.RequireUpdateEmail)
				r.Post("/confirm", h.ConfirmUpdateEmail)
			})
		})

		r.Route("/users", func(r chi.Router) {
			r.With(h.myInfo).With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).Post("/", h.CreateUser)
			r.Get("/", h.GetAllUserInfo) // 所有人都有权限获取其他人的基本信息
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.userInfo)
				r.Get("/", h.GetUserInfo)
				r.With(h.preventOperateInitialAdmin).With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).Patch("/", h.UpdateUser)
				r.With(h.preventOperateInitialAdmin).With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).Delete("/", h.DeleteUser)
				r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).Patch("/password", h.UpdateUserPassword)

				// 可用性配置，员工只能查看自己的
				r.With(h.selfOrSchedulerOnly).Get("/availability", h.GetEmployeeAvailability)
				r.With(h.myInfo).With(h.RequiredRole([]domain.Role{domain.RoleScheduler, domain.RoleAdmin})).Put("/availability", h.ReplaceEmployeeAvailability)

				// 自定义班表
				r.Get("/custom-schedule", h.GetCustomSchedule)
				r.With(h.myInfo).With(h.RequiredRole([]domain.Role{domain.RoleScheduler, domain.RoleAdmin})).Put("/custom-schedule", h.ReplaceCustomSchedule)
				r.With(h.myInfo).With(h.RequiredRole([]domain.Role{domain.RoleScheduler, domain.RoleAdmin})).Delete("/custom-schedule", h.DeleteCustomSchedule)

				// 模板分配
				r.Get("/assignments", h.GetEmployeeAssignments)
				r.With(h.myInfo).With(h.RequiredRole([]domain.Role{domain.RoleScheduler, domain.RoleAdmin})).Post("/assignments", h.AssignTemplate)

				// 班次，员工只能查看自己的
				r.With(h.selfOrSchedulerOnly).Get("/shifts", h.GetEmployeeShifts)
				r.With(h.myInfo).With(h.RequiredRole([]domain.Role{domain.RoleScheduler, domain.RoleAdmin})).Post("/shifts", h.CreateShift)
				r.With(h.myInfo).With(h.RequiredRole([]domain.Role{domain.RoleScheduler, domain.RoleAdmin})).Post("/shifts/generate", h.GenerateShifts)
			})
		})

		r.Route("/locations", func(r chi.Router) {
			r.Get("/", h.GetAllLocations)
			r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).Post("/", h.CreateLocation)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.location)
				r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).Patch("/", h.UpdateLocation)
				r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).Delete("/", h.DeleteLocation)
			})
		})

		r.Route("/rotation-templates", func(r chi.Router) {
			r.With(h.myInfo).With(h.RequiredRole([]domain.Role{domain.RoleScheduler, domain.RoleAdmin})).Post("/", h.CreateRotationTemplate)
			r.Get("/", h.GetAllRotationTemplates)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.rotationTemplate)
				r.Get("/", h.GetRotationTemplate)
				r.With(h.myInfo).With(h.RequiredRole([]domain.Role{domain.RoleScheduler, domain.RoleAdmin})).Patch("/", h.UpdateRotationTemplate)
				r.With(h.myInfo).With(h.RequiredRole([]domain.Role{domain.RoleScheduler, domain.RoleAdmin})).Delete("/", h.DeleteRotationTemplate)
			})
		})

		r.Route("/assignments/{id}", func(r chi.Router) {
			r.Use(h.assignment)
			r.With(h.myInfo).With(h.RequiredRole([]domain.Role{domain.RoleScheduler, domain.RoleAdmin})).Delete("/", h.UnassignTemplate)
		})

		r.Route("/shifts", func(r chi.Router) {
			r.With(h.myInfo).With(h.RequiredRole([]domain.Role{domain.RoleScheduler, domain.RoleAdmin})).Post("/publish", h.PublishShifts)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.shift)
				r.With(h.myInfo).With(h.RequiredRole([]domain.Role{domain.RoleScheduler, domain.RoleAdmin})).Patch("/", h.UpdateShift)
				r.With(h.myInfo).With(h.RequiredRole([]domain.Role{domain.RoleScheduler, domain.RoleAdmin})).Delete("/", h.DeleteShift)
			})
		})

		r.With(h.RequiredRole([]domain.Role{domain.RoleScheduler, domain.RoleAdmin})).Get("/publish-batches", h.GetAllPublishBatches)
	})
}
