package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"github.com/sysu-ecnc-dev/roster-manager/backend/internal/config"
	"github.com/sysu-ecnc-dev/roster-manager/backend/internal/repository"
	"github.com/sysu-ecnc-dev/roster-manager/backend/internal/rota"
	"github.com/sysu-ecnc-dev/roster-manager/backend/internal/seed"
	"github.com/sysu-ecnc-dev/roster-manager/backend/internal/utils"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	var op int
	var n int

	flag.IntVar(&op, "op", 0, "要执行的操作 (1: 插入随机用户, 2: 插入随机地点, 3: 插入随机轮换模板, 4: 为所有员工分配模板并生成草稿班次, 5: 插入完整演示数据)")
	flag.IntVar(&n, "n", 5, "要插入的记录数量")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	// 读取配置文件
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("无法读取配置文件", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 创建数据库连接池
	dbpool, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		logger.Error("无法创建数据库连接池", "error", err)
		return
	}
	defer dbpool.Close()

	dbpool.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	dbpool.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	dbpool.SetConnMaxIdleTime(time.Duration(cfg.Database.MaxIdleTime) * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Database.ConnectTimeout)*time.Second)
	defer cancel()

	// sql.Open 只是创建数据库连接池对象，并不会立即连接到数据库，因此需要显式地 ping 一下
	if err := dbpool.PingContext(ctx); err != nil {
		logger.Error("无法连接到数据库", "error", err)
		return
	}

	// 创建 repository
	repo := repository.NewRepository(cfg, dbpool)

	// 执行操作
	switch op {
	case 0:
		slog.Error("未指定操作")
	case 1:
		if n <= 0 {
			slog.Error("请输入合法的用户数量")
		} else {
			cnt := n
			for i := 0; i < n; i++ {
				user, err := utils.GenerateRandomUser(cfg.Seed.User.Password, cfg.Email.UserDomain)
				if err != nil {
					slog.Error("无法生成随机用户", slog.String("error", err.Error()))
					continue
				}

				if err := repo.CreateUser(user); err != nil {
					slog.Error("无法插入用户", slog.String("error", err.Error()))
					continue
				}

				cnt--
			}

			slog.Info("插入用户成功", slog.Int("count", n-cnt))
		}
	case 2:
		if n <= 0 {
			slog.Error("请输入合法的地点数量")
		} else {
			cnt := n
			for i := 0; i < n; i++ {
				location := utils.GenerateRandomLocation()
				if err := repo.CreateLocation(location); err != nil {
					slog.Error("无法插入地点", slog.String("error", err.Error()))
					continue
				}

				cnt--
			}

			slog.Info("插入地点成功", slog.Int("count", n-cnt))
		}
	case 3:
		if n <= 0 {
			slog.Error("请输入合法的轮换模板数量")
		} else {
			cnt := n
			for i := 0; i < n; i++ {
				template := utils.GenerateRandomRotationTemplate()
				if err := repo.CreateRotationTemplate(template); err != nil {
					slog.Error("无法插入轮换模板", slog.String("error", err.Error()))
					continue
				}

				cnt--
			}

			slog.Info("插入轮换模板成功", slog.Int("count", n-cnt))
		}
	case 4:
		// 先获取所有的轮换模板和员工
		templates, err := repo.GetAllRotationTemplates()
		if err != nil {
			slog.Error("无法获取轮换模板", slog.String("error", err.Error()))
			return
		}
		if len(templates) == 0 {
			slog.Error("数据库中没有轮换模板，请先执行 op=3")
			return
		}

		users, err := repo.GetAllUsers()
		if err != nil {
			slog.Error("无法获取用户列表", slog.String("error", err.Error()))
			return
		}

		horizonEnd := rota.TruncateToDate(time.Now()).AddDate(0, 0, cfg.Generation.HorizonWeeks*7)

		cnt := 0
		for _, user := range users {
			// 已有未结束分配的员工跳过
			if _, err := repo.GetOpenAssignment(user.ID); err == nil {
				continue
			} else if !errors.Is(err, sql.ErrNoRows) {
				slog.Error("无法获取分配记录", slog.String("error", err.Error()))
				continue
			}

			template := templates[rand.Intn(len(templates))]
			assignment := utils.GenerateRandomAssignment(user.ID, template.ID, time.Now())

			if err := repo.CreateAssignment(assignment); err != nil {
				slog.Error("无法插入分配记录", slog.String("error", err.Error()))
				continue
			}

			if err := repo.ReplaceAvailability(user.ID, utils.GenerateRandomAvailabilitySet(user.ID)); err != nil {
				slog.Error("无法插入可用性配置", slog.String("error", err.Error()))
				continue
			}

			shifts := rota.Generate(assignment, template, horizonEnd)
			if err := repo.ReplaceTemplateDraftShifts(user.ID, shifts); err != nil {
				slog.Error("无法插入草稿班次", slog.String("error", err.Error()))
				continue
			}

			cnt++
		}

		slog.Info("分配模板并生成草稿班次成功", slog.Int("count", cnt))
	case 5:
		seed.SeedDemoData(repo, cfg)
	default:
		slog.Error("指定的操作非法")
	}
}
