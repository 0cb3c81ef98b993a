package main

import (
	"flag"
	"log/slog"
	"os"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sysu-ecnc-dev/exam-paper/backend/internal/config"
	"github.com/sysu-ecnc-dev/exam-paper/backend/internal/database"
	"github.com/sysu-ecnc-dev/exam-paper/backend/internal/mailqueue"
	"github.com/sysu-ecnc-dev/exam-paper/backend/internal/repository"
	"github.com/sysu-ecnc-dev/exam-paper/backend/internal/seed"
)

func main() {
	var op int
	var n int

	flag.IntVar(&op, "op", 0, "要执行的操作 (1: 创建管理员账户, 2: 插入随机试卷)")
	flag.IntVar(&n, "n", 5, "要插入的试卷数量")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// 读取配置文件
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("无法读取配置文件", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 创建数据库连接池
	dbpool, err := database.Open(cfg)
	if err != nil {
		logger.Error("无法连接到数据库", "error", err)
		os.Exit(1)
	}
	defer dbpool.Close()

	if err := repository.RunMigrations(dbpool); err != nil {
		logger.Error("数据库迁移失败", "error", err)
		return
	}

	// seed 只写数据库，不需要缓存
	repo := repository.NewRepository(cfg, dbpool, nil)

	// 执行操作
	switch op {
	case 0:
		slog.Error("未指定操作")
	case 1:
		if cfg.Seed.Admin.Password == "" {
			slog.Error("请通过 SEED_ADMIN_PASSWORD 指定管理员初始密码")
			return
		}

		var notifier seed.Notifier
		if cfg.RabbitMQ.DSN != "" {
			conn, err := amqp.Dial(cfg.RabbitMQ.DSN)
			if err != nil {
				slog.Error("无法连接到 rabbitmq", "error", err)
				return
			}
			defer conn.Close()

			ch, err := conn.Channel()
			if err != nil {
				slog.Error("无法建立通道", "error", err)
				return
			}
			defer ch.Close()

			if _, err := mailqueue.DeclareQueue(ch); err != nil {
				slog.Error("无法声明队列", "error", err)
				return
			}

			notifier = mailqueue.NewPublisher(ch, time.Duration(cfg.RabbitMQ.PublishTimeout)*time.Second)
		}

		result := seed.ProvisionAdmins(repo, notifier, seed.AdminAccounts(cfg.Email.UserDomain), cfg.Seed.Admin.Password)
		slog.Info("管理员账户处理完成", slog.Int("created", result.Created), slog.Int("existing", result.Existing), slog.Int("failed", result.Failed))
	case 2:
		if n <= 0 {
			slog.Error("请输入合法的试卷数量")
		} else {
			cnt := seed.SeedQuestionPapers(repo, n, time.Now())
			slog.Info("插入试卷成功", slog.Int("count", cnt))
		}
	default:
		slog.Error("指定的操作非法")
	}
}
