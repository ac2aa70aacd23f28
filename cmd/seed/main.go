package main

import (
	"context"
	"database/sql"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sysu-ecnc-dev/knapsack-ga/backend/internal/config"
	"github.com/sysu-ecnc-dev/knapsack-ga/backend/internal/domain"
	"github.com/sysu-ecnc-dev/knapsack-ga/backend/internal/queue"
	"github.com/sysu-ecnc-dev/knapsack-ga/backend/internal/repository"
	"github.com/sysu-ecnc-dev/knapsack-ga/backend/internal/utils"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	var n int
	var enqueue bool

	flag.IntVar(&n, "n", 5, "要插入的随机实验数量")
	flag.BoolVar(&enqueue, "enqueue", false, "插入后是否投递到实验队列中")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	if n <= 0 {
		logger.Error("请输入合法的实验数量")
		return
	}

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

	repo := repository.NewRepository(cfg, dbpool)

	// 需要投递时才连接 rabbitmq
	var publisher *queue.Publisher
	if enqueue {
		conn, err := amqp.Dial(cfg.RabbitMQ.DSN)
		if err != nil {
			logger.Error("无法连接到 rabbitmq", "error", err)
			return
		}
		defer conn.Close()

		ch, err := conn.Channel()
		if err != nil {
			logger.Error("无法建立通道", "error", err)
			return
		}
		defer ch.Close()

		if err := queue.DeclareQueues(ch); err != nil {
			logger.Error("无法声明队列", "error", err)
			return
		}
		publisher = queue.NewPublisher(ch, time.Duration(cfg.RabbitMQ.PublishTimeout)*time.Second)
	}

	cnt := 0
	for i := 0; i < n; i++ {
		exp := &domain.Experiment{
			ID:       uuid.NewString(),
			Name:     utils.GenerateRandomExperimentName(),
			Status:   domain.ExperimentPending,
			Settings: utils.GenerateRandomExperimentSettings(),
		}
		if err := repo.CreateExperiment(exp); err != nil {
			logger.Error("无法插入实验", slog.String("error", err.Error()))
			continue
		}

		if publisher != nil {
			if err := publisher.PublishExperiment(exp.ID); err != nil {
				logger.Error("无法投递实验", slog.String("id", exp.ID), slog.String("error", err.Error()))
				continue
			}
		}

		cnt++
	}

	logger.Info("插入实验成功", slog.Int("count", cnt), slog.Bool("enqueued", enqueue))
}
