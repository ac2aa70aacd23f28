package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/sysu-ecnc-dev/knapsack-ga/backend/internal/config"
	"github.com/sysu-ecnc-dev/knapsack-ga/backend/internal/progress"
	"github.com/sysu-ecnc-dev/knapsack-ga/backend/internal/queue"
	"github.com/sysu-ecnc-dev/knapsack-ga/backend/internal/repository"
	"github.com/sysu-ecnc-dev/knapsack-ga/backend/internal/worker"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	/**********************************************
	 * 创建 logger
	 **********************************************/
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	/**********************************************
	 * 读取配置文件
	 **********************************************/
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("无法读取配置文件", slog.String("error", err.Error()))
		return
	}

	/**********************************************
	 * 连接数据库
	 **********************************************/
	dbpool, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		logger.Error("无法创建数据库连接池", "error", err)
		return
	}
	defer dbpool.Close()

	dbpool.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	dbpool.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	dbpool.SetConnMaxIdleTime(time.Duration(cfg.Database.MaxIdleTime) * time.Second)

	pingCtx, pingCancel := context.WithTimeout(context.Background(), time.Duration(cfg.Database.ConnectTimeout)*time.Second)
	defer pingCancel()
	if err := dbpool.PingContext(pingCtx); err != nil {
		logger.Error("无法连接到数据库", "error", err)
		return
	}

	repo := repository.NewRepository(cfg, dbpool)

	/**********************************************
	 * 连接 redis
	 **********************************************/
	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       0,
	})
	defer rdb.Close()

	tracker := progress.NewTracker(
		rdb,
		time.Duration(cfg.Redis.ProgressExpiration)*time.Second,
		time.Duration(cfg.Redis.OperationTimeout)*time.Second,
	)

	/**********************************************
	 * 连接 RabbitMQ
	 **********************************************/
	conn, err := amqp.Dial(cfg.RabbitMQ.DSN)
	if err != nil {
		logger.Error("无法连接到 RabbitMQ", slog.String("error", err.Error()))
		return
	}
	defer conn.Close()

	// 消费与发布使用不同的通道
	consumeCh, err := conn.Channel()
	if err != nil {
		logger.Error("无法创建通道", slog.String("error", err.Error()))
		return
	}
	defer consumeCh.Close()

	publishCh, err := conn.Channel()
	if err != nil {
		logger.Error("无法创建通道", slog.String("error", err.Error()))
		return
	}
	defer publishCh.Close()

	if err := queue.DeclareQueues(consumeCh); err != nil {
		logger.Error("无法声明队列", slog.String("error", err.Error()))
		return
	}

	// 实验是 CPU 密集型的，限制每个 worker 同时处理的消息数量
	if err := consumeCh.Qos(cfg.Worker.Prefetch, 0, false); err != nil {
		logger.Error("无法设置 QoS", slog.String("error", err.Error()))
		return
	}

	publisher := queue.NewPublisher(publishCh, time.Duration(cfg.RabbitMQ.PublishTimeout)*time.Second)
	w := worker.New(repo, tracker, publisher, time.Duration(cfg.Worker.RunTimeout)*time.Second, logger)

	msgs, err := queue.Consume(consumeCh, queue.ExperimentQueue)
	if err != nil {
		logger.Error("无法消费消息", slog.String("error", err.Error()))
		return
	}

	// 收到 CTRL+C 后 ctx 结束，正在运行的实验会被重置并重新入队
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("等待实验任务...（按 CTRL+C 退出）")
	err = queue.Serve(ctx, msgs, logger, func(ctx context.Context, msg amqp.Delivery) queue.Outcome {
		if err := w.Process(ctx, msg.Body); err != nil {
			if errors.Is(err, worker.ErrInterrupted) {
				return queue.Requeue
			}
			logger.Error("无法处理实验任务", slog.String("error", err.Error()))
			return queue.Reject
		}
		return queue.Ack
	})
	if err != nil {
		logger.Error("experiment worker 异常退出", slog.String("error", err.Error()))
		return
	}
	logger.Info("experiment worker 已成功关闭")
}
