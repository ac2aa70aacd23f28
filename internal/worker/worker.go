// Package worker 处理 experiment_queue 中的实验任务
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sysu-ecnc-dev/knapsack-ga/backend/internal/domain"
	"github.com/sysu-ecnc-dev/knapsack-ga/backend/internal/experiment"
	"github.com/sysu-ecnc-dev/knapsack-ga/backend/internal/repository"
	"github.com/sysu-ecnc-dev/knapsack-ga/backend/internal/utils"
)

var (
	ErrMalformedJob = errors.New("无法解析的实验任务")
	// ErrInterrupted 表示 worker 正在退出，实验被重置为等待状态，消息应当重新入队
	ErrInterrupted = errors.New("实验被中断")
)

type Store interface {
	GetExperimentByID(id string) (*domain.Experiment, error)
	UpdateExperimentStatus(experiment *domain.Experiment, status domain.ExperimentStatus) error
	SaveExperimentReport(experiment *domain.Experiment, report *domain.ExperimentReport) error
	MarkExperimentFailed(experiment *domain.Experiment, reason string) error
}

type ProgressTracker interface {
	Set(experimentID string, completed, total int) error
	Clear(experimentID string) error
}

type MailPublisher interface {
	PublishMail(msg domain.MailMessage) error
}

type runFunc func(ctx context.Context, settings domain.ExperimentSettings, onTrialDone experiment.TrialDoneFunc) (*domain.ExperimentReport, error)

type Worker struct {
	store      Store
	progress   ProgressTracker
	mail       MailPublisher
	runTimeout time.Duration
	logger     *slog.Logger
	run        runFunc
}

func New(store Store, progress ProgressTracker, mail MailPublisher, runTimeout time.Duration, logger *slog.Logger) *Worker {
	return &Worker{
		store:      store,
		progress:   progress,
		mail:       mail,
		runTimeout: runTimeout,
		logger:     logger,
		run:        experiment.Run,
	}
}

/**
 * Process 处理一条消息：
 * 		1. 解析任务并读取实验
 * 		2. 已经结束的实验直接跳过（消息可能被重复投递）
 * 		3. 运行实验并校验、保存报告，失败时将实验标记为失败
 * 		4. 如果实验设置了通知邮箱，则投递一封邮件到 email_queue
 * 返回 error 表示消息无法处理，调用方应当丢弃该消息
 */
func (w *Worker) Process(ctx context.Context, body []byte) error {
	var job domain.ExperimentJob
	if err := json.Unmarshal(body, &job); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedJob, err)
	}
	if job.ExperimentID == "" {
		return fmt.Errorf("%w: 缺少实验 ID", ErrMalformedJob)
	}

	exp, err := w.store.GetExperimentByID(job.ExperimentID)
	if err != nil {
		return err
	}

	if exp.Status == domain.ExperimentFinished || exp.Status == domain.ExperimentFailed {
		w.logger.Info("实验已经结束，跳过", "id", exp.ID, "status", exp.Status)
		return nil
	}

	if err := w.store.UpdateExperimentStatus(exp, domain.ExperimentRunning); err != nil {
		if errors.Is(err, repository.ErrEditConflict) {
			// 同一条消息被重复投递，另一个 worker 已经接手
			w.logger.Info("实验已被其他 worker 接手，跳过", "id", exp.ID)
			return nil
		}
		return err
	}
	w.logger.Info("开始运行实验", "id", exp.ID, "name", exp.Name, "trials", exp.Settings.Trials, "generations", exp.Settings.Generations)

	runCtx, cancel := context.WithTimeout(ctx, w.runTimeout)
	defer cancel()

	start := time.Now()
	report, runErr := w.run(runCtx, exp.Settings, func(completed int) {
		// 进度只是展示用的，写入失败不影响实验本身
		if err := w.progress.Set(exp.ID, completed, exp.Settings.Trials); err != nil {
			w.logger.Warn("无法更新实验进度", "id", exp.ID, "error", err)
		}
	})

	if err := w.progress.Clear(exp.ID); err != nil {
		w.logger.Warn("无法清除实验进度", "id", exp.ID, "error", err)
	}

	if runErr != nil && ctx.Err() != nil {
		w.logger.Warn("worker 正在退出，实验将重新排队", "id", exp.ID)
		if err := w.store.UpdateExperimentStatus(exp, domain.ExperimentPending); err != nil {
			return err
		}
		return ErrInterrupted
	}

	// 报告与设置不一致时不保存，按运行失败处理
	if runErr == nil {
		if err := utils.ValidateReportWithSettings(report, exp.Settings); err != nil {
			runErr = fmt.Errorf("实验报告校验失败: %w", err)
		}
	}

	if runErr != nil {
		w.logger.Error("实验运行失败", "id", exp.ID, "error", runErr)
		if err := w.store.MarkExperimentFailed(exp, runErr.Error()); err != nil {
			return err
		}
		w.notify(exp, domain.MailMessage{
			Type: domain.MailTypeExperimentFailed,
			To:   exp.NotifyEmail,
			Data: domain.ExperimentFailedMailData{
				ExperimentID: exp.ID,
				Name:         exp.Name,
				Error:        runErr.Error(),
			},
		})
		return nil
	}

	if err := w.store.SaveExperimentReport(exp, report); err != nil {
		return err
	}

	final := report.Final()
	w.logger.Info("实验运行完成", "id", exp.ID, "duration", time.Since(start), "bestFitness", report.Best.Fitness, "avgFitness", final.AvgFitness)

	w.notify(exp, domain.MailMessage{
		Type: domain.MailTypeExperimentFinished,
		To:   exp.NotifyEmail,
		Data: domain.ExperimentFinishedMailData{
			ExperimentID: exp.ID,
			Name:         exp.Name,
			Trials:       report.Trials,
			Generations:  exp.Settings.Generations,
			BestFitness:  report.Best.Fitness,
			BestValue:    report.Best.Value,
			BestWeight:   report.Best.Weight,
			BestGenome:   report.Best.Genome,
			AvgFitness:   final.AvgFitness,
		},
	})

	return nil
}

func (w *Worker) notify(exp *domain.Experiment, msg domain.MailMessage) {
	if exp.NotifyEmail == "" || w.mail == nil {
		return
	}
	if err := w.mail.PublishMail(msg); err != nil {
		w.logger.Error("无法投递通知邮件", "id", exp.ID, "error", err)
	}
}
