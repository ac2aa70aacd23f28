package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/sysu-ecnc-dev/knapsack-ga/backend/internal/domain"
)

func (r *Repository) CreateExperiment(experiment *domain.Experiment) error {
	query := `
		INSERT INTO experiments (id, name, status, settings, notify_email)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, version
	`

	settings, err := json.Marshal(experiment.Settings)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	args := []any{experiment.ID, experiment.Name, experiment.Status, settings, experiment.NotifyEmail}
	dst := []any{&experiment.CreatedAt, &experiment.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(dst...); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetExperimentByID(id string) (*domain.Experiment, error) {
	query := `
		SELECT name, status, settings, report, error, notify_email, created_at, finished_at, version
		FROM experiments WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	experiment := &domain.Experiment{
		ID: id,
	}

	var settings, report []byte
	var finishedAt sql.NullTime
	dst := []any{&experiment.Name, &experiment.Status, &settings, &report, &experiment.Error, &experiment.NotifyEmail, &experiment.CreatedAt, &finishedAt, &experiment.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		return nil, err
	}

	if err := json.Unmarshal(settings, &experiment.Settings); err != nil {
		return nil, err
	}
	// report 在实验完成之前为 NULL
	if report != nil {
		experiment.Report = &domain.ExperimentReport{}
		if err := json.Unmarshal(report, experiment.Report); err != nil {
			return nil, err
		}
	}
	if finishedAt.Valid {
		experiment.FinishedAt = &finishedAt.Time
	}

	return experiment, nil
}

// GetAllExperiments 返回所有实验，但不包含报告，报告可能很大
func (r *Repository) GetAllExperiments() ([]*domain.Experiment, error) {
	query := `
		SELECT id, name, status, settings, error, notify_email, created_at, finished_at, version
		FROM experiments ORDER BY created_at DESC
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	experiments := []*domain.Experiment{}
	for rows.Next() {
		experiment := &domain.Experiment{}
		var settings []byte
		var finishedAt sql.NullTime

		dst := []any{&experiment.ID, &experiment.Name, &experiment.Status, &settings, &experiment.Error, &experiment.NotifyEmail, &experiment.CreatedAt, &finishedAt, &experiment.Version}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}

		if err := json.Unmarshal(settings, &experiment.Settings); err != nil {
			return nil, err
		}
		if finishedAt.Valid {
			experiment.FinishedAt = &finishedAt.Time
		}

		experiments = append(experiments, experiment)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return experiments, nil
}

// UpdateExperimentStatus 使用 version 做乐观锁，冲突时返回 ErrEditConflict
func (r *Repository) UpdateExperimentStatus(experiment *domain.Experiment, status domain.ExperimentStatus) error {
	query := `
		UPDATE experiments
		SET status = $1, version = version + 1
		WHERE id = $2 AND version = $3
		RETURNING version
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	args := []any{status, experiment.ID, experiment.Version}
	if err := r.versionedUpdate(ctx, query, args, &experiment.Version); err != nil {
		return err
	}
	experiment.Status = status

	return nil
}

func (r *Repository) SaveExperimentReport(experiment *domain.Experiment, report *domain.ExperimentReport) error {
	query := `
		UPDATE experiments
		SET status = $1, report = $2, error = '', finished_at = NOW(), version = version + 1
		WHERE id = $3 AND version = $4
		RETURNING finished_at, version
	`

	data, err := json.Marshal(report)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	var finishedAt time.Time
	args := []any{domain.ExperimentFinished, data, experiment.ID, experiment.Version}
	if err := r.versionedUpdate(ctx, query, args, &finishedAt, &experiment.Version); err != nil {
		return err
	}

	experiment.Status = domain.ExperimentFinished
	experiment.Report = report
	experiment.FinishedAt = &finishedAt

	return nil
}

func (r *Repository) MarkExperimentFailed(experiment *domain.Experiment, reason string) error {
	query := `
		UPDATE experiments
		SET status = $1, error = $2, finished_at = NOW(), version = version + 1
		WHERE id = $3 AND version = $4
		RETURNING finished_at, version
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	var finishedAt time.Time
	args := []any{domain.ExperimentFailed, reason, experiment.ID, experiment.Version}
	if err := r.versionedUpdate(ctx, query, args, &finishedAt, &experiment.Version); err != nil {
		return err
	}

	experiment.Status = domain.ExperimentFailed
	experiment.Error = reason
	experiment.FinishedAt = &finishedAt

	return nil
}

func (r *Repository) DeleteExperiment(id string) error {
	query := `DELETE FROM experiments WHERE id = $1`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	result, err := r.dbpool.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}

	return nil
}
