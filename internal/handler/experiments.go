package handler

import (
	"errors"
	"log/slog"
	"math/rand"
	"net/http"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sysu-ecnc-dev/knapsack-ga/backend/internal/domain"
	"github.com/sysu-ecnc-dev/knapsack-ga/backend/internal/experiment"
	"github.com/sysu-ecnc-dev/knapsack-ga/backend/internal/knapsack"
	"github.com/sysu-ecnc-dev/knapsack-ga/backend/internal/progress"
	"github.com/sysu-ecnc-dev/knapsack-ga/backend/internal/utils"
)

// settingsRequest 中未出现在请求体里的字段沿用 GA_ 配置中的默认值
type settingsRequest struct {
	ItemCount      int     `json:"itemCount" validate:"min=1,max=4096"`
	MaxItemWeight  int     `json:"maxItemWeight" validate:"min=1"`
	ValueBias      int     `json:"valueBias" validate:"min=0"`
	Capacity       int     `json:"capacity" validate:"min=0"`
	PopulationSize int     `json:"populationSize" validate:"min=1,max=10000"`
	TournamentSize int     `json:"tournamentSize" validate:"min=1,ltefield=PopulationSize"`
	MaxParents     int     `json:"maxParents" validate:"min=1,max=10000"`
	MutationCount  int     `json:"mutationCount" validate:"min=0,ltefield=ItemCount"`
	ScoreScale     float64 `json:"scoreScale" validate:"min=0"`
	FitnessPolicy  string  `json:"fitnessPolicy" validate:"oneof=soft hard"`
	ClampNegative  bool    `json:"clampNegative"`
	Trials         int     `json:"trials" validate:"min=1,max=1000"`
	Generations    int     `json:"generations" validate:"min=0,max=100000"`
	Seed           *int64  `json:"seed"`
	Parallelism    int     `json:"parallelism" validate:"min=0,max=64"`
}

func (h *Handler) defaultSettingsRequest() settingsRequest {
	ga := h.config.GA
	return settingsRequest{
		ItemCount:      ga.ItemCount,
		MaxItemWeight:  ga.MaxItemWeight,
		ValueBias:      ga.ValueBias,
		Capacity:       ga.Capacity,
		PopulationSize: ga.PopSize,
		TournamentSize: ga.TournSize,
		MaxParents:     ga.MaxParents,
		MutationCount:  ga.MutationCount,
		ScoreScale:     ga.ScoreScale,
		FitnessPolicy:  ga.FitnessPolicy,
		ClampNegative:  ga.ClampNegative,
		Trials:         ga.Trials,
		Generations:    ga.Generations,
		Parallelism:    ga.Parallelism,
	}
}

func (req *settingsRequest) toSettings() domain.ExperimentSettings {
	// 没有指定种子时随机生成一个，并保存在设置中以便复现
	var seed int64
	if req.Seed != nil {
		seed = *req.Seed
	} else {
		seed = rand.Int63()
	}

	return domain.ExperimentSettings{
		Parameters: knapsack.Parameters{
			PopulationSize: req.PopulationSize,
			TournamentSize: req.TournamentSize,
			MaxParents:     req.MaxParents,
			MutationCount:  req.MutationCount,
			Capacity:       req.Capacity,
			ScoreScale:     req.ScoreScale,
			FitnessPolicy:  knapsack.PolicyKind(req.FitnessPolicy),
			ClampNegative:  req.ClampNegative,
		},
		ItemCount:     req.ItemCount,
		MaxItemWeight: req.MaxItemWeight,
		ValueBias:     req.ValueBias,
		Trials:        req.Trials,
		Generations:   req.Generations,
		Seed:          seed,
		Parallelism:   req.Parallelism,
	}
}

func (h *Handler) CreateExperiment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string `json:"name" validate:"required,max=100"`
		NotifyEmail string `json:"notifyEmail" validate:"omitempty,email"`
		settingsRequest
	}
	req.settingsRequest = h.defaultSettingsRequest()

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	settings := req.toSettings()
	if err := experiment.Validate(settings); err != nil {
		h.badRequest(w, r, err)
		return
	}

	exp := &domain.Experiment{
		ID:          uuid.NewString(),
		Name:        req.Name,
		Status:      domain.ExperimentPending,
		Settings:    settings,
		NotifyEmail: req.NotifyEmail,
	}

	// 插入数据到数据库中
	if err := h.repository.CreateExperiment(exp); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr):
			switch pgErr.ConstraintName {
			case "experiments_name_key":
				h.errorResponse(w, r, "实验名称已存在")
			default:
				h.internalServerError(w, r, err)
			}
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	// 投递到消息队列中，由 worker 执行。投递失败时删除刚插入的记录，否则它会一直处于等待状态并占用实验名称
	if err := h.publisher.PublishExperiment(exp.ID); err != nil {
		if delErr := h.repository.DeleteExperiment(exp.ID); delErr != nil {
			slog.Error("无法删除投递失败的实验", "id", exp.ID, "error", delErr)
		}
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "创建实验成功", exp)
}

func (h *Handler) GetAllExperiments(w http.ResponseWriter, r *http.Request) {
	experiments, err := h.repository.GetAllExperiments()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取所有实验成功", experiments)
}

func (h *Handler) GetExperiment(w http.ResponseWriter, r *http.Request) {
	exp := r.Context().Value(ExperimentCtx).(*domain.Experiment)

	h.successResponse(w, r, "获取实验成功", exp)
}

func (h *Handler) DeleteExperiment(w http.ResponseWriter, r *http.Request) {
	exp := r.Context().Value(ExperimentCtx).(*domain.Experiment)

	if exp.Status == domain.ExperimentRunning {
		h.errorResponse(w, r, "实验正在运行，无法删除")
		return
	}

	if err := h.repository.DeleteExperiment(exp.ID); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "删除实验成功", nil)
}

func (h *Handler) GetExperimentProgress(w http.ResponseWriter, r *http.Request) {
	exp := r.Context().Value(ExperimentCtx).(*domain.Experiment)

	res := progress.Progress{Total: exp.Settings.Trials}
	switch exp.Status {
	case domain.ExperimentFinished:
		res.Completed = res.Total
	case domain.ExperimentRunning:
		p, err := h.progress.Get(exp.ID)
		if err != nil {
			switch {
			case errors.Is(err, progress.ErrNoProgress):
				// 还没有任何一次试验完成
			default:
				h.internalServerError(w, r, err)
				return
			}
		} else {
			res = *p
		}
	}

	h.successResponse(w, r, "获取实验进度成功", map[string]any{
		"status":    exp.Status,
		"completed": res.Completed,
		"total":     res.Total,
	})
}

// QuickRun 同步运行一次较小的实验，结果不会保存
func (h *Handler) QuickRun(w http.ResponseWriter, r *http.Request) {
	req := h.defaultSettingsRequest()

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	settings := req.toSettings()
	if err := experiment.Validate(settings); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := utils.ValidateRunBudget(settings, h.config.Server.QuickRunBudget); err != nil {
		h.badRequest(w, r, err)
		return
	}

	report, err := experiment.Run(r.Context(), settings, nil)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "运行成功", map[string]any{
		"settings": settings,
		"report":   report,
	})
}
