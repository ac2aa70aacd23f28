package handler

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
	"github.com/sysu-ecnc-dev/knapsack-ga/backend/internal/config"
	"github.com/sysu-ecnc-dev/knapsack-ga/backend/internal/domain"
	"github.com/sysu-ecnc-dev/knapsack-ga/backend/internal/progress"
	"golang.org/x/crypto/bcrypt"
)

// ExperimentStore 由 repository.Repository 实现
type ExperimentStore interface {
	CreateExperiment(experiment *domain.Experiment) error
	GetExperimentByID(id string) (*domain.Experiment, error)
	GetAllExperiments() ([]*domain.Experiment, error)
	DeleteExperiment(id string) error
}

// JobPublisher 由 queue.Publisher 实现
type JobPublisher interface {
	PublishExperiment(experimentID string) error
}

// ProgressReader 由 progress.Tracker 实现
type ProgressReader interface {
	Get(experimentID string) (*progress.Progress, error)
}

type Handler struct {
	validate          *validator.Validate
	config            *config.Config
	repository        ExperimentStore
	translator        ut.Translator
	publisher         JobPublisher
	progress          ProgressReader
	adminPasswordHash []byte

	Mux *chi.Mux
}

func NewHandler(cfg *config.Config, repo ExperimentStore, publisher JobPublisher, tracker ProgressReader) (*Handler, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	zh := zh.New()
	uni := ut.New(zh, zh)
	trans, _ := uni.GetTranslator("zh")
	if err := zh_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}

	// 管理员密码只在内存中保存哈希
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(cfg.Admin.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	return &Handler{
		validate:          validate,
		config:            cfg,
		repository:        repo,
		translator:        trans,
		publisher:         publisher,
		progress:          tracker,
		adminPasswordHash: passwordHash,

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
	})

	// 以下 API 必须要在登录后才允许调用
	h.Mux.Group(func(r chi.Router) {
		r.Use(h.auth)

		r.Get("/catalogs/preview", h.PreviewCatalog)

		r.Route("/experiments", func(r chi.Router) {
			r.Post("/", h.CreateExperiment)
			r.Get("/", h.GetAllExperiments)
			r.Post("/quick-run", h.QuickRun)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.experiment)
				r.Get("/", h.GetExperiment)
				r.Delete("/", h.DeleteExperiment)
				r.Get("/progress", h.GetExperimentProgress)
			})
		})
	})
}
