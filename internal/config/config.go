package config

import (
	"errors"

	"github.com/caarlos0/env/v11"
	"github.com/sysu-ecnc-dev/knapsack-ga/backend/internal/domain"
	"github.com/sysu-ecnc-dev/knapsack-ga/backend/internal/knapsack"
)

// GA 为遗传算法以及实验编排的默认参数
type GA struct {
	ItemCount     int     `env:"ITEM_COUNT" envDefault:"16"`
	Capacity      int     `env:"CAPACITY" envDefault:"64"`
	MaxItemWeight int     `env:"MAX_ITEM_WEIGHT" envDefault:"32"`
	ValueBias     int     `env:"VALUE_BIAS" envDefault:"2"`
	PopSize       int     `env:"POP_SIZE" envDefault:"16"`
	TournSize     int     `env:"TOURN_SIZE" envDefault:"3"`
	MaxParents    int     `env:"MAX_PARENTS" envDefault:"4"`
	MutationCount int     `env:"MUTATION_COUNT" envDefault:"1"`
	ScoreScale    float64 `env:"SCORE_SCALE" envDefault:"2"`
	FitnessPolicy string  `env:"FITNESS_POLICY" envDefault:"soft"`
	ClampNegative bool    `env:"CLAMP_NEGATIVE" envDefault:"false"`
	Trials        int     `env:"TRIALS" envDefault:"10"`
	Generations   int     `env:"GENERATIONS" envDefault:"100"`
	Seed          int64   `env:"SEED" envDefault:"1"`
	Parallelism   int     `env:"PARALLELISM" envDefault:"4"`
}

type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	Server      struct {
		Port            string `env:"PORT" envDefault:"3000"`
		ReadTimeout     int    `env:"READ_TIMEOUT" envDefault:"10"`
		WriteTimeout    int    `env:"WRITE_TIMEOUT" envDefault:"60"`
		IdleTimeout     int    `env:"IDLE_TIMEOUT" envDefault:"60"`
		ShutdownTimeout int    `env:"SHUTDOWN_TIMEOUT" envDefault:"10"`
		// 同步运行接口允许的最大计算量（试验次数 × 迭代次数 × 种群大小）
		QuickRunBudget int `env:"QUICK_RUN_BUDGET" envDefault:"2000000"`
	} `envPrefix:"SERVER_"`
	Database struct {
		DSN                string `env:"DSN,required"`
		ConnectTimeout     int    `env:"CONNECT_TIMEOUT" envDefault:"10"`
		QueryTimeout       int    `env:"QUERY_TIMEOUT" envDefault:"10"`
		TransactionTimeout int    `env:"TRANSACTION_TIMEOUT" envDefault:"20"`
		MaxOpenConns       int    `env:"MAX_OPEN_CONNS" envDefault:"10"`
		MaxIdleConns       int    `env:"MAX_IDLE_CONNS" envDefault:"10"`
		MaxIdleTime        int    `env:"MAX_IDLE_TIME" envDefault:"60"`
	} `envPrefix:"DATABASE_"`
	Admin struct {
		Username string `env:"USERNAME" envDefault:"admin"`
		Password string `env:"PASSWORD,required"`
	} `envPrefix:"ADMIN_"`
	JWT struct {
		Expiration int    `env:"EXPIRATION" envDefault:"336"` // 单位为小时，14 天
		Secret     string `env:"SECRET,required"`
	} `envPrefix:"JWT_"`
	Email struct {
		SMTP struct {
			Username    string `env:"USERNAME"`
			Password    string `env:"PASSWORD"`
			Host        string `env:"HOST"`
			Port        int    `env:"PORT" envDefault:"465"`
			DialTimeout int    `env:"DIAL_TIMEOUT" envDefault:"10"`
		} `envPrefix:"SMTP_"`
		TemplateDir string `env:"TEMPLATE_DIR" envDefault:"./templates"`
	} `envPrefix:"EMAIL_"`
	RabbitMQ struct {
		DSN            string `env:"DSN,required"`
		PublishTimeout int    `env:"PUBLISH_TIMEOUT" envDefault:"10"`
	} `envPrefix:"RABBITMQ_"`
	Redis struct {
		Host               string `env:"HOST" envDefault:"localhost"`
		Port               int    `env:"PORT" envDefault:"6379"`
		Password           string `env:"PASSWORD"`
		OperationTimeout   int    `env:"OPERATION_TIMEOUT" envDefault:"5"`
		ProgressExpiration int    `env:"PROGRESS_EXPIRATION" envDefault:"86400"` // 单位为秒
	} `envPrefix:"REDIS_"`
	Worker struct {
		Prefetch   int `env:"PREFETCH" envDefault:"1"`
		RunTimeout int `env:"RUN_TIMEOUT" envDefault:"3600"` // 单位为秒
	} `envPrefix:"WORKER_"`
	GA GA `envPrefix:"GA_"`
}

func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, firstError(err)
	}

	return cfg, nil
}

// LoadGAConfig 只读取 GA_ 前缀的配置，命令行工具不需要数据库等基础设施
func LoadGAConfig() (*GA, error) {
	ga := &GA{}
	if err := env.ParseWithOptions(ga, env.Options{Prefix: "GA_"}); err != nil {
		return nil, firstError(err)
	}

	return ga, nil
}

// 只返回第一个错误使得日志更清晰
func firstError(err error) error {
	aggErr := env.AggregateError{}
	if ok := errors.As(err, &aggErr); ok && len(aggErr.Errors) > 0 {
		return aggErr.Errors[0]
	}
	return err
}

// Settings 将默认参数转换为实验设置
func (ga *GA) Settings() domain.ExperimentSettings {
	return domain.ExperimentSettings{
		Parameters: knapsack.Parameters{
			PopulationSize: ga.PopSize,
			TournamentSize: ga.TournSize,
			MaxParents:     ga.MaxParents,
			MutationCount:  ga.MutationCount,
			Capacity:       ga.Capacity,
			ScoreScale:     ga.ScoreScale,
			FitnessPolicy:  knapsack.PolicyKind(ga.FitnessPolicy),
			ClampNegative:  ga.ClampNegative,
		},
		ItemCount:     ga.ItemCount,
		MaxItemWeight: ga.MaxItemWeight,
		ValueBias:     ga.ValueBias,
		Trials:        ga.Trials,
		Generations:   ga.Generations,
		Seed:          ga.Seed,
		Parallelism:   ga.Parallelism,
	}
}
