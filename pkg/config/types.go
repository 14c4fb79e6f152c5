package config

import "time"

const (
	RuntimeLocal  = "local"
	RuntimeLambda = "lambda"

	EnvDevelopment = "development"
)

// AppConfig é a raiz da configuração do serviço. Os campos são preenchidos
// pelos arquivos YAML e depois pelas variáveis de ambiente (tags env).
type AppConfig struct {
	Name            string        `yaml:"nombre" env:"APP_NAME" envDefault:"fast-crud-service" validate:"required"`
	Env             string        `yaml:"env" env:"APP_ENV" envDefault:"production" validate:"required"`
	Runtime         string        `yaml:"runtime" env:"RUNTIME" envDefault:"local" validate:"oneof=local lambda"`
	Port            int           `yaml:"port" env:"PORT" envDefault:"3000" validate:"required_if=Runtime local,gte=0,lte=65535"`
	StaticDir       string        `yaml:"static_dir" env:"STATIC_DIR" envDefault:"public"`
	IDPolicy        string        `yaml:"id_policy" env:"ID_POLICY" envDefault:"max" validate:"oneof=max length"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT" envDefault:"10s" validate:"gt=0"`
	DB              DBConf        `yaml:"configDB"`
	Logging         LoggingConf   `yaml:"logging"`
	Metrics         MetricsConf   `yaml:"metrics"`
	RateLimit       RateLimitConf `yaml:"rate_limit"`
}

// DBConf só é informativo: o serviço mantém os dados em memória.
type DBConf struct {
	Host string `yaml:"host" env:"DB_HOST"`
}

type LoggingConf struct {
	Enabled bool   `yaml:"enabled" env:"LOG_ENABLED" envDefault:"true"`
	Level   string `yaml:"level" env:"LOG_LEVEL" envDefault:"info" validate:"oneof=debug info warn error"`
	Format  string `yaml:"format" env:"LOG_FORMAT" envDefault:"json" validate:"oneof=json console"`
}

type MetricsConf struct {
	Datadog DatadogConf `yaml:"datadog"`
}

type DatadogConf struct {
	Enabled   bool   `yaml:"enabled" env:"DD_ENABLED"`
	Addr      string `yaml:"addr" env:"DD_AGENT_HOST" validate:"required_if=Enabled true"`
	Namespace string `yaml:"namespace" env:"DD_NAMESPACE" envDefault:"crud."`
}

// RateLimitConf configura o token bucket por cliente. RPS zero desabilita.
type RateLimitConf struct {
	RPS       float64 `yaml:"rps" env:"RATE_LIMIT_RPS" validate:"gte=0"`
	Burst     int     `yaml:"burst" env:"RATE_LIMIT_BURST" envDefault:"10" validate:"gte=1"`
	KeyHeader string  `yaml:"key_header" env:"RATE_LIMIT_KEY_HEADER" envDefault:"X-API-Key"`
	TrustXFF  bool    `yaml:"trust_xff" env:"RATE_LIMIT_TRUST_XFF"`
	// RedisAddr compartilha os contadores entre instâncias. Vazio usa memória.
	RedisAddr     string `yaml:"redis_addr" env:"RATE_LIMIT_REDIS_ADDR" validate:"omitempty,hostname_port"`
	RedisPassword string `yaml:"redis_password" env:"RATE_LIMIT_REDIS_PASSWORD"`
	RedisPrefix   string `yaml:"redis_prefix" env:"RATE_LIMIT_REDIS_PREFIX" envDefault:"crud:ratelimit"`
}

func (c *AppConfig) IsDevelopment() bool {
	return c.Env == EnvDevelopment
}

func (r RateLimitConf) Enabled() bool {
	return r.RPS > 0
}
