package config

import (
	"time"

	"group-mail/internal/app/database"
	"group-mail/internal/app/delivery"
	"group-mail/internal/app/gate"
	"group-mail/internal/app/keys"
	"group-mail/internal/app/mailer"
	"group-mail/internal/app/signal"
	"group-mail/internal/app/verifier"
	"group-mail/pkg/appbuilder"
	"group-mail/pkg/logger"
	"group-mail/pkg/rabbitmq"
	"group-mail/pkg/utilities"
)

type GateConfigJson struct {
	LoggerConf   logger.LoggerConfigJson    `json:"logger"`
	RabbitmqConf rabbitmq.RabbimqConfigJson `json:"rabbitmq"`
	RestConf     RestConfigJson             `json:"rest"`
	DatabaseConf DatabaseConfigJson         `json:"database"`
	KeysConf     KeysConfigJson             `json:"keys"`
	SignalConf   SignalConfigJson           `json:"signal"`
	VerifierConf VerifierConfigJson         `json:"verifier"`
	MailConf     MailConfigJson             `json:"mail"`
	DeliveryConf DeliveryConfigJson         `json:"delivery"`
}

// ConvertToDomain applies defaults and GATE_* environment overrides.
func (gcj GateConfigJson) ConvertToDomain() GateConfig {
	rabbitmqConf := gcj.RabbitmqConf.ConvertToDomain()
	rabbitmqConf.Host = utilities.EnvOr("GATE_RABBITMQ_HOST", rabbitmqConf.Host)
	rabbitmqConf.User = utilities.EnvOr("GATE_RABBITMQ_USER", rabbitmqConf.User)
	rabbitmqConf.Password = utilities.EnvOr("GATE_RABBITMQ_PASSWORD", rabbitmqConf.Password)

	return GateConfig{
		LoggerConf:   gcj.LoggerConf.ConvertToDomain(),
		RabbitmqConf: rabbitmqConf,
		RestConf:     gcj.RestConf.ConvertToDomain(),
		DatabaseConf: gcj.DatabaseConf.ConvertToDomain(),
		KeysConf:     gcj.KeysConf.ConvertToDomain(),
		SignalConf:   gcj.SignalConf.ConvertToDomain(),
		VerifierConf: gcj.VerifierConf.ConvertToDomain(),
		MailConf:     gcj.MailConf.ConvertToDomain(),
		DeliveryConf: gcj.DeliveryConf.ConvertToDomain(),
	}
}

type GateConfig struct {
	LoggerConf   logger.LoggerConfig
	RabbitmqConf rabbitmq.RabbitmqConfig
	RestConf     appbuilder.RestConfig
	DatabaseConf database.Config
	KeysConf     keys.Config
	SignalConf   SignalConfig
	VerifierConf verifier.Config
	MailConf     MailConfig
	DeliveryConf delivery.Config
}

func (gc GateConfig) GetLoggerConfig() logger.LoggerConfig {
	return gc.LoggerConf
}

func (gc GateConfig) GetRabbitmqConfig() rabbitmq.RabbitmqConfig {
	return gc.RabbitmqConf
}

func (gc GateConfig) GetRestConfig() appbuilder.RestConfig {
	return gc.RestConf
}

func (gc GateConfig) GetDatabaseConfig() database.Config {
	return gc.DatabaseConf
}

// GateSettings assembles the gate settings spread over the mail section.
func (gc GateConfig) GateSettings() gate.Config {
	return gate.Config{
		DefaultRecipient: gc.MailConf.DefaultRecipient,
		MaxSubjectLength: gc.MailConf.MaxSubjectLength,
		MaxBodyLength:    gc.MailConf.MaxBodyLength,
		MaxMembers:       gc.SignalConf.Capacity,
	}
}

// DeliveryConfig folds the footer switch of the mail section into delivery.
func (gc GateConfig) DeliveryConfig() delivery.Config {
	cfg := gc.DeliveryConf
	cfg.GroupFooter = gc.MailConf.GroupFooter
	return cfg
}

// DefaultMaxBodyBytes leaves room for a full-size message plus its proof.
const DefaultMaxBodyBytes = 2 << 20

type RestConfigJson struct {
	Port          uint16 `json:"port"`
	AllowedOrigin string `json:"allowed_origin"`
	ReleaseMode   bool   `json:"release_mode"`
	MaxBodyBytes  int64  `json:"max_body_bytes"`
}

func (rcj RestConfigJson) ConvertToDomain() appbuilder.RestConfig {
	port := uint16(utilities.EnvIntOr("GATE_REST_PORT", int(rcj.Port)))
	return appbuilder.RestConfig{
		Port:          utilities.Ternary(port == 0, uint16(3000), port),
		AllowedOrigin: utilities.Ternary(rcj.AllowedOrigin == "", "*", rcj.AllowedOrigin),
		ReleaseMode:   rcj.ReleaseMode,
		MaxBodyBytes:  utilities.Ternary(rcj.MaxBodyBytes > 0, rcj.MaxBodyBytes, int64(DefaultMaxBodyBytes)),
	}
}

type DatabaseConfigJson struct {
	Driver           string `json:"driver"`
	ConnectionString string `json:"connection_string"`
	MaxOpenConns     int    `json:"max_open_conns"`
	Migrate          bool   `json:"migrate"`
}

func (dcj DatabaseConfigJson) ConvertToDomain() database.Config {
	driver := utilities.EnvOr("GATE_DATABASE_DRIVER", dcj.Driver)
	return database.Config{
		Driver:           database.Driver(utilities.Ternary(driver == "", string(database.DriverSqlite), driver)),
		ConnectionString: utilities.EnvOr("GATE_DATABASE_DSN", utilities.Ternary(dcj.ConnectionString == "", "group-mail.db", dcj.ConnectionString)),
		MaxOpenConns:     dcj.MaxOpenConns,
		Migrate:          dcj.Migrate,
	}
}

type KeysConfigJson struct {
	BaseURL           string  `json:"base_url"`
	Timeout           string  `json:"timeout"`
	MaxAttempts       int     `json:"max_attempts"`
	InitialBackoff    string  `json:"initial_backoff"`
	RequestsPerSecond float64 `json:"requests_per_second"`
	Burst             int     `json:"burst"`
	MaxBodyBytes      int64   `json:"max_body_bytes"`
}

func (kcj KeysConfigJson) ConvertToDomain() keys.Config {
	defaults := keys.DefaultConfig()
	return keys.Config{
		BaseURL:           utilities.EnvOr("GATE_KEYS_BASE_URL", utilities.Ternary(kcj.BaseURL == "", defaults.BaseURL, kcj.BaseURL)),
		Timeout:           utilities.ParseDurationOr(kcj.Timeout, defaults.Timeout),
		MaxAttempts:       utilities.PositiveOr(kcj.MaxAttempts, defaults.MaxAttempts),
		InitialBackoff:    utilities.ParseDurationOr(kcj.InitialBackoff, defaults.InitialBackoff),
		RequestsPerSecond: utilities.Ternary(kcj.RequestsPerSecond > 0, kcj.RequestsPerSecond, defaults.RequestsPerSecond),
		Burst:             utilities.PositiveOr(kcj.Burst, defaults.Burst),
		MaxBodyBytes:      utilities.Ternary(kcj.MaxBodyBytes > 0, kcj.MaxBodyBytes, defaults.MaxBodyBytes),
	}
}

type SignalConfigJson struct {
	Capacity         int `json:"capacity"`
	FetchConcurrency int `json:"fetch_concurrency"`
}

type SignalConfig struct {
	Capacity         int
	FetchConcurrency int
}

func (scj SignalConfigJson) ConvertToDomain() SignalConfig {
	return SignalConfig{
		Capacity:         utilities.PositiveOr(scj.Capacity, signal.DefaultCapacity),
		FetchConcurrency: utilities.PositiveOr(scj.FetchConcurrency, 8),
	}
}

type VerifierConfigJson struct {
	Strategy string `json:"strategy"`
	KeyPath  string `json:"key_path"`
	Workers  int    `json:"workers"`
}

func (vcj VerifierConfigJson) ConvertToDomain() verifier.Config {
	return verifier.Config{
		Strategy:     verifier.Strategy(utilities.Ternary(vcj.Strategy == "", string(verifier.StrategyGroth16), vcj.Strategy)),
		KeyPath:      utilities.EnvOr("GATE_VK_PATH", vcj.KeyPath),
		Workers:      utilities.PositiveOr(vcj.Workers, 4),
		MessageLimbs: signal.HashLimbCount,
	}
}

type SMTPConfigJson struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Username string `json:"username"`
	Password string `json:"password"`
	From     string `json:"from"`
	TLS      string `json:"tls"`
	Timeout  string `json:"timeout"`
}

func (scj SMTPConfigJson) ConvertToDomain() mailer.Config {
	return mailer.Config{
		Host:     utilities.EnvOr("GATE_SMTP_HOST", scj.Host),
		Port:     utilities.EnvIntOr("GATE_SMTP_PORT", utilities.PositiveOr(scj.Port, 587)),
		Username: utilities.EnvOr("GATE_SMTP_USERNAME", scj.Username),
		Password: utilities.EnvOr("GATE_SMTP_PASSWORD", scj.Password),
		From:     utilities.EnvOr("GATE_SMTP_FROM", scj.From),
		TLS:      mailer.TLSMode(utilities.Ternary(scj.TLS == "", string(mailer.TLSMandatory), scj.TLS)),
		Timeout:  utilities.ParseDurationOr(scj.Timeout, 30*time.Second),
	}
}

type MailConfigJson struct {
	DefaultRecipient string         `json:"default_recipient"`
	GroupFooter      *bool          `json:"group_footer"`
	MaxSubjectLength int            `json:"max_subject_length"`
	MaxBodyLength    int            `json:"max_body_length"`
	SMTP             SMTPConfigJson `json:"smtp"`
}

type MailConfig struct {
	DefaultRecipient string
	GroupFooter      bool
	MaxSubjectLength int
	MaxBodyLength    int
	SMTP             mailer.Config
}

func (mcj MailConfigJson) ConvertToDomain() MailConfig {
	defaults := gate.DefaultConfig()
	return MailConfig{
		DefaultRecipient: utilities.EnvOr("GATE_DEFAULT_RECIPIENT", mcj.DefaultRecipient),
		GroupFooter:      mcj.GroupFooter == nil || *mcj.GroupFooter,
		MaxSubjectLength: utilities.PositiveOr(mcj.MaxSubjectLength, defaults.MaxSubjectLength),
		MaxBodyLength:    utilities.PositiveOr(mcj.MaxBodyLength, defaults.MaxBodyLength),
		SMTP:             mcj.SMTP.ConvertToDomain(),
	}
}

// SMTPEnabled is false when no host is configured; mail is then only logged.
func (mc MailConfig) SMTPEnabled() bool {
	return mc.SMTP.Host != ""
}

type DeliveryConfigJson struct {
	MaxAttempts int    `json:"max_attempts"`
	Schedule    string `json:"schedule"`
	BatchSize   int    `json:"batch_size"`
	SendTimeout string `json:"send_timeout"`
}

func (dcj DeliveryConfigJson) ConvertToDomain() delivery.Config {
	defaults := delivery.DefaultConfig()
	return delivery.Config{
		MaxAttempts: utilities.PositiveOr(dcj.MaxAttempts, defaults.MaxAttempts),
		Schedule:    utilities.Ternary(dcj.Schedule == "", defaults.Schedule, dcj.Schedule),
		BatchSize:   utilities.PositiveOr(dcj.BatchSize, defaults.BatchSize),
		SendTimeout: utilities.ParseDurationOr(dcj.SendTimeout, defaults.SendTimeout),
		GroupFooter: defaults.GroupFooter,
	}
}
