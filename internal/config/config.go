package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/thecommish/pickem/internal/platform/logging"
)

// Config stores runtime configuration for the service.
type Config struct {
	AppEnv                           string
	ServiceName                      string
	ServiceVersion                   string
	HTTPAddr                         string
	ReadTimeout                      time.Duration
	WriteTimeout                     time.Duration
	DBURL                            string
	DBDisablePreparedBinary          bool
	SlackCommandToken                string
	SlackWebhookURL                  string
	SlackTimeout                     time.Duration
	SlackMaxRetries                  int
	SlackCircuitEnabled              bool
	SlackCircuitFailureCount         int
	SlackCircuitOpenTimeout          time.Duration
	SlackCircuitHalfOpenMaxReq       int
	StattleshipBaseURL               string
	StattleshipToken                 string
	StattleshipTimeout               time.Duration
	StattleshipMaxRetries            int
	StattleshipCircuitEnabled        bool
	StattleshipCircuitFailureCount   int
	StattleshipCircuitOpenTimeout    time.Duration
	StattleshipCircuitHalfOpenMaxReq int
	SeasonYear                       int
	SeasonWeek1Start                 time.Time
	SeasonFinalWeek                  int
	InternalJobToken                 string
	DispatchMaxWorkers               int
	DispatchTaskTimeout              time.Duration
	UptraceEnabled                   bool
	UptraceDSN                       string
	UptraceLogsEnabled               bool
	PyroscopeEnabled                 bool
	PyroscopeServerAddress           string
	PyroscopeAppName                 string
	PyroscopeAuthToken               string
	PyroscopeBasicAuthUser           string
	PyroscopeBasicAuthPassword       string
	PyroscopeUploadRate              time.Duration
	PprofEnabled                     bool
	PprofAddr                        string
	LogLevel                         logging.Level
}

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	readTimeout, err := time.ParseDuration(getEnv("APP_READ_TIMEOUT", "10s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_READ_TIMEOUT: %w", err)
	}
	writeTimeout, err := time.ParseDuration(getEnv("APP_WRITE_TIMEOUT", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_WRITE_TIMEOUT: %w", err)
	}

	dbDisablePreparedBinary, err := strconv.ParseBool(getEnv("DB_DISABLE_PREPARED_BINARY_RESULT", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse DB_DISABLE_PREPARED_BINARY_RESULT: %w", err)
	}

	slackTimeout, err := time.ParseDuration(getEnv("SLACK_TIMEOUT", "10s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse SLACK_TIMEOUT: %w", err)
	}
	if slackTimeout <= 0 {
		return Config{}, fmt.Errorf("SLACK_TIMEOUT must be > 0")
	}
	slackMaxRetries, err := getEnvAsInt("SLACK_MAX_RETRIES", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse SLACK_MAX_RETRIES: %w", err)
	}
	if slackMaxRetries < 0 {
		return Config{}, fmt.Errorf("SLACK_MAX_RETRIES must be >= 0")
	}
	slackCircuitEnabled, err := strconv.ParseBool(getEnv("SLACK_CIRCUIT_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse SLACK_CIRCUIT_ENABLED: %w", err)
	}
	slackCircuitFailureCount, err := getEnvAsInt("SLACK_CIRCUIT_FAILURE_COUNT", 5)
	if err != nil {
		return Config{}, fmt.Errorf("parse SLACK_CIRCUIT_FAILURE_COUNT: %w", err)
	}
	if slackCircuitFailureCount < 1 {
		return Config{}, fmt.Errorf("SLACK_CIRCUIT_FAILURE_COUNT must be >= 1")
	}
	slackCircuitOpenTimeout, err := time.ParseDuration(getEnv("SLACK_CIRCUIT_OPEN_TIMEOUT", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse SLACK_CIRCUIT_OPEN_TIMEOUT: %w", err)
	}
	if slackCircuitOpenTimeout <= 0 {
		return Config{}, fmt.Errorf("SLACK_CIRCUIT_OPEN_TIMEOUT must be > 0")
	}
	slackCircuitHalfOpenMaxReq, err := getEnvAsInt("SLACK_CIRCUIT_HALF_OPEN_MAX_REQ", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse SLACK_CIRCUIT_HALF_OPEN_MAX_REQ: %w", err)
	}
	if slackCircuitHalfOpenMaxReq < 1 {
		return Config{}, fmt.Errorf("SLACK_CIRCUIT_HALF_OPEN_MAX_REQ must be >= 1")
	}

	stattleshipTimeout, err := time.ParseDuration(getEnv("STATTLESHIP_TIMEOUT", "20s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse STATTLESHIP_TIMEOUT: %w", err)
	}
	if stattleshipTimeout <= 0 {
		return Config{}, fmt.Errorf("STATTLESHIP_TIMEOUT must be > 0")
	}
	stattleshipMaxRetries, err := getEnvAsInt("STATTLESHIP_MAX_RETRIES", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse STATTLESHIP_MAX_RETRIES: %w", err)
	}
	if stattleshipMaxRetries < 0 {
		return Config{}, fmt.Errorf("STATTLESHIP_MAX_RETRIES must be >= 0")
	}
	stattleshipCircuitEnabled, err := strconv.ParseBool(getEnv("STATTLESHIP_CIRCUIT_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse STATTLESHIP_CIRCUIT_ENABLED: %w", err)
	}
	stattleshipCircuitFailureCount, err := getEnvAsInt("STATTLESHIP_CIRCUIT_FAILURE_COUNT", 5)
	if err != nil {
		return Config{}, fmt.Errorf("parse STATTLESHIP_CIRCUIT_FAILURE_COUNT: %w", err)
	}
	if stattleshipCircuitFailureCount < 1 {
		return Config{}, fmt.Errorf("STATTLESHIP_CIRCUIT_FAILURE_COUNT must be >= 1")
	}
	stattleshipCircuitOpenTimeout, err := time.ParseDuration(getEnv("STATTLESHIP_CIRCUIT_OPEN_TIMEOUT", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse STATTLESHIP_CIRCUIT_OPEN_TIMEOUT: %w", err)
	}
	if stattleshipCircuitOpenTimeout <= 0 {
		return Config{}, fmt.Errorf("STATTLESHIP_CIRCUIT_OPEN_TIMEOUT must be > 0")
	}
	stattleshipCircuitHalfOpenMaxReq, err := getEnvAsInt("STATTLESHIP_CIRCUIT_HALF_OPEN_MAX_REQ", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse STATTLESHIP_CIRCUIT_HALF_OPEN_MAX_REQ: %w", err)
	}
	if stattleshipCircuitHalfOpenMaxReq < 1 {
		return Config{}, fmt.Errorf("STATTLESHIP_CIRCUIT_HALF_OPEN_MAX_REQ must be >= 1")
	}

	seasonYear, err := getEnvAsInt("SEASON_YEAR", 2017)
	if err != nil {
		return Config{}, fmt.Errorf("parse SEASON_YEAR: %w", err)
	}
	if seasonYear < 1970 {
		return Config{}, fmt.Errorf("SEASON_YEAR must be a four-digit year")
	}
	seasonWeek1Start, err := time.Parse("2006-01-02", getEnv("SEASON_WEEK1_START", "2017-09-05"))
	if err != nil {
		return Config{}, fmt.Errorf("parse SEASON_WEEK1_START: %w", err)
	}
	seasonFinalWeek, err := getEnvAsInt("SEASON_FINAL_WEEK", 17)
	if err != nil {
		return Config{}, fmt.Errorf("parse SEASON_FINAL_WEEK: %w", err)
	}
	if seasonFinalWeek < 1 {
		return Config{}, fmt.Errorf("SEASON_FINAL_WEEK must be >= 1")
	}

	dispatchMaxWorkers, err := getEnvAsInt("DISPATCH_MAX_WORKERS", 8)
	if err != nil {
		return Config{}, fmt.Errorf("parse DISPATCH_MAX_WORKERS: %w", err)
	}
	if dispatchMaxWorkers < 1 {
		return Config{}, fmt.Errorf("DISPATCH_MAX_WORKERS must be >= 1")
	}
	dispatchTaskTimeout, err := time.ParseDuration(getEnv("DISPATCH_TASK_TIMEOUT", "30s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse DISPATCH_TASK_TIMEOUT: %w", err)
	}
	if dispatchTaskTimeout <= 0 {
		return Config{}, fmt.Errorf("DISPATCH_TASK_TIMEOUT must be > 0")
	}

	uptraceEnabled, err := strconv.ParseBool(getEnv("UPTRACE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_ENABLED: %w", err)
	}
	uptraceDSN := strings.TrimSpace(getEnv("UPTRACE_DSN", ""))
	if uptraceDSN == "" {
		uptraceDSN = parseUptraceDSNFromOTLPHeaders(getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""))
	}
	if uptraceEnabled && uptraceDSN == "" {
		return Config{}, fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}
	uptraceLogsEnabled, err := strconv.ParseBool(getEnv("UPTRACE_LOGS_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_LOGS_ENABLED: %w", err)
	}

	pyroscopeEnabled, err := strconv.ParseBool(getEnv("PYROSCOPE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_ENABLED: %w", err)
	}
	pyroscopeServerAddress := strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", ""))
	if pyroscopeEnabled && pyroscopeServerAddress == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_SERVER_ADDRESS is required when PYROSCOPE_ENABLED=true")
	}
	pyroscopeUploadRate, err := time.ParseDuration(getEnv("PYROSCOPE_UPLOAD_RATE", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_UPLOAD_RATE: %w", err)
	}
	if pyroscopeUploadRate <= 0 {
		return Config{}, fmt.Errorf("PYROSCOPE_UPLOAD_RATE must be > 0")
	}

	pprofEnabled, err := strconv.ParseBool(getEnv("PPROF_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PPROF_ENABLED: %w", err)
	}
	pprofAddr := strings.TrimSpace(getEnv("PPROF_ADDR", ":6060"))
	if pprofEnabled && pprofAddr == "" {
		return Config{}, fmt.Errorf("PPROF_ADDR is required when PPROF_ENABLED=true")
	}

	cfg := Config{
		AppEnv:                           appEnv,
		ServiceName:                      getEnv("APP_SERVICE_NAME", "pickem-api"),
		ServiceVersion:                   getEnv("APP_SERVICE_VERSION", "dev"),
		HTTPAddr:                         getEnv("APP_HTTP_ADDR", ":8080"),
		ReadTimeout:                      readTimeout,
		WriteTimeout:                     writeTimeout,
		DBURL:                            strings.TrimSpace(getEnv("DB_URL", "")),
		DBDisablePreparedBinary:          dbDisablePreparedBinary,
		SlackCommandToken:                strings.TrimSpace(getEnv("SLACK_COMMAND_TOKEN", "")),
		SlackWebhookURL:                  strings.TrimSpace(getEnv("SLACK_WEBHOOK_URL", "")),
		SlackTimeout:                     slackTimeout,
		SlackMaxRetries:                  slackMaxRetries,
		SlackCircuitEnabled:              slackCircuitEnabled,
		SlackCircuitFailureCount:         slackCircuitFailureCount,
		SlackCircuitOpenTimeout:          slackCircuitOpenTimeout,
		SlackCircuitHalfOpenMaxReq:       slackCircuitHalfOpenMaxReq,
		StattleshipBaseURL:               strings.TrimSpace(getEnv("STATTLESHIP_BASE_URL", "https://api.stattleship.com/football/nfl")),
		StattleshipToken:                 strings.TrimSpace(getEnv("STATTLESHIP_TOKEN", "")),
		StattleshipTimeout:               stattleshipTimeout,
		StattleshipMaxRetries:            stattleshipMaxRetries,
		StattleshipCircuitEnabled:        stattleshipCircuitEnabled,
		StattleshipCircuitFailureCount:   stattleshipCircuitFailureCount,
		StattleshipCircuitOpenTimeout:    stattleshipCircuitOpenTimeout,
		StattleshipCircuitHalfOpenMaxReq: stattleshipCircuitHalfOpenMaxReq,
		SeasonYear:                       seasonYear,
		SeasonWeek1Start:                 seasonWeek1Start.UTC(),
		SeasonFinalWeek:                  seasonFinalWeek,
		InternalJobToken:                 strings.TrimSpace(getEnv("INTERNAL_JOB_TOKEN", "")),
		DispatchMaxWorkers:               dispatchMaxWorkers,
		DispatchTaskTimeout:              dispatchTaskTimeout,
		UptraceEnabled:                   uptraceEnabled,
		UptraceDSN:                       uptraceDSN,
		UptraceLogsEnabled:               uptraceLogsEnabled,
		PyroscopeEnabled:                 pyroscopeEnabled,
		PyroscopeServerAddress:           pyroscopeServerAddress,
		PyroscopeAuthToken:               strings.TrimSpace(getEnv("PYROSCOPE_AUTH_TOKEN", "")),
		PyroscopeBasicAuthUser:           strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_USER", "")),
		PyroscopeBasicAuthPassword:       strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_PASSWORD", "")),
		PyroscopeUploadRate:              pyroscopeUploadRate,
		PprofEnabled:                     pprofEnabled,
		PprofAddr:                        pprofAddr,
		LogLevel:                         parseLogLevel(getEnv("APP_LOG_LEVEL", "info")),
	}
	cfg.PyroscopeAppName = strings.TrimSpace(getEnv("PYROSCOPE_APP_NAME", cfg.ServiceName))
	if cfg.PyroscopeEnabled && cfg.PyroscopeAppName == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_APP_NAME cannot be empty when PYROSCOPE_ENABLED=true")
	}
	if cfg.AppEnv == EnvProd && cfg.SlackCommandToken == "" {
		return Config{}, fmt.Errorf("SLACK_COMMAND_TOKEN is required when APP_ENV=prod")
	}
	if cfg.AppEnv == EnvProd && cfg.InternalJobToken == "" {
		return Config{}, fmt.Errorf("INTERNAL_JOB_TOKEN is required when APP_ENV=prod")
	}

	return cfg, nil
}

func parseLogLevel(v string) logging.Level {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "debug":
		return logging.LevelDebug
	case "warn", "warning":
		return logging.LevelWarn
	case "error":
		return logging.LevelError
	default:
		return logging.LevelInfo
	}
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}

	return out, nil
}

func parseUptraceDSNFromOTLPHeaders(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	items := strings.Split(raw, ",")
	for _, item := range items {
		parts := strings.SplitN(strings.TrimSpace(item), "=", 2)
		if len(parts) != 2 {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(parts[0]), "uptrace-dsn") {
			value := strings.TrimSpace(parts[1])
			return strings.Trim(value, "\"'")
		}
	}

	return ""
}

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}
