package cfg

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/DRSN-tech/storefront-assistant/pkg/e"
	"github.com/DRSN-tech/storefront-assistant/pkg/logger"
	"github.com/jimlawless/whereami"
)

type Config struct {
	Http     *HTTPConfig
	Grpc     *GRPCConfig
	StoreAPI *StoreAPICfg
	Db       *PGDBCfg
	Redis    *RedisCfg
	Kafka    *KafkaCfg
	Minio    *MinIOCfg
	Tracing  *TracingCfg
}

type HTTPConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type GRPCConfig struct {
	Port        string
	NetworkMode string
}

// StoreAPICfg описывает внешнее REST API магазина.
type StoreAPICfg struct {
	BaseURL string
	Timeout time.Duration // 0: без таймаута клиента
}

type PGDBCfg struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string

	MaxConns       int32
	MigrationsPath string
}

type RedisCfg struct {
	Addr        string
	Password    string
	User        string
	DB          int
	MaxRetries  int
	DialTimeout time.Duration
	Timeout     time.Duration
	ProductTTL  time.Duration
}

// KafkaCfg — события изменения товаров. Пустой Brokers отключает публикацию.
type KafkaCfg struct {
	Topic        string
	Brokers      []string
	WriteTimeout time.Duration
}

// MinIOCfg — хранилище изображений товаров. Пустой Endpoint отключает подпись ссылок.
type MinIOCfg struct {
	Endpoint   string
	BucketName string
	AccessKey  string
	SecretKey  string
	UseSSL     bool
	Region     string
	URLExpiry  time.Duration
}

type TracingCfg struct {
	Enabled     bool
	ServiceName string
}

// Load безопасно загружает конфигурацию и возвращает ошибку в случае неудачи.
func Load(log logger.Logger) (*Config, error) {
	http, err := loadHTTPConfig(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	storeAPI, err := loadStoreAPICfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	db, err := loadPGDBCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	redis, err := loadRedisCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	kafka, err := loadKafkaCfg()
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	minio, err := loadMinIOCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	tracing, err := loadTracingCfg()
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return &Config{
		Http:     http,
		Grpc:     loadGRPCConfig(),
		StoreAPI: storeAPI,
		Db:       db,
		Redis:    redis,
		Kafka:    kafka,
		Minio:    minio,
		Tracing:  tracing,
	}, nil
}

func loadHTTPConfig(log logger.Logger) (*HTTPConfig, error) {
	const (
		defaultPort         = "8080"
		defaultReadTimeout  = 5 * time.Second
		defaultWriteTimeout = 30 * time.Second
		defaultIdleTimeout  = 60 * time.Second
	)

	readTimeout, err := parseDurationEnv("HTTP_READ_TIMEOUT", defaultReadTimeout)
	if err != nil {
		log.Errorf(err, "invalid HTTP_READ_TIMEOUT")
		return nil, err
	}

	writeTimeout, err := parseDurationEnv("HTTP_WRITE_TIMEOUT", defaultWriteTimeout)
	if err != nil {
		log.Errorf(err, "invalid HTTP_WRITE_TIMEOUT")
		return nil, err
	}

	idleTimeout, err := parseDurationEnv("KEEP_ALIVE", defaultIdleTimeout)
	if err != nil {
		log.Errorf(err, "invalid KEEP_ALIVE")
		return nil, err
	}

	return &HTTPConfig{
		Port:         getEnvOrDefault("HTTP_PORT", defaultPort),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}, nil
}

func loadGRPCConfig() *GRPCConfig {
	const (
		defaultPort        = "8091"
		defaultNetworkMode = "tcp"
	)

	return &GRPCConfig{
		Port:        getEnvOrDefault("GRPC_PORT", defaultPort),
		NetworkMode: getEnvOrDefault("GRPC_NETWORK_MODE", defaultNetworkMode),
	}
}

func loadStoreAPICfg(log logger.Logger) (*StoreAPICfg, error) {
	baseURL := strings.TrimRight(getEnv("STORE_API_URL"), "/")
	if baseURL == "" {
		err := fmt.Errorf("STORE_API_URL is required")
		log.Errorf(err, "missing STORE_API_URL")
		return nil, err
	}

	timeout, err := parseDurationEnv("STORE_API_TIMEOUT", 0)
	if err != nil {
		log.Errorf(err, "invalid STORE_API_TIMEOUT")
		return nil, err
	}

	return &StoreAPICfg{
		BaseURL: baseURL,
		Timeout: timeout,
	}, nil
}

func loadPGDBCfg(log logger.Logger) (*PGDBCfg, error) {
	const (
		defaultHost    = "localhost"
		defaultPort    = "5432"
		defaultSSLMode    = "disable"
		defaultMaxConns   = 10
		defaultMigrations = "db/migrations"
	)

	user := getEnv("POSTGRES_USER")
	if user == "" {
		err := fmt.Errorf("POSTGRES_USER is required")
		log.Errorf(err, "missing POSTGRES_USER")
		return nil, err
	}

	password := getEnv("POSTGRES_PASSWORD")
	if password == "" {
		err := fmt.Errorf("POSTGRES_PASSWORD is required")
		log.Errorf(err, "missing POSTGRES_PASSWORD")
		return nil, err
	}

	dbName := getEnv("POSTGRES_DB")
	if dbName == "" {
		err := fmt.Errorf("POSTGRES_DB is required")
		log.Errorf(err, "missing POSTGRES_DB")
		return nil, err
	}

	maxConns, err := parseIntEnv("POSTGRES_MAX_CONNS", defaultMaxConns)
	if err != nil {
		log.Errorf(err, "invalid POSTGRES_MAX_CONNS")
		return nil, err
	}
	if maxConns <= 0 {
		err := fmt.Errorf("POSTGRES_MAX_CONNS must be positive, got %d", maxConns)
		log.Errorf(err, "invalid POSTGRES_MAX_CONNS")
		return nil, err
	}

	return &PGDBCfg{
		Host:           getEnvOrDefault("POSTGRES_HOST", defaultHost),
		Port:           getEnvOrDefault("POSTGRES_PORT", defaultPort),
		User:           user,
		Password:       password,
		DBName:         dbName,
		SSLMode:        getEnvOrDefault("SSL_MODE", defaultSSLMode),
		MaxConns:       int32(maxConns),
		MigrationsPath: getEnvOrDefault("MIGRATIONS_PATH", defaultMigrations),
	}, nil
}

func loadRedisCfg(log logger.Logger) (*RedisCfg, error) {
	const (
		defaultAddr         = "localhost:6379"
		defaultDB           = 0
		defaultMaxRetries   = 3
		defaultDialTimeout  = 5 * time.Second
		defaultReadTimeout  = 3 * time.Second
		defaultWriteTimeout = 3 * time.Second
		defaultProductTTL   = 3 * time.Minute
	)

	db, err := parseIntEnv("REDIS_DB_ID", defaultDB)
	if err != nil {
		log.Errorf(err, "invalid REDIS_DB_ID")
		return nil, err
	}

	maxRetries, err := parseIntEnv("MAX_RETRIES", defaultMaxRetries)
	if err != nil {
		log.Errorf(err, "invalid MAX_RETRIES")
		return nil, err
	}

	dialTimeout, err := parseDurationEnv("DIAL_TIMEOUT", defaultDialTimeout)
	if err != nil {
		log.Errorf(err, "invalid DIAL_TIMEOUT")
		return nil, err
	}

	readTimeout, err := parseDurationEnv("READ_TIMEOUT", defaultReadTimeout)
	if err != nil {
		log.Errorf(err, "invalid READ_TIMEOUT")
		return nil, err
	}

	writeTimeout, err := parseDurationEnv("WRITE_TIMEOUT", defaultWriteTimeout)
	if err != nil {
		log.Errorf(err, "invalid WRITE_TIMEOUT")
		return nil, err
	}

	productTTL, err := parseDurationEnv("PRODUCT_TTL", defaultProductTTL)
	if err != nil {
		log.Errorf(err, "invalid PRODUCT_TTL")
		return nil, err
	}

	return &RedisCfg{
		Addr:        getEnvOrDefault("REDIS_ADDR", defaultAddr),
		Password:    getEnv("REDIS_PASSWORD"),
		User:        getEnv("REDIS_USER"),
		DB:          db,
		MaxRetries:  maxRetries,
		DialTimeout: dialTimeout,
		Timeout:     max(readTimeout, writeTimeout),
		ProductTTL:  productTTL,
	}, nil
}

func loadKafkaCfg() (*KafkaCfg, error) {
	const (
		defaultTopic        = "product-changes"
		defaultWriteTimeout = 10 * time.Second
	)

	var brokers []string
	if brokerStr := getEnv("KAFKA_BROKERS"); brokerStr != "" {
		brokers = strings.Split(brokerStr, ",")
	}

	writeTimeout, err := parseDurationEnv("KAFKA_WRITE_TIMEOUT", defaultWriteTimeout)
	if err != nil {
		return nil, e.Wrap("KAFKA_WRITE_TIMEOUT", err)
	}

	return &KafkaCfg{
		Brokers:      brokers,
		Topic:        getEnvOrDefault("KAFKA_TOPIC", defaultTopic),
		WriteTimeout: writeTimeout,
	}, nil
}

func loadMinIOCfg(log logger.Logger) (*MinIOCfg, error) {
	const (
		defaultUseSSL    = false
		defaultRegion    = "us-east-1"
		defaultURLExpiry = 15 * time.Minute
	)

	useSSL, err := strconv.ParseBool(getEnvOrDefault("MINIO_USE_SSL", strconv.FormatBool(defaultUseSSL)))
	if err != nil {
		log.Errorf(err, "invalid MINIO_USE_SSL")
		return nil, err
	}

	expiry, err := parseDurationEnv("MINIO_URL_EXPIRY", defaultURLExpiry)
	if err != nil {
		log.Errorf(err, "invalid MINIO_URL_EXPIRY")
		return nil, err
	}

	return &MinIOCfg{
		Endpoint:   getEnv("MINIO_ENDPOINT"),
		BucketName: getEnvOrDefault("BUCKET_NAME", "products"),
		AccessKey:  getEnv("MINIO_ROOT_USER"),
		SecretKey:  getEnv("MINIO_ROOT_PASSWORD"),
		UseSSL:     useSSL,
		Region:     getEnvOrDefault("MINIO_REGION", defaultRegion),
		URLExpiry:  expiry,
	}, nil
}

func loadTracingCfg() (*TracingCfg, error) {
	enabled, err := strconv.ParseBool(getEnvOrDefault("TRACING_ENABLED", "false"))
	if err != nil {
		return nil, e.Wrap("TRACING_ENABLED", err)
	}

	return &TracingCfg{
		Enabled:     enabled,
		ServiceName: getEnvOrDefault("SERVICE_NAME", "storefront-assistant"),
	}, nil
}

// getEnv возвращает значение переменной окружения.
// Возвращает пустую строку, если переменная не задана.
func getEnv(key string) string {
	return os.Getenv(key)
}

// getEnvOrDefault возвращает значение переменной окружения или значение по умолчанию.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}

	return defaultValue
}

// parseDurationEnv считывает длительность или возвращает значение по умолчанию.
func parseDurationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	if v := os.Getenv(key); v != "" {
		return time.ParseDuration(v)
	}

	return defaultValue, nil
}

func parseIntEnv(key string, defaultValue int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue, nil
	}

	intValue, err := strconv.Atoi(v)
	if err != nil {
		return defaultValue, e.Wrap(key, err)
	}

	return intValue, nil
}
