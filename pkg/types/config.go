package types

type Config struct {
	Environment     string `envconfig:"ENVIRONMENT" default:"development"`
	ServerPort      uint   `envconfig:"SERVER_PORT" default:"8080"`
	ReadTimeoutSec  uint   `envconfig:"READ_TIMEOUT_SEC" default:"10"`
	WriteTimeoutSec uint   `envconfig:"WRITE_TIMEOUT_SEC" default:"15"`
	LogLevel        string `envconfig:"LOG_LEVEL" default:"info"`

	// Persistent store
	// one of memory, bolt, sqlite, postgres, redis, s3
	StoreDriver   string `envconfig:"STORE_DRIVER" default:"bolt"`
	BoltPath      string `envconfig:"BOLT_PATH" default:"samaajseva.db"`
	SQLitePath    string `envconfig:"SQLITE_PATH" default:"samaajseva.sqlite"`
	DatabaseURL   string `envconfig:"DATABASE_URL"`
	RedisAddr     string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`
	RedisPrefix   string `envconfig:"REDIS_PREFIX" default:"samaajseva:"`
	S3Bucket      string `envconfig:"S3_BUCKET"`
	S3Region      string `envconfig:"S3_REGION" default:"us-east-1"`
	S3Endpoint    string `envconfig:"S3_ENDPOINT"`
	S3PathStyle   bool   `envconfig:"S3_PATH_STYLE" default:"false"`
	S3Prefix      string `envconfig:"S3_PREFIX" default:"samaajseva/"`

	// Urgency classifier
	// Leave ClassifierURL empty to create needs unscored
	ClassifierURL        string `envconfig:"CLASSIFIER_URL" default:"http://127.0.0.1:5000/predict"`
	ClassifierTimeoutSec uint   `envconfig:"CLASSIFIER_TIMEOUT_SEC" default:"10"`

	// Auth Configuration
	CookieName       string `envconfig:"SESSION_COOKIE_NAME" default:"session_id"`
	SessionMaxAgeSec int    `envconfig:"SESSION_MAX_AGE_SEC" default:"604800"` // 7 days

	// Cookie encryption keys (base64 encoded)
	// openssl rand -base64 32
	// to generate values
	CookieHashKey  string `envconfig:"COOKIE_HASH_KEY"`  // 32 or 64 bytes
	CookieBlockKey string `envconfig:"COOKIE_BLOCK_KEY"` // 16, 24, or 32 bytes
}
