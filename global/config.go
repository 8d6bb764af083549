package global

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds every tunable the gateway reads from the environment.
// Optional collaborators (redis mirror, NATS publisher) stay disabled when
// their address is empty.
type Config struct {
	Addr      string `envconfig:"ADDR" default:":3000"`
	GatewayID string `envconfig:"GATEWAY_ID"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`

	JWTSecret string `envconfig:"JWT_SECRET" required:"true"`

	MongoURI      string `envconfig:"MONGODB_URI" default:"mongodb://localhost:27017"`
	MongoDatabase string `envconfig:"MONGODB_DATABASE" default:"astrochat"`
	MongoUsername string `envconfig:"MONGODB_USERNAME"`
	MongoPassword string `envconfig:"MONGODB_PASSWORD"`

	RedisAddr     string `envconfig:"REDIS_ADDR"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	NatsURL string `envconfig:"NATS_URL"`

	SnowflakeNode int64 `envconfig:"SNOWFLAKE_NODE" default:"1"`

	SendQueueSize int           `envconfig:"SEND_QUEUE_SIZE" default:"256"`
	WriteTimeout  time.Duration `envconfig:"WRITE_TIMEOUT" default:"5s"`
	PresenceTTL   time.Duration `envconfig:"PRESENCE_TTL" default:"60s"`
}

// Load reads .env (if present) then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
