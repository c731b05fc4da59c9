package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Configはアプリ全体の設定
type Config struct {
	Port     string // サーバーポート（8080）
	GoEnv    string // dev/prod
	LogLevel string // debug/info/warn/error

	DatabaseURL      string // 空ならPOSTGRES_*から組み立てる
	PostgresUser     string // DBユーザー
	PostgresPassword string // DBパスワード
	PostgresDB       string // DB名
	PostgresHost     string // DBホスト（空ならDBを使わない）
	PostgresPort     int    // DBポート（5432）
	PostgresSSLMode  string // disable/require

	JWTSecret string // 空ならJWTによるセッションは使わない

	PaymentDelay     time.Duration   // 決済シミュレーションの待ち時間
	PaymentMethods   []string        // 受け付ける決済手段
	PaymentMaxAmount decimal.Decimal // これを超えると決済拒否（0で上限なし）

	CartIdleTTL       time.Duration // 触られていないカートを捨てるまでの時間
	CartSweepInterval time.Duration
	ShutdownTimeout   time.Duration
	SeedDemoProducts  bool // 起動時にデモ商品を入れる
}

// Loadは.env（あれば）と環境変数から読む
func Load() (Config, error) {
	//.envは無くてもよい
	_ = godotenv.Load()

	return FromEnv()
}

// FromEnv は環境変数だけから読む（テスト用）。
func FromEnv() (Config, error) {
	pgPort, err := atoiDefault("POSTGRES_PORT", 5432)
	if err != nil {
		return Config{}, err
	}
	paymentDelay, err := durationDefault("PAYMENT_DELAY", 1500*time.Millisecond)
	if err != nil {
		return Config{}, err
	}
	maxAmount, err := decimalDefault("PAYMENT_MAX_AMOUNT", decimal.NewFromInt(10000))
	if err != nil {
		return Config{}, err
	}
	idleTTL, err := durationDefault("CART_IDLE_TTL", 24*time.Hour)
	if err != nil {
		return Config{}, err
	}
	sweep, err := durationDefault("CART_SWEEP_INTERVAL", 10*time.Minute)
	if err != nil {
		return Config{}, err
	}
	shutdown, err := durationDefault("SHUTDOWN_TIMEOUT", 10*time.Second)
	if err != nil {
		return Config{}, err
	}
	seed, err := boolDefault("SEED_DEMO_PRODUCTS", true)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Port:     getenv("PORT", "8080"),
		GoEnv:    getenv("GO_ENV", "dev"),
		LogLevel: getenv("LOG_LEVEL", "info"),

		DatabaseURL:      os.Getenv("DATABASE_URL"),
		PostgresUser:     getenv("POSTGRES_USER", "postgres"),
		PostgresPassword: os.Getenv("POSTGRES_PASSWORD"),
		PostgresDB:       getenv("POSTGRES_DB", "app"),
		PostgresHost:     os.Getenv("POSTGRES_HOST"),
		PostgresPort:     pgPort,
		PostgresSSLMode:  getenv("POSTGRES_SSLMODE", "disable"),

		JWTSecret: os.Getenv("JWT_SECRET"),

		PaymentDelay:     paymentDelay,
		PaymentMethods:   splitList(getenv("PAYMENT_METHODS", "credit,paypal")),
		PaymentMaxAmount: maxAmount,

		CartIdleTTL:       idleTTL,
		CartSweepInterval: sweep,
		ShutdownTimeout:   shutdown,
		SeedDemoProducts:  seed,
	}

	//必須チェック
	if cfg.Port == "" {
		return Config{}, fmt.Errorf("PORT is required")
	}
	if len(cfg.PaymentMethods) == 0 {
		return Config{}, fmt.Errorf("PAYMENT_METHODS must not be empty")
	}
	if cfg.PaymentDelay < 0 {
		return Config{}, fmt.Errorf("PAYMENT_DELAY must not be negative")
	}
	if cfg.GoEnv == "prod" && cfg.UseDatabase() && cfg.PostgresPassword == "" && cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("POSTGRES_PASSWORD is required")
	}

	return cfg, nil
}

// UseDatabase はPostgresを使うか
func (c Config) UseDatabase() bool {
	return c.DatabaseURL != "" || c.PostgresHost != ""
}

// DSN は接続文字列（DATABASE_URLがあれば最優先）
func (c Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.PostgresHost, c.PostgresPort, c.PostgresUser, c.PostgresPassword, c.PostgresDB, c.PostgresSSLMode,
	)
}

// Addr は":8080"形式
func (c Config) Addr() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return ":" + c.Port
}

func getenv(key string, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func atoiDefault(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be number: %w", key, err)
	}
	return i, nil
}

func durationDefault(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be duration: %w", key, err)
	}
	return d, nil
}

func decimalDefault(key string, def decimal.Decimal) (decimal.Decimal, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s must be decimal: %w", key, err)
	}
	return d, nil
}

func boolDefault(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s must be bool: %w", key, err)
	}
	return b, nil
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
