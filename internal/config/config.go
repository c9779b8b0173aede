package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	VNPay    VNPayConfig
	Notify   NotifyConfig
	Order    OrderConfig
}

type ServerConfig struct {
	Port int
	Env  string // "development", "production"
}

type DatabaseConfig struct {
	Host    string
	Port    string
	Name    string
	User    string
	Pass    string
	Charset string
}

type RedisConfig struct {
	Addr string
	Pass string
	DB   int
}

type VNPayConfig struct {
	TmnCode    string
	HashSecret string
	APIURL     string
	// FailOnReject moves orders to failed on an authentic gateway
	// decline; when false they stay pending for manual review.
	FailOnReject bool
}

type NotifyConfig struct {
	BotToken string
	ChatID   string
}

type OrderConfig struct {
	// ExpireAfter is how long a pending order may wait for payment
	// before the sweeper cancels it.
	ExpireAfter time.Duration
	// SweepSpec is the cron spec (with seconds) for the sweeper.
	SweepSpec string
}

// Load reads configuration from .env file and environment variables.
func Load() (*Config, error) {
	// Load .env file (ignore error if missing)
	_ = godotenv.Load()

	viper.AutomaticEnv()

	// Set defaults
	viper.SetDefault("APP_PORT", 8080)
	viper.SetDefault("APP_ENV", "production")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "3306")
	viper.SetDefault("DB_CHARSET", "utf8mb4")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("VNPAY_API_URL", "https://sandbox.vnpayment.vn/merchant_webapi/api/transaction")
	viper.SetDefault("VNPAY_FAIL_ON_REJECT", false)
	viper.SetDefault("ORDER_EXPIRE_AFTER", "15m")
	viper.SetDefault("ORDER_SWEEP_SPEC", "0 */5 * * * *")

	expireAfter, err := time.ParseDuration(viper.GetString("ORDER_EXPIRE_AFTER"))
	if err != nil {
		expireAfter = 15 * time.Minute
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: viper.GetInt("APP_PORT"),
			Env:  viper.GetString("APP_ENV"),
		},
		Database: DatabaseConfig{
			Host:    viper.GetString("DB_HOST"),
			Port:    viper.GetString("DB_PORT"),
			Name:    viper.GetString("DB_NAME"),
			User:    viper.GetString("DB_USER"),
			Pass:    viper.GetString("DB_PASS"),
			Charset: viper.GetString("DB_CHARSET"),
		},
		Redis: RedisConfig{
			Addr: viper.GetString("REDIS_ADDR"),
			Pass: viper.GetString("REDIS_PASS"),
			DB:   viper.GetInt("REDIS_DB"),
		},
		VNPay: VNPayConfig{
			TmnCode:      viper.GetString("VNPAY_TMN_CODE"),
			HashSecret:   viper.GetString("VNPAY_HASH_SECRET"),
			APIURL:       viper.GetString("VNPAY_API_URL"),
			FailOnReject: viper.GetBool("VNPAY_FAIL_ON_REJECT"),
		},
		Notify: NotifyConfig{
			BotToken: viper.GetString("NOTIFY_BOT_TOKEN"),
			ChatID:   viper.GetString("NOTIFY_CHAT_ID"),
		},
		Order: OrderConfig{
			ExpireAfter: expireAfter,
			SweepSpec:   viper.GetString("ORDER_SWEEP_SPEC"),
		},
	}

	if cfg.VNPay.TmnCode == "" {
		log.Println("WARNING: VNPAY_TMN_CODE is not set")
	}
	if cfg.Database.Name == "" {
		log.Println("WARNING: DB_NAME is not set, falling back to in-memory order ledger")
	}

	return cfg, nil
}

// DSN returns the MySQL DSN string for GORM.
func (d *DatabaseConfig) DSN() string {
	return d.User + ":" + d.Pass + "@tcp(" + d.Host + ":" + d.Port + ")/" + d.Name + "?charset=" + d.Charset + "&parseTime=True&loc=Local"
}
