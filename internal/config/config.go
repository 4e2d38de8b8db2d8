package config

import (
	"log"
	"os"
	"strconv"

	"gopkg.in/yaml.v2"
)

type Config struct {
	Server struct {
		Host string `yaml:"host"`
		Port int    `yaml:"port"`
		Env  string `yaml:"env"`
	} `yaml:"server"`

	Database struct {
		DSN string `yaml:"url"`
	} `yaml:"database"`

	Email struct {
		SMTPHost     string `yaml:"smtp_host"`
		SMTPPort     int    `yaml:"smtp_port"`
		SMTPUsername string `yaml:"smtp_user"`
		SMTPPassword string `yaml:"smtp_password"`
		FromEmail    string `yaml:"from_email"`
		FromName     string `yaml:"from_name"`
		UseTLS       bool   `yaml:"use_tls"`
	} `yaml:"email"`

	JWT struct {
		Secret string `yaml:"secret"`
		TTL    int    `yaml:"ttl"` // минуты
	} `yaml:"jwt"`

	Payments struct {
		StripeSecretKey    string `yaml:"stripe_secret_key"`
		StripeWebhookSecret string `yaml:"stripe_webhook_secret"`
		// Процент комиссии платформы, удерживается при переводе коучу
		PlatformFeePercent int `yaml:"platform_fee_percent"`
		ConnectRefreshURL  string `yaml:"connect_refresh_url"`
		ConnectReturnURL   string `yaml:"connect_return_url"`
	} `yaml:"payments"`

	Notifications struct {
		AppURL   string `yaml:"app_url"`
		Timezone string `yaml:"timezone"`
		// Выключатель отправки, в тестах false
		SendEmails bool `yaml:"send_emails"`
	} `yaml:"notifications"`
}

var AppConfig *Config

func LoadConfig() {
	var cfg Config

	dbURL := os.Getenv("DATABASE_URL")
	serverEnv := os.Getenv("SERVER_ENV")
	portStr := os.Getenv("SERVER_PORT")
	jwtSecret := os.Getenv("JWT_SECRET")

	if dbURL == "" {
		log.Println("Загрузка из config.yaml (режим НЕ-тест)")

		configPath := os.Getenv("CONFIG_PATH")
		if configPath == "" {
			configPath = "config/config.yaml"
		}

		f, err := os.Open(configPath)
		if err != nil {
			log.Fatalf("Failed to open config file at %s: %v", configPath, err)
		}
		defer f.Close()

		decoder := yaml.NewDecoder(f)
		if err := decoder.Decode(&cfg); err != nil {
			log.Fatalf("Failed to parse config file at %s: %v", configPath, err)
		}

		applyDefaults(&cfg)
		AppConfig = &cfg
		return
	}

	log.Println("✅ Загрузка конфигурации из ПЕРЕМЕННЫХ ОКРУЖЕНИЯ (режим теста)")

	cfg.Database.DSN = dbURL
	cfg.Server.Env = serverEnv
	cfg.Server.Port, _ = strconv.Atoi(portStr)
	cfg.JWT.Secret = jwtSecret
	cfg.JWT.TTL = 60

	cfg.Email.SMTPHost = "smtp.test.com"
	cfg.Email.SMTPPort = 587
	cfg.Email.FromEmail = "test@apexsports.app"

	cfg.Payments.StripeSecretKey = os.Getenv("STRIPE_SECRET_KEY")
	cfg.Payments.StripeWebhookSecret = os.Getenv("STRIPE_WEBHOOK_SECRET")
	cfg.Payments.PlatformFeePercent, _ = strconv.Atoi(os.Getenv("PLATFORM_FEE_PERCENT"))

	cfg.Notifications.AppURL = os.Getenv("APP_URL")
	cfg.Notifications.SendEmails = false

	applyDefaults(&cfg)
	AppConfig = &cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Payments.PlatformFeePercent == 0 {
		cfg.Payments.PlatformFeePercent = 10
	}
	if cfg.Notifications.Timezone == "" {
		cfg.Notifications.Timezone = "America/New_York"
	}
	if cfg.Notifications.AppURL == "" {
		cfg.Notifications.AppURL = "http://localhost:3000"
	}
}

// StripeEnabled сообщает, настроен ли платежный провайдер.
// Без ключа бронирования бесплатных коучей продолжают работать.
func (c *Config) StripeEnabled() bool {
	return c.Payments.StripeSecretKey != ""
}

func GetConfig() *Config {
	if AppConfig == nil {
		LoadConfig()
	}
	return AppConfig
}
