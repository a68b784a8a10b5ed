// Package config loads the application settings from a yaml file with
// environment overrides and exposes the subscription plan catalog.
package config

import (
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config is the root settings structure.
type Config struct {
	Env         string `yaml:"env" env:"ENV" env-default:"local"`
	StoragePath string `yaml:"storage_path" env:"STORAGE_PATH" env-default:"vitrine.db"`
	HTTPServer  `yaml:"http_server"`
	JWTToken    `yaml:"jwttoken"`
	Seguranca   `yaml:"seguranca"`
	Pagamento   `yaml:"pagamento"`
	Email       `yaml:"email"`
}

// HTTPServer holds the transport-binding settings.
type HTTPServer struct {
	AddressHTTP string        `yaml:"addresshttp" env-default:"localhost:8080"`
	TimeoutHTTP time.Duration `yaml:"timeouthttp" env-default:"4s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
}

// JWTToken holds the session token settings.
type JWTToken struct {
	JWTSecretKey string        `yaml:"jwt_secret_key" env:"JWT_SECRET_KEY" env-default:"dev-secret"`
	TokenTTL     time.Duration `yaml:"token_ttl" env-default:"24h"`
}

// Seguranca holds the password and session security rules.
type Seguranca struct {
	SenhaMinLength     int           `yaml:"senha_min_length" env-default:"6"`
	SenhaRequerNumero  bool          `yaml:"senha_requer_numero" env-default:"true"`
	MaxTentativasLogin int           `yaml:"max_tentativas_login" env-default:"5"`
	BloqueioDuracao    time.Duration `yaml:"bloqueio_duracao" env-default:"15m"`
	SessionTimeout     time.Duration `yaml:"session_timeout" env-default:"1h"`
	SessionRefresh     time.Duration `yaml:"session_refresh" env-default:"5m"`
	ResetTokenTTL      time.Duration `yaml:"reset_token_ttl" env-default:"1h"`
}

// Pagamento holds the billing cycle and simulated gateway settings.
type Pagamento struct {
	Moeda         string        `yaml:"moeda" env-default:"BRL"`
	DiasTrial     int           `yaml:"dias_trial" env-default:"7"`
	DiasPeriodo   int           `yaml:"dias_periodo" env-default:"30"`
	GatewayDelay  time.Duration `yaml:"gateway_delay" env-default:"1500ms"`
	TaxaSucesso   float64       `yaml:"taxa_sucesso" env-default:"0.9"`
	WebhookSecret string        `yaml:"webhook_secret" env:"WEBHOOK_SECRET" env-default:"dev-webhook-secret"`
}

// Email holds the sender identity and SMTP settings for the queue
// processor.
type Email struct {
	Remetente     string `yaml:"remetente" env-default:"contato@vitrinevendedor.com"`
	NomeRemetente string `yaml:"nome_remetente" env-default:"Vitrine do Vendedor"`
	SMTPHost      string `yaml:"smtp_host" env:"SMTP_HOST"`
	SMTPPort      int    `yaml:"smtp_port" env-default:"587"`
	SMTPUser      string `yaml:"smtp_user" env:"SMTP_USER"`
	SMTPPassword  string `yaml:"smtp_password" env:"SMTP_PASSWORD"`
}

// MustLoad reads the config file named by CONFIG_PATH and exits the
// process when it is missing or malformed.
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("file: %s - does not exist", configPath)
	}
	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	return &cfg
}
