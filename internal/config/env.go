package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

type Env struct {
	AppAddr     string
	GinMode     string
	MetricsAddr string

	DBDSN string

	JWTSecret      string
	AllowedOrigins []string
}

func LoadEnv() Env {
	// Load .env into the environment when present; real deployments set vars
	// directly.
	_ = godotenv.Load()

	appAddr := strings.TrimSpace(os.Getenv("APP_ADDR"))
	if appAddr == "" {
		appAddr = ":8080"
	}

	secret := strings.TrimSpace(os.Getenv("JWT_SECRET"))
	if secret == "" {
		secret = "farebox-dev-secret-change-me"
	}

	origins := []string{}
	for _, o := range strings.Split(os.Getenv("CORS_ALLOWED_ORIGINS"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000", "http://localhost:5173"}
	}

	return Env{
		AppAddr:        appAddr,
		GinMode:        strings.TrimSpace(os.Getenv("GIN_MODE")),
		MetricsAddr:    strings.TrimSpace(os.Getenv("METRICS_ADDR")),
		DBDSN:          strings.TrimSpace(os.Getenv("DB_DSN")),
		JWTSecret:      secret,
		AllowedOrigins: origins,
	}
}
