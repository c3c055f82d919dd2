package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"libraryhub/internal/core/domain"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Config holds all configuration for the application
type Config struct {
	AppMode     string
	Port        string
	Database    DatabaseConfig
	JWT         JWTConfig
	Cookie      CookieConfig
	Circulation CirculationConfig
	Seed        SeedConfig
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Driver   string // mysql | postgres | sqlite
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	Path     string // sqlite file
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	RefreshSecret    string
	AccessTokenMins  int
	RefreshTokenDays int
}

// CookieConfig holds cookie configuration
type CookieConfig struct {
	Secure   bool
	SameSite string
	Domain   string
}

// CirculationConfig holds loan policy and background job settings
type CirculationConfig struct {
	FinePolicy                 domain.FinePolicy
	FineOverrides              map[string]domain.FinePolicy
	DeleteRestoresAvailability bool
	OverdueCron                string
	ReconcileCron              string
}

// SeedConfig holds first-run seeding settings
type SeedConfig struct {
	AdminUsername string
	AdminPassword string
	AdminEmail    string
	AdminSchool   string
	DemoData      bool
}

// Global config instance
var AppConfig *Config

// Load reads configuration from .env file and environment variables
func Load() (*Config, error) {
	// Load .env file (ignore error if file doesn't exist in production)
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	appMode := strings.TrimSpace(getEnv("APP_MODE", "dev"))
	if appMode != "dev" && appMode != "prod" {
		return nil, fmt.Errorf("invalid APP_MODE: '%s' (must be 'dev' or 'prod')", appMode)
	}

	database, err := loadDatabaseConfig(appMode)
	if err != nil {
		return nil, err
	}

	circulation, err := loadCirculationConfig()
	if err != nil {
		return nil, err
	}

	config := &Config{
		AppMode:     appMode,
		Port:        getEnv("PORT", "3000"),
		Database:    database,
		JWT:         loadJWTConfig(appMode),
		Cookie:      loadCookieConfig(appMode),
		Circulation: circulation,
		Seed:        loadSeedConfig(),
	}

	// Set global config
	AppConfig = config

	log.Printf("✅ Configuration loaded successfully [MODE: %s, DB: %s]", appMode, database.Driver)
	return config, nil
}

// loadDatabaseConfig loads database config based on mode
func loadDatabaseConfig(mode string) (DatabaseConfig, error) {
	prefix := modePrefix(mode)

	driver := strings.ToLower(getEnv("DB_DRIVER", "mysql"))
	defaultPort := "3306"
	switch driver {
	case "mysql":
	case "postgres":
		defaultPort = "5432"
	case "sqlite":
		defaultPort = ""
	default:
		return DatabaseConfig{}, fmt.Errorf("invalid DB_DRIVER: '%s' (must be mysql, postgres or sqlite)", driver)
	}

	return DatabaseConfig{
		Driver:   driver,
		Host:     getEnv(prefix+"DB_HOST", "localhost"),
		Port:     getEnv(prefix+"DB_PORT", defaultPort),
		User:     getEnv(prefix+"DB_USER", "root"),
		Password: getEnv(prefix+"DB_PASS", ""),
		DBName:   getEnv(prefix+"DB_NAME", "libraryhub"),
		Path:     getEnv(prefix+"DB_PATH", "libraryhub.db"),
	}, nil
}

// loadJWTConfig loads JWT config based on mode
func loadJWTConfig(mode string) JWTConfig {
	prefix := modePrefix(mode)

	accessMins, _ := strconv.Atoi(getEnv("ACCESS_TOKEN_MINUTES", "15"))
	refreshDays, _ := strconv.Atoi(getEnv("REFRESH_TOKEN_DAYS", "7"))

	return JWTConfig{
		Secret:           getEnv(prefix+"JWT_SECRET", "default_secret"),
		RefreshSecret:    getEnv(prefix+"JWT_REFRESH_SECRET", "default_refresh_secret"),
		AccessTokenMins:  accessMins,
		RefreshTokenDays: refreshDays,
	}
}

// loadCookieConfig loads cookie config based on mode
func loadCookieConfig(mode string) CookieConfig {
	secure, _ := strconv.ParseBool(getEnv(modePrefix(mode)+"COOKIE_SECURE", "false"))

	return CookieConfig{
		Secure:   secure,
		SameSite: getEnv("COOKIE_SAMESITE", "lax"),
		Domain:   getEnv("COOKIE_DOMAIN", ""),
	}
}

// loadCirculationConfig loads fine policy and job schedules
func loadCirculationConfig() (CirculationConfig, error) {
	perDay, err := decimal.NewFromString(getEnv("FINE_PER_DAY", "1.00"))
	if err != nil || perDay.IsNegative() {
		return CirculationConfig{}, fmt.Errorf("invalid FINE_PER_DAY: '%s'", os.Getenv("FINE_PER_DAY"))
	}

	grace, err := strconv.Atoi(getEnv("FINE_GRACE_DAYS", "0"))
	if err != nil || grace < 0 {
		return CirculationConfig{}, fmt.Errorf("invalid FINE_GRACE_DAYS: '%s'", os.Getenv("FINE_GRACE_DAYS"))
	}

	overrides, err := ParseFineOverrides(os.Getenv("FINE_OVERRIDES"))
	if err != nil {
		return CirculationConfig{}, err
	}

	restore, _ := strconv.ParseBool(getEnv("LOAN_DELETE_RESTORES_AVAILABILITY", "false"))

	// set but empty disables the nightly repair
	reconcile, ok := os.LookupEnv("RECONCILE_CRON")
	if !ok {
		reconcile = "30 2 * * *"
	}

	return CirculationConfig{
		FinePolicy:                 domain.FinePolicy{PerDay: perDay, GraceDays: grace},
		FineOverrides:              overrides,
		DeleteRestoresAvailability: restore,
		OverdueCron:                getEnv("OVERDUE_CRON", "@every 1h"),
		ReconcileCron:              strings.TrimSpace(reconcile),
	}, nil
}

// ParseFineOverrides parses "schoolA=2.50:1,schoolB=0.50" into per-school
// policies; the optional ":n" suffix sets grace days.
func ParseFineOverrides(raw string) (map[string]domain.FinePolicy, error) {
	overrides := map[string]domain.FinePolicy{}
	if strings.TrimSpace(raw) == "" {
		return overrides, nil
	}

	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		school, rule, ok := strings.Cut(entry, "=")
		school = strings.TrimSpace(school)
		if !ok || school == "" {
			return nil, fmt.Errorf("invalid FINE_OVERRIDES entry: '%s'", entry)
		}

		rate, graceRaw, hasGrace := strings.Cut(rule, ":")
		perDay, err := decimal.NewFromString(strings.TrimSpace(rate))
		if err != nil || perDay.IsNegative() {
			return nil, fmt.Errorf("invalid fine rate for %s: '%s'", school, rate)
		}

		policy := domain.FinePolicy{PerDay: perDay}
		if hasGrace {
			grace, err := strconv.Atoi(strings.TrimSpace(graceRaw))
			if err != nil || grace < 0 {
				return nil, fmt.Errorf("invalid grace days for %s: '%s'", school, graceRaw)
			}
			policy.GraceDays = grace
		}
		overrides[school] = policy
	}

	return overrides, nil
}

// loadSeedConfig loads first admin and demo data settings
func loadSeedConfig() SeedConfig {
	demo, _ := strconv.ParseBool(getEnv("SEED_DEMO_DATA", "false"))

	return SeedConfig{
		AdminUsername: getEnv("ADMIN_USERNAME", "admin"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
		AdminEmail:    getEnv("ADMIN_EMAIL", "admin@libraryhub.local"),
		AdminSchool:   getEnv("ADMIN_SCHOOL", "demo-school"),
		DemoData:      demo,
	}
}

// FinePolicyFor returns the fine rule of a school
func (c *Config) FinePolicyFor(schoolName string) domain.FinePolicy {
	if p, ok := c.Circulation.FineOverrides[schoolName]; ok {
		return p
	}
	return c.Circulation.FinePolicy
}

func modePrefix(mode string) string {
	if mode == "prod" {
		return "PROD_"
	}
	return "DEV_"
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// IsDev returns true if running in development mode
func (c *Config) IsDev() bool {
	return c.AppMode == "dev"
}

// IsProd returns true if running in production mode
func (c *Config) IsProd() bool {
	return c.AppMode == "prod"
}

// GetAllowedOrigins returns allowed origins for CORS
func (c *Config) GetAllowedOrigins() string {
	origins := getEnv("ALLOWED_ORIGINS", "")
	if origins == "" {
		if c.IsDev() {
			return "*"
		}
		return "https://library.example.org"
	}
	return origins
}
