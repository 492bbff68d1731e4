package config

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config agrupa la configuración de la aplicación (lectura vía Viper desde env y opcionalmente archivo).
type Config struct {
	App      AppConfig
	DB       DBConfig
	JWT      JWTConfig
	HTTP     HTTPConfig
	Redis    RedisConfig
	AdminAPI AdminAPIConfig
}

// AppConfig configuración general de la aplicación.
type AppConfig struct {
	Env         string // development, staging, production
	Name        string
	LogLevel    string
	CompanyName string // encabezado de la hoja PDF de la orden
}

// DBConfig configuración de PostgreSQL.
// Si DatabaseURL no está vacío, se usa como connection string completo (ej. DATABASE_URL de Supabase).
type DBConfig struct {
	DatabaseURL string
	Host        string
	Port        int
	User        string
	Password    string
	DBName      string
	SSLMode     string
	MaxConns    int
}

// ConnectionString devuelve el DSN a usar: DATABASE_URL si está definido, si no el construido con DSN().
func (c DBConfig) ConnectionString() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return c.DSN()
}

// DSN devuelve el connection string para PostgreSQL con URL encoding para caracteres especiales.
func (c DBConfig) DSN() string {
	u := &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     "/" + c.DBName,
		RawQuery: fmt.Sprintf("sslmode=%s", c.SSLMode),
	}
	return u.String()
}

// JWTConfig configuración de JWT.
type JWTConfig struct {
	Secret     string
	Expiration int // minutos
	Issuer     string
}

// HTTPConfig configuración del servidor HTTP.
type HTTPConfig struct {
	Host string
	Port int
	// LoginRatePerMinute intentos de login por IP y minuto.
	LoginRatePerMinute int
}

// Addr devuelve la dirección de escucha (host:port).
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// RedisConfig caché de has_permission. Addr vacío desactiva la caché.
type RedisConfig struct {
	Addr               string
	Password           string
	DB                 int
	PermissionCacheTTL time.Duration
}

// Enabled indica si hay un Redis configurado.
func (c RedisConfig) Enabled() bool { return c.Addr != "" }

// AdminAPIConfig datos del endpoint de administración que consume el CLI de permisos.
type AdminAPIConfig struct {
	URL   string
	Token string
}

// Load lee la configuración desde variables de entorno (y opcionalmente desde archivo).
// Las env vars tienen prioridad. Nombres esperados: APP_ENV, DB_HOST, DB_PORT, JWT_SECRET, REDIS_ADDR, etc.
func Load() (*Config, error) {
	cfg := load(newViper())
	if cfg.JWT.Secret == "" {
		return nil, errors.New("config: JWT_SECRET es obligatorio")
	}
	return cfg, nil
}

// LoadClient lee sólo lo necesario para herramientas de línea de comandos (sin exigir JWT_SECRET).
func LoadClient() *Config {
	return load(newViper())
}

func newViper() *viper.Viper {
	v := viper.New()

	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // ignoramos error si no existe

	v.SetConfigName("config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	_ = v.MergeInConfig()

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	return v
}

func load(v *viper.Viper) *Config {
	return &Config{
		App: AppConfig{
			Env:         getString(v, "APP_ENV", "development"),
			Name:        getString(v, "APP_NAME", "ordenes-api"),
			LogLevel:    getString(v, "LOG_LEVEL", "info"),
			CompanyName: getString(v, "APP_COMPANY_NAME", ""),
		},
		DB: DBConfig{
			DatabaseURL: getString(v, "DATABASE_URL", ""),
			Host:        getString(v, "DB_HOST", "localhost"),
			Port:        getInt(v, "DB_PORT", 5432),
			User:        getString(v, "DB_USER", "postgres"),
			Password:    getString(v, "DB_PASSWORD", ""),
			DBName:      getString(v, "DB_NAME", "ordenes"),
			SSLMode:     getString(v, "DB_SSLMODE", "disable"),
			MaxConns:    getInt(v, "DB_MAX_CONNS", 25),
		},
		JWT: JWTConfig{
			Secret:     getString(v, "JWT_SECRET", ""),
			Expiration: getInt(v, "JWT_EXPIRATION_MINUTES", 480),
			Issuer:     getString(v, "JWT_ISSUER", "ordenes-api"),
		},
		HTTP: HTTPConfig{
			Host:               getString(v, "HTTP_HOST", "0.0.0.0"),
			Port:               getInt(v, "HTTP_PORT", 8080),
			LoginRatePerMinute: getInt(v, "HTTP_LOGIN_RATE_PER_MINUTE", 10),
		},
		Redis: RedisConfig{
			Addr:               getString(v, "REDIS_ADDR", ""),
			Password:           getString(v, "REDIS_PASSWORD", ""),
			DB:                 getInt(v, "REDIS_DB", 0),
			PermissionCacheTTL: time.Duration(getInt(v, "PERMISSION_CACHE_TTL_SECONDS", 60)) * time.Second,
		},
		AdminAPI: AdminAPIConfig{
			URL:   getString(v, "ADMIN_API_URL", "http://localhost:8080"),
			Token: getString(v, "ADMIN_API_TOKEN", ""),
		},
	}
}

func getString(v *viper.Viper, key, def string) string {
	if v.IsSet(key) {
		return v.GetString(key)
	}
	return def
}

func getInt(v *viper.Viper, key string, def int) int {
	if !v.IsSet(key) {
		return def
	}
	switch v.Get(key).(type) {
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v.GetString(key)))
		if err != nil {
			return def
		}
		return n
	default:
		return v.GetInt(key)
	}
}
