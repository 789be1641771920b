package config

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config agrupa la configuración de la aplicación (lectura vía Viper desde env y opcionalmente archivo).
type Config struct {
	App        AppConfig
	Store      StoreConfig
	DB         DBConfig
	JWT        JWTConfig
	HTTP       HTTPConfig
	Sales      SalesConfig
	Projection ProjectionConfig
	Kafka      KafkaConfig
}

// AppConfig configuración general de la aplicación.
type AppConfig struct {
	Env       string // development, staging, production
	Name      string
	LogLevel  string
	StoreName string // encabezado de los recibos
}

// StoreConfig selecciona el almacenamiento: "postgres" (por defecto) o "memory" (demo/desarrollo).
type StoreConfig struct {
	Driver string
}

// DBConfig configuración de PostgreSQL.
// Si DatabaseURL no está vacío, se usa como connection string completo.
type DBConfig struct {
	DatabaseURL string
	Host        string
	Port        int
	User        string
	Password    string
	DBName      string
	SSLMode     string
	Migrate     bool // aplica las migraciones embebidas al iniciar

	// Pool. MaxConns acota las transacciones de venta simultáneas (cada una bloquea filas).
	MaxConns          int
	MinConns          int
	MaxConnLifetime   time.Duration
	MaxConnIdleTime   time.Duration
	HealthCheckPeriod time.Duration
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
	return c.DSNWithHost(c.Host)
}

// DSNWithHost como DSN pero conectando a host (p. ej. la IPv4 ya resuelta).
func (c DBConfig) DSNWithHost(host string) string {
	u := &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", host, c.Port),
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
}

// Addr devuelve la dirección de escucha (host:port).
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Modos de liquidación de stock de una venta.
const (
	StockModeSync     = "sync"     // la venta descuenta stock en su propia transacción
	StockModeDeferred = "deferred" // el descuento lo hace la proyección después del commit
)

// SalesConfig configuración del flujo de venta rápida.
type SalesConfig struct {
	StockMode string
}

// Transportes disponibles para las tareas de proyección.
const (
	TransportMemory = "memory"
	TransportKafka  = "kafka"
)

// ProjectionConfig configuración del worker que deriva salidas (outflows) de las ventas.
type ProjectionConfig struct {
	Transport     string
	Workers       int
	Buffer        int
	SweepInterval time.Duration
	Grace         time.Duration
}

// KafkaConfig configuración del transporte Kafka (solo si Projection.Transport = "kafka").
type KafkaConfig struct {
	Brokers []string
	Topic   string
	GroupID string
}

// Load lee la configuración desde variables de entorno (y opcionalmente desde archivo).
// Las env vars tienen prioridad. Nombres esperados: APP_ENV, DB_HOST, DB_PORT, JWT_SECRET, etc.
func Load() (*Config, error) {
	v := viper.New()

	// Opcional: archivo de configuración (.env o config.env)
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // ignoramos error si no existe

	v.SetConfigName("config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	_ = v.ReadInConfig()

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Env:       getString(v, "APP_ENV", "development"),
			Name:      getString(v, "APP_NAME", "tienda-pos"),
			LogLevel:  getString(v, "LOG_LEVEL", "info"),
			StoreName: getString(v, "STORE_NAME", "Tienda"),
		},
		Store: StoreConfig{
			Driver: getString(v, "STORE_DRIVER", "postgres"),
		},
		DB: DBConfig{
			DatabaseURL: getString(v, "DATABASE_URL", ""),
			Host:        getString(v, "DB_HOST", "localhost"),
			Port:        getInt(v, "DB_PORT", 5432),
			User:        getString(v, "DB_USER", "postgres"),
			Password:    getString(v, "DB_PASSWORD", ""),
			DBName:      getString(v, "DB_NAME", "tienda_pos"),
			SSLMode:     getString(v, "DB_SSLMODE", "disable"),
			Migrate:     getBool(v, "DB_MIGRATE", true),

			MaxConns:          getInt(v, "DB_MAX_CONNS", 25),
			MinConns:          getInt(v, "DB_MIN_CONNS", 2),
			MaxConnLifetime:   getDuration(v, "DB_MAX_CONN_LIFETIME", time.Hour),
			MaxConnIdleTime:   getDuration(v, "DB_MAX_CONN_IDLE_TIME", 30*time.Minute),
			HealthCheckPeriod: getDuration(v, "DB_HEALTH_CHECK_PERIOD", time.Minute),
		},
		JWT: JWTConfig{
			Secret:     getString(v, "JWT_SECRET", ""),
			Expiration: getInt(v, "JWT_EXPIRATION_MINUTES", 60),
			Issuer:     getString(v, "JWT_ISSUER", "tienda-pos"),
		},
		HTTP: HTTPConfig{
			Host: getString(v, "HTTP_HOST", "0.0.0.0"),
			Port: getInt(v, "HTTP_PORT", 8080),
		},
		Sales: SalesConfig{
			StockMode: getString(v, "SALES_STOCK_MODE", StockModeSync),
		},
		Projection: ProjectionConfig{
			Transport:     getString(v, "PROJECTION_TRANSPORT", TransportMemory),
			Workers:       getInt(v, "PROJECTION_WORKERS", 2),
			Buffer:        getInt(v, "PROJECTION_BUFFER", 256),
			SweepInterval: getDuration(v, "PROJECTION_SWEEP_INTERVAL", time.Minute),
			Grace:         getDuration(v, "PROJECTION_GRACE", 30*time.Second),
		},
		Kafka: KafkaConfig{
			Brokers: splitList(getString(v, "KAFKA_BROKERS", "")),
			Topic:   getString(v, "KAFKA_TOPIC", "sale-committed"),
			GroupID: getString(v, "KAFKA_GROUP_ID", "outflow-projection"),
		},
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Store.Driver {
	case "postgres", "memory":
	default:
		return fmt.Errorf("STORE_DRIVER inválido: %q", c.Store.Driver)
	}
	switch c.Sales.StockMode {
	case StockModeSync, StockModeDeferred:
	default:
		return fmt.Errorf("SALES_STOCK_MODE inválido: %q", c.Sales.StockMode)
	}
	switch c.Projection.Transport {
	case TransportMemory:
	case TransportKafka:
		if len(c.Kafka.Brokers) == 0 {
			return fmt.Errorf("KAFKA_BROKERS requerido con PROJECTION_TRANSPORT=kafka")
		}
	default:
		return fmt.Errorf("PROJECTION_TRANSPORT inválido: %q", c.Projection.Transport)
	}
	if c.DB.MaxConns <= 0 || c.DB.MaxConns > math.MaxInt32 {
		return fmt.Errorf("DB_MAX_CONNS inválido: %d", c.DB.MaxConns)
	}
	if c.DB.MinConns < 0 || c.DB.MinConns > c.DB.MaxConns {
		return fmt.Errorf("DB_MIN_CONNS debe estar entre 0 y DB_MAX_CONNS: %d", c.DB.MinConns)
	}
	if c.Projection.Workers <= 0 {
		c.Projection.Workers = 1
	}
	if c.Projection.Buffer <= 0 {
		c.Projection.Buffer = 1
	}
	return nil
}

func getString(v *viper.Viper, key, def string) string {
	if v.IsSet(key) {
		return v.GetString(key)
	}
	return def
}

func getInt(v *viper.Viper, key string, def int) int {
	if v.IsSet(key) {
		switch v.Get(key).(type) {
		case int:
			return v.GetInt(key)
		case string:
			n, err := strconv.Atoi(v.GetString(key))
			if err != nil {
				return def
			}
			return n
		default:
			return v.GetInt(key)
		}
	}
	return def
}

func getBool(v *viper.Viper, key string, def bool) bool {
	if v.IsSet(key) {
		return v.GetBool(key)
	}
	return def
}

func getDuration(v *viper.Viper, key string, def time.Duration) time.Duration {
	if v.IsSet(key) {
		if d := v.GetDuration(key); d > 0 {
			return d
		}
	}
	return def
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
