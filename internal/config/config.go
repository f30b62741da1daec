package config

import (
	"fmt"
	"log"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Server     ServerConfig     `mapstructure:"server"`
	HTTP       HTTPConfig       `mapstructure:"http"`
	Storage    StorageConfig    `mapstructure:"storage"`
	Session    SessionConfig    `mapstructure:"session"`
	Cache      CacheConfig      `mapstructure:"cache"`
	Audit      AuditConfig      `mapstructure:"audit"`
	Enrollment EnrollmentConfig `mapstructure:"enrollment"`
	Log        LogConfig        `mapstructure:"log"`
}

// AppConfig holds application-specific configuration
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

// ServerConfig holds the TCP command server configuration
type ServerConfig struct {
	Host           string `mapstructure:"host"`
	Port           string `mapstructure:"port"`
	MaxConnections int    `mapstructure:"max_connections"`
	IdleTimeout    int    `mapstructure:"idle_timeout"`
	CommandTimeout int    `mapstructure:"command_timeout"`
	WriteTimeout   int    `mapstructure:"write_timeout"`
	MaxLineBytes   int    `mapstructure:"max_line_bytes"`
	RequireAuth    bool   `mapstructure:"require_auth"`
}

// HTTPConfig holds the status API configuration
type HTTPConfig struct {
	Enabled        bool     `mapstructure:"enabled"`
	Port           string   `mapstructure:"port"`
	ReadTimeout    int      `mapstructure:"read_timeout"`
	WriteTimeout   int      `mapstructure:"write_timeout"`
	MaxHeaderBytes int      `mapstructure:"max_header_bytes"`
	AllowOrigins   []string `mapstructure:"allow_origins"`
}

// EntityStorageConfig names the backing file and ceiling of one record store
type EntityStorageConfig struct {
	File     string `mapstructure:"file"`
	Capacity int    `mapstructure:"capacity"`
}

// StorageConfig holds the flat-file layout
type StorageConfig struct {
	DataDir     string              `mapstructure:"data_dir"`
	Students    EntityStorageConfig `mapstructure:"students"`
	Classes     EntityStorageConfig `mapstructure:"classes"`
	Lessons     EntityStorageConfig `mapstructure:"lessons"`
	Enrollments EntityStorageConfig `mapstructure:"enrollments"`
	Activities  EntityStorageConfig `mapstructure:"activities"`
	Users       EntityStorageConfig `mapstructure:"users"`
}

// Path resolves an entity file against the data directory.
func (s StorageConfig) Path(e EntityStorageConfig) string {
	if filepath.IsAbs(e.File) {
		return e.File
	}
	return filepath.Join(s.DataDir, e.File)
}

// SessionConfig holds login session configuration
type SessionConfig struct {
	TTLMinutes int `mapstructure:"ttl_minutes"`
}

// CacheConfig holds session cache configuration
type CacheConfig struct {
	Type     string `mapstructure:"type"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Addr returns the redis host:port
func (c CacheConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// AuditConfig holds audit trail configuration
type AuditConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Queue      string `mapstructure:"queue"`
	AuthLog    string `mapstructure:"auth_log"`
	ActionLog  string `mapstructure:"action_log"`
	BufferSize int    `mapstructure:"buffer_size"`
	Workers    int    `mapstructure:"workers"`
}

// EnrollmentConfig controls reference checks on enrollment
type EnrollmentConfig struct {
	StrictReferences bool `mapstructure:"strict_references"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level    string `mapstructure:"level"`
	Format   string `mapstructure:"format"`
	Output   string `mapstructure:"output"`
	FilePath string `mapstructure:"file_path"`
}

var config *Config

// Init initializes the configuration
func Init() {
	config = &Config{}

	// Set default values
	setDefaults()

	// Unmarshal configuration from viper
	if err := viper.Unmarshal(config); err != nil {
		log.Fatalf("Unable to decode config: %v", err)
	}
}

// Get returns the global configuration
func Get() *Config {
	if config == nil {
		Init()
	}
	return config
}

// setDefaults sets default configuration values
func setDefaults() {
	// App defaults
	viper.SetDefault("app.name", "academic-records")
	viper.SetDefault("app.version", "1.0.0")
	viper.SetDefault("app.environment", "development")

	// TCP server defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", "5000")
	viper.SetDefault("server.max_connections", 10)
	viper.SetDefault("server.idle_timeout", 300)
	viper.SetDefault("server.command_timeout", 10)
	viper.SetDefault("server.write_timeout", 10)
	viper.SetDefault("server.max_line_bytes", 4096)
	viper.SetDefault("server.require_auth", true)

	// HTTP status API defaults
	viper.SetDefault("http.enabled", false)
	viper.SetDefault("http.port", "8080")
	viper.SetDefault("http.read_timeout", 15)
	viper.SetDefault("http.write_timeout", 15)
	viper.SetDefault("http.max_header_bytes", 1048576)

	// Storage defaults
	viper.SetDefault("storage.data_dir", "data")
	viper.SetDefault("storage.students.file", "alunos.csv")
	viper.SetDefault("storage.students.capacity", 1000)
	viper.SetDefault("storage.classes.file", "turmas.csv")
	viper.SetDefault("storage.classes.capacity", 500)
	viper.SetDefault("storage.lessons.file", "aulas.csv")
	viper.SetDefault("storage.lessons.capacity", 5000)
	viper.SetDefault("storage.enrollments.file", "aluno_turma.csv")
	viper.SetDefault("storage.enrollments.capacity", 5000)
	viper.SetDefault("storage.activities.file", "atividades.csv")
	viper.SetDefault("storage.activities.capacity", 2000)
	viper.SetDefault("storage.users.file", "usuarios.csv")
	viper.SetDefault("storage.users.capacity", 500)

	// Session defaults
	viper.SetDefault("session.ttl_minutes", 480)

	// Cache defaults
	viper.SetDefault("cache.type", "memory")
	viper.SetDefault("cache.host", "localhost")
	viper.SetDefault("cache.port", 6379)
	viper.SetDefault("cache.password", "")
	viper.SetDefault("cache.db", 0)

	// Audit defaults
	viper.SetDefault("audit.enabled", true)
	viper.SetDefault("audit.queue", "memory")
	viper.SetDefault("audit.auth_log", "data/auth_log.txt")
	viper.SetDefault("audit.action_log", "data/acoes_log.txt")
	viper.SetDefault("audit.buffer_size", 256)
	viper.SetDefault("audit.workers", 1)

	viper.SetDefault("enrollment.strict_references", false)

	// Log defaults
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "json")
	viper.SetDefault("log.output", "stdout")
	viper.SetDefault("log.file_path", "data/server.log")
}
