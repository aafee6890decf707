package config

type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Auth    AuthConfig    `yaml:"auth"`
	Storage StorageConfig `yaml:"storage"`
	Payment PaymentConfig `yaml:"payment"`
	Log     LogConfig     `yaml:"log"`
	CORS    CORSConfig    `yaml:"cors"`
}

type ServerConfig struct {
	Port                   int `yaml:"port"`
	ShutdownTimeoutSeconds int `yaml:"shutdown_timeout_seconds"`
}

var DefaultServerConfig = ServerConfig{
	Port:                   5000,
	ShutdownTimeoutSeconds: 30,
}

type AuthConfig struct {
	// TokenSecret signs and verifies access tokens (HS256).
	TokenSecret string `yaml:"token_secret"`
	// ProtectRoleAssignment puts the PATCH /users/{role}/{id} routes behind
	// the admin gate. Off by default: the existing frontend promotes users
	// through those routes without a token.
	ProtectRoleAssignment bool `yaml:"protect_role_assignment"`
	BcryptCost            int  `yaml:"bcrypt_cost"`
}

var DefaultAuthConfig = AuthConfig{
	BcryptCost: 12,
}

const (
	StorageMongo  = "mongo"
	StorageSQLite = "sqlite"
)

type StorageConfig struct {
	Driver string `yaml:"driver"`

	// MongoURI wins when set. Otherwise it is built from the Atlas
	// credentials and cluster host below.
	MongoURI      string `yaml:"mongo_uri"`
	MongoUser     string `yaml:"mongo_user"`
	MongoPassword string `yaml:"mongo_password"`
	MongoCluster  string `yaml:"mongo_cluster"`
	Database      string `yaml:"database"`

	SQLitePath string `yaml:"sqlite_path"`
}

var DefaultStorageConfig = StorageConfig{
	Driver:       StorageMongo,
	MongoCluster: "cluster0.mzertuj.mongodb.net",
	Database:     "yogaDb",
	SQLitePath:   "data/yoga.db",
}

type PaymentConfig struct {
	// SecretKey is the gateway's secret API key. Empty disables intent
	// creation; everything else keeps working.
	SecretKey string `yaml:"secret_key"`
	BaseURL   string `yaml:"base_url"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

var DefaultLogConfig = LogConfig{
	Level:  "info",
	Format: "text",
}

type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
	AllowedMethods []string `yaml:"allowed_methods"`
	AllowedHeaders []string `yaml:"allowed_headers"`
	MaxAgeSeconds  int      `yaml:"max_age_seconds"`
}

// The frontend is deployed separately, so every origin is allowed by default.
var DefaultCORSConfig = CORSConfig{
	AllowedOrigins: []string{"*"},
	AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
	AllowedHeaders: []string{"Authorization", "Content-Type"},
	MaxAgeSeconds:  300,
}
