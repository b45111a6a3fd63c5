package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	Env               string `mapstructure:"ENV"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`
	AssistantName     string `mapstructure:"ASSISTANT_NAME"`

	// Session storage.
	SessionStore   string        `mapstructure:"SESSION_STORE"`
	SessionTTL     time.Duration `mapstructure:"SESSION_TTL"`
	RedisAddr      string        `mapstructure:"REDIS_ADDR"`
	RedisPassword  string        `mapstructure:"REDIS_PASSWORD"`
	RedisSessionDB int           `mapstructure:"REDIS_SESSION_DB"`

	// Booking storage.
	BookingStore  string `mapstructure:"BOOKING_STORE"`
	SQLitePath    string `mapstructure:"SQLITE_PATH"`
	DatabaseURL   string `mapstructure:"DATABASE_URL"`
	MongoDatabase string `mapstructure:"MONGO_DATABASE"`

	// Language model.
	GeminiAPIKey   string        `mapstructure:"GEMINI_API_KEY"`
	GenModel       string        `mapstructure:"GEN_MODEL"`
	LLMPerMinute   int           `mapstructure:"LLM_PER_MINUTE"`
	IntentCacheTTL time.Duration `mapstructure:"INTENT_CACHE_TTL"`
	RewriteTimeout time.Duration `mapstructure:"REWRITE_TIMEOUT"`

	// Speech to text.
	GoogleServiceAccountFile string `mapstructure:"GOOGLE_SERVICE_ACCOUNT_FILE"`
	STTLanguage              string `mapstructure:"STT_LANGUAGE"`

	// Notifications.
	FirebaseCredentialsFile string `mapstructure:"FIREBASE_CREDENTIALS_FILE"`
	OwnerTopic              string `mapstructure:"OWNER_TOPIC"`

	// Media.
	CloudinaryCloudName string `mapstructure:"CLOUDINARY_CLOUD_NAME"`
	CloudinaryAPIKey    string `mapstructure:"CLOUDINARY_API_KEY"`
	CloudinaryAPISecret string `mapstructure:"CLOUDINARY_API_SECRET"`
	QRFolder            string `mapstructure:"QR_FOLDER"`
	QRCacheSize         int    `mapstructure:"QR_CACHE_SIZE"`
	PublicBaseURL       string `mapstructure:"PUBLIC_BASE_URL"`
	UPIID               string `mapstructure:"UPI_ID"`
	UPIPayeeName        string `mapstructure:"UPI_PAYEE_NAME"`
	CatalogURL          string `mapstructure:"CATALOG_URL"`
	MapLink             string `mapstructure:"MAP_LINK"`
	OfficeAddress       string `mapstructure:"OFFICE_ADDRESS"`

	// Pricing.
	FXUSDToINR     float64 `mapstructure:"FX_USD_TO_INR"`
	CurrencySymbol string  `mapstructure:"CURRENCY_SYMBOL"`
}

var AppConfig Config

func LoadConfig() {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	// Automatically use environment variables where available.
	viper.AutomaticEnv()

	// Set default values.
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	viper.SetDefault("ASSISTANT_NAME", "Aarush AI Solutions")
	viper.SetDefault("SESSION_STORE", "memory")
	viper.SetDefault("SESSION_TTL", 24*time.Hour)
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_SESSION_DB", 0)
	viper.SetDefault("BOOKING_STORE", "sqlite")
	viper.SetDefault("SQLITE_PATH", "bookings.db")
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("MONGO_DATABASE", "bookingbot")
	viper.SetDefault("GEMINI_API_KEY", "")
	viper.SetDefault("GEN_MODEL", "gemini-2.5-flash-lite")
	viper.SetDefault("LLM_PER_MINUTE", 15)
	viper.SetDefault("INTENT_CACHE_TTL", 30*time.Second)
	viper.SetDefault("REWRITE_TIMEOUT", 4*time.Second)
	viper.SetDefault("GOOGLE_SERVICE_ACCOUNT_FILE", "")
	viper.SetDefault("STT_LANGUAGE", "en-US")
	viper.SetDefault("FIREBASE_CREDENTIALS_FILE", "")
	viper.SetDefault("OWNER_TOPIC", "owner")
	viper.SetDefault("QR_FOLDER", "qr")
	viper.SetDefault("QR_CACHE_SIZE", 1024)
	viper.SetDefault("PUBLIC_BASE_URL", "")
	viper.SetDefault("UPI_ID", "demo@upi")
	viper.SetDefault("UPI_PAYEE_NAME", "AarushAiSolutions")
	viper.SetDefault("CATALOG_URL", "")
	viper.SetDefault("MAP_LINK", "https://maps.google.com/?q=40.7128,-74.0060")
	viper.SetDefault("OFFICE_ADDRESS", "496 - Lakeview Street, New York")
	viper.SetDefault("FX_USD_TO_INR", 80.0)
	viper.SetDefault("CURRENCY_SYMBOL", "₹")

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}

// LLMEnabled reports whether a language model key is configured.
func LLMEnabled() bool {
	return AppConfig.GeminiAPIKey != ""
}
