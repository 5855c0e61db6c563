package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"cloudpico-kiosk/internal/screen"
)

const (
	DisplayEPD = "epd"
	DisplayPNG = "png"
)

var knownSinks = map[string]bool{
	"influx": true,
	"mqtt":   true,
	"sqlite": true,
	"redis":  true,
	"kafka":  true,
}

type Config struct {
	AppEnv   string
	LogLevel slog.Level

	WeatherToken   string
	WeatherBaseURL string
	WeatherUnits   string
	WeatherExclude []string
	WeatherRefresh time.Duration
	WeatherTimeout time.Duration
	ScreenRefresh  time.Duration

	GeocodingToken   string
	GeocodingBaseURL string
	LocationQuery    string
	LocationCountry  string
	// HasCoordinates is set when LATITUDE and LONGITUDE are both given;
	// geocoding is skipped then.
	HasCoordinates bool
	Latitude       float64
	Longitude      float64
	Locality       string
	Timezone       *time.Location

	DisplayCelsius bool
	DisplayAMPM    bool
	StartingScreen screen.State
	DisplayDriver  string
	DisplayPNGDir  string

	ButtonUpPin        string
	ButtonDownPin      string
	ButtonPollInterval time.Duration
	ButtonDebounce     time.Duration
	BuzzerPin          string

	SensorReaderPath     string
	SensorReaderArgs     []string
	SensorSampleInterval time.Duration
	SensorQueueSize      int

	TelemetrySinks   []string
	TelemetryGroup   string
	TelemetryTimeout time.Duration

	InfluxURL   string
	InfluxToken string
	InfluxOrg   string

	MQTTBroker      string
	MQTTPort        int
	MQTTClientID    string
	MQTTUsername    string
	MQTTPassword    string
	MQTTTopicPrefix string
	MQTTQoS         byte

	SQLitePath   string
	SQLiteLogSQL bool

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string

	KafkaBrokers     []string
	KafkaPartitions  int
	KafkaReplication int
}

// HasSink reports whether name is listed in TELEMETRY_SINKS.
func (c Config) HasSink(name string) bool {
	for _, s := range c.TelemetrySinks {
		if s == name {
			return true
		}
	}
	return false
}

// LoadFromEnv reads .env (ENV_FILE) and the optional YAML file (CONFIG_FILE),
// then the process environment. Real environment variables always win.
func LoadFromEnv() (Config, error) {
	envFile := strings.TrimSpace(os.Getenv("ENV_FILE"))
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load %s: %w", envFile, err)
	}

	var file map[string]string
	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		var err error
		file, err = loadFile(path)
		if err != nil {
			return Config{}, err
		}
	}
	return load(lookup{file: file})
}

func load(src lookup) (Config, error) {
	var (
		cfg Config
		err error
	)

	cfg.AppEnv = src.str("APP_ENV", "dev")
	switch cfg.AppEnv {
	case "dev", "prod":
	default:
		return Config{}, fmt.Errorf("invalid APP_ENV %q (allowed: dev, prod)", cfg.AppEnv)
	}
	if cfg.LogLevel, err = parseLogLevel(src.str("LOG_LEVEL", "info")); err != nil {
		return Config{}, err
	}

	cfg.WeatherToken = src.str("WEATHER_TOKEN", "")
	if cfg.WeatherToken == "" {
		return Config{}, errors.New("WEATHER_TOKEN is required")
	}
	cfg.WeatherBaseURL = src.str("WEATHER_BASE_URL", "https://api.openweathermap.org/data/3.0/onecall")
	// Payload temperatures are converted for display by weather.Units, which
	// expects Celsius.
	cfg.WeatherUnits = strings.ToLower(src.str("WEATHER_UNITS", "metric"))
	if cfg.WeatherUnits != "metric" {
		return Config{}, fmt.Errorf("invalid WEATHER_UNITS %q (only metric is supported; use DISPLAY_CELSIUS for the display unit)", cfg.WeatherUnits)
	}
	cfg.WeatherExclude = src.list("WEATHER_EXCLUDE", "minutely,hourly")
	if cfg.WeatherRefresh, err = src.duration("WEATHER_REFRESH", "30m"); err != nil {
		return Config{}, err
	}
	if cfg.WeatherTimeout, err = src.duration("WEATHER_TIMEOUT", "20s"); err != nil {
		return Config{}, err
	}
	if cfg.ScreenRefresh, err = src.duration("SCREEN_REFRESH", (cfg.WeatherRefresh / 2).String()); err != nil {
		return Config{}, err
	}

	cfg.GeocodingToken = src.str("GEOCODING_TOKEN", "")
	cfg.GeocodingBaseURL = src.str("GEOCODING_BASE_URL", "http://api.positionstack.com/v1/forward")
	cfg.LocationQuery = src.str("LOCATION_QUERY", "")
	cfg.LocationCountry = src.str("LOCATION_COUNTRY", "")
	cfg.Locality = src.str("LOCALITY", "")

	lat, lon := src.str("LATITUDE", ""), src.str("LONGITUDE", "")
	switch {
	case lat != "" && lon != "":
		if cfg.Latitude, err = strconv.ParseFloat(lat, 64); err != nil {
			return Config{}, fmt.Errorf("invalid LATITUDE %q: %w", lat, err)
		}
		if cfg.Longitude, err = strconv.ParseFloat(lon, 64); err != nil {
			return Config{}, fmt.Errorf("invalid LONGITUDE %q: %w", lon, err)
		}
		cfg.HasCoordinates = true
	case lat != "" || lon != "":
		return Config{}, errors.New("LATITUDE and LONGITUDE must be set together")
	default:
		if cfg.GeocodingToken == "" || cfg.LocationQuery == "" {
			return Config{}, errors.New("GEOCODING_TOKEN and LOCATION_QUERY are required when LATITUDE/LONGITUDE are not set")
		}
	}

	tz := src.str("TIMEZONE", "Local")
	if cfg.Timezone, err = time.LoadLocation(tz); err != nil {
		return Config{}, fmt.Errorf("invalid TIMEZONE %q: %w", tz, err)
	}

	if cfg.DisplayCelsius, err = src.boolean("DISPLAY_CELSIUS", true); err != nil {
		return Config{}, err
	}
	if cfg.DisplayAMPM, err = src.boolean("DISPLAY_AM_PM", false); err != nil {
		return Config{}, err
	}
	start := src.str("STARTING_SCREEN", "weather")
	if cfg.StartingScreen, err = screen.Parse(start); err != nil {
		return Config{}, fmt.Errorf("invalid STARTING_SCREEN %q: %w", start, err)
	}
	cfg.DisplayDriver = strings.ToLower(src.str("DISPLAY_DRIVER", DisplayEPD))
	switch cfg.DisplayDriver {
	case DisplayEPD, DisplayPNG:
	default:
		return Config{}, fmt.Errorf("invalid DISPLAY_DRIVER %q (allowed: epd, png)", cfg.DisplayDriver)
	}
	cfg.DisplayPNGDir = src.str("DISPLAY_PNG_DIR", "./frames")

	cfg.ButtonUpPin = src.optional("BUTTON_UP_PIN", "GPIO6")
	cfg.ButtonDownPin = src.optional("BUTTON_DOWN_PIN", "GPIO5")
	cfg.BuzzerPin = src.optional("BUZZER_PIN", "GPIO14")
	if cfg.ButtonPollInterval, err = src.duration("BUTTON_POLL_INTERVAL", "100ms"); err != nil {
		return Config{}, err
	}
	if cfg.ButtonDebounce, err = src.duration("BUTTON_DEBOUNCE", "300ms"); err != nil {
		return Config{}, err
	}

	cfg.SensorReaderPath = src.optional("SENSOR_READER_PATH", "./bsec/reader")
	cfg.SensorReaderArgs = strings.Fields(src.str("SENSOR_READER_ARGS", ""))
	if cfg.SensorSampleInterval, err = src.duration("SENSOR_SAMPLE_INTERVAL", "15s"); err != nil {
		return Config{}, err
	}
	if cfg.SensorQueueSize, err = src.integer("SENSOR_QUEUE_SIZE", 16); err != nil {
		return Config{}, err
	}
	if cfg.SensorQueueSize < 0 {
		return Config{}, fmt.Errorf("invalid SENSOR_QUEUE_SIZE %d: must not be negative", cfg.SensorQueueSize)
	}

	cfg.TelemetrySinks = src.list("TELEMETRY_SINKS", "")
	for _, s := range cfg.TelemetrySinks {
		if !knownSinks[s] {
			return Config{}, fmt.Errorf("invalid TELEMETRY_SINKS entry %q (allowed: influx, mqtt, sqlite, redis, kafka)", s)
		}
	}
	cfg.TelemetryGroup = src.str("TELEMETRY_GROUP", "iaq_stats")
	if cfg.TelemetryTimeout, err = src.duration("TELEMETRY_TIMEOUT", "10s"); err != nil {
		return Config{}, err
	}

	cfg.InfluxURL = src.str("INFLUX_URL", "http://localhost:8086")
	cfg.InfluxToken = src.str("INFLUX_TOKEN", "")
	cfg.InfluxOrg = src.str("INFLUX_ORG", "")
	if cfg.HasSink("influx") && (cfg.InfluxToken == "" || cfg.InfluxOrg == "") {
		return Config{}, errors.New("INFLUX_TOKEN and INFLUX_ORG are required for the influx sink")
	}

	cfg.MQTTBroker = src.str("MQTT_BROKER", "localhost")
	if cfg.MQTTPort, err = src.integer("MQTT_PORT", 1883); err != nil {
		return Config{}, err
	}
	cfg.MQTTClientID = src.str("MQTT_CLIENT_ID", "cloudpico-kiosk")
	cfg.MQTTUsername = src.str("MQTT_USERNAME", "")
	cfg.MQTTPassword = src.str("MQTT_PASSWORD", "")
	cfg.MQTTTopicPrefix = src.str("MQTT_TOPIC_PREFIX", "kiosk")
	qos, err := src.integer("MQTT_QOS", 1)
	if err != nil {
		return Config{}, err
	}
	if qos < 0 || qos > 2 {
		return Config{}, fmt.Errorf("invalid MQTT_QOS %d (allowed: 0, 1, 2)", qos)
	}
	cfg.MQTTQoS = byte(qos)

	cfg.SQLitePath = src.str("SQLITE_PATH", "./data/kiosk.db")
	if cfg.SQLiteLogSQL, err = src.boolean("SQLITE_LOG_SQL", false); err != nil {
		return Config{}, err
	}

	cfg.RedisAddr = src.str("REDIS_ADDR", "localhost:6379")
	cfg.RedisPassword = src.str("REDIS_PASSWORD", "")
	if cfg.RedisDB, err = src.integer("REDIS_DB", 0); err != nil {
		return Config{}, err
	}
	cfg.RedisPrefix = src.str("REDIS_PREFIX", "kiosk")

	cfg.KafkaBrokers = src.list("KAFKA_BROKERS", "localhost:9092")
	if cfg.KafkaPartitions, err = src.integer("KAFKA_PARTITIONS", 1); err != nil {
		return Config{}, err
	}
	if cfg.KafkaReplication, err = src.integer("KAFKA_REPLICATION", 1); err != nil {
		return Config{}, err
	}
	if cfg.HasSink("kafka") && len(cfg.KafkaBrokers) == 0 {
		return Config{}, errors.New("KAFKA_BROKERS is required for the kafka sink")
	}

	return cfg, nil
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q (allowed: debug, info, warn, error)", s)
	}
}
