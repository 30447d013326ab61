package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"mealbox-be/pkg/delivery"

	"github.com/joho/godotenv"
)

type Config struct {
	App        AppConfig
	Database   DatabaseConfig
	SMTP       SMTPConfig
	Kafka      KafkaConfig
	Operations OperationsConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	FeedLogFilePath    string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	JwtSecret          string
	OtelEnabled        bool
}

type DatabaseConfig struct {
	Connection string
}

type SMTPConfig struct {
	Host       string
	Port       int
	Email      string
	Password   string
	SenderName string
}

type KafkaConfig struct {
	Brokers  string
	Topic    string
	Username string
	Password string
}

// OperationsConfig holds the delivery calendar and workflow knobs.
type OperationsConfig struct {
	Timezone          string
	DeliveryDays      string
	CutoffDaysBefore  int
	CutoffTime        string
	CookingDaysBefore int
	CookingTime       string
	DeliveryStartTime string
	DeliveryEndTime   string
	// DayRules overrides the shared rule for single weekdays, in the form
	// "2@08:00,1@08:00,10:00-15:00" (cutoff, cooking, delivery window).
	DayRules          map[time.Weekday]string
	UndoWindow        time.Duration
	StatusCacheTTL    time.Duration
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			FeedLogFilePath:    getEnv("FEED_LOG_FILE_PATH", "logs/dashboard_feed.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", ""),
			RedisURL:           getEnv("REDIS_URL", ""),
			JwtSecret:          getEnv("JWT_SECRET", ""),
			OtelEnabled:        getEnvAsBool("OTEL_ENABLED", false),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		SMTP: SMTPConfig{
			Host:       getEnv("SMTP_HOST", ""),
			Port:       getEnvAsInt("SMTP_PORT", 587),
			Email:      getEnv("SMTP_EMAIL", ""),
			Password:   getEnv("SMTP_PASSWORD", ""),
			SenderName: getEnv("SMTP_SENDER_NAME", "Mealbox"),
		},
		Kafka: KafkaConfig{
			Brokers:  getEnv("KAFKA_BROKERS", ""),
			Topic:    getEnv("KAFKA_TOPIC", "mealbox.workflow"),
			Username: getEnv("KAFKA_USERNAME", ""),
			Password: getEnv("KAFKA_PASSWORD", ""),
		},
		Operations: OperationsConfig{
			Timezone:          getEnv("OPERATIONAL_TIMEZONE", "Asia/Singapore"),
			DeliveryDays:      getEnv("DELIVERY_DAYS", "wednesday,saturday"),
			CutoffDaysBefore:  getEnvAsInt("CUTOFF_DAYS_BEFORE", 2),
			CutoffTime:        getEnv("CUTOFF_TIME", "08:00"),
			CookingDaysBefore: getEnvAsInt("COOKING_DAYS_BEFORE", 1),
			CookingTime:       getEnv("COOKING_TIME", "08:00"),
			DeliveryStartTime: getEnv("DELIVERY_START_TIME", "10:00"),
			DeliveryEndTime:   getEnv("DELIVERY_END_TIME", "15:00"),
			DayRules:          loadDayRules(),
			UndoWindow:        getEnvAsDuration("UNDO_WINDOW", 24*time.Hour),
			StatusCacheTTL:    getEnvAsDuration("STATUS_CACHE_TTL", 30*time.Second),
		},
	}
}

// Location resolves the operational timezone.
func (o OperationsConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(o.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid OPERATIONAL_TIMEZONE %q: %w", o.Timezone, err)
	}
	return loc, nil
}

// Rule is the window rule every configured delivery day shares.
func (o OperationsConfig) Rule() (delivery.Rule, error) {
	cutoff, err := delivery.ParseClock(o.CutoffTime)
	if err != nil {
		return delivery.Rule{}, fmt.Errorf("CUTOFF_TIME: %w", err)
	}
	cooking, err := delivery.ParseClock(o.CookingTime)
	if err != nil {
		return delivery.Rule{}, fmt.Errorf("COOKING_TIME: %w", err)
	}
	start, err := delivery.ParseClock(o.DeliveryStartTime)
	if err != nil {
		return delivery.Rule{}, fmt.Errorf("DELIVERY_START_TIME: %w", err)
	}
	end, err := delivery.ParseClock(o.DeliveryEndTime)
	if err != nil {
		return delivery.Rule{}, fmt.Errorf("DELIVERY_END_TIME: %w", err)
	}
	rule := delivery.Rule{
		CutoffDaysBefore:  o.CutoffDaysBefore,
		CutoffAt:          cutoff,
		CookingDaysBefore: o.CookingDaysBefore,
		CookingAt:         cooking,
		DeliveryStartAt:   start,
		DeliveryEndAt:     end,
	}
	if err := rule.Validate(); err != nil {
		return delivery.Rule{}, err
	}
	return rule, nil
}

// DeliverySchedule builds the declarative weekday to window table.
func (o OperationsConfig) DeliverySchedule() (*delivery.Schedule, error) {
	loc, err := o.Location()
	if err != nil {
		return nil, err
	}
	rule, err := o.Rule()
	if err != nil {
		return nil, err
	}
	rules := map[time.Weekday]delivery.Rule{}
	for _, name := range strings.Split(o.DeliveryDays, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		day, err := delivery.ParseWeekday(name)
		if err != nil {
			return nil, fmt.Errorf("DELIVERY_DAYS: %w", err)
		}
		rules[day] = rule
		if raw, ok := o.DayRules[day]; ok {
			override, err := parseDayRule(raw)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", dayRuleKey(day), err)
			}
			rules[day] = override
		}
	}
	return delivery.NewSchedule(loc, rules)
}

func dayRuleKey(day time.Weekday) string {
	return "DELIVERY_RULE_" + strings.ToUpper(day.String())
}

// loadDayRules reads DELIVERY_RULE_MONDAY .. DELIVERY_RULE_SUNDAY. An
// override only applies to a day that is also listed in DELIVERY_DAYS.
func loadDayRules() map[time.Weekday]string {
	out := map[time.Weekday]string{}
	for day := time.Sunday; day <= time.Saturday; day++ {
		if raw := strings.TrimSpace(getEnv(dayRuleKey(day), "")); raw != "" {
			out[day] = raw
		}
	}
	return out
}

// parseDayRule reads "<days>@<HH:MM>,<days>@<HH:MM>,<HH:MM>-<HH:MM>".
func parseDayRule(raw string) (delivery.Rule, error) {
	parts := strings.Split(raw, ",")
	if len(parts) != 3 {
		return delivery.Rule{}, fmt.Errorf("invalid rule %q, expected cutoff,cooking,window", raw)
	}
	cutoffDays, cutoffAt, err := parseOffset(parts[0])
	if err != nil {
		return delivery.Rule{}, err
	}
	cookingDays, cookingAt, err := parseOffset(parts[1])
	if err != nil {
		return delivery.Rule{}, err
	}
	bounds := strings.Split(strings.TrimSpace(parts[2]), "-")
	if len(bounds) != 2 {
		return delivery.Rule{}, fmt.Errorf("invalid delivery window %q, expected HH:MM-HH:MM", parts[2])
	}
	start, err := delivery.ParseClock(bounds[0])
	if err != nil {
		return delivery.Rule{}, err
	}
	end, err := delivery.ParseClock(bounds[1])
	if err != nil {
		return delivery.Rule{}, err
	}
	rule := delivery.Rule{
		CutoffDaysBefore:  cutoffDays,
		CutoffAt:          cutoffAt,
		CookingDaysBefore: cookingDays,
		CookingAt:         cookingAt,
		DeliveryStartAt:   start,
		DeliveryEndAt:     end,
	}
	if err := rule.Validate(); err != nil {
		return delivery.Rule{}, err
	}
	return rule, nil
}

func parseOffset(s string) (int, delivery.ClockTime, error) {
	days, clock, ok := strings.Cut(strings.TrimSpace(s), "@")
	if !ok {
		return 0, delivery.ClockTime{}, fmt.Errorf("invalid offset %q, expected <days>@HH:MM", s)
	}
	n, err := strconv.Atoi(days)
	if err != nil {
		return 0, delivery.ClockTime{}, fmt.Errorf("invalid day offset %q", days)
	}
	at, err := delivery.ParseClock(clock)
	if err != nil {
		return 0, delivery.ClockTime{}, err
	}
	return n, at, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if strValue == "0" {
		return 0
	}
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}
