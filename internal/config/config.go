// Package config loads and validates environment variables at startup.
// Fail-fast: if a required variable is missing, the process exits.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"jobmate/alert-service/internal/model"
)

// Config holds all runtime configuration for the alert service.
type Config struct {
	Port        string
	DatabaseURL string
	RedisURL    string

	// Search criteria
	JobTitles        []string
	Locations        []string
	RemoteOK         bool
	MinSalary        float64
	MinSalaryPeriod  model.SalaryPeriod
	EmploymentTypes  []model.EmploymentType
	PriorityKeywords []string

	// Cycle cadence and pacing
	CheckIntervalMinutes int           // how often the cron job fires
	SourceRequestDelay   time.Duration // minimum spacing between requests to one board

	// Auto-apply
	AutoApply            bool
	MaxDailyApplications int
	ApplicationsDir      string
	CoverLetterTemplate  string

	// Listing boards
	JSearchAPIKey  string
	JSearchAPIHost string
	AdzunaAppID    string
	AdzunaAppKey   string
	AdzunaCountry  string // e.g. "fr", "gb", "us"

	// Notification
	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
	NotifyFrom   string
	NotifyTo     []string

	// Enrichment
	AnthropicAPIKey string
	AnthropicModel  string

	// Operator profile
	FirstName  string
	LastName   string
	Email      string
	Skills     []string
	ResumePath string
}

// Load reads environment variables and returns a validated Config.
func Load() (*Config, error) {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		return nil, fmt.Errorf("REDIS_URL is required")
	}

	interval := 60
	if s := os.Getenv("CHECK_INTERVAL_MINUTES"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 {
			return nil, fmt.Errorf("CHECK_INTERVAL_MINUTES must be a positive integer, got %q", s)
		}
		interval = v
	}

	maxDaily := 5
	if s := os.Getenv("MAX_DAILY_APPLICATIONS"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 {
			return nil, fmt.Errorf("MAX_DAILY_APPLICATIONS must be a positive integer, got %q", s)
		}
		maxDaily = v
	}

	minSalary := 0.0
	if s := os.Getenv("MIN_SALARY"); s != "" {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil || v < 0 {
			return nil, fmt.Errorf("MIN_SALARY must be a non-negative number, got %q", s)
		}
		minSalary = v
	}

	period := model.SalaryHourly
	switch strings.ToLower(os.Getenv("MIN_SALARY_PERIOD")) {
	case "", "hourly":
	case "yearly":
		period = model.SalaryYearly
	default:
		return nil, fmt.Errorf("MIN_SALARY_PERIOD must be hourly or yearly, got %q", os.Getenv("MIN_SALARY_PERIOD"))
	}

	delay := 2 * time.Second
	if s := os.Getenv("SOURCE_REQUEST_DELAY"); s != "" {
		v, err := time.ParseDuration(s)
		if err != nil || v < 0 {
			return nil, fmt.Errorf("SOURCE_REQUEST_DELAY must be a duration like 2s, got %q", s)
		}
		delay = v
	}

	types, err := parseEmploymentTypes(os.Getenv("EMPLOYMENT_TYPES"))
	if err != nil {
		return nil, err
	}

	country := os.Getenv("ADZUNA_COUNTRY")
	if country == "" {
		country = "us"
	}

	port := os.Getenv("ALERT_PORT")
	if port == "" {
		port = "8083"
	}

	return &Config{
		Port:        port,
		DatabaseURL: dbURL,
		RedisURL:    redisURL,

		JobTitles:        splitCSV(envDefault("JOB_TITLES", "software developer")),
		Locations:        splitCSV(envDefault("JOB_LOCATIONS", "remote")),
		RemoteOK:         envBool("REMOTE_OK", true),
		MinSalary:        minSalary,
		MinSalaryPeriod:  period,
		EmploymentTypes:  types,
		PriorityKeywords: splitCSV(os.Getenv("PRIORITY_KEYWORDS")),

		CheckIntervalMinutes: interval,
		SourceRequestDelay:   delay,

		AutoApply:            envBool("AUTO_APPLY", false),
		MaxDailyApplications: maxDaily,
		ApplicationsDir:      envDefault("APPLICATIONS_DIR", "applications"),
		CoverLetterTemplate:  os.Getenv("COVER_LETTER_TEMPLATE"),

		JSearchAPIKey:  os.Getenv("JSEARCH_API_KEY"),
		JSearchAPIHost: os.Getenv("JSEARCH_API_HOST"),
		AdzunaAppID:    os.Getenv("ADZUNA_APP_ID"),
		AdzunaAppKey:   os.Getenv("ADZUNA_APP_KEY"),
		AdzunaCountry:  country,

		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPPort:     envDefault("SMTP_PORT", "587"),
		SMTPUsername: os.Getenv("SMTP_USERNAME"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		NotifyFrom:   os.Getenv("NOTIFY_FROM"),
		NotifyTo:     splitCSV(os.Getenv("NOTIFY_TO")),

		AnthropicAPIKey: os.Getenv("ANTHROPIC_API_KEY"),
		AnthropicModel:  os.Getenv("ANTHROPIC_MODEL"),

		FirstName:  os.Getenv("FIRST_NAME"),
		LastName:   os.Getenv("LAST_NAME"),
		Email:      os.Getenv("EMAIL"),
		Skills:     splitCSV(os.Getenv("SKILLS")),
		ResumePath: os.Getenv("RESUME_PATH"),
	}, nil
}

// Criteria assembles the immutable per-run search criteria.
func (c *Config) Criteria() model.SearchCriteria {
	return model.SearchCriteria{
		Titles:           c.JobTitles,
		Locations:        c.Locations,
		RemoteOK:         c.RemoteOK,
		MinSalary:        c.MinSalary,
		MinSalaryPeriod:  c.MinSalaryPeriod,
		EmploymentTypes:  c.EmploymentTypes,
		SkillKeywords:    c.Skills,
		PriorityKeywords: c.PriorityKeywords,
	}
}

// Profile assembles the operator profile handed to the packager.
func (c *Config) Profile() model.Profile {
	return model.Profile{
		FirstName:  c.FirstName,
		LastName:   c.LastName,
		Email:      c.Email,
		Skills:     c.Skills,
		ResumePath: c.ResumePath,
	}
}

func parseEmploymentTypes(raw string) ([]model.EmploymentType, error) {
	var types []model.EmploymentType
	for _, s := range splitCSV(raw) {
		t := model.EmploymentType(strings.ToUpper(s))
		switch t {
		case model.EmploymentFullTime, model.EmploymentPartTime, model.EmploymentContract,
			model.EmploymentIntern, model.EmploymentOther:
			types = append(types, t)
		default:
			return nil, fmt.Errorf("EMPLOYMENT_TYPES contains unknown value %q", s)
		}
	}
	return types, nil
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func envDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	switch strings.ToLower(os.Getenv(key)) {
	case "1", "true", "yes":
		return true
	case "0", "false", "no":
		return false
	}
	return fallback
}
