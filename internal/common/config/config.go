// internal/common/config/config.go
package config

import (
	"fmt"

	"coldcall-backend/internal/engine"
)

// Config is the main application configuration struct.
type Config struct {
	App          AppConfig         `mapstructure:"app"`
	Server       ServerConfig      `mapstructure:"server"`
	Engine       EngineConfig      `mapstructure:"engine"`
	Session      SessionConfig     `mapstructure:"session"`
	Database     DatabaseConfig    `mapstructure:"database"`
	APIs         APIsConfig        `mapstructure:"apis"`
	Integrations IntegrationConfig `mapstructure:"integrations"`
	Logging      LoggingConfig     `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	ReadTimeout     int    `mapstructure:"read_timeout"`     // milliseconds
	WriteTimeout    int    `mapstructure:"write_timeout"`    // milliseconds
	ShutdownTimeout int    `mapstructure:"shutdown_timeout"` // milliseconds
}

// EngineConfig mirrors the turn engine tunables so they can be set from
// YAML and environment. Empty maps fall back to the engine defaults.
type EngineConfig struct {
	SlotWeights               map[string]float64 `mapstructure:"slot_weights"`
	SlotPriority              []string           `mapstructure:"slot_priority"`
	ObjectionPenalties        map[string]float64 `mapstructure:"objection_penalties"`
	ObjectionPenaltyFloor     float64            `mapstructure:"objection_penalty_floor"`
	MinConfidence             float64            `mapstructure:"min_confidence"`
	ObjectionMinConfidence    float64            `mapstructure:"objection_min_confidence"`
	AlignmentOverride         float64            `mapstructure:"alignment_override"`
	CorrectionMargin          float64            `mapstructure:"correction_margin"`
	WeakThreshold             float64            `mapstructure:"weak_threshold"`
	StrongThreshold           float64            `mapstructure:"strong_threshold"`
	MaxTurns                  int                `mapstructure:"max_turns"`
	ResetLastAskedOnObjection bool               `mapstructure:"reset_last_asked_on_objection"`
}

// ToEngineConfig merges the YAML overrides onto the engine defaults.
// Validation happens in engine.New, not here.
func (e EngineConfig) ToEngineConfig() engine.Config {
	cfg := engine.DefaultConfig()

	if len(e.SlotWeights) > 0 {
		weights := make(map[engine.Slot]float64, len(e.SlotWeights))
		for k, v := range e.SlotWeights {
			weights[engine.Slot(k)] = v
		}
		cfg.SlotWeights = weights
	}
	if len(e.SlotPriority) > 0 {
		priority := make([]engine.Slot, 0, len(e.SlotPriority))
		for _, s := range e.SlotPriority {
			priority = append(priority, engine.Slot(s))
		}
		cfg.SlotPriority = priority
	}
	if len(e.ObjectionPenalties) > 0 {
		penalties := make(map[engine.ObjectionType]float64, len(e.ObjectionPenalties))
		for k, v := range e.ObjectionPenalties {
			penalties[engine.ObjectionType(k)] = v
		}
		cfg.ObjectionPenalties = penalties
	}
	if e.ObjectionPenaltyFloor != 0 {
		cfg.ObjectionPenaltyFloor = e.ObjectionPenaltyFloor
	}
	if e.MinConfidence != 0 {
		cfg.MinConfidence = e.MinConfidence
	}
	if e.ObjectionMinConfidence != 0 {
		cfg.ObjectionMinConfidence = e.ObjectionMinConfidence
	}
	if e.AlignmentOverride != 0 {
		cfg.AlignmentOverride = e.AlignmentOverride
	}
	if e.CorrectionMargin != 0 {
		cfg.CorrectionMargin = e.CorrectionMargin
	}
	if e.WeakThreshold != 0 {
		cfg.WeakThreshold = e.WeakThreshold
	}
	if e.StrongThreshold != 0 {
		cfg.StrongThreshold = e.StrongThreshold
	}
	if e.MaxTurns != 0 {
		cfg.MaxTurns = e.MaxTurns
	}
	cfg.ResetLastAskedOnObjection = e.ResetLastAskedOnObjection

	return cfg
}

// SessionConfig holds settings for the Redis-backed session layer.
type SessionConfig struct {
	TTL             int    `mapstructure:"ttl"`              // seconds
	ProspectMode    string `mapstructure:"prospect_mode"`    // scripted | llm
	ForceRuleBased  bool   `mapstructure:"force_rule_based"` // skip LLM extraction
	OpenerText      string `mapstructure:"opener_text"`
	NotifyThreshold string `mapstructure:"notify_threshold"` // label that triggers lead notifications
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Redis         RedisConfig         `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type ElasticsearchConfig struct {
	Addresses  []string `mapstructure:"addresses"`
	Username   string   `mapstructure:"username"`
	Password   string   `mapstructure:"password"`
	SSLEnabled bool     `mapstructure:"ssl_enabled"`
	URL        string   `mapstructure:"url"` // Single URL for backwards compatibility
	TraceIndex string   `mapstructure:"trace_index"`
}

// GetURL returns the first address or the URL field
func (e ElasticsearchConfig) GetURL() string {
	if e.URL != "" {
		return e.URL
	}
	if len(e.Addresses) > 0 {
		return e.Addresses[0]
	}
	return ""
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// APIsConfig holds settings for external API integrations.
type APIsConfig struct {
	LLM struct {
		BaseURL    string `mapstructure:"base_url"`
		APIKey     string `mapstructure:"api_key"`
		Model      string `mapstructure:"model"`
		Timeout    int    `mapstructure:"timeout"` // milliseconds
		MaxRetries int    `mapstructure:"max_retries"`
	} `mapstructure:"llm"`
}

// IntegrationConfig holds settings for email/SMS lead fan-out.
type IntegrationConfig struct {
	AWS struct {
		Region string `mapstructure:"region"`
		SES    struct {
			Enabled   bool   `mapstructure:"enabled"`
			FromEmail string `mapstructure:"from_email"`
			ToEmail   string `mapstructure:"to_email"`
		} `mapstructure:"ses"`
		SNS struct {
			Enabled            bool   `mapstructure:"enabled"`
			TopicARN           string `mapstructure:"topic_arn"`
			DefaultSMSSenderID string `mapstructure:"default_sms_sender_id"`
		} `mapstructure:"sns"`
	} `mapstructure:"aws"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
