package llm

import (
	"fmt"
	"strings"
	"time"

	contractx "github.com/tanpawarit/restaurant-assistant/agent/contract"
	openrouterx "github.com/tanpawarit/restaurant-assistant/pkg/openrouter"
)

type Config struct {
	BaseURL            string        `envconfig:"BASE_URL" split_words:"true" default:"https://openrouter.ai/api/v1"`
	APIKey             string        `envconfig:"API_KEY" split_words:"true" required:"true"`
	Model              string        `envconfig:"MODEL" split_words:"true" required:"true"`
	MaxCompletionToken int           `envconfig:"MAX_COMPLETION_TOKEN" split_words:"true" default:"1000"`
	Temperature        float32       `envconfig:"TEMPERATURE" split_words:"true" default:"0.3"`
	Timeout            time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"30s"`
	SiteURL            string        `envconfig:"SITE_URL" split_words:"true"`
	SiteName           string        `envconfig:"SITE_NAME" split_words:"true"`

	TriageModel            string  `envconfig:"TRIAGE_MODEL" split_words:"true"`
	InformationModel       string  `envconfig:"INFORMATION_MODEL" split_words:"true"`
	OrderModel             string  `envconfig:"ORDER_MODEL" split_words:"true"`
	ReservationModel       string  `envconfig:"RESERVATION_MODEL" split_words:"true"`
	TriageTemperature      float32 `envconfig:"TRIAGE_TEMPERATURE" split_words:"true" default:"0"`
	InformationTemperature float32 `envconfig:"INFORMATION_TEMPERATURE" split_words:"true" default:"-1"`
	OrderTemperature       float32 `envconfig:"ORDER_TEMPERATURE" split_words:"true" default:"-1"`
	ReservationTemperature float32 `envconfig:"RESERVATION_TEMPERATURE" split_words:"true" default:"-1"`
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return fmt.Errorf("%w: llm api key is required", contractx.ErrValidation)
	}
	if strings.TrimSpace(c.Model) == "" {
		return fmt.Errorf("%w: default model is required", contractx.ErrValidation)
	}
	if c.MaxCompletionToken <= 0 {
		return fmt.Errorf("%w: max completion tokens must be positive", contractx.ErrValidation)
	}
	return nil
}

// OpenRouterFor resolves the model settings for one agent. Per-agent model
// names override the default model and a negative per-agent temperature
// keeps the default temperature.
func (c Config) OpenRouterFor(kind contractx.AgentKind) openrouterx.Config {
	modelName := strings.TrimSpace(c.Model)
	temp := c.Temperature

	override := func(m string, t float32) {
		if v := strings.TrimSpace(m); v != "" {
			modelName = v
		}
		if t >= 0 {
			temp = t
		}
	}
	switch kind {
	case contractx.AgentTriage:
		override(c.TriageModel, c.TriageTemperature)
	case contractx.AgentInformation:
		override(c.InformationModel, c.InformationTemperature)
	case contractx.AgentOrder:
		override(c.OrderModel, c.OrderTemperature)
	case contractx.AgentReservation:
		override(c.ReservationModel, c.ReservationTemperature)
	}

	maxCompletionToken := c.MaxCompletionToken
	return openrouterx.Config{
		BaseURL:            strings.TrimSpace(c.BaseURL),
		APIKey:             strings.TrimSpace(c.APIKey),
		Model:              modelName,
		MaxCompletionToken: &maxCompletionToken,
		Temperature:        temp,
		Timeout:            c.Timeout,
		SiteURL:            strings.TrimSpace(c.SiteURL),
		SiteName:           strings.TrimSpace(c.SiteName),
	}
}
