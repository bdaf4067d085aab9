// Package assistant answers free-form questions about the sailing area using
// Gemini with Google Maps grounding.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/riadevigo/buoyplanner/internal/config"
	"github.com/riadevigo/buoyplanner/pkg/core"
	"google.golang.org/genai"
)

const (
	// DefaultModel supports Google Maps grounding.
	DefaultModel = "gemini-2.5-flash"

	systemInstruction = "You are a helpful maritime assistant for the Ria de Vigo area in Spain. " +
		"Help users find coordinates, marinas, and points of interest. " +
		"If users ask for coordinates, provide them clearly."

	noResponseText   = "No response generated."
	fallbackLinkName = "Web Source"
	fallbackLinkURI  = "#"
)

// ErrNoAPIKey is returned when no Gemini key is configured.
var ErrNoAPIKey = errors.New("assistant api key not configured")

// Link is a source the answer was grounded on.
type Link struct {
	Title string `json:"title"`
	URI   string `json:"uri"`
}

// Reply is the model's answer.
type Reply struct {
	Text  string `json:"text"`
	Links []Link `json:"groundingLinks,omitempty"`
}

// ContentGenerator is the part of the Gemini client the assistant uses.
// *genai.Models satisfies it.
type ContentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Assistant sends single-turn questions to the model.
type Assistant struct {
	models ContentGenerator
	model  string
	log    *slog.Logger
}

// New wraps an existing generator.
func New(models ContentGenerator, model string, log *slog.Logger) *Assistant {
	if model == "" {
		model = DefaultModel
	}
	if log == nil {
		log = slog.Default()
	}
	return &Assistant{models: models, model: model, log: log}
}

// NewFromConfig creates a Gemini API client from cfg.
func NewFromConfig(ctx context.Context, cfg config.AssistantConfig, log *slog.Logger) (*Assistant, error) {
	if cfg.APIKey == "" {
		return nil, ErrNoAPIKey
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	return New(client.Models, cfg.Model, log), nil
}

// Ask sends message to the model. When loc is set, Maps retrieval is biased
// towards it.
func (a *Assistant) Ask(ctx context.Context, message string, loc *core.Position) (Reply, error) {
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemInstruction, genai.RoleUser),
		Tools:             []*genai.Tool{{GoogleMaps: &genai.GoogleMaps{}}},
	}
	if loc != nil {
		lat, lng := loc.Lat, loc.Lng
		cfg.ToolConfig = &genai.ToolConfig{
			RetrievalConfig: &genai.RetrievalConfig{
				LatLng: &genai.LatLng{Latitude: &lat, Longitude: &lng},
			},
		}
	}

	resp, err := a.models.GenerateContent(ctx, a.model, genai.Text(message), cfg)
	if err != nil {
		a.log.Error("gemini request failed", "model", a.model, "error", err)
		return Reply{}, fmt.Errorf("generating content: %w", err)
	}

	reply := Reply{Text: resp.Text(), Links: groundingLinks(resp)}
	if reply.Text == "" {
		reply.Text = noResponseText
	}
	a.log.Debug("gemini answered", "model", a.model, "links", len(reply.Links))
	return reply, nil
}

func groundingLinks(resp *genai.GenerateContentResponse) []Link {
	if len(resp.Candidates) == 0 || resp.Candidates[0].GroundingMetadata == nil {
		return nil
	}
	var links []Link
	for _, chunk := range resp.Candidates[0].GroundingMetadata.GroundingChunks {
		if chunk == nil || chunk.Web == nil {
			continue
		}
		l := Link{Title: chunk.Web.Title, URI: chunk.Web.URI}
		if l.Title == "" {
			l.Title = fallbackLinkName
		}
		if l.URI == "" {
			l.URI = fallbackLinkURI
		}
		links = append(links, l)
	}
	return links
}
