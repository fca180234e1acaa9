package gcp

import (
	"context"
	"fmt"
	"strings"

	"cloud.google.com/go/vertexai/genai"
)

// VertexClient completes prompts with a Gemini model configured for JSON output.
type VertexClient struct {
	TicketModel *genai.GenerativeModel
	baseClient  *genai.Client
}

// VertexConfig configures the ticket extraction model.
type VertexConfig struct {
	ProjectID         string
	Region            string
	Model             string
	MaxOutputTokens   int
	SystemInstruction string
}

// NewVertexClient creates a new client holding the ticket extraction model.
func NewVertexClient(ctx context.Context, cfg VertexConfig) (*VertexClient, error) {
	if cfg.ProjectID == "" || cfg.Region == "" {
		return nil, fmt.Errorf("NewVertexClient: projectID and region cannot be empty")
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-1.5-pro"
	}

	baseClient, err := genai.NewClient(ctx, cfg.ProjectID, cfg.Region)
	if err != nil {
		return nil, fmt.Errorf("genai.NewClient: %w", err)
	}

	ticketModel := baseClient.GenerativeModel(cfg.Model)
	if cfg.SystemInstruction != "" {
		ticketModel.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(cfg.SystemInstruction)},
		}
	}
	ticketModel.GenerationConfig = genai.GenerationConfig{
		ResponseMIMEType: "application/json",
		Temperature:      genai.Ptr[float32](0.0),
	}
	if cfg.MaxOutputTokens > 0 {
		ticketModel.GenerationConfig.MaxOutputTokens = genai.Ptr(int32(cfg.MaxOutputTokens))
	}

	return &VertexClient{
		TicketModel: ticketModel,
		baseClient:  baseClient,
	}, nil
}

// Complete sends prompt to the ticket model and returns the concatenated text parts.
func (c *VertexClient) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := c.TicketModel.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate content from gemini: %w", err)
	}
	return responseText(resp)
}

func (c *VertexClient) Close() error {
	if c.baseClient != nil {
		return c.baseClient.Close()
	}
	return nil
}

// responseText extracts the text content of the first candidate.
func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("gemini returned no candidates")
	}
	content := resp.Candidates[0].Content
	if content == nil {
		return "", nil
	}
	var b strings.Builder
	for _, part := range content.Parts {
		if txt, ok := part.(genai.Text); ok {
			b.WriteString(string(txt))
		}
	}
	return strings.TrimSpace(b.String()), nil
}
