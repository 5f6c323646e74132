package gcp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cloud.google.com/go/vertexai/genai"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/techfourbate/MindSpero-V1/internal/pipeline"
)

// defaultModelName is the Gemini model behind both completion tasks.
const defaultModelName = "gemini-1.5-flash"

// VertexClient implements the pipeline's completion capability on Vertex AI.
// The two known tasks get pre-configured models: simplification runs cold
// for faithful rewrites, narration runs warmer for livelier speech.
type VertexClient struct {
	simplifierModel *genai.GenerativeModel
	narratorModel   *genai.GenerativeModel
	baseClient      *genai.Client
	modelName       string
}

// NewVertexClient creates a client holding all necessary models.
func NewVertexClient(ctx context.Context, projectID, region string) (*VertexClient, error) {
	if projectID == "" || region == "" {
		return nil, fmt.Errorf("NewVertexClient: projectID and region cannot be empty")
	}

	baseClient, err := genai.NewClient(ctx, projectID, region)
	if err != nil {
		return nil, fmt.Errorf("genai.NewClient: %w", err)
	}

	c := &VertexClient{baseClient: baseClient, modelName: defaultModelName}
	c.simplifierModel = c.configuredModel(pipeline.SimplifierSystemPrompt, 0.15)
	c.narratorModel = c.configuredModel(pipeline.NarratorSystemPrompt, 0.7)
	return c, nil
}

func (c *VertexClient) configuredModel(systemPrompt string, temperature float32) *genai.GenerativeModel {
	model := c.baseClient.GenerativeModel(c.modelName)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(systemPrompt)},
	}
	model.GenerationConfig = genai.GenerationConfig{
		Temperature: genai.Ptr(temperature),
	}
	return model
}

// Complete issues one generation call. Rate-limit responses are tagged so
// the retry layer can back off on its longer schedule.
func (c *VertexClient) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	model := c.modelFor(systemPrompt)
	resp, err := model.GenerateContent(ctx, genai.Text(userPrompt))
	if err != nil {
		if status.Code(err) == codes.ResourceExhausted {
			return "", errors.Join(pipeline.ErrRateLimited, err)
		}
		return "", fmt.Errorf("failed to generate content from gemini: %w", err)
	}

	text := extractText(resp)
	if refusalReason, refused := detectRefusal(text); refused {
		return "", fmt.Errorf("gemini response indicates refusal (%q)", refusalReason)
	}
	return text, nil
}

func (c *VertexClient) modelFor(systemPrompt string) *genai.GenerativeModel {
	switch systemPrompt {
	case pipeline.SimplifierSystemPrompt:
		return c.simplifierModel
	case pipeline.NarratorSystemPrompt:
		return c.narratorModel
	default:
		return c.configuredModel(systemPrompt, 0.15)
	}
}

func (c *VertexClient) Close() error {
	if c.baseClient != nil {
		return c.baseClient.Close()
	}
	return nil
}

// extractText concatenates the text parts of the first candidate.
func extractText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			sb.WriteString(string(txt))
		}
	}
	return strings.TrimSpace(sb.String())
}

// detectRefusal is a sanity check for the model declining the task. A
// refusal must fail the call rather than flow into the output document.
func detectRefusal(text string) (string, bool) {
	refusalPhrases := []string{
		"i am unable to",
		"i cannot fulfill",
		"i cannot answer",
		"i cannot provide",
		"as a large language model",
	}
	lower := strings.ToLower(text)
	for _, phrase := range refusalPhrases {
		if strings.Contains(lower, phrase) {
			return phrase, true
		}
	}
	return "", false
}
