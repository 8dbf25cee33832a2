package analysis

import (
	"context"
	"log/slog"

	"github.com/presenca-digital/lista-presenca/meetings"
	"google.golang.org/genai"
)

const geminiModel = "gemini-3-flash-preview"

var _ Analyzer = &GeminiAnalyzer{}

type GeminiAnalyzer struct {
	client *genai.Client
	logger *slog.Logger
}

// NewGeminiAnalyzer builds the analyzer. An empty apiKey is not an error:
// the analyzer stays usable and answers every request with the
// missing-credential message.
func NewGeminiAnalyzer(ctx context.Context, apiKey string, logger *slog.Logger) (*GeminiAnalyzer, error) {
	if apiKey == "" {
		return &GeminiAnalyzer{logger: logger}, nil
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}

	return &GeminiAnalyzer{client: client, logger: logger}, nil
}

func (g *GeminiAnalyzer) AnalyzeAttendance(ctx context.Context, meetingName string, participants []meetings.Participant) (string, error) {
	if g.client == nil {
		return MsgMissingAPIKey, nil
	}
	if len(participants) == 0 {
		return MsgNoParticipants, nil
	}

	resp, err := g.client.Models.GenerateContent(ctx, geminiModel, genai.Text(buildPrompt(meetingName, participants)), nil)
	if err != nil {
		g.logger.Error("Gemini call failed", "error", err)
		return MsgConnectionError, nil
	}

	text := resp.Text()
	if text == "" {
		return MsgEmptyResponse, nil
	}
	return text, nil
}
