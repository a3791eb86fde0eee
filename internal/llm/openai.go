package llm

import (
	"context"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/responses"
	"github.com/openai/openai-go/v3/shared"

	"github.com/swairshah/zotero-mcp-server/internal/logger"
)

// SummarizeText generates a short prose summary of extracted paper text.
func SummarizeText(ctx context.Context, apiKey, text string, log logger.Logger) (string, error) {
	log.Debug("Calling OpenAI API for summarization (content length: %d chars)", len(text))
	client := openai.NewClient(option.WithAPIKey(apiKey))
	response, err := client.Responses.New(ctx, responses.ResponseNewParams{
		Model: shared.ChatModelGPT5Mini,
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: responses.ResponseInputParam{
				responses.ResponseInputItemParamOfMessage(
					responses.ResponseInputMessageContentListParam{
						responses.ResponseInputContentParamOfInputText(`Summarize this academic text into 1-3 paragraphs. It should be coherent, concise, accurately reflect the original content, and use a detached academic tone. This should be in expository prose, not point form. No lists, just coherent sentences and paragraphs.

` + text),
					},
					"user",
				),
			},
		},
	})
	if err != nil {
		log.Error("Failed to generate summary: %v", err)
		return "", err
	}
	log.Info("Successfully generated summary")
	return response.OutputText(), nil
}
