package ai

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sashabaranov/go-openai"
)

const captionPrompt = "Describe this image in one or two sentences."

// captionMaxTokens bounds the caption length; captions are indexed as
// retrieval content, not prose.
const captionMaxTokens = 100

// Caption generates a short text description for the image at the given
// path. Returns ErrEmptyResult when the model produces a blank caption, so
// the caller can skip the image and continue with the rest of the batch.
func (c *Client) Caption(ctx context.Context, imagePath string) (string, error) {
	data, err := os.ReadFile(imagePath)
	if err != nil {
		return "", fmt.Errorf("reading image %s: %w", imagePath, err)
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     c.config.CaptionModel,
		MaxTokens: captionMaxTokens,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You are a helpful assistant that describes images accurately.",
			},
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{
						Type: openai.ChatMessagePartTypeText,
						Text: captionPrompt,
					},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL: dataURL(imagePath, data),
						},
					},
				},
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("caption request: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", ErrEmptyResult
	}

	caption := strings.TrimSpace(resp.Choices[0].Message.Content)
	if caption == "" {
		return "", ErrEmptyResult
	}
	return caption, nil
}

// dataURL encodes image bytes as a base64 data URL for the vision API.
func dataURL(imagePath string, data []byte) string {
	mime := "image/jpeg"
	switch strings.ToLower(filepath.Ext(imagePath)) {
	case ".png":
		mime = "image/png"
	case ".gif":
		mime = "image/gif"
	case ".bmp":
		mime = "image/bmp"
	case ".tif", ".tiff":
		mime = "image/tiff"
	case ".webp":
		mime = "image/webp"
	}
	return fmt.Sprintf("data:%s;base64,%s", mime, base64.StdEncoding.EncodeToString(data))
}
