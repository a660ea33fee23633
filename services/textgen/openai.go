package textgensvc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
)

var completionsURL = "https://api.openai.com/v1/chat/completions"

type openAIService struct {
	client *http.Client
	key    string
	model  string
	logger core.Logger
}

var _ core.TextGenerator = (*openAIService)(nil)

func NewOpenAIService(logger core.Logger) *openAIService {
	return &openAIService{
		client: &http.Client{Timeout: core.Conf.OpenAI.Timeout},
		key:    core.Conf.OpenAI.ApiKey,
		model:  core.Conf.OpenAI.Model,
		logger: logger,
	}
}

type (
	chatMessage struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}

	chatRequest struct {
		Model       string        `json:"model"`
		Messages    []chatMessage `json:"messages"`
		Temperature float64       `json:"temperature"`
	}

	chatResponse struct {
		Choices []struct {
			Message chatMessage `json:"message"`
		} `json:"choices"`
	}
)

func (svc *openAIService) GenerateText(ctx context.Context, system, prompt string) (string, error) {
	if svc.key == "" {
		return "", errors.Wrap(core.ErrTextGenFailed, "API key missing")
	}

	body, err := json.Marshal(chatRequest{
		Model: svc.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: prompt},
		},
		Temperature: 0.2,
	})
	if err != nil {
		return "", errors.Wrap(err, "marshalling request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, completionsURL, bytes.NewReader(body))
	if err != nil {
		return "", errors.Wrap(err, "building request")
	}
	req.Header.Set("Authorization", "Bearer "+svc.key)
	req.Header.Set("Content-Type", "application/json")

	res, err := svc.client.Do(req)
	if err != nil {
		if isTimeout(ctx, err) {
			return "", core.ErrTextGenTimeout
		}
		svc.logger.Error(fmt.Sprintf("calling provider: %v", err), err)
		return "", core.ErrTextGenFailed
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode != http.StatusOK {
		svc.logger.Error(fmt.Sprintf("provider returned status %d", res.StatusCode))
		return "", core.ErrTextGenFailed
	}

	var data chatResponse
	if err = json.NewDecoder(res.Body).Decode(&data); err != nil {
		svc.logger.Error(fmt.Sprintf("decoding provider response: %v", err), err)
		return "", core.ErrTextGenFailed
	}
	if len(data.Choices) == 0 || data.Choices[0].Message.Content == "" {
		return "", core.ErrTextGenFailed
	}
	return data.Choices[0].Message.Content, nil
}

func isTimeout(ctx context.Context, err error) bool {
	if ctx.Err() == context.DeadlineExceeded {
		return true
	}
	type timeout interface{ Timeout() bool }
	if terr, ok := errors.Cause(err).(timeout); ok {
		return terr.Timeout()
	}
	return false
}
