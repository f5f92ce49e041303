package ai

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"
	"github.com/sirupsen/logrus"

	"github.com/example/lembra/pkg/models"
)

var validateFunction = openai.FunctionDefinition{
	Name:        "validate_phrase",
	Description: "Judge the quality of a generated Portuguese practice phrase and its Russian translation.",
	Parameters: jsonschema.Definition{
		Type: jsonschema.Object,
		Properties: map[string]jsonschema.Definition{
			"is_natural": {
				Type:        jsonschema.Boolean,
				Description: "True if the Portuguese phrase sounds natural to a native speaker.",
			},
			"is_meaningful": {
				Type:        jsonschema.Boolean,
				Description: "True if the phrase carries real conversational meaning.",
			},
			"is_logical": {
				Type:        jsonschema.Boolean,
				Description: "True if the phrase is logically coherent.",
			},
			"translation_natural": {
				Type:        jsonschema.Boolean,
				Description: "True if the Russian translation reads naturally.",
			},
			"reason": {
				Type:        jsonschema.String,
				Description: "Short explanation of the judgment.",
			},
		},
		Required: []string{"is_natural", "is_meaningful", "is_logical", "translation_natural", "reason"},
	},
}

type phraseJudgment struct {
	IsNatural          bool   `json:"is_natural"`
	IsMeaningful       bool   `json:"is_meaningful"`
	IsLogical          bool   `json:"is_logical"`
	TranslationNatural bool   `json:"translation_natural"`
	Reason             string `json:"reason"`
}

// ValidatePhrase judges a generated phrase on four axes and accepts it only
// when all four are true. The validator is a non-critical quality gate:
// a missing credential, a malformed response or a transport failure all
// default to accept so the study flow is never blocked.
func (c *Client) ValidatePhrase(ctx context.Context, phrase *models.GeneratedPhrase) bool {
	client, err := c.api()
	if err != nil {
		logrus.WithError(err).Debug("phrase validation unavailable, accepting")
		return true
	}

	judgment, err := withRetry(1, func(int) (*phraseJudgment, error) {
		return c.requestJudgment(ctx, client, phrase)
	})
	if err != nil {
		logrus.WithError(err).Debug("phrase validation failed, accepting")
		return true
	}

	ok := judgment.IsNatural && judgment.IsMeaningful && judgment.IsLogical && judgment.TranslationNatural
	if !ok {
		logrus.WithField("reason", judgment.Reason).Debug("phrase rejected by validator")
	}
	return ok
}

func (c *Client) requestJudgment(ctx context.Context, client *openai.Client, phrase *models.GeneratedPhrase) (*phraseJudgment, error) {
	resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleSystem,
				Content: "You are a strict reviewer of Portuguese learning material. Judge the given phrase and its " +
					"Russian translation for naturalness, meaningfulness, logical coherence and translation quality.",
			},
			{
				Role: openai.ChatMessageRoleUser,
				Content: fmt.Sprintf("Portuguese: %q\nRussian: %q\n\nIs this a natural, meaningful, logically coherent "+
					"conversational phrase with a natural Russian translation?", phrase.Portuguese, phrase.Russian),
			},
		},
		Functions:    []openai.FunctionDefinition{validateFunction},
		FunctionCall: openai.FunctionCall{Name: validateFunction.Name},
	})
	if err != nil {
		return nil, retryable("request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, retryable("no response choices returned")
	}
	fc := resp.Choices[0].Message.FunctionCall
	if fc == nil || fc.Arguments == "" {
		return nil, retryable("no function call result in completion")
	}
	var judgment phraseJudgment
	if err := json.Unmarshal([]byte(fc.Arguments), &judgment); err != nil {
		return nil, retryable("could not parse function call arguments: %w", err)
	}
	return &judgment, nil
}
