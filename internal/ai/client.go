// Package ai generates and validates practice phrases through the OpenAI
// chat-completions API using structured function-call responses.
package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"

	"github.com/example/lembra/pkg/models"
)

// maxGenerateAttempts bounds the retry loop around one generation request
const maxGenerateAttempts = 3

// Client issues generation and validation requests. It never mutates the
// store; its only side effect is the network call.
type Client struct {
	creds   CredentialStore
	baseURL string
	model   string

	// rnd drives word picking; the client is shared across requests, so
	// access goes through mu
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewClient creates a client. baseURL may be empty to use the public
// endpoint; model defaults to gpt-4o-mini.
func NewClient(creds CredentialStore, baseURL, model string) *Client {
	if model == "" {
		model = openai.GPT4oMini
	}
	return &Client{
		creds:   creds,
		baseURL: baseURL,
		model:   model,
		rnd:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// api builds an API client from the stored credential
func (c *Client) api() (*openai.Client, error) {
	key, err := c.creds.Get()
	if err != nil {
		return nil, fmt.Errorf("failed to load API key: %w", err)
	}
	if key == "" {
		return nil, ErrNoAPIKey
	}
	cfg := openai.DefaultConfig(key)
	if c.baseURL != "" {
		cfg.BaseURL = c.baseURL
	}
	return openai.NewClientWithConfig(cfg), nil
}

var phraseFunction = openai.FunctionDefinition{
	Name:        "generate_modified_phrase",
	Description: "Generate a modified version of the given Portuguese phrase and its Russian translation with one or a few words changed.",
	Parameters: jsonschema.Definition{
		Type: jsonschema.Object,
		Properties: map[string]jsonschema.Definition{
			"portuguese": {
				Type:        jsonschema.String,
				Description: "The modified Portuguese phrase with one word changed.",
			},
			"russian": {
				Type:        jsonschema.String,
				Description: "The Russian translation of the modified Portuguese phrase.",
			},
			"verbs": {
				Type:        jsonschema.String,
				Description: "The verbs in the example sentence, comma separated. Example: [ir assistir].",
			},
			"tense": {
				Type:        jsonschema.String,
				Description: "The grammatical tense of the example sentence, in Russian (future, past or present). Detect the tense of the used verb form.",
			},
		},
		Required: []string{"portuguese", "russian", "verbs", "tense"},
	},
}

// GeneratePhrase produces a variant of the given card's phrase that differs
// from every phrase in history. Up to three attempts are made; a truncated,
// filtered or payload-less completion is retried silently, and exhaustion
// surfaces as an ExhaustedError.
func (c *Client) GeneratePhrase(ctx context.Context, originalPortuguese, originalRussian string, history []models.GeneratedPhrase) (*models.GeneratedPhrase, error) {
	client, err := c.api()
	if err != nil {
		return nil, err
	}

	messages := []openai.ChatCompletionMessage{
		{
			Role: openai.ChatMessageRoleSystem,
			Content: "You are a helpful assistant for language learners. Generate a modified meaningful common " +
				"conversational version of the given Portuguese phrase by changing one or a few words, and provide " +
				"its Russian translation. The modification should be natural and grammatically correct. IMPORTANT: " +
				"Do not repeat any phrases that have already been generated. Also provide the verbs used in the " +
				"phrase and the grammatical tense.",
		},
		{
			Role: openai.ChatMessageRoleUser,
			Content: fmt.Sprintf(`Original Portuguese: "%s"

Generate a modified conversational common meaningful version by changing one or a few meaningful words (maybe with prepositions, like change "Eu" to "A gente" or vice versa or the main noun and the according verb) or change the tense from present to past or conversational future (ir + infinitive) or use antonyms (avoid using synonyms, avoid using "NO/NAO") in the Portuguese phrase and provide its Russian translation. Ensure that the modified phrase is not the same as the original phrase. Also identify the verbs used and the grammatical tense. Use the verb in the correct form for the tense with the correct conjugation.%s`,
				originalPortuguese, exclusionList(history)),
		},
	}

	return withRetry(maxGenerateAttempts, func(int) (*models.GeneratedPhrase, error) {
		return c.requestPhrase(ctx, client, messages)
	})
}

// GenerateInterestingWordsPhrase produces a fresh phrase built around one or
// two randomly picked words from the student's interesting-words list.
func (c *Client) GenerateInterestingWordsPhrase(ctx context.Context, words []string, history []models.GeneratedPhrase) (*models.GeneratedPhrase, error) {
	if len(words) == 0 {
		return nil, fmt.Errorf("no interesting words to generate from")
	}
	client, err := c.api()
	if err != nil {
		return nil, err
	}

	chosen := c.pickWords(words)
	messages := []openai.ChatCompletionMessage{
		{
			Role: openai.ChatMessageRoleSystem,
			Content: "You are a helpful assistant for language learners. Generate a meaningful common conversational " +
				"Portuguese phrase that naturally incorporates the given vocabulary words, and provide its Russian " +
				"translation. The phrase must be natural and grammatically correct. IMPORTANT: Do not repeat any " +
				"phrases that have already been generated. Also provide the verbs used in the phrase and the " +
				"grammatical tense.",
		},
		{
			Role: openai.ChatMessageRoleUser,
			Content: fmt.Sprintf(`Create a common conversational Portuguese phrase that naturally uses the following words: %s.

The phrase should be something people actually say in everyday conversation. Provide its Russian translation, the verbs used and the grammatical tense.%s`,
				strings.Join(chosen, ", "), exclusionList(history)),
		},
	}

	return withRetry(maxGenerateAttempts, func(int) (*models.GeneratedPhrase, error) {
		return c.requestPhrase(ctx, client, messages)
	})
}

// requestPhrase performs one structured-output request. Every failure mode
// other than a usable payload is reported as retryable.
func (c *Client) requestPhrase(ctx context.Context, client *openai.Client, messages []openai.ChatCompletionMessage) (*models.GeneratedPhrase, error) {
	resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:        c.model,
		Messages:     messages,
		Functions:    []openai.FunctionDefinition{phraseFunction},
		FunctionCall: openai.FunctionCall{Name: phraseFunction.Name},
		Temperature:  1.0,
	})
	if err != nil {
		return nil, retryable("request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, retryable("no response choices returned")
	}

	choice := resp.Choices[0]
	switch choice.FinishReason {
	case openai.FinishReasonStop, openai.FinishReasonFunctionCall:
		// usable only when a structured payload follows
	default:
		// length, content_filter, null or anything unrecognized
		return nil, retryable("completion ended with finish_reason %q", choice.FinishReason)
	}

	fc := choice.Message.FunctionCall
	if fc == nil || fc.Arguments == "" {
		return nil, retryable("no function call result in completion")
	}

	var args struct {
		Portuguese string `json:"portuguese"`
		Russian    string `json:"russian"`
		Verbs      string `json:"verbs"`
		Tense      string `json:"tense"`
	}
	if err := json.Unmarshal([]byte(fc.Arguments), &args); err != nil {
		return nil, retryable("could not parse function call arguments: %w", err)
	}

	return &models.GeneratedPhrase{
		Portuguese: decodeUnicodeEscapes(args.Portuguese),
		Russian:    decodeUnicodeEscapes(args.Russian),
		Verbs:      decodeUnicodeEscapes(args.Verbs),
		Tense:      decodeUnicodeEscapes(args.Tense),
	}, nil
}

// exclusionList renders the session history as an enumerated avoid-list
// appended to the user prompt
func exclusionList(history []models.GeneratedPhrase) string {
	if len(history) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("\n\nAlready generated phrases (avoid these):\n")
	for i, p := range history {
		fmt.Fprintf(&b, "%d. Portuguese: %q | Russian: %q\n", i+1, p.Portuguese, p.Russian)
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// pickWords selects 1 or 2 words at random; the count itself is random too
func (c *Client) pickWords(words []string) []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 1 + c.rnd.Intn(2)
	if n > len(words) {
		n = len(words)
	}
	shuffled := make([]string, len(words))
	copy(shuffled, words)
	c.rnd.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	return shuffled[:n]
}

// decodeUnicodeEscapes converts \uXXXX sequences left in model output into
// the characters they stand for. Adjacent high/low surrogate escapes combine
// into the full code point.
func decodeUnicodeEscapes(s string) string {
	if !strings.Contains(s, `\u`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		if s[i] == '\\' && i+5 < len(s) && s[i+1] == 'u' && isHex(s[i+2:i+6]) {
			v, _ := strconv.ParseUint(s[i+2:i+6], 16, 32)
			r := rune(v)
			size := 6
			if utf16.IsSurrogate(r) && i+11 < len(s) && s[i+6] == '\\' && s[i+7] == 'u' && isHex(s[i+8:i+12]) {
				v2, _ := strconv.ParseUint(s[i+8:i+12], 16, 32)
				if combined := utf16.DecodeRune(r, rune(v2)); combined != utf8.RuneError {
					r = combined
					size = 12
				}
			}
			b.WriteRune(r)
			i += size
			continue
		}
		b.WriteByte(s[i])
		i++
	}
	return b.String()
}

func isHex(s string) bool {
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'f', r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}
