// Package ai is the typed client for the generative AI upstream: one-shot
// completion, web-grounded completion with source links, ordered streaming
// completion, and text-to-speech returning raw PCM audio.
package ai

import (
	"bufio"
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"joylife/backend/internal/config"
)

// ErrNotActivated reports a missing or rejected API key. Callers treat it
// differently from transport failures: it gates further chat attempts until
// the user re-activates.
var ErrNotActivated = errors.New("ai service not activated")

const (
	RoleUser  = "user"
	RoleModel = "model"
)

type Message struct {
	Role string
	Text string
}

type Source struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// GroundedAnswer is a completion accompanied by the web citations the model
// consulted.
type GroundedAnswer struct {
	Text    string   `json:"text"`
	Sources []Source `json:"sources"`
}

// Audio is a decoded text-to-speech payload. Data is raw 16-bit PCM at
// SampleRate.
type Audio struct {
	Data       []byte
	SampleRate int
}

type Client struct {
	apiKey     string
	baseURL    string
	model      string
	ttsModel   string
	sampleRate int
	client     *http.Client
}

func NewClient(cfg config.AIConfig) *Client {
	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		model:      cfg.Model,
		ttsModel:   cfg.TTSModel,
		sampleRate: cfg.TTSSampleRate,
		client: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

// Activated reports whether an API key is configured.
func (c *Client) Activated() bool {
	return c.apiKey != ""
}

// request/response wire structures for the upstream API.

type generateRequest struct {
	Contents         []wireContent     `json:"contents"`
	Tools            []wireTool        `json:"tools,omitempty"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type wireContent struct {
	Role  string     `json:"role,omitempty"`
	Parts []wirePart `json:"parts"`
}

type wirePart struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inlineData,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type wireTool struct {
	GoogleSearch *struct{} `json:"google_search,omitempty"`
}

type generationConfig struct {
	ResponseModalities []string      `json:"responseModalities,omitempty"`
	SpeechConfig       *speechConfig `json:"speechConfig,omitempty"`
}

type speechConfig struct {
	VoiceConfig voiceConfig `json:"voiceConfig"`
}

type voiceConfig struct {
	PrebuiltVoiceConfig prebuiltVoiceConfig `json:"prebuiltVoiceConfig"`
}

type prebuiltVoiceConfig struct {
	VoiceName string `json:"voiceName"`
}

type generateResponse struct {
	Candidates []struct {
		Content           wireContent `json:"content"`
		GroundingMetadata *struct {
			GroundingChunks []struct {
				Web *struct {
					URI   string `json:"uri"`
					Title string `json:"title"`
				} `json:"web"`
			} `json:"groundingChunks"`
		} `json:"groundingMetadata"`
	} `json:"candidates"`
	Error *wireError `json:"error"`
}

type wireError struct {
	Code    int    `json:"code"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Complete sends the conversation history and returns the full reply text.
func (c *Client) Complete(ctx context.Context, history []Message) (string, error) {
	req := generateRequest{Contents: toWire(history)}

	var resp generateResponse
	if err := c.post(ctx, c.model, "generateContent", "", &req, &resp); err != nil {
		return "", err
	}
	text := joinedText(&resp)
	if text == "" {
		return "", errors.New("ai returned no content")
	}
	return text, nil
}

// CompleteGrounded runs a one-shot completion with the web search tool and
// collects the source links from the response envelope.
func (c *Client) CompleteGrounded(ctx context.Context, query string) (*GroundedAnswer, error) {
	req := generateRequest{
		Contents: toWire([]Message{{Role: RoleUser, Text: query}}),
		Tools:    []wireTool{{GoogleSearch: &struct{}{}}},
	}

	var resp generateResponse
	if err := c.post(ctx, c.model, "generateContent", "", &req, &resp); err != nil {
		return nil, err
	}

	answer := &GroundedAnswer{
		Text:    joinedText(&resp),
		Sources: make([]Source, 0),
	}
	if answer.Text == "" {
		return nil, errors.New("ai returned no content")
	}

	if len(resp.Candidates) > 0 && resp.Candidates[0].GroundingMetadata != nil {
		for _, chunk := range resp.Candidates[0].GroundingMetadata.GroundingChunks {
			if chunk.Web == nil || chunk.Web.URI == "" {
				continue
			}
			answer.Sources = append(answer.Sources, Source{
				Title: chunk.Web.Title,
				URL:   chunk.Web.URI,
			})
		}
	}

	return answer, nil
}

// Stream sends the conversation history and invokes emit once per text
// fragment, in arrival order, until the stream ends or fails. The transport
// guarantees order; no reordering happens here.
func (c *Client) Stream(ctx context.Context, history []Message, emit func(chunk string)) error {
	req := generateRequest{Contents: toWire(history)}

	body, err := c.send(ctx, c.model, "streamGenerateContent", "alt=sse", &req)
	if err != nil {
		return err
	}
	defer body.Close()

	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if payload == "" {
			continue
		}

		var resp generateResponse
		if err := json.Unmarshal([]byte(payload), &resp); err != nil {
			return fmt.Errorf("parse stream chunk: %w", err)
		}
		if resp.Error != nil {
			return upstreamError(resp.Error)
		}
		if chunk := joinedText(&resp); chunk != "" {
			emit(chunk)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read stream: %w", err)
	}
	return nil
}

// Speak converts text to audio. The upstream returns base64-encoded raw PCM
// at a fixed sample rate; the caller plays it once.
func (c *Client) Speak(ctx context.Context, text string) (*Audio, error) {
	req := generateRequest{
		Contents: toWire([]Message{{Role: RoleUser, Text: text}}),
		GenerationConfig: &generationConfig{
			ResponseModalities: []string{"AUDIO"},
			SpeechConfig: &speechConfig{
				VoiceConfig: voiceConfig{
					PrebuiltVoiceConfig: prebuiltVoiceConfig{VoiceName: "Kore"},
				},
			},
		},
	}

	var resp generateResponse
	if err := c.post(ctx, c.ttsModel, "generateContent", "", &req, &resp); err != nil {
		return nil, err
	}

	for _, candidate := range resp.Candidates {
		for _, part := range candidate.Content.Parts {
			if part.InlineData == nil || part.InlineData.Data == "" {
				continue
			}
			raw, err := base64.StdEncoding.DecodeString(part.InlineData.Data)
			if err != nil {
				return nil, fmt.Errorf("decode audio payload: %w", err)
			}
			return &Audio{Data: raw, SampleRate: c.sampleRate}, nil
		}
	}
	return nil, errors.New("ai returned no audio")
}

func (c *Client) post(ctx context.Context, model, op, query string, req *generateRequest, out *generateResponse) error {
	body, err := c.send(ctx, model, op, query, req)
	if err != nil {
		return err
	}
	defer body.Close()

	raw, err := io.ReadAll(body)
	if err != nil {
		return fmt.Errorf("read ai response: %w", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("parse ai response: %w", err)
	}
	if out.Error != nil {
		return upstreamError(out.Error)
	}
	return nil
}

func (c *Client) send(ctx context.Context, model, op, query string, req *generateRequest) (io.ReadCloser, error) {
	if !c.Activated() {
		return nil, ErrNotActivated
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal ai request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:%s", c.baseURL, model, op)
	if query != "" {
		url += "?" + query
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build ai request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("call ai service: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		raw, _ := io.ReadAll(resp.Body)
		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
			return nil, ErrNotActivated
		}
		var envelope generateResponse
		if json.Unmarshal(raw, &envelope) == nil && envelope.Error != nil {
			return nil, upstreamError(envelope.Error)
		}
		return nil, fmt.Errorf("ai service returned status %d: %s", resp.StatusCode, string(raw))
	}

	return resp.Body, nil
}

func upstreamError(we *wireError) error {
	if we.Status == "UNAUTHENTICATED" || we.Status == "PERMISSION_DENIED" ||
		strings.Contains(we.Message, "API key") {
		return ErrNotActivated
	}
	return fmt.Errorf("ai service error %s: %s", we.Status, we.Message)
}

func toWire(history []Message) []wireContent {
	contents := make([]wireContent, 0, len(history))
	for _, msg := range history {
		contents = append(contents, wireContent{
			Role:  msg.Role,
			Parts: []wirePart{{Text: msg.Text}},
		})
	}
	return contents
}

func joinedText(resp *generateResponse) string {
	var b strings.Builder
	for _, candidate := range resp.Candidates {
		for _, part := range candidate.Content.Parts {
			b.WriteString(part.Text)
		}
	}
	return b.String()
}
