package imagegen

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// ImagenProvider calls the Google Imagen predict endpoint. Responses carry a
// predictions array of base64-encoded images.
type ImagenProvider struct {
	apiKey string
	model  string
	client *http.Client
}

type predictRequest struct {
	Instances  []predictInstance `json:"instances"`
	Parameters predictParameters `json:"parameters"`
}

type predictInstance struct {
	Prompt string `json:"prompt"`
}

type predictParameters struct {
	SampleCount int `json:"sampleCount"`
}

type predictResponse struct {
	Predictions []struct {
		BytesBase64Encoded string `json:"bytesBase64Encoded"`
	} `json:"predictions"`
}

func NewImagenProvider(apiKey string, model string, client *http.Client) Provider {
	if model == "" {
		model = "imagen-3.0-generate-001"
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &ImagenProvider{
		apiKey: apiKey,
		model:  model,
		client: client,
	}
}

func (p *ImagenProvider) Generate(ctx context.Context, prompt string) ([]byte, error) {
	if p.apiKey == "" {
		return nil, &ProviderError{Status: 0, Message: "image generation api key is not configured"}
	}

	reqBody := predictRequest{
		Instances:  []predictInstance{{Prompt: prompt}},
		Parameters: predictParameters{SampleCount: 1},
	}
	reqJson, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf(
		"https://generativelanguage.googleapis.com/v1beta/models/%s:predict",
		p.model,
	)

	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewBuffer(reqJson))
	if err != nil {
		return nil, err
	}
	req.Header.Set("x-goog-api-key", p.apiKey)
	req.Header.Set("Content-Type", "application/json")

	res, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	resByte, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}

	if res.StatusCode != http.StatusOK {
		return nil, &ProviderError{Status: res.StatusCode, Message: string(resByte)}
	}

	var parsed predictResponse
	if err := json.Unmarshal(resByte, &parsed); err != nil {
		return nil, err
	}

	if len(parsed.Predictions) == 0 {
		return nil, &ProviderError{Status: res.StatusCode, Message: "empty predictions"}
	}

	payload, err := base64.StdEncoding.DecodeString(parsed.Predictions[0].BytesBase64Encoded)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image payload: %w", err)
	}
	return payload, nil
}
