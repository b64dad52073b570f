package advisory

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const defaultEndpoint = "https://generativelanguage.googleapis.com/v1beta/models/gemini-1.5-flash:generateContent"

// GeminiProvider chama a API REST do Gemini para redigir a orientação.
type GeminiProvider struct {
	apiKey   string
	endpoint string
	client   *http.Client
}

// NewGeminiProvider cria o provedor. Chave vazia devolve nil: o chamador
// deve cair no StaticProvider.
func NewGeminiProvider(apiKey string) *GeminiProvider {
	if strings.TrimSpace(apiKey) == "" {
		return nil
	}
	return &GeminiProvider{
		apiKey:   apiKey,
		endpoint: defaultEndpoint,
		client:   &http.Client{Timeout: 15 * time.Second},
	}
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
	Config   geminiGenConfig `json:"generationConfig"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGenConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Generate envia o resumo do aluno e devolve o texto da primeira candidata.
func (g *GeminiProvider) Generate(ctx context.Context, resumo string) (string, error) {
	prompt := "Você é um orientador pedagógico. Com base no perfil abaixo, escreva uma " +
		"orientação curta (no máximo três frases) para a família acompanhar os estudos.\n\n" + resumo

	payload := geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
		Config:   geminiGenConfig{Temperature: 0.4, MaxOutputTokens: 256},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	url := g.endpoint + "?key=" + g.apiKey
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("gemini respondeu %s", resp.Status)
	}

	var decoded geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", err
	}

	if len(decoded.Candidates) == 0 || len(decoded.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("resposta vazia do gemini")
	}

	texto := strings.TrimSpace(decoded.Candidates[0].Content.Parts[0].Text)
	if texto == "" {
		return "", errors.New("resposta vazia do gemini")
	}
	return texto, nil
}
