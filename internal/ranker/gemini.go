package ranker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Client ranks search candidates for a query. Implementations must not fail:
// when ranking is impossible they return the default result.
type Client interface {
	Rank(ctx context.Context, query string, universities []UniversityContext, programs []ProgramContext) *Result
}

// maxContextItems caps how many candidates of each kind are shown to the model.
const maxContextItems = 10

// GeminiClient implements Client against the Gemini generateContent REST API.
type GeminiClient struct {
	endpoint   string
	model      string
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
	fallbacks  prometheus.Counter
}

// GeminiOption configures a GeminiClient.
type GeminiOption func(*GeminiClient)

// WithHTTPClient overrides the HTTP client, mainly for tests.
func WithHTTPClient(c *http.Client) GeminiOption {
	return func(g *GeminiClient) { g.httpClient = c }
}

// WithFallbackCounter records fallbacks to the given counter.
func WithFallbackCounter(c prometheus.Counter) GeminiOption {
	return func(g *GeminiClient) { g.fallbacks = c }
}

// NewGeminiClient creates a Gemini-backed ranking client.
// An empty apiKey disables remote calls entirely: Rank always falls back.
func NewGeminiClient(endpoint, model, apiKey string, timeout time.Duration, logger *slog.Logger, opts ...GeminiOption) *GeminiClient {
	if logger == nil {
		logger = slog.Default()
	}
	g := &GeminiClient{
		endpoint:   strings.TrimRight(endpoint, "/"),
		model:      model,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Rank asks the model to order the candidates for the query. Any failure,
// from transport errors to malformed responses, degrades to DefaultResult so
// search never breaks on the ranking dependency.
func (g *GeminiClient) Rank(ctx context.Context, query string, universities []UniversityContext, programs []ProgramContext) *Result {
	if g.apiKey == "" {
		return DefaultResult(universities, programs)
	}

	result, err := g.rank(ctx, query, universities, programs)
	if err != nil {
		g.logger.Warn("ranking failed, using default order",
			slog.String("error", err.Error()),
			slog.Int("universities", len(universities)),
			slog.Int("programs", len(programs)))
		if g.fallbacks != nil {
			g.fallbacks.Inc()
		}
		return DefaultResult(universities, programs)
	}
	return result
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

func (g *GeminiClient) rank(ctx context.Context, query string, universities []UniversityContext, programs []ProgramContext) (*Result, error) {
	prompt := buildPrompt(query, universities, programs)

	body, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	url := fmt.Sprintf("%s/%s:generateContent?key=%s", g.endpoint, g.model, g.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var gr geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&gr); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(gr.Candidates) == 0 || len(gr.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("empty response")
	}

	result, err := parseResult(gr.Candidates[0].Content.Parts[0].Text)
	if err != nil {
		return nil, err
	}
	result.sanitize(universities, programs)
	return result, nil
}

// idList accepts both JSON strings and numbers as IDs, since models do not
// reliably quote them.
type idList []string

func (l *idList) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		var s string
		if err := json.Unmarshal(item, &s); err == nil {
			out = append(out, s)
			continue
		}
		var n json.Number
		if err := json.Unmarshal(item, &n); err == nil {
			out = append(out, n.String())
			continue
		}
		return fmt.Errorf("id is neither string nor number: %s", item)
	}
	*l = out
	return nil
}

// parseResult extracts the JSON payload from the model's text, tolerating
// markdown code fences, and validates its structure.
func parseResult(text string) (*Result, error) {
	jsonStr := strings.TrimSpace(text)
	if strings.HasPrefix(jsonStr, "```json") {
		jsonStr = strings.TrimPrefix(jsonStr, "```json")
		jsonStr = strings.TrimSuffix(strings.TrimSpace(jsonStr), "```")
	} else if strings.HasPrefix(jsonStr, "```") {
		jsonStr = strings.TrimPrefix(jsonStr, "```")
		jsonStr = strings.TrimSuffix(strings.TrimSpace(jsonStr), "```")
	}

	var keys map[string]json.RawMessage
	if err := json.Unmarshal([]byte(jsonStr), &keys); err != nil {
		return nil, fmt.Errorf("response is not valid JSON: %w", err)
	}
	for _, required := range []string{"analysis", "ranked_universities", "ranked_programs", "suggested_filters"} {
		if _, ok := keys[required]; !ok {
			return nil, fmt.Errorf("response missing %q", required)
		}
	}

	var payload struct {
		Analysis           string           `json:"analysis"`
		RankedUniversities idList           `json:"ranked_universities"`
		RankedPrograms     idList           `json:"ranked_programs"`
		SuggestedFilters   SuggestedFilters `json:"suggested_filters"`
	}
	if err := json.Unmarshal([]byte(jsonStr), &payload); err != nil {
		return nil, fmt.Errorf("response has unexpected shape: %w", err)
	}

	return &Result{
		Analysis:           payload.Analysis,
		RankedUniversities: payload.RankedUniversities,
		RankedPrograms:     payload.RankedPrograms,
		SuggestedFilters:   payload.SuggestedFilters,
	}, nil
}

// buildPrompt renders the ranking instructions with at most maxContextItems
// candidates of each kind.
func buildPrompt(query string, universities []UniversityContext, programs []ProgramContext) string {
	var ctx strings.Builder
	ctx.WriteString("Universités disponibles :\n")
	for i, u := range universities {
		if i >= maxContextItems {
			break
		}
		fmt.Fprintf(&ctx, "- ID: %s\n  Nom: %s\n  Location: %s\n", u.ID, u.Name, u.Location)
	}
	ctx.WriteString("\nProgrammes disponibles :\n")
	for i, p := range programs {
		if i >= maxContextItems {
			break
		}
		tuition := "N/A"
		if p.Tuition != nil {
			tuition = fmt.Sprintf("%.0f", *p.Tuition)
		}
		fmt.Fprintf(&ctx, "- ID: %s\n  Nom: %s\n  Niveau: %s\n  Frais: %s€\n", p.ID, p.Name, p.DegreeLevel, tuition)
	}

	return fmt.Sprintf(`En tant qu'assistant spécialisé dans l'orientation universitaire, analysez la requête suivante : %q

Voici les données disponibles :
%s

Instructions :
1. Analysez l'intention de recherche : mots-clés importants, domaines d'études ou carrières liés, connexions indirectes avec les formations disponibles.
2. Classez les universités et les programmes par pertinence décroissante pour cette requête.
3. Proposez des filtres facilitant l'exploration des résultats.

Votre analyse doit proposer des alternatives pertinentes même si la requête n'est pas directement liée aux études : pour un métier, suggérez les formations qui y mènent ; pour un centre d'intérêt, des domaines d'études connexes.

Répondez UNIQUEMENT avec un JSON ayant cette structure exacte :
{
    "analysis": "Analyse détaillée en français expliquant les liens entre la requête et les résultats proposés",
    "ranked_universities": ["id1", "id2"],
    "ranked_programs": ["id1", "id2"],
    "suggested_filters": {
        "degree_levels": ["niveau1"],
        "locations": ["ville1"],
        "tuition_range": {"min": 0, "max": 0}
    }
}`, query, ctx.String())
}
