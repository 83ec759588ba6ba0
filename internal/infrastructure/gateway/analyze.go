package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mizuleaf/callscope/internal/config"
	"github.com/mizuleaf/callscope/internal/domain"
)

// analysisTimeout bounds the generateContent round trip; the upstream default
// is unbounded.
const analysisTimeout = 2 * time.Minute

const (
	analysisTemperature     = 0.2
	analysisMaxOutputTokens = 8192
)

// AnalysisGateway renders a transcript and rule set into one prompt, sends it
// to a generative-text API, and digs the JSON result out of the free text.
type AnalysisGateway struct {
	client   *http.Client
	endpoint string
	apiKey   string
	model    string
}

func NewAnalysisGateway(conf config.Analysis) *AnalysisGateway {
	return &AnalysisGateway{
		client:   &http.Client{Timeout: analysisTimeout},
		endpoint: strings.TrimRight(conf.Endpoint, "/"),
		apiKey:   conf.APIKey,
		model:    conf.Model,
	}
}

type generateRequest struct {
	Contents         []generateContent `json:"contents"`
	GenerationConfig generationConfig  `json:"generationConfig"`
}

type generateContent struct {
	Parts []generatePart `json:"parts"`
}

type generatePart struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []generatePart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// AnalyzeTranscript runs the rule set against the transcript. A response with
// no recognizable JSON object is a hard failure, never an empty result.
func (g *AnalysisGateway) AnalyzeTranscript(ctx context.Context, transcript []domain.TranscriptSegment, rules []domain.KnowledgeRule) (domain.AnalysisResult, error) {
	if g.apiKey == "" {
		return domain.AnalysisResult{}, fmt.Errorf("analysis API key not configured")
	}

	prompt := BuildAnalysisPrompt(transcript, rules)

	reqBody := generateRequest{
		Contents: []generateContent{
			{Parts: []generatePart{{Text: prompt}}},
		},
		GenerationConfig: generationConfig{
			Temperature:     analysisTemperature,
			MaxOutputTokens: analysisMaxOutputTokens,
		},
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return domain.AnalysisResult{}, err
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s", g.endpoint, g.model, g.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return domain.AnalysisResult{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return domain.AnalysisResult{}, fmt.Errorf("analysis request failed: %v", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.AnalysisResult{}, fmt.Errorf("failed to read analysis response: %v", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return domain.AnalysisResult{}, fmt.Errorf("analysis failed: %s", string(respBody))
	}

	var parsed generateResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return domain.AnalysisResult{}, fmt.Errorf("failed to decode analysis response: %v", err)
	}

	var text strings.Builder
	for _, candidate := range parsed.Candidates {
		for _, part := range candidate.Content.Parts {
			text.WriteString(part.Text)
		}
	}

	return ParseAnalysisResult(text.String())
}

// ParseAnalysisResult extracts the first top-level {...} span from the raw
// model output. Models wrap JSON in prose or code fences more often than not.
func ParseAnalysisResult(text string) (domain.AnalysisResult, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end < start {
		return domain.AnalysisResult{}, fmt.Errorf("failed to parse AI response: no JSON object found")
	}

	var result domain.AnalysisResult
	if err := json.Unmarshal([]byte(text[start:end+1]), &result); err != nil {
		return domain.AnalysisResult{}, fmt.Errorf("failed to parse AI response: %v", err)
	}

	return result, nil
}

// BuildAnalysisPrompt renders the fixed analysis prompt.
func BuildAnalysisPrompt(transcript []domain.TranscriptSegment, rules []domain.KnowledgeRule) string {
	var transcriptLines []string
	for _, seg := range transcript {
		speaker := seg.Speaker
		if speaker == "" {
			speaker = "話者"
		}
		transcriptLines = append(transcriptLines, fmt.Sprintf("[%s - %s] %s: %s",
			formatTimestamp(seg.StartMs), formatTimestamp(seg.EndMs), speaker, seg.Text))
	}

	var ruleLines []string
	for _, rule := range rules {
		line := fmt.Sprintf("- %s: %s", rule.Title, rule.Content)
		if rule.PromptInstructions != "" {
			line += fmt.Sprintf(" (%s)", rule.PromptInstructions)
		}
		ruleLines = append(ruleLines, line)
	}

	return fmt.Sprintf(`あなたは営業通話の品質分析AIです。以下の文字起こしを分析し、問題箇所を特定してください。

## 分析ルール
%s

## 文字起こし
%s

## 出力形式（JSON）
以下の形式で出力してください：
{
  "issues": [
    {
      "start_ms": 開始時間（ミリ秒）,
      "end_ms": 終了時間（ミリ秒）,
      "rule_id": "該当ルールID",
      "rule_name": "ルール名",
      "severity": "error" | "warning" | "info",
      "reason": "問題の理由",
      "suggestion": "改善提案"
    }
  ],
  "summary": "通話全体の要約（2-3文）"
}

JSONのみを出力してください。`, strings.Join(ruleLines, "\n"), strings.Join(transcriptLines, "\n"))
}

func formatTimestamp(ms int64) string {
	seconds := ms / 1000
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
