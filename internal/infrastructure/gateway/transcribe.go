package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/mizuleaf/callscope/internal/config"
	"github.com/mizuleaf/callscope/internal/domain"
)

// transcriptionTimeout bounds the whole upload-and-transcribe round trip.
// The upstream imposes no limit of its own, so this is the ceiling.
const transcriptionTimeout = 5 * time.Minute

// speakerChangeThresholdMs: 2秒以上の間隔で話者交代とみなす
const speakerChangeThresholdMs = 2000

var speakerLabels = []string{"担当者", "顧客"}

// TranscriptionGateway submits audio to a whisper-style speech-to-text API
// and converts the verbose segment output to millisecond timestamps.
type TranscriptionGateway struct {
	client   *http.Client
	endpoint string
	apiKey   string
	model    string
	language string
}

func NewTranscriptionGateway(conf config.Transcription) *TranscriptionGateway {
	return &TranscriptionGateway{
		client:   &http.Client{Timeout: transcriptionTimeout},
		endpoint: conf.Endpoint,
		apiKey:   conf.APIKey,
		model:    conf.Model,
		language: conf.Language,
	}
}

type verboseTranscription struct {
	Text     string `json:"text"`
	Segments []struct {
		Start float64 `json:"start"`
		End   float64 `json:"end"`
		Text  string  `json:"text"`
	} `json:"segments"`
}

// TranscribeFromURL downloads the full resource into memory and submits it
// for transcription. Callers are expected to hand over URLs that already
// passed the media download validation.
func (g *TranscriptionGateway) TranscribeFromURL(ctx context.Context, audioURL string) ([]domain.TranscriptSegment, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, audioURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch audio: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("failed to fetch audio: status %d", resp.StatusCode)
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read audio: %v", err)
	}

	filename := audioURL[strings.LastIndex(audioURL, "/")+1:]
	if filename == "" {
		filename = "audio.mp4"
	}

	return g.Transcribe(ctx, audio, filename)
}

// Transcribe submits raw audio bytes and returns speaker-labelled segments.
func (g *TranscriptionGateway) Transcribe(ctx context.Context, audio []byte, filename string) ([]domain.TranscriptSegment, error) {
	if g.apiKey == "" {
		return nil, fmt.Errorf("transcription API key not configured")
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	if err := writer.WriteField("model", g.model); err != nil {
		return nil, err
	}
	if err := writer.WriteField("response_format", "verbose_json"); err != nil {
		return nil, err
	}
	if err := writer.WriteField("language", g.language); err != nil {
		return nil, err
	}

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(audio); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("transcription request failed: %v", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read transcription response: %v", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("transcription failed: %s", string(respBody))
	}

	var parsed verboseTranscription
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode transcription response: %v", err)
	}

	var segments []domain.TranscriptSegment
	if len(parsed.Segments) > 0 {
		for _, seg := range parsed.Segments {
			segments = append(segments, domain.TranscriptSegment{
				StartMs: int64(math.Round(seg.Start * 1000)),
				EndMs:   int64(math.Round(seg.End * 1000)),
				Text:    seg.Text,
			})
		}
	} else {
		// セグメントがない場合は全体を1つとして返す
		segments = append(segments, domain.TranscriptSegment{
			StartMs: 0,
			EndMs:   0,
			Text:    parsed.Text,
		})
	}

	return AssignSpeakers(segments), nil
}

// AssignSpeakers rotates between two fixed speaker labels, flipping whenever
// the silence before a segment reaches the threshold. This is a heuristic for
// two-party sales calls, not real diarization, and mislabels anything else.
func AssignSpeakers(segments []domain.TranscriptSegment) []domain.TranscriptSegment {
	if len(segments) == 0 {
		return segments
	}

	current := 0
	var prevEnd int64

	result := make([]domain.TranscriptSegment, 0, len(segments))
	for _, seg := range segments {
		if seg.StartMs-prevEnd >= speakerChangeThresholdMs {
			current = (current + 1) % len(speakerLabels)
		}

		seg.Speaker = speakerLabels[current]
		result = append(result, seg)

		prevEnd = seg.EndMs
	}

	return result
}
