package control

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/isabella232/moabian/internal/plant"
	"github.com/rs/zerolog"
)

const predictionPath = "/v1/prediction"

// Inference asks a model server for every action. A failed request is an
// error for the tick; there is no fallback action.
type Inference struct {
	url      string
	client   *http.Client
	maxAngle float64
	logger   zerolog.Logger
}

type predictionRequest struct {
	BallX    float64 `json:"ball_x"`
	BallY    float64 `json:"ball_y"`
	BallVelX float64 `json:"ball_vel_x"`
	BallVelY float64 `json:"ball_vel_y"`
}

// Both outputs are normalised to [-1, 1].
type predictionResponse struct {
	InputPitch *float64 `json:"input_pitch"`
	InputRoll  *float64 `json:"input_roll"`
}

func NewInference(endpoint string, port int, opts Options) (*Inference, error) {
	if endpoint == "" {
		return nil, fmt.Errorf("%w: inference endpoint is required", ErrInvalidOptions)
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("%w: inference port out of range: %d", ErrInvalidOptions, port)
	}
	if opts.MaxAngle <= 0 {
		return nil, fmt.Errorf("%w: max angle must be positive, got %f", ErrInvalidOptions, opts.MaxAngle)
	}

	base := endpoint
	if !strings.Contains(base, "://") {
		base = "http://" + base
	}

	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}

	return &Inference{
		url:      fmt.Sprintf("%s:%d%s", strings.TrimRight(base, "/"), port, predictionPath),
		client:   client,
		maxAngle: opts.MaxAngle,
		logger:   opts.Logger.With().Str("component", "inference").Logger(),
	}, nil
}

func newInferenceStrategy(opts Options) (Strategy, error) {
	return NewInference(opts.Endpoint, opts.Port, opts)
}

// URL is the prediction endpoint this strategy posts to.
func (c *Inference) URL() string {
	return c.url
}

func (c *Inference) Compute(ctx context.Context, s plant.State) (plant.Action, plant.Info, error) {
	body, err := json.Marshal(predictionRequest{
		BallX:    s.BallX,
		BallY:    s.BallY,
		BallVelX: s.VelX,
		BallVelY: s.VelY,
	})
	if err != nil {
		return plant.Action{}, nil, fmt.Errorf("%w: encode request: %v", ErrInference, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return plant.Action{}, nil, fmt.Errorf("%w: %v", ErrInference, err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return plant.Action{}, nil, fmt.Errorf("%w: %w", ErrInference, err)
	}
	defer resp.Body.Close()
	latency := time.Since(start)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return plant.Action{}, nil, fmt.Errorf("%w: %s returned %d: %s",
			ErrInference, c.url, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var pred predictionResponse
	if err := json.NewDecoder(resp.Body).Decode(&pred); err != nil {
		return plant.Action{}, nil, fmt.Errorf("%w: decode response: %v", ErrInference, err)
	}
	if pred.InputPitch == nil || pred.InputRoll == nil {
		return plant.Action{}, nil, fmt.Errorf("%w: response missing input_pitch or input_roll", ErrInference)
	}

	action := plant.Action{
		Pitch: *pred.InputPitch * c.maxAngle,
		Roll:  *pred.InputRoll * c.maxAngle,
	}.Clip(c.maxAngle)

	c.logger.Debug().Dur("latency", latency).Msg("prediction")

	return action, plant.Info{
		"status":     resp.StatusCode,
		"latency_ms": float64(latency.Microseconds()) / 1000,
	}, nil
}
