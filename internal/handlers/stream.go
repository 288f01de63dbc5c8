package handlers

import (
	"context"
	"strconv"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"neuroinsights/internal/analysis"
	"neuroinsights/internal/config"
	"neuroinsights/internal/logging"
	"neuroinsights/internal/services"
	"neuroinsights/internal/synth"
)

// StreamHandler serves the live labeled-sample stream over WebSocket. Each
// connection gets its own generator and classifier, so trailing-window state
// never leaks between clients.
type StreamHandler struct {
	cfg       *config.Config
	scenarios map[string]synth.Scenario
	metrics   *services.Metrics
}

// NewStreamHandler creates a new stream handler
func NewStreamHandler(cfg *config.Config, scenarios map[string]synth.Scenario, metrics *services.Metrics) *StreamHandler {
	return &StreamHandler{cfg: cfg, scenarios: scenarios, metrics: metrics}
}

// streamMessage is one labeled sample pushed to the client
type streamMessage struct {
	Time       time.Time `json:"time"`
	Delta      float64   `json:"delta"`
	Theta      float64   `json:"theta"`
	Alpha      float64   `json:"alpha"`
	Beta       float64   `json:"beta"`
	Gamma      float64   `json:"gamma"`
	State      string    `json:"state"`
	Confidence float64   `json:"confidence"`
	Activity   string    `json:"activity,omitempty"`
}

// Handle runs one streaming session. Query parameters: scenario (default
// typical_workday), interval_ms (default 1000, min 100), user_id.
func (h *StreamHandler) Handle(c *websocket.Conn) {
	scenarioName := c.Query("scenario", "typical_workday")
	sc, ok := h.scenarios[scenarioName]
	if !ok {
		_ = c.WriteJSON(map[string]string{"error": "unknown scenario: " + scenarioName})
		_ = c.Close()
		return
	}

	intervalMs, err := strconv.Atoi(c.Query("interval_ms", "1000"))
	if err != nil || intervalMs < 100 {
		intervalMs = 1000
	}

	userID := uuid.Nil
	if raw := c.Query("user_id"); raw != "" {
		if parsed, err := uuid.Parse(raw); err == nil {
			userID = parsed
		}
	}

	if h.metrics != nil {
		h.metrics.RecordStreamConnect()
		defer h.metrics.RecordStreamDisconnect()
	}
	logging.WithUser(userID.String()).Info("stream connected", "scenario", scenarioName, "interval_ms", intervalMs)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Read loop exists only to observe the close handshake.
	go func() {
		defer cancel()
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	}()

	seed := synth.SeedFromUser(userID) ^ time.Now().UnixNano()
	gen := synth.NewGenerator(seed, synth.Config{
		DeviceCeiling:     h.cfg.DeviceCeiling,
		TransitionSamples: h.cfg.TransitionSamples(),
		BaselineJitter:    0.1,
	})
	samples, _, err := gen.Scenario(sc, time.Now().UTC())
	if err != nil {
		_ = c.WriteJSON(map[string]string{"error": err.Error()})
		_ = c.Close()
		return
	}

	ref := analysis.UniformReference(h.cfg.DeviceCeiling)
	classifier := analysis.NewClassifier(analysis.ClassifierConfig{
		TrailWindow:          h.cfg.TrailWindow,
		InstabilityThreshold: h.cfg.InstabilityThreshold,
	})

	// One sample per interval; the limiter paces the replay.
	limiter := rate.NewLimiter(rate.Every(time.Duration(intervalMs)*time.Millisecond), 1)

	for _, sample := range samples {
		if err := limiter.Wait(ctx); err != nil {
			return
		}

		msg := streamMessage{Time: sample.Time, Activity: sample.Activity}
		vector, err := analysis.NormalizeSample(sample.BandPowerSample, ref)
		if err == nil {
			cls, cerr := classifier.Classify(vector)
			if cerr != nil {
				continue
			}
			msg.Delta, msg.Theta, msg.Alpha = vector.Delta, vector.Theta, vector.Alpha
			msg.Beta, msg.Gamma = vector.Beta, vector.Gamma
			msg.State = string(cls.State)
			msg.Confidence = cls.Confidence
		}

		if err := c.WriteJSON(msg); err != nil {
			return
		}
		if h.metrics != nil {
			h.metrics.RecordStreamSample()
		}
	}

	_ = c.WriteJSON(map[string]string{"event": "session_complete"})
	_ = c.Close()
}
