package milter

import (
	"strings"
	"testing"

	"github.com/d--j/go-milter"
	"github.com/rs/zerolog"

	"github.com/zpam/zbayes/pkg/config"
	"github.com/zpam/zbayes/pkg/learning"
	"github.com/zpam/zbayes/pkg/profiler"
)

type fakeClassifier struct {
	pred    learning.Prediction
	message string
}

func (f *fakeClassifier) Predict(message string) *learning.Prediction {
	f.message = message
	pred := f.pred
	pred.Message = message
	return &pred
}

func spamPrediction(p, lower float64) learning.Prediction {
	return learning.Prediction{
		ProbabilitySpam: p,
		ProbabilityHam:  1 - p,
		IntervalSpam:    learning.Interval{Lower: lower, Upper: lower + 0.2},
		IntervalHam:     learning.Interval{Lower: 1 - p - 0.1, Upper: 1 - p + 0.1},
	}
}

func testConfig() *config.MilterConfig {
	cfg := config.DefaultConfig().Milter
	cfg.AddHeaders = false
	return &cfg
}

func TestDecide(t *testing.T) {
	indeterminate := spamPrediction(0.9, 0.8)
	indeterminate.Spam.Indeterminate = true

	tests := []struct {
		name       string
		threshold  float64
		pred       learning.Prediction
		wantReject bool
	}{
		{"rejection disabled", 0, spamPrediction(0.99, 0.95), false},
		{"interval above threshold", 0.9, spamPrediction(0.99, 0.95), true},
		{"interval at threshold", 0.9, spamPrediction(0.99, 0.9), true},
		{"interval straddles threshold", 0.9, spamPrediction(0.95, 0.85), false},
		{"ham message", 0.3, spamPrediction(0.4, 0.35), false},
		{"indeterminate", 0.5, indeterminate, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			cfg.RejectThreshold = tt.threshold
			h := NewHandler(cfg, &fakeClassifier{}, nil, zerolog.Nop())

			pred := tt.pred
			resp := h.decide(&pred)
			rejected := resp != milter.RespContinue
			if rejected != tt.wantReject {
				t.Errorf("rejected = %v, expected %v", rejected, tt.wantReject)
			}
		})
	}
}

func TestResultHeaders(t *testing.T) {
	cfg := testConfig()
	h := NewHandler(cfg, &fakeClassifier{}, nil, zerolog.Nop())

	pred := spamPrediction(0.75, 0.6)
	pred.Unscored = []learning.UnscoredWord{{Word: "prize", InSpam: true}}

	headers := make(map[string]string)
	for _, hdr := range h.resultHeaders(&pred) {
		headers[hdr[0]] = hdr[1]
	}

	if headers["X-Bayes-Status"] != "Spam" {
		t.Errorf("Status = %q, expected Spam", headers["X-Bayes-Status"])
	}
	if !strings.HasPrefix(headers["X-Bayes-Spam-Probability"], "0.7500 [0.6000, 0.8000]") {
		t.Errorf("Spam-Probability = %q", headers["X-Bayes-Spam-Probability"])
	}
	if headers["X-Bayes-Unscored"] != "1" {
		t.Errorf("Unscored = %q, expected 1", headers["X-Bayes-Unscored"])
	}
}

func TestEndOfMessageClassifiesParsedText(t *testing.T) {
	fake := &fakeClassifier{pred: spamPrediction(0.2, 0.1)}
	h := NewHandler(testConfig(), fake, nil, zerolog.Nop())

	steps := []func() (*milter.Response, error){
		func() (*milter.Response, error) { return h.MailFrom("alice@example.com", "", nil) },
		func() (*milter.Response, error) { return h.Header("Subject", "free prize", nil) },
		func() (*milter.Response, error) {
			return h.Header("Content-Type", "multipart/mixed; boundary=XYZ", nil)
		},
		func() (*milter.Response, error) { return h.Headers(nil) },
		func() (*milter.Response, error) {
			return h.BodyChunk([]byte("--XYZ\r\nContent-Type: text/plain\r\n\r\nwinner now\r\n"), nil)
		},
		func() (*milter.Response, error) {
			return h.BodyChunk([]byte("--XYZ\r\nContent-Type: image/png\r\n\r\niVBORw0KGgo=\r\n--XYZ--\r\n"), nil)
		},
	}
	for i, step := range steps {
		resp, err := step()
		if err != nil || resp != milter.RespContinue {
			t.Fatalf("step %d: resp = %v, err = %v", i, resp, err)
		}
	}

	resp, err := h.EndOfMessage(nil)
	if err != nil {
		t.Fatalf("EndOfMessage failed: %v", err)
	}
	if resp != milter.RespContinue {
		t.Errorf("Expected continue for ham message")
	}

	if !strings.HasPrefix(fake.message, "free prize\n") {
		t.Errorf("Classified text = %q, expected subject first", fake.message)
	}
	if !strings.Contains(fake.message, "winner now") {
		t.Errorf("Classified text missing body: %q", fake.message)
	}
	if strings.Contains(fake.message, "iVBORw0KGgo") {
		t.Errorf("Attachment leaked into classified text: %q", fake.message)
	}
}

func TestEndOfMessageFallsBackToRawBody(t *testing.T) {
	fake := &fakeClassifier{pred: spamPrediction(0.2, 0.1)}
	prof := profiler.New()
	h := NewHandler(testConfig(), fake, prof, zerolog.Nop())

	h.Header("Subject", "offer", nil)
	h.Header("Content-Type", "multipart/mixed", nil)
	h.Headers(nil)
	h.BodyChunk([]byte("cheap pills"), nil)

	if _, err := h.EndOfMessage(nil); err != nil {
		t.Fatalf("EndOfMessage failed: %v", err)
	}
	if fake.message != "offer\ncheap pills" {
		t.Errorf("Classified text = %q", fake.message)
	}
	if n := prof.GetStats("classify").Count; n != 1 {
		t.Errorf("classify samples = %d, expected 1", n)
	}
}

func TestAbortResetsMessage(t *testing.T) {
	fake := &fakeClassifier{}
	h := NewHandler(testConfig(), fake, nil, zerolog.Nop())

	h.Header("Subject", "first", nil)
	h.Headers(nil)
	h.BodyChunk([]byte("old body"), nil)
	if err := h.Abort(nil); err != nil {
		t.Fatalf("Abort failed: %v", err)
	}

	h.Header("Subject", "second", nil)
	h.Headers(nil)
	h.BodyChunk([]byte("new body"), nil)
	h.EndOfMessage(nil)

	if strings.Contains(fake.message, "old body") || strings.Contains(fake.message, "first") {
		t.Errorf("Aborted message leaked: %q", fake.message)
	}
}
