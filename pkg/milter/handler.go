package milter

import (
	"fmt"
	"strings"
	"time"

	"github.com/d--j/go-milter"
	"github.com/rs/zerolog"

	"github.com/zpam/zbayes/pkg/config"
	"github.com/zpam/zbayes/pkg/corpus"
	"github.com/zpam/zbayes/pkg/email"
	"github.com/zpam/zbayes/pkg/learning"
	"github.com/zpam/zbayes/pkg/profiler"
)

// Classifier is the part of learning.Classifier the handler needs
type Classifier interface {
	Predict(message string) *learning.Prediction
}

// Handler implements milter.Milter and classifies each message at end of data
type Handler struct {
	milter.NoOpMilter
	config     *config.MilterConfig
	classifier Classifier
	parser     *email.Parser
	profiler   *profiler.Profiler
	log        zerolog.Logger

	// Message being assembled during the milter session
	raw     strings.Builder
	subject string
	body    strings.Builder

	startTime time.Time
}

// NewHandler creates a new milter handler. prof may be nil.
func NewHandler(cfg *config.MilterConfig, classifier Classifier, prof *profiler.Profiler, log zerolog.Logger) *Handler {
	return &Handler{
		config:     cfg,
		classifier: classifier,
		parser:     email.NewParser(),
		profiler:   prof,
		log:        log,
		startTime:  time.Now(),
	}
}

func (h *Handler) reset() {
	h.raw.Reset()
	h.body.Reset()
	h.subject = ""
	h.startTime = time.Now()
}

// MailFrom starts a new message
func (h *Handler) MailFrom(from string, esmtpArgs string, m milter.Modifier) (*milter.Response, error) {
	h.reset()
	return milter.RespContinue, nil
}

// Header is called for each header
func (h *Handler) Header(name string, value string, m milter.Modifier) (*milter.Response, error) {
	fmt.Fprintf(&h.raw, "%s: %s\r\n", name, value)
	if strings.EqualFold(name, "subject") {
		h.subject = value
	}
	return milter.RespContinue, nil
}

// Headers is called when all headers have been received
func (h *Handler) Headers(m milter.Modifier) (*milter.Response, error) {
	h.raw.WriteString("\r\n")
	return milter.RespContinue, nil
}

// BodyChunk is called for each body chunk
func (h *Handler) BodyChunk(chunk []byte, m milter.Modifier) (*milter.Response, error) {
	h.body.Write(chunk)
	return milter.RespContinue, nil
}

// EndOfMessage classifies the message, stamps result headers and decides its fate
func (h *Handler) EndOfMessage(m milter.Modifier) (*milter.Response, error) {
	timer := h.profiler.Start("classify")
	pred := h.classifier.Predict(h.text())
	timer.Stop()

	h.log.Debug().
		Float64("probability_spam", pred.ProbabilitySpam).
		Float64("probability_ham", pred.ProbabilityHam).
		Int("unscored", len(pred.Unscored)).
		Dur("took", time.Since(h.startTime)).
		Msg("message classified")

	if h.config.AddHeaders {
		for _, hdr := range h.resultHeaders(pred) {
			if err := m.AddHeader(hdr[0], hdr[1]); err != nil {
				return milter.RespTempFail, fmt.Errorf("failed to add header %s: %w", hdr[0], err)
			}
		}
	}

	resp := h.decide(pred)
	h.reset()
	return resp, nil
}

// Abort is called when the message is aborted
func (h *Handler) Abort(m milter.Modifier) error {
	h.reset()
	return nil
}

// text returns the message text to classify. The reassembled message is parsed
// so MIME structure is dropped; if parsing fails the raw body is used.
func (h *Handler) text() string {
	raw := h.raw.String()
	if !strings.HasSuffix(raw, "\r\n\r\n") {
		raw += "\r\n"
	}

	msg, err := h.parser.Parse(strings.NewReader(raw + h.body.String()))
	if err != nil {
		h.log.Debug().Err(err).Msg("falling back to raw body")
		return (&email.Message{Subject: h.subject, Body: h.body.String()}).Text()
	}
	return msg.Text()
}

// resultHeaders returns the headers describing pred
func (h *Handler) resultHeaders(pred *learning.Prediction) [][2]string {
	prefix := h.config.HeaderPrefix

	status := "Ham"
	if pred.Indeterminate() {
		status = "Indeterminate"
	} else if pred.Label() == corpus.Spam {
		status = "Spam"
	}

	return [][2]string{
		{prefix + "Status", status},
		{prefix + "Spam-Probability", fmt.Sprintf("%.4f %s", pred.ProbabilitySpam, pred.IntervalSpam)},
		{prefix + "Ham-Probability", fmt.Sprintf("%.4f %s", pred.ProbabilityHam, pred.IntervalHam)},
		{prefix + "Unscored", fmt.Sprintf("%d", len(pred.Unscored))},
		{prefix + "Info", fmt.Sprintf("zbayes; %.2fms", float64(time.Since(h.startTime).Microseconds())/1000)},
	}
}

// decide rejects a message only when the whole spam interval clears the threshold
// and the message leans spam
func (h *Handler) decide(pred *learning.Prediction) *milter.Response {
	threshold := h.config.RejectThreshold
	if threshold <= 0 || pred.Indeterminate() || pred.Label() != corpus.Spam {
		return milter.RespContinue
	}
	if pred.IntervalSpam.Lower < threshold {
		return milter.RespContinue
	}

	message := h.config.RejectMessage
	if message == "" {
		message = fmt.Sprintf("5.7.1 Message rejected as spam (p=%.2f)", pred.ProbabilitySpam)
	}
	resp, err := milter.RejectWithCodeAndReason(550, message)
	if err != nil {
		h.log.Error().Err(err).Msg("invalid reject response")
		return milter.RespReject
	}
	return resp
}
