package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	log "github.com/sirupsen/logrus"

	"github.com/scrubbed/scrubbed/alertmanager"
	"github.com/scrubbed/scrubbed/pkg/config"
	"github.com/scrubbed/scrubbed/pkg/forward"
	"github.com/scrubbed/scrubbed/pkg/metrics"
	"github.com/scrubbed/scrubbed/pkg/redact"
	"github.com/scrubbed/scrubbed/pkg/utils"
)

const (
	readTimeout = 10 * time.Second
	// writeSlack is added to the destination timeout so a slow forward is still reported to the caller.
	writeSlack = 5 * time.Second
)

// Forwarder delivers a redacted alert group to the destination.
type Forwarder interface {
	Forward(ctx context.Context, header http.Header, body []byte) (*forward.Result, error)
}

type Server struct {
	cfg       config.Config
	policy    redact.Policy
	forwarder Forwarder
}

// New returns a Server relaying to fwd with the redaction policy of cfg.
func New(cfg config.Config, fwd Forwarder) *Server {
	return &Server{
		cfg:       cfg,
		policy:    cfg.Redaction(),
		forwarder: fwd,
	}
}

// Router returns the HTTP handler serving /webhook, /healthz and, when enabled, /metrics.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeResponse(w, http.StatusNotFound, utils.Response{Status: utils.StatusError, Message: "not found"})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeResponse(w, http.StatusMethodNotAllowed, utils.Response{Status: utils.StatusError, Message: "method not allowed"})
	})

	r.Post("/webhook", s.webhook)
	r.Get("/healthz", healthz)
	if s.cfg.MetricsEnable {
		r.Method(http.MethodGet, "/metrics", metrics.Handler())
	}
	return r
}

// Run serves until ctx is cancelled, then shuts the listener down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Address(),
		Handler:      s.Router(),
		ReadTimeout:  readTimeout,
		WriteTimeout: s.cfg.DestinationTimeout + writeSlack,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithFields(log.Fields{"listenAddress": srv.Addr, "tls": s.cfg.TLSEnable, "destination": s.cfg.DestinationURL}).Info("Server - Starting webhook")
		if s.cfg.TLSEnable {
			errCh <- srv.ListenAndServeTLS(s.cfg.TLSCertPath, s.cfg.TLSKeyPath)
			return
		}
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		log.Info("Server - Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.DestinationTimeout+writeSlack)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) webhook(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	fields := log.Fields{
		"requestID": middleware.GetReqID(r.Context()),
		"remote":    r.RemoteAddr,
	}

	res, err := s.relay(r, fields)
	if err != nil {
		fail(w, err, fields)
		return
	}

	metrics.Requests.WithLabelValues(metrics.OutcomeForwarded).Inc()
	metrics.ForwardResponses.WithLabelValues(strconv.Itoa(res.StatusCode)).Inc()

	msg := "alert received and processed"
	fields["code"] = res.StatusCode
	if res.StatusCode/100 == 2 {
		log.WithFields(fields).Info("Server - " + msg)
	} else {
		log.WithFields(fields).Warning("Server - " + msg + ", destination did not answer with a 2xx")
	}

	writeResponse(w, res.StatusCode, utils.Response{
		Status:  utils.StatusSuccess,
		Message: fmt.Sprintf("%s, status code %d", msg, res.StatusCode),
	})
}

// relay runs parse, redact and forward, stopping at the first failing stage.
// Nothing is sent to the destination unless the whole group was parsed and redacted.
func (s *Server) relay(r *http.Request, fields log.Fields) (*forward.Result, error) {
	if !isJSON(r.Header.Get("Content-Type")) {
		return nil, &relayError{kind: kindBadRequest, err: errNotJSON}
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, &relayError{kind: kindMalformedPayload, err: fmt.Errorf("read request body: %w", err)}
	}

	group, err := alertmanager.Decode(body)
	if err != nil {
		return nil, &relayError{kind: kindMalformedPayload, err: err}
	}
	if group.GroupKey != nil {
		fields["groupKeyHash"] = utils.Hash(*group.GroupKey)
	}
	fields["receiver"] = group.Field("receiver")
	fields["alerts"] = len(group.Alerts)

	scrubbed := s.policy.Scrub(group)
	payload, err := json.Marshal(scrubbed)
	if err != nil {
		return nil, &relayError{kind: kindMalformedPayload, err: fmt.Errorf("encode scrubbed alert group: %w", err)}
	}
	log.WithFields(fields).WithField("payload", string(payload)).Debug("Server - Sending scrubbed alert group")

	start := time.Now()
	res, err := s.forwarder.Forward(r.Context(), r.Header, payload)
	metrics.ForwardDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, &relayError{kind: kindForwardFailure, err: err}
	}

	metrics.AlertsRelayed.Add(float64(len(scrubbed.Alerts)))
	return res, nil
}

func fail(w http.ResponseWriter, err error, fields log.Fields) {
	var re *relayError
	if !errors.As(err, &re) {
		re = &relayError{kind: kindForwardFailure, err: err}
	}
	metrics.Requests.WithLabelValues(re.outcome()).Inc()

	resp := utils.Response{Status: utils.StatusError, Message: re.Error()}
	fields["kind"] = re.kind.String()
	fields["response"] = resp

	if re.kind == kindBadRequest {
		log.WithFields(fields).Error("Server - " + re.Error())
	} else {
		var forwardErr *forward.ForwardError
		if errors.As(err, &forwardErr) {
			fields["destination"] = forwardErr.URL
			fields["timeout"] = forwardErr.Timeout()
		}
		log.WithFields(fields).WithError(err).Error("Server - Could not relay the alert group")
	}

	writeResponse(w, re.status(), resp)
}

func healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("OK")); err != nil {
		log.WithFields(log.Fields{"error": err.Error()}).Error("Server - Failed to write the health check response")
	}
}

func writeResponse(w http.ResponseWriter, status int, resp utils.Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.WithFields(log.Fields{"response": resp, "error": err.Error()}).Error("Server - Failed to write the response")
	}
}

// isJSON accepts application/json and any application/*+json media type.
func isJSON(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	if mediaType == "application/json" {
		return true
	}
	return strings.HasPrefix(mediaType, "application/") && strings.HasSuffix(mediaType, "+json")
}
