package jobs

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"github.com/scrubbed/scrubbed/pkg/metrics"
)

// Snapshot is the relay activity counted since the process started.
type Snapshot struct {
	Requests      map[string]float64
	AlertsRelayed float64
}

// Sub returns the activity between prev and s.
func (s Snapshot) Sub(prev Snapshot) Snapshot {
	d := Snapshot{Requests: map[string]float64{}, AlertsRelayed: s.AlertsRelayed - prev.AlertsRelayed}
	for outcome, v := range s.Requests {
		d.Requests[outcome] = v - prev.Requests[outcome]
	}
	return d
}

// SummaryJob periodically logs how many groups were forwarded and how many failed.
type SummaryJob struct {
	lock sync.Mutex
	last Snapshot
}

func NewSummaryJob() *SummaryJob {
	return &SummaryJob{last: Snapshot{Requests: map[string]float64{}}}
}

// Take reads the current counter values.
func (j *SummaryJob) Take() Snapshot {
	s := Snapshot{Requests: map[string]float64{}}
	for _, outcome := range metrics.Outcomes {
		s.Requests[outcome] = counterValue(metrics.Requests.WithLabelValues(outcome))
	}
	s.AlertsRelayed = counterValue(metrics.AlertsRelayed)
	return s
}

// Report logs the totals and the activity since the previous run, and returns the latter.
func (j *SummaryJob) Report() Snapshot {
	j.lock.Lock()
	defer j.lock.Unlock()

	current := j.Take()
	delta := current.Sub(j.last)
	j.last = current

	fields := log.Fields{"alertsRelayed": delta.AlertsRelayed, "alertsRelayedTotal": current.AlertsRelayed}
	for outcome, v := range delta.Requests {
		fields[outcome] = v
		fields[outcome+"Total"] = current.Requests[outcome]
	}

	entry := log.WithFields(fields)
	if delta.Requests[metrics.OutcomeForwardFailure] > 0 || delta.Requests[metrics.OutcomeMalformedPayload] > 0 {
		entry.Warning("SummaryJob - Some webhook requests failed since the last report")
	} else {
		entry.Info("SummaryJob - Relay activity since the last report")
	}
	return delta
}

// Schedule registers j on a new cron scheduler; the caller starts and stops it.
func Schedule(spec string, j *SummaryJob) (*cron.Cron, error) {
	c := cron.New()
	if _, err := c.AddFunc(spec, func() { j.Report() }); err != nil {
		return nil, err
	}
	return c, nil
}

func counterValue(c prometheus.Counter) float64 {
	m := &dto.Metric{}
	if err := c.Write(m); err != nil {
		return 0
	}
	return m.GetCounter().GetValue()
}
