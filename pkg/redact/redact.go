package redact

import (
	"github.com/prometheus/alertmanager/template"
	"github.com/scrubbed/scrubbed/alertmanager"
)

// DefaultSentinel is the replacement string used when none is configured.
const DefaultSentinel = "REDACTED"

// Whitelist is a set of keys whose values survive redaction.
// The zero value is empty and redacts everything.
type Whitelist map[string]struct{}

// NewWhitelist builds a Whitelist from keys, ignoring empty ones.
func NewWhitelist(keys ...string) Whitelist {
	w := make(Whitelist, len(keys))
	for _, k := range keys {
		if k == "" {
			continue
		}
		w[k] = struct{}{}
	}
	return w
}

// Contains reports whether key is whitelisted.
func (w Whitelist) Contains(key string) bool {
	_, ok := w[key]
	return ok
}

// Keys returns the whitelisted keys in no particular order.
func (w Whitelist) Keys() []string {
	keys := make([]string, 0, len(w))
	for k := range w {
		keys = append(keys, k)
	}
	return keys
}

// Policy holds the sentinel and the five whitelists. It is built once at startup
// and only read afterwards, so a single Policy can serve concurrent requests.
type Policy struct {
	Sentinel string

	AlertLabels       Whitelist
	AlertAnnotations  Whitelist
	GroupLabels       Whitelist
	CommonLabels      Whitelist
	CommonAnnotations Whitelist
}

// DefaultPolicy keeps alertname and severity in alert and common labels and redacts everything else.
func DefaultPolicy() Policy {
	return Policy{
		Sentinel:          DefaultSentinel,
		AlertLabels:       NewWhitelist("alertname", "severity"),
		AlertAnnotations:  NewWhitelist(),
		GroupLabels:       NewWhitelist(),
		CommonLabels:      NewWhitelist("alertname", "severity"),
		CommonAnnotations: NewWhitelist(),
	}
}

// Fields returns a copy of kv where every key missing from keep maps to sentinel.
// A nil kv stays nil.
func Fields(kv template.KV, keep Whitelist, sentinel string) template.KV {
	if kv == nil {
		return nil
	}
	out := make(template.KV, len(kv))
	for key, value := range kv {
		if keep.Contains(key) {
			out[key] = value
			continue
		}
		out[key] = sentinel
	}
	return out
}

// Scrub returns a redacted copy of g. g itself is left untouched.
func (p Policy) Scrub(g alertmanager.AlertGroup) alertmanager.AlertGroup {
	out := g.Clone()

	for i := range out.Alerts {
		a := &out.Alerts[i]
		a.Labels = Fields(a.Labels, p.AlertLabels, p.Sentinel)
		a.Annotations = Fields(a.Annotations, p.AlertAnnotations, p.Sentinel)
		if a.GeneratorURL != nil {
			a.GeneratorURL = p.sentinel()
		}
	}

	out.GroupLabels = Fields(out.GroupLabels, p.GroupLabels, p.Sentinel)
	out.CommonLabels = Fields(out.CommonLabels, p.CommonLabels, p.Sentinel)
	out.CommonAnnotations = Fields(out.CommonAnnotations, p.CommonAnnotations, p.Sentinel)
	if out.ExternalURL != nil {
		out.ExternalURL = p.sentinel()
	}
	if out.GroupKey != nil {
		out.GroupKey = p.sentinel()
	}

	return out
}

func (p Policy) sentinel() *string {
	s := p.Sentinel
	return &s
}
