package alertmanager

import (
	"encoding/json"
	"maps"

	"github.com/prometheus/alertmanager/template"
)

// Member names of the webhook payload the relay reads or rewrites.
const (
	keyGroupKey          = "groupKey"
	keyExternalURL       = "externalURL"
	keyGroupLabels       = "groupLabels"
	keyCommonLabels      = "commonLabels"
	keyCommonAnnotations = "commonAnnotations"
	keyAlerts            = "alerts"

	keyLabels       = "labels"
	keyAnnotations  = "annotations"
	keyGeneratorURL = "generatorURL"
)

// AlertGroup is the grouped notification Alertmanager posts to a webhook receiver.
//
// Only the members subject to redaction are typed. Everything else (version, status,
// receiver, truncatedAlerts, ...) is kept in Fields and written back untouched.
// GroupKey and ExternalURL are nil when the member was absent from the payload.
// A nil label map stands for a JSON null.
type AlertGroup struct {
	GroupKey    *string
	ExternalURL *string

	GroupLabels       template.KV
	CommonLabels      template.KV
	CommonAnnotations template.KV

	Alerts []Alert

	Fields map[string]json.RawMessage
}

// Alert is a single member of AlertGroup.Alerts.
type Alert struct {
	Labels       template.KV
	Annotations  template.KV
	GeneratorURL *string

	Fields map[string]json.RawMessage
}

// Field returns the pass-through member name as a string, or "" when it is absent.
func (g AlertGroup) Field(name string) string {
	raw, ok := g.Fields[name]
	if !ok {
		return ""
	}
	return scalar(raw)
}

// Clone returns a copy of g that shares no maps or slices with it.
func (g AlertGroup) Clone() AlertGroup {
	c := AlertGroup{
		GroupKey:          cloneString(g.GroupKey),
		ExternalURL:       cloneString(g.ExternalURL),
		GroupLabels:       cloneKV(g.GroupLabels),
		CommonLabels:      cloneKV(g.CommonLabels),
		CommonAnnotations: cloneKV(g.CommonAnnotations),
		Fields:            maps.Clone(g.Fields),
	}
	if g.Alerts != nil {
		c.Alerts = make([]Alert, len(g.Alerts))
		for i, a := range g.Alerts {
			c.Alerts[i] = a.Clone()
		}
	}
	return c
}

// Clone returns a copy of a that shares no maps with it.
func (a Alert) Clone() Alert {
	return Alert{
		Labels:       cloneKV(a.Labels),
		Annotations:  cloneKV(a.Annotations),
		GeneratorURL: cloneString(a.GeneratorURL),
		Fields:       maps.Clone(a.Fields),
	}
}

// MarshalJSON writes the pass-through members followed by the typed ones.
func (g AlertGroup) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(g.Fields)+6)
	for k, v := range g.Fields {
		out[k] = v
	}
	if g.GroupKey != nil {
		out[keyGroupKey] = *g.GroupKey
	}
	if g.ExternalURL != nil {
		out[keyExternalURL] = *g.ExternalURL
	}
	out[keyGroupLabels] = g.GroupLabels
	out[keyCommonLabels] = g.CommonLabels
	out[keyCommonAnnotations] = g.CommonAnnotations

	alerts := g.Alerts
	if alerts == nil {
		alerts = []Alert{}
	}
	out[keyAlerts] = alerts

	return json.Marshal(out)
}

// MarshalJSON writes the pass-through members followed by the typed ones.
func (a Alert) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(a.Fields)+3)
	for k, v := range a.Fields {
		out[k] = v
	}
	out[keyLabels] = a.Labels
	out[keyAnnotations] = a.Annotations
	if a.GeneratorURL != nil {
		out[keyGeneratorURL] = *a.GeneratorURL
	}
	return json.Marshal(out)
}

func cloneKV(kv template.KV) template.KV {
	if kv == nil {
		return nil
	}
	c := make(template.KV, len(kv))
	for k, v := range kv {
		c[k] = v
	}
	return c
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
