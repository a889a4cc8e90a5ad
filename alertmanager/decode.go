package alertmanager

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/prometheus/alertmanager/template"
)

// ErrMalformedPayload is returned when a body is not an alert group: invalid JSON,
// a document that is not an object, or a missing or mistyped required member.
var ErrMalformedPayload = errors.New("malformed alert group payload")

// Decode parses data into an AlertGroup. Every error it returns wraps ErrMalformedPayload.
func Decode(data []byte) (AlertGroup, error) {
	var g AlertGroup
	if err := json.Unmarshal(data, &g); err != nil {
		if errors.Is(err, ErrMalformedPayload) {
			return AlertGroup{}, err
		}
		return AlertGroup{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	return g, nil
}

// UnmarshalJSON requires alerts, groupLabels, commonLabels and commonAnnotations to be present.
func (g *AlertGroup) UnmarshalJSON(data []byte) error {
	members, err := object(data)
	if err != nil {
		return malformed("payload %v", err)
	}

	var out AlertGroup
	for _, key := range []string{keyAlerts, keyGroupLabels, keyCommonLabels, keyCommonAnnotations} {
		if _, ok := members[key]; !ok {
			return malformed("missing required member %q", key)
		}
	}

	if out.GroupLabels, err = decodeKV(members[keyGroupLabels]); err != nil {
		return malformed("%s %v", keyGroupLabels, err)
	}
	if out.CommonLabels, err = decodeKV(members[keyCommonLabels]); err != nil {
		return malformed("%s %v", keyCommonLabels, err)
	}
	if out.CommonAnnotations, err = decodeKV(members[keyCommonAnnotations]); err != nil {
		return malformed("%s %v", keyCommonAnnotations, err)
	}

	var alerts []json.RawMessage
	if isNull(members[keyAlerts]) {
		return malformed("%s must be an array, got null", keyAlerts)
	}
	if err := json.Unmarshal(members[keyAlerts], &alerts); err != nil {
		return malformed("%s must be an array of objects", keyAlerts)
	}
	out.Alerts = make([]Alert, len(alerts))
	for i, raw := range alerts {
		if err := out.Alerts[i].UnmarshalJSON(raw); err != nil {
			return fmt.Errorf("%w (alerts[%d])", err, i)
		}
	}

	if raw, ok := members[keyGroupKey]; ok {
		v := scalar(raw)
		out.GroupKey = &v
	}
	if raw, ok := members[keyExternalURL]; ok {
		v := scalar(raw)
		out.ExternalURL = &v
	}

	for _, key := range []string{keyAlerts, keyGroupLabels, keyCommonLabels, keyCommonAnnotations, keyGroupKey, keyExternalURL} {
		delete(members, key)
	}
	out.Fields = members

	*g = out
	return nil
}

// UnmarshalJSON requires labels and annotations to be present.
func (a *Alert) UnmarshalJSON(data []byte) error {
	members, err := object(data)
	if err != nil {
		return malformed("alert %v", err)
	}

	var out Alert
	for _, key := range []string{keyLabels, keyAnnotations} {
		if _, ok := members[key]; !ok {
			return malformed("alert is missing required member %q", key)
		}
	}
	if out.Labels, err = decodeKV(members[keyLabels]); err != nil {
		return malformed("alert %s %v", keyLabels, err)
	}
	if out.Annotations, err = decodeKV(members[keyAnnotations]); err != nil {
		return malformed("alert %s %v", keyAnnotations, err)
	}
	if raw, ok := members[keyGeneratorURL]; ok {
		v := scalar(raw)
		out.GeneratorURL = &v
	}

	for _, key := range []string{keyLabels, keyAnnotations, keyGeneratorURL} {
		delete(members, key)
	}
	out.Fields = members

	*a = out
	return nil
}

func malformed(format string, args ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{ErrMalformedPayload}, args...)...)
}

// object splits a JSON object into its raw members.
func object(data []byte) (map[string]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, errors.New("must be a JSON object")
	}
	var members map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &members); err != nil {
		return nil, err
	}
	return members, nil
}

// decodeKV reads a label or annotation set. Null yields a nil KV; values that are
// not JSON strings are kept as their compact JSON text.
func decodeKV(raw json.RawMessage) (template.KV, error) {
	if isNull(raw) {
		return nil, nil
	}
	members, err := object(raw)
	if err != nil {
		return nil, err
	}
	kv := make(template.KV, len(members))
	for k, v := range members {
		kv[k] = scalar(v)
	}
	return kv, nil
}

func scalar(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}

func isNull(raw json.RawMessage) bool {
	return string(bytes.TrimSpace(raw)) == "null"
}
