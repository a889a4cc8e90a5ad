// Package redact replaces every label, annotation and URL value of an alert group
// that is not explicitly whitelisted with a fixed sentinel string.
//
// Five whitelists apply independently: alert labels, alert annotations, group labels,
// common labels and common annotations. groupKey, externalURL and every alert's
// generatorURL are always replaced. Keys are never added or removed.
package redact
