package argo

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"
)

// Record is one loosely typed upstream object. The portal's field
// names drift between deployments and versions, so every read goes
// through an ordered candidate list, first match wins.
type Record struct {
	fields map[string]any
}

func NewRecord(fields map[string]any) Record {
	return Record{fields: fields}
}

func (r *Record) UnmarshalJSON(b []byte) error {
	return json.Unmarshal(b, &r.fields)
}

func (r Record) MarshalJSON() ([]byte, error) {
	if r.fields == nil {
		return []byte("null"), nil
	}
	return json.Marshal(r.fields)
}

func (r Record) Len() int {
	return len(r.fields)
}

func (r Record) Keys() []string {
	keys := make([]string, 0, len(r.fields))
	for k := range r.fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Get returns the first candidate present with a non-nil value.
func (r Record) Get(candidates ...string) (any, bool) {
	for _, key := range candidates {
		v, ok := r.fields[key]
		if ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

// Text returns the first candidate that renders to a non-empty string.
func (r Record) Text(candidates ...string) string {
	for _, key := range candidates {
		v, ok := r.fields[key]
		if !ok || v == nil {
			continue
		}
		switch value := v.(type) {
		case string:
			if value != "" {
				return value
			}
		case float64:
			return strconv.FormatFloat(value, 'f', -1, 64)
		case bool:
			return strconv.FormatBool(value)
		}
	}
	return ""
}

// Number parses the first numeric-looking candidate, 0 otherwise.
// Decimal commas show up in older portal builds.
func (r Record) Number(candidates ...string) float64 {
	for _, key := range candidates {
		v, ok := r.fields[key]
		if !ok || v == nil {
			continue
		}
		switch value := v.(type) {
		case float64:
			return value
		case string:
			parsed, err := strconv.ParseFloat(strings.ReplaceAll(value, ",", "."), 64)
			if err == nil {
				return parsed
			}
		}
	}
	return 0
}

// Flag interprets the portal's "S"/"N" flags and plain booleans.
func (r Record) Flag(candidates ...string) bool {
	for _, key := range candidates {
		v, ok := r.fields[key]
		if !ok || v == nil {
			continue
		}
		switch value := v.(type) {
		case bool:
			return value
		case string:
			return value == "S"
		}
	}
	return false
}

// Records returns a nested array field (compiti live inside registro
// entries).
func (r Record) Records(key string) []Record {
	v, ok := r.fields[key]
	if !ok {
		return nil
	}
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	var out []Record
	for _, item := range items {
		fields, ok := item.(map[string]any)
		if !ok {
			continue
		}
		out = append(out, Record{fields: fields})
	}
	return out
}

// Merge overlays other on top of r, other's fields win.
func (r Record) Merge(other Record) Record {
	merged := make(map[string]any, len(r.fields)+len(other.fields))
	for k, v := range r.fields {
		merged[k] = v
	}
	for k, v := range other.fields {
		merged[k] = v
	}
	return Record{fields: merged}
}

// Key resolves the record's primary key through the fallback chain,
// synthesizing one from the serialized record when every candidate is
// absent. Map keys marshal sorted, so the synthesized key is stable
// for an unchanged record.
func (r Record) Key(candidates ...string) string {
	if key := r.Text(candidates...); key != "" {
		return key
	}
	serialized, err := json.Marshal(r.fields)
	if err != nil || len(r.fields) == 0 {
		return ""
	}
	return string(serialized)
}

// Dashboard is the in-memory aggregate of every category fetched for
// one authenticated session, fetched fresh on every run.
type Dashboard struct {
	Voti       []Record `json:"voti"`
	Promemoria []Record `json:"promemoria"`
	Registro   []Record `json:"registro"`
	Appello    []Record `json:"appello"`
	Bacheca    []Record `json:"bacheca"`

	// side calls, populated by FetchExtras on a best-effort basis
	Profilo       Record   `json:"-"`
	Orario        []Record `json:"-"`
	CorsiRecupero []Record `json:"-"`
	VotiScrutinio []Record `json:"-"`
	Ricevimenti   []Record `json:"-"`
	Curriculum    []Record `json:"-"`
}
