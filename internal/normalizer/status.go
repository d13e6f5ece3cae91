package normalizer

import (
	"fmt"
	"reflect"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// StatusKind enumerates the canonical job statuses plus one pass-through
// variant for labels the mapping table does not know.
type StatusKind uint8

const (
	StatusUnknown StatusKind = iota
	StatusQueued
	StatusRunning
	StatusCompleted
	StatusError
	StatusCancelled
	StatusCanceled
	StatusPassThrough
)

var kindLabels = [...]string{
	StatusUnknown:     "UNKNOWN",
	StatusQueued:      "QUEUED",
	StatusRunning:     "RUNNING",
	StatusCompleted:   "COMPLETED",
	StatusError:       "ERROR",
	StatusCancelled:   "CANCELLED",
	StatusCanceled:    "CANCELED",
	StatusPassThrough: "PASS_THROUGH",
}

func (k StatusKind) String() string {
	if int(k) < len(kindLabels) {
		return kindLabels[k]
	}
	return kindLabels[StatusUnknown]
}

// statusTable maps upper-cased raw labels to canonical kinds
var statusTable = map[string]StatusKind{
	"QUEUED":    StatusQueued,
	"RUNNING":   StatusRunning,
	"COMPLETED": StatusCompleted,
	"ERROR":     StatusError,
	"CANCELLED": StatusCancelled,
	"CANCELED":  StatusCanceled,
	"DONE":      StatusCompleted,
	"UNKNOWN":   StatusUnknown,
}

// Status is a normalized job status. The zero value is UNKNOWN.
type Status struct {
	kind  StatusKind
	label string // set only for StatusPassThrough
}

// StatusOf returns the canonical status for k
func StatusOf(k StatusKind) Status {
	if k == StatusPassThrough || int(k) >= len(kindLabels) {
		return Status{}
	}
	return Status{kind: k}
}

// PassThrough wraps a label unknown to the mapping table
func PassThrough(label string) Status {
	if label == "" {
		return Status{}
	}
	return Status{kind: StatusPassThrough, label: label}
}

// ParseStatus reverses String: canonical labels map back to their kind and
// anything else is kept as a pass-through label.
func ParseStatus(label string) Status {
	for k := StatusUnknown; k < StatusPassThrough; k++ {
		if kindLabels[k] == label {
			return Status{kind: k}
		}
	}
	return PassThrough(label)
}

func (s Status) Kind() StatusKind { return s.kind }

func (s Status) String() string {
	if s.kind == StatusPassThrough {
		return s.label
	}
	return s.kind.String()
}

// IsCanonical reports whether s is one of the enumerated statuses
func (s Status) IsCanonical() bool {
	return s.kind != StatusPassThrough
}

// IsLive reports whether the job is still waiting or executing
func (s Status) IsLive() bool {
	return s.kind == StatusQueued || s.kind == StatusRunning
}

// IsTerminal reports whether the job reached a final state
func (s Status) IsTerminal() bool {
	switch s.kind {
	case StatusCompleted, StatusError, StatusCancelled, StatusCanceled:
		return true
	}
	return false
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(text []byte) error {
	*s = ParseStatus(string(text))
	return nil
}

type namedStatus interface {
	Name() string
}

type valuedStatus interface {
	Value() string
}

// NormalizeStatus maps an arbitrary upstream status object to a Status.
// Labels are read from Name(), then Value(), then the textual form; any
// namespace prefix up to the last '.' is dropped before the table lookup.
// Unknown labels fall back to their title-cased form, where every run of
// letters starts with a capital ("IN_PROGRESS" becomes "In_Progress"). It
// never panics.
func NormalizeStatus(v any) (s Status) {
	defer func() {
		if r := recover(); r != nil {
			s = Status{}
		}
	}()

	if isFalsy(v) {
		return Status{}
	}

	raw := statusLabel(v)
	if i := strings.LastIndex(raw, "."); i >= 0 {
		raw = raw[i+1:]
	}
	raw = strings.ToUpper(strings.TrimSpace(raw))
	if raw == "" {
		return Status{}
	}

	if kind, ok := statusTable[raw]; ok {
		return Status{kind: kind}
	}
	return PassThrough(titleLabel(raw))
}

// titleLabel title-cases each run of letters on its own so that
// underscores and digits act as word boundaries.
func titleLabel(raw string) string {
	// Caser values are stateful, so one is built per call.
	caser := cases.Title(language.Und)

	var b strings.Builder
	start := -1
	flush := func(end int) {
		if start >= 0 {
			b.WriteString(caser.String(raw[start:end]))
			start = -1
		}
	}
	for i, r := range raw {
		if unicode.IsLetter(r) {
			if start < 0 {
				start = i
			}
			continue
		}
		flush(i)
		b.WriteRune(r)
	}
	flush(len(raw))
	return b.String()
}

func statusLabel(v any) string {
	switch t := v.(type) {
	case namedStatus:
		return t.Name()
	case valuedStatus:
		return t.Value()
	case fmt.Stringer:
		return t.String()
	case string:
		return t
	default:
		return fmt.Sprint(v)
	}
}

// isFalsy reports nil, typed-nil, false, zero numbers and empty strings or
// containers. Values exposing a status accessor are only falsy when nil.
func isFalsy(v any) bool {
	if v == nil {
		return true
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}

	switch v.(type) {
	case namedStatus, valuedStatus, fmt.Stringer:
		return false
	}

	switch rv.Kind() {
	case reflect.String, reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len() == 0
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return rv.IsZero()
	}
	return false
}
