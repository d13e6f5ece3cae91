package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"

	"github.com/cuongbtq/quantum-tracker/internal/normalizer"
)

var (
	headerColor = color.New(color.FgCyan, color.Bold)
	goodColor   = color.New(color.FgGreen)
	warnColor   = color.New(color.FgYellow)
	badColor    = color.New(color.FgRed)
	labelColor  = color.New(color.Bold)
)

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// statusText colors a normalized status by how the job ended
func statusText(s normalizer.Status) string {
	switch s.Kind() {
	case normalizer.StatusCompleted:
		return goodColor.Sprint(s.String())
	case normalizer.StatusError, normalizer.StatusCancelled, normalizer.StatusCanceled:
		return badColor.Sprint(s.String())
	case normalizer.StatusQueued, normalizer.StatusRunning:
		return warnColor.Sprint(s.String())
	}
	return s.String()
}

func orDash(s *string) string {
	if s == nil || *s == "" {
		return "-"
	}
	return *s
}

func intOrDash(v *int) string {
	if v == nil {
		return "-"
	}
	return strconv.Itoa(*v)
}

func floatOrDash(v *float64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func operationalText(v *bool) string {
	switch {
	case v == nil:
		return "-"
	case *v:
		return goodColor.Sprint("yes")
	default:
		return badColor.Sprint("no")
	}
}

func printField(w io.Writer, label, value string) {
	fmt.Fprintf(w, "%s\t%s\n", labelColor.Sprint(label), value)
}
