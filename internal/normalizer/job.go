package normalizer

import "time"

// JobRecord is the canonical, serializable view of one upstream job
type JobRecord struct {
	ID           *string  `json:"id"`
	Status       Status   `json:"status"`
	Backend      *string  `json:"backend"`
	Created      *string  `json:"created"`
	Completed    *string  `json:"completed"`
	UsageSeconds *float64 `json:"usage_seconds"`
	Metrics      any      `json:"metrics"`
	ErrorMessage *string  `json:"error_message"`
	User         string   `json:"user"`
	Tags         []string `json:"tags"`
}

// NormalizeJob builds a JobRecord from a job-like source. Every field is read
// in isolation: a failing or missing accessor only blanks its own field.
func NormalizeJob(src any) JobRecord {
	rec := JobRecord{
		ID:           field(src, JobIDer.JobID).Ptr(),
		Status:       NormalizeStatus(field(src, StatusReporter.Status).OrElse(nil)),
		Backend:      backendName(src).Ptr(),
		Created:      timestamp(src, CreationDater.CreationDate).Ptr(),
		Completed:    timestamp(src, EndDater.EndDate).Ptr(),
		UsageSeconds: field(src, UsageReporter.Usage).Ptr(),
		Metrics:      field(src, MetricsReporter.Metrics).OrElse(nil),
		ErrorMessage: field(src, ErrorMessager.ErrorMessage).Ptr(),
		Tags:         field(src, Tagger.Tags).OrElse(nil),
	}

	if rec.Tags == nil {
		rec.Tags = []string{}
	}

	instance := field(src, InstanceOwner.Instance).OrElse("")
	if instance == "" {
		instance = DefaultInstance
	}
	rec.User = MaskUser(instance)

	return rec
}

// backendName resolves the backend handle first, then its name. Either step
// may fail on its own.
func backendName(src any) Optional[string] {
	handle, ok := field(src, BackendResolver.Backend).Get()
	if !ok || isFalsy(handle) {
		return Absent[string]()
	}
	return field(handle, Namer.Name)
}

func timestamp[C any](src any, get func(C) (time.Time, error)) Optional[string] {
	t, ok := field(src, get).Get()
	if !ok {
		return Absent[string]()
	}
	return FormatTimestamp(t)
}
