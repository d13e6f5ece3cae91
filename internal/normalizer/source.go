package normalizer

import "time"

// Capabilities a job-like source may expose. Sources implement any subset;
// every accessor may fail independently.
type (
	JobIDer interface {
		JobID() (string, error)
	}

	StatusReporter interface {
		Status() (any, error)
	}

	// BackendResolver returns an opaque backend handle; its name is read
	// through Namer in a second, separately isolated step.
	BackendResolver interface {
		Backend() (any, error)
	}

	CreationDater interface {
		CreationDate() (time.Time, error)
	}

	EndDater interface {
		EndDate() (time.Time, error)
	}

	UsageReporter interface {
		Usage() (float64, error)
	}

	MetricsReporter interface {
		Metrics() (any, error)
	}

	ErrorMessager interface {
		ErrorMessage() (string, error)
	}

	Tagger interface {
		Tags() ([]string, error)
	}

	InstanceOwner interface {
		Instance() (string, error)
	}
)

// Capabilities a backend-like source may expose.
type (
	Namer interface {
		Name() (string, error)
	}

	QubitCounter interface {
		NumQubits() (int, error)
	}

	OperationalReporter interface {
		Operational() (bool, error)
	}

	QueueReporter interface {
		PendingJobs() (int, error)
	}
)
