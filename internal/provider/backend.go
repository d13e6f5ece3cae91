package provider

import "github.com/tidwall/gjson"

// Backend is one compute backend. Status and configuration documents are
// loaded separately; a failed load only affects the accessors reading it.
type Backend struct {
	name      string
	status    gjson.Result
	statusErr error
	config    gjson.Result
	configErr error
}

func newBackend(name string) *Backend {
	return &Backend{
		name:      name,
		statusErr: ErrNotLoaded,
		configErr: ErrNotLoaded,
	}
}

func (b *Backend) Name() (string, error) {
	if b.name == "" {
		return "", missing([]string{"name"})
	}
	return b.name, nil
}

func (b *Backend) NumQubits() (int, error) {
	if b.configErr != nil {
		return 0, b.configErr
	}
	return intField(b.config, "n_qubits", "num_qubits")
}

func (b *Backend) Operational() (bool, error) {
	if b.statusErr != nil {
		return false, b.statusErr
	}
	return boolField(b.status, "state", "operational")
}

func (b *Backend) PendingJobs() (int, error) {
	if b.statusErr != nil {
		return 0, b.statusErr
	}
	return intField(b.status, "length_queue", "pending_jobs")
}

// backendName reads a device list entry, which is either a bare name or an
// object carrying one.
func backendName(entry gjson.Result) string {
	if entry.Type == gjson.String {
		return entry.Str
	}
	name, err := stringField(entry, "name", "backend_name")
	if err != nil {
		return ""
	}
	return name
}
