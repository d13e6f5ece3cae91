package normalizer

// BackendRecord is the canonical view of one compute backend
type BackendRecord struct {
	Name        string `json:"name"`
	NumQubits   *int   `json:"num_qubits"`
	Operational *bool  `json:"operational"`
	PendingJobs *int   `json:"pending_jobs"`
}

// NormalizeBackend builds a BackendRecord. An unreadable name yields "".
func NormalizeBackend(src any) BackendRecord {
	return BackendRecord{
		Name:        field(src, Namer.Name).OrElse(""),
		NumQubits:   field(src, QubitCounter.NumQubits).Ptr(),
		Operational: field(src, OperationalReporter.Operational).Ptr(),
		PendingJobs: field(src, QueueReporter.PendingJobs).Ptr(),
	}
}
