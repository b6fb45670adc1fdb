package models

// Health represents the liveness or readiness of the service.
type Health struct {
	Status  HealthStatus           `json:"status"`
	Time    Timestamp              `json:"time"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// SystemStatus represents the overall system status: upstream geodata
// providers, subsystems, offline fallback data and the latest calibration
// run.
type SystemStatus struct {
	Status      HealthStatus      `json:"status"`
	Time        Timestamp         `json:"time"`
	Subsystems  []SubsystemStatus `json:"subsystems"`
	Providers   []ProviderStatus  `json:"providers"`
	OfflineData map[string]string `json:"offlineData,omitempty"`
	Calibration *CalibrationInfo  `json:"calibration,omitempty"`
}

// SubsystemStatus represents the status of an internal subsystem.
type SubsystemStatus struct {
	Name   string       `json:"name"`
	Status HealthStatus `json:"status"`
	Detail *string      `json:"detail,omitempty"`
}

// ProviderStatus represents the circuit state of an external provider.
type ProviderStatus struct {
	Provider      string       `json:"provider"`
	Status        HealthStatus `json:"status"`
	LastSuccessAt *Timestamp   `json:"lastSuccessAt,omitempty"`
	LastFailureAt *Timestamp   `json:"lastFailureAt,omitempty"`
	Message       *string      `json:"message,omitempty"`
}

// CalibrationInfo summarizes the most recent calibration run.
type CalibrationInfo struct {
	RanAt  Timestamp `json:"ranAt"`
	Failed bool      `json:"failed"`
}
