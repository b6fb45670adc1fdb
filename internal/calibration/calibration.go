// Package calibration runs the periodic health check of the geodata
// pipelines against a fixed reference point, so threshold drift and upstream
// layer churn get noticed before users do.
package calibration

import "time"

// Reference point in RD (EPSG:28992): Amsterdam city center. Every check
// samples here because the national layers are guaranteed to cover it.
const (
	RefRDX = 121000.0
	RefRDY = 487000.0
)

// Status is the outcome of one service check.
type Status string

const (
	// StatusOK means the service answered and values look sane.
	StatusOK Status = "OK"
	// StatusWarn means the service answered but something is off, such as
	// a value outside its expected range or a missing regional layer.
	StatusWarn Status = "WARN"
	// StatusFail means the service is broken.
	StatusFail Status = "FAIL"
)

// Range is an inclusive expected-value interval.
type Range struct {
	Lo float64
	Hi float64
}

// ExpectedRanges bounds the reference-point readings. A value outside its
// range suggests the classification thresholds need recalibration.
var ExpectedRanges = map[string]Range{
	"noise_lden_db": {Lo: 30, Hi: 85},
	"pm25_ug_m3":    {Lo: 1, Hi: 30},
	"no2_ug_m3":     {Lo: 1, Hi: 50},
}

// CheckResult is the outcome of one service check.
type CheckResult struct {
	Service string         `json:"service"`
	Status  Status         `json:"status"`
	Issues  []string       `json:"issues,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

func (c *CheckResult) detail(key string, value any) {
	if c.Details == nil {
		c.Details = make(map[string]any)
	}
	c.Details[key] = value
}

// warn records an issue and degrades OK to WARN without masking FAIL.
func (c *CheckResult) warn(issue string) {
	c.Issues = append(c.Issues, issue)
	if c.Status == StatusOK {
		c.Status = StatusWarn
	}
}

func (c *CheckResult) fail(issue string) {
	c.Issues = append(c.Issues, issue)
	c.Status = StatusFail
}

// Report is one complete calibration run.
type Report struct {
	RanAt  time.Time     `json:"ran_at"`
	Checks []CheckResult `json:"checks"`
}

// Failed reports whether any check failed outright.
func (r *Report) Failed() bool {
	for _, c := range r.Checks {
		if c.Status == StatusFail {
			return true
		}
	}
	return false
}
