// file: internals/configs/allocation.go
package configs

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/mitchellh/mapstructure"
)

// AllocationSettings drives the exam allocation workflow.
type AllocationSettings struct {
	Timezone         string `mapstructure:"INSTITUTION_TIMEZONE"`
	TxRetries        int    `mapstructure:"ALLOCATION_TX_RETRIES"`
	AuditCron        string `mapstructure:"ALLOCATION_AUDIT_CRON"`
	AuditHorizonDays int    `mapstructure:"ALLOCATION_AUDIT_HORIZON_DAYS"`
	ShuffleSeed      string `mapstructure:"ALLOCATION_SHUFFLE_SEED"` // kosong = seed dari jam
	NotifyOnCreate   bool   `mapstructure:"ALLOCATION_NOTIFY"`
	RunTimeoutSecs   int    `mapstructure:"ALLOCATION_RUN_TIMEOUT_SECONDS"` // deadline POST /exams (tx + retry)
}

func DefaultAllocationSettings() AllocationSettings {
	return AllocationSettings{
		Timezone:         "Asia/Kolkata",
		TxRetries:        3,
		AuditCron:        "@every 6h",
		AuditHorizonDays: 30,
		NotifyOnCreate:   true,
		RunTimeoutSecs:   60,
	}
}

// LoadAllocationSettings decodes env-style key/values over the defaults.
// Unknown keys are ignored; numeric and bool values are parsed from strings.
func LoadAllocationSettings(env map[string]string) (AllocationSettings, error) {
	out := DefaultAllocationSettings()

	raw := map[string]any{}
	for k, v := range env {
		if v = strings.TrimSpace(v); v != "" {
			raw[k] = v
		}
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &out,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return out, err
	}
	if err := dec.Decode(raw); err != nil {
		return out, err
	}

	if _, err := time.LoadLocation(out.Timezone); err != nil {
		return out, fmt.Errorf("INSTITUTION_TIMEZONE %q: %w", out.Timezone, err)
	}
	if out.TxRetries < 0 {
		return out, fmt.Errorf("ALLOCATION_TX_RETRIES must be >= 0, got %d", out.TxRetries)
	}
	if out.AuditHorizonDays <= 0 {
		return out, fmt.Errorf("ALLOCATION_AUDIT_HORIZON_DAYS must be > 0, got %d", out.AuditHorizonDays)
	}
	if out.RunTimeoutSecs <= 0 {
		return out, fmt.Errorf("ALLOCATION_RUN_TIMEOUT_SECONDS must be > 0, got %d", out.RunTimeoutSecs)
	}
	if _, _, err := out.Seed(); err != nil {
		return out, err
	}
	return out, nil
}

// Location resolves Timezone; callers rely on LoadAllocationSettings having validated it.
func (s AllocationSettings) Location() *time.Location {
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (s AllocationSettings) RunTimeout() time.Duration {
	return time.Duration(s.RunTimeoutSecs) * time.Second
}

// Seed reports the fixed shuffle seed, if one is configured.
func (s AllocationSettings) Seed() (uint64, bool, error) {
	if s.ShuffleSeed == "" {
		return 0, false, nil
	}
	v, err := strconv.ParseUint(s.ShuffleSeed, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("ALLOCATION_SHUFFLE_SEED %q: %w", s.ShuffleSeed, err)
	}
	return v, true, nil
}
