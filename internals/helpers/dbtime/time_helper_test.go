package dbtime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSetInstitutionTimezone(t *testing.T) {
	t.Cleanup(func() { SetInstitutionTimezone(DefaultTimezone) })

	SetInstitutionTimezone("America/New_York")
	assert.Equal(t, "America/New_York", InstitutionLocation().String())

	SetInstitutionTimezone("Mars/Olympus")
	assert.Equal(t, time.UTC, InstitutionLocation())

	SetInstitutionTimezone("  ")
	assert.Equal(t, DefaultTimezone, InstitutionLocation().String())
}

func TestTodayInInstitution(t *testing.T) {
	SetInstitutionTimezone("Asia/Kolkata")

	today := TodayInInstitution()

	assert.Equal(t, "Asia/Kolkata", today.Location().String())
	assert.Zero(t, today.Hour())
	assert.Zero(t, today.Minute())
}
