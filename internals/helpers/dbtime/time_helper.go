// file: internals/helpers/dbtime/time_helper.go
package dbtime

import (
	"log"
	"strings"
	"sync"
	"time"
	_ "time/tzdata"
)

const DefaultTimezone = "Asia/Kolkata"

var (
	locMu       sync.RWMutex
	institution *time.Location
)

// SetInstitutionTimezone dipanggil sekali saat boot (dari configs).
func SetInstitutionTimezone(name string) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultTimezone
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		log.Printf("[WARN] timezone %q tidak dikenal, fallback UTC: %v", name, err)
		loc = time.UTC
	}
	locMu.Lock()
	institution = loc
	locMu.Unlock()
}

// InstitutionLocation:
// 1) zona yang di-set saat boot
// 2) fallback DefaultTimezone
// 3) fallback terakhir UTC
func InstitutionLocation() *time.Location {
	locMu.RLock()
	loc := institution
	locMu.RUnlock()
	if loc != nil {
		return loc
	}
	if l, err := time.LoadLocation(DefaultTimezone); err == nil {
		return l
	}
	return time.UTC
}

func NowInInstitution() time.Time {
	return time.Now().In(InstitutionLocation())
}

// TodayInInstitution = tanggal hari ini (tengah malam) di zona institusi.
func TodayInInstitution() time.Time {
	now := NowInInstitution()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}
