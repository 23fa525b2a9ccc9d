// file: internals/helpers/dbtime/tod.go
package dbtime

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Tod = time of day, tanpa tanggal & zona.
type Tod struct{ time.Time }

// From: bikin Tod dari time.Time (ambil HH:mm, buang tanggal & zona)
func From(t time.Time) Tod {
	return Tod{
		Time: time.Date(0, 1, 1, t.Hour(), t.Minute(), 0, 0, time.UTC),
	}
}

// Parse: bikin Tod dari "HH:mm", "HH:mm:ss", "h:mm AM/PM" atau "h:mmPM".
func Parse(s string) (Tod, error) {
	var tt Tod
	return tt, tt.parse(s)
}

var todLayouts = []string{
	"15:04",
	"15:04:05",
	"3:04 PM",
	"3:04PM",
	"03:04 PM",
	"3:04:05 PM",
}

func (t *Tod) parse(s string) error {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return fmt.Errorf("tod: empty time")
	}
	for _, layout := range todLayouts {
		if tt, err := time.Parse(layout, s); err == nil {
			t.Time = time.Date(0, 1, 1, tt.Hour(), tt.Minute(), 0, 0, time.UTC)
			return nil
		}
	}
	return fmt.Errorf("tod: cannot parse %q", s)
}

// Clock renders the 24-hour "HH:mm" form; zero-padded so string order equals time order.
func (t Tod) Clock() string {
	return t.Format("15:04")
}

// Scan: terima time.Time atau string ("HH:MM[:SS]")
func (t *Tod) Scan(v any) error {
	switch x := v.(type) {
	case time.Time:
		*t = From(x)
		return nil
	case []byte:
		return t.parse(string(x))
	case string:
		return t.parse(x)
	case nil:
		t.Time = time.Time{}
		return nil
	default:
		return fmt.Errorf("tod: unsupported Scan type %T", v)
	}
}

// Value: kirim "HH:MM" (kolom disimpan sebagai text agar bisa dibandingkan leksikal)
func (t Tod) Value() (driver.Value, error) {
	if t.Time.IsZero() {
		return "00:00", nil
	}
	return t.Clock(), nil
}

func (t Tod) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Clock())
}

func (t *Tod) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	return t.parse(s)
}
