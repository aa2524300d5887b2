package format

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		name  string
		input int64
		want  string
	}{
		{"zero", 0, "0 B"},
		{"bytes_max", 1023, "1023 B"},
		{"one_kb", 1024, "1.0 KB"},
		{"one_and_half_kb", 1536, "1.5 KB"},
		{"one_mb", 1024 * 1024, "1.0 MB"},
		{"two_gb_ram", 2048 * 1024 * 1024, "2.0 GB"},
		{"one_tb", 1024 * 1024 * 1024 * 1024, "1.0 TB"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, FormatBytes(tc.input))
		})
	}
}

func TestFormatGigabytes(t *testing.T) {
	assert.Equal(t, "25.0 GB", FormatGigabytes(25))
	assert.Equal(t, "2.0 TB", FormatGigabytes(2048))
	assert.Equal(t, "0 B", FormatGigabytes(0))
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		name  string
		input int64
		want  string
	}{
		{"zero", 0, "0"},
		{"three_digits", 999, "999"},
		{"four_digits", 1000, "1,000"},
		{"seven_digits", 1234567, "1,234,567"},
		{"negative", -12345, "-12,345"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, FormatNumber(tc.input))
		})
	}
}

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		name  string
		input float64
		want  string
	}{
		{"zero", 0, "$0.00"},
		{"cents", 9.5, "$9.50"},
		{"thousands", 1234.5, "$1,234.50"},
		{"negative", -3, "-$3.00"},
		{"large_negative", -1234567.891, "-$1,234,567.89"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, FormatMoney(tc.input))
		})
	}
}

func TestFormatOptional(t *testing.T) {
	assert.Equal(t, "---", FormatOptional(""))
	assert.Equal(t, "---", FormatOptional("   "))
	assert.Equal(t, "Debian 12", FormatOptional("Debian 12"))
}

func TestFormatBool(t *testing.T) {
	assert.Equal(t, "yes", FormatBool(true))
	assert.Equal(t, "no", FormatBool(false))
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		name  string
		input time.Duration
		want  string
	}{
		{"zero", 0, "0.00 ms"},
		{"small_ms", 2340 * time.Microsecond, "2.34 ms"},
		{"exactly_1s", time.Second, "1.00 s"},
		{"one_and_half_s", 1500 * time.Millisecond, "1.50 s"},
		{"negative", -time.Second, "---"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, FormatDuration(tc.input))
		})
	}
}
