package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recoilapp/recoil/pkg/errors"
)

func TestParseAge(t *testing.T) {
	tests := []struct {
		name string
		text string
		want float64
	}{
		{"whole years", "34", 34},
		{"leading space", " 21", 21},
		{"infant in months", "7 months", 7.0 / 12},
		{"single month", "1 months", 1.0 / 12},
		{"empty", "", 0},
		{"garbage", "unknown", 0},
		{"months without count", "months", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, ParseAge(tt.text), 1e-9)
		})
	}
}

func TestParseDateTime(t *testing.T) {
	tests := []struct {
		name     string
		dateText string
		timeText string
		want     string
	}{
		{"evening clock time", "3/5/2014", "11:30 p.m.", "2014-03-05T23:30:00"},
		{"no time", "3/5/2014", "", "2014-03-05T00:00:00"},
		{"morning clock time", "3/5/2014", "9:05 a.m.", "2014-03-05T09:05:00"},
		{"hour only am", "12/31/2013", "4 a.m.", "2013-12-31T04:00:00"},
		{"hour only pm", "12/31/2013", "4 p.m.", "2013-12-31T16:00:00"},
		{"uppercase meridiem", "1/2/2014", "7:15 P.M.", "2014-01-02T19:15:00"},
		{"unrecognized time treated as unknown", "1/2/2014", "around dusk", "2014-01-02T00:00:00"},
		{"double digit month and day", "11/23/2014", "1:00 a.m.", "2014-11-23T01:00:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDateTime(tt.dateText, tt.timeText)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseDateTimeRequiresDate(t *testing.T) {
	for _, dateText := range []string{"", "March 5", "13/1/2014", "2/30-ish"} {
		_, err := ParseDateTime(dateText, "11:30 p.m.")
		assert.True(t, errors.IsMalformedInput(err), "date %q should be malformed", dateText)
	}
}

func TestTo24Hour(t *testing.T) {
	tests := []struct {
		hour int
		am   bool
		want int
	}{
		{1, true, 1},
		{11, true, 11},
		{1, false, 13},
		{11, false, 23},
		// The inherited rule leaves 12 a.m. at 12 and wraps 12 p.m. to 0.
		{12, true, 12},
		{12, false, 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, To24Hour(tt.hour, tt.am), "hour=%d am=%v", tt.hour, tt.am)
	}
}

func TestCleanName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"JOHN DOE", "John Doe"},
		{"John  Doe ", "John Doe"},
		{"DeShawn Smith", "DeShawn Smith"},
		{"", ""},
		{"   ", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, CleanName(tt.in))
	}
}
