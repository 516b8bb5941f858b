package proxy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCookieHeader(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   map[string]string
	}{
		{
			name:   "multiple pairs",
			header: "csurftoken=abc123; _bb_lat=12.93; jarvis-id=uuid-1",
			want:   map[string]string{"csurftoken": "abc123", "_bb_lat": "12.93", "jarvis-id": "uuid-1"},
		},
		{
			name:   "value containing equals",
			header: "userLocation=%7B%22lat%22%3D12%7D",
			want:   map[string]string{"userLocation": "%7B%22lat%22%3D12%7D"},
		},
		{
			name:   "skips parts without equals",
			header: "valid=1; malformed; other=2",
			want:   map[string]string{"valid": "1", "other": "2"},
		},
		{
			name:   "empty header",
			header: "",
			want:   map[string]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseCookieHeader(tt.header))
		})
	}
}

func TestFormatCookieHeaderDeterministic(t *testing.T) {
	cookies := map[string]string{
		"gr_1_lat":      "12.93",
		"gr_1_deviceId": "dev-1",
		"gr_1_lon":      "77.61",
	}

	want := "gr_1_deviceId=dev-1; gr_1_lat=12.93; gr_1_lon=77.61"
	for i := 0; i < 10; i++ {
		assert.Equal(t, want, FormatCookieHeader(cookies))
	}

	assert.Equal(t, "", FormatCookieHeader(nil))
}

func TestParseFormatRoundTrip(t *testing.T) {
	header := "a=1; b=2; c=3"
	assert.Equal(t, header, FormatCookieHeader(ParseCookieHeader(header)))
}

func TestMergeCookies(t *testing.T) {
	dst := map[string]string{"keep": "old", "replace": "old"}
	delta := map[string]string{"replace": "new", "add": "1"}

	merged := MergeCookies(dst, delta)

	assert.Equal(t, map[string]string{"keep": "old", "replace": "new", "add": "1"}, merged)

	// nil destination allocates
	assert.Equal(t, map[string]string{"x": "1"}, MergeCookies(nil, map[string]string{"x": "1"}))
}
