package security

import (
	"net/http/httptest"
	"testing"
)

func TestDetector_DetectSuspiciousRequest(t *testing.T) {
	d := NewDetector()

	tests := []struct {
		name       string
		path       string
		userAgent  string
		suspicious bool
	}{
		{"normal API request", "/api/gastos", "Mozilla/5.0", false},
		{"curl is a legitimate API client", "/api/gastos", "curl/8.0", false},
		{"path traversal", "/api/../etc/passwd", "Mozilla/5.0", true},
		{"env probe", "/.env", "Mozilla/5.0", true},
		{"wordpress probe", "/wp-admin/setup.php", "Mozilla/5.0", true},
		{"sql injection in path", "/api/gastos?id=1 union select", "Mozilla/5.0", true},
		{"scanner user agent", "/api/gastos", "sqlmap/1.7", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", tt.path, nil)
			r.Header.Set("User-Agent", tt.userAgent)
			if got := d.DetectSuspiciousRequest(r); got != tt.suspicious {
				t.Errorf("DetectSuspiciousRequest() = %v, want %v", got, tt.suspicious)
			}
		})
	}
}

func TestDetector_ExtractClientIP(t *testing.T) {
	d := NewDetector()

	t.Run("direct connection", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/", nil)
		r.RemoteAddr = "203.0.113.7:54321"
		if ip := d.ExtractClientIP(r); ip != "203.0.113.7" {
			t.Errorf("Expected direct IP, got %s", ip)
		}
	})

	t.Run("forwarded header from trusted proxy", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/", nil)
		r.RemoteAddr = "127.0.0.1:1234"
		r.Header.Set("X-Forwarded-For", "198.51.100.9, 10.0.0.1")
		if ip := d.ExtractClientIP(r); ip != "198.51.100.9" {
			t.Errorf("Expected forwarded IP, got %s", ip)
		}
	})

	t.Run("forwarded header from untrusted peer is ignored", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/", nil)
		r.RemoteAddr = "203.0.113.7:1234"
		r.Header.Set("X-Forwarded-For", "198.51.100.9")
		if ip := d.ExtractClientIP(r); ip != "203.0.113.7" {
			t.Errorf("Expected direct IP for untrusted peer, got %s", ip)
		}
	})
}
