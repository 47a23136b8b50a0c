package ws

import (
	"net/http/httptest"
	"testing"
)

func TestAllowOrigins(t *testing.T) {
	tests := []struct {
		name    string
		allowed []string
		origin  string
		want    bool
	}{
		{"sem origin", []string{"http://a"}, "", true},
		{"origem listada", []string{"http://a"}, "http://a", true},
		{"origem desconhecida", []string{"http://a"}, "http://b", false},
		{"curinga", []string{"*"}, "http://b", true},
		{"lista vazia", nil, "http://a", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/v1/predictions/ws", nil)
			if tt.origin != "" {
				r.Header.Set("Origin", tt.origin)
			}
			if got := AllowOrigins(tt.allowed)(r); got != tt.want {
				t.Errorf("AllowOrigins(%v)(%q) = %v, want %v", tt.allowed, tt.origin, got, tt.want)
			}
		})
	}
}
