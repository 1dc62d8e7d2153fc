package middleware

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsIPAllowed(t *testing.T) {
	/*
		Test cases:
		1. Exact match passes
		2. Wildcard passes anything
		3. CIDR entry contains / excludes by prefix bits, not string prefix
		4. Unlisted IP rejected
		5. Port suffix stripped before matching
	*/
	tests := []struct {
		name     string
		clientIP string
		allowed  []string
		want     bool
	}{
		{"exact match", "10.0.0.5", []string{"10.0.0.5"}, true},
		{"wildcard", "203.0.113.9", []string{"*"}, true},
		{"cidr contains", "10.10.3.4", []string{"10.10.0.0/16"}, true},
		{"cidr excludes sibling range", "10.1.2.3", []string{"10.10.0.0/16"}, false},
		{"cidr excludes outside", "192.168.1.1", []string{"10.10.0.0/16"}, false},
		{"unlisted rejected", "198.51.100.7", []string{"10.0.0.5"}, false},
		{"port stripped", "10.0.0.5:44321", []string{"10.0.0.5"}, true},
		{"bad cidr entry ignored", "10.0.0.5", []string{"not-a-prefix/99"}, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, isIPAllowed(tc.clientIP, tc.allowed))
		})
	}
}
