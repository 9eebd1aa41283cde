package shader

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInfoLog(t *testing.T) {
	tests := []struct {
		name string
		log  []byte
		want string
	}{
		{"terminated", []byte("0:3(1): error: syntax error\n\x00\x00"), "0:3(1): error: syntax error"},
		{"unterminated", []byte("  link failed  "), "link failed"},
		{"empty", []byte{0}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, infoLog(tt.log))
		})
	}
}
