package aisvc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_extractJSONArray(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "bare array",
			in:   `[{"prompt": "2+2?"}]`,
			want: `[{"prompt": "2+2?"}]`,
		},
		{
			name: "prose-wrapped array",
			in:   "Here is your quiz:\n[{\"prompt\": \"2+2?\"}]\nEnjoy!",
			want: `[{"prompt": "2+2?"}]`,
		},
		{
			name: "no array passes through",
			in:   "sorry, I cannot do that",
			want: "sorry, I cannot do that",
		},
		{
			name: "empty input",
			in:   "",
			want: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractJSONArray(tt.in))
		})
	}
}
