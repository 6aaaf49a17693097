package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidMonthKey(t *testing.T) {
	tests := []struct {
		name  string
		month string
		want  bool
	}{
		{name: "valid january", month: "2024-01", want: true},
		{name: "valid december", month: "2024-12", want: true},
		{name: "month zero", month: "2024-00", want: false},
		{name: "month thirteen", month: "2024-13", want: false},
		{name: "unpadded month", month: "2024-3", want: false},
		{name: "full date", month: "2024-03-01", want: false},
		{name: "missing separator", month: "2024003", want: false},
		{name: "letters", month: "yyyy-mm", want: false},
		{name: "empty", month: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidMonthKey(tt.month))
		})
	}
}
