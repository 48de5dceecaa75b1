package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFindings(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []GeneratedFinding
		wantErr bool
	}{
		{
			name:    "plain array",
			content: `[{"title":"XSS in comments","description":"Stored XSS","severity":6.1,"target":"/comments"}]`,
			want:    []GeneratedFinding{{Title: "XSS in comments", Description: "Stored XSS", Severity: 6.1, Target: "/comments"}},
		},
		{
			name:    "fenced json",
			content: "```json\n[{\"title\":\"Open redirect\",\"description\":\"d\",\"severity\":4.3}]\n```",
			want:    []GeneratedFinding{{Title: "Open redirect", Description: "d", Severity: 4.3}},
		},
		{
			name:    "empty array",
			content: "[]",
			want:    []GeneratedFinding{},
		},
		{
			name:    "prose",
			content: "I found two issues.",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseFindings(tt.content)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
