package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDesignAccessors(t *testing.T) {
	raw := `{
		"components": [
			{"name": "API Gateway", "tech_stack": ["Kong", "Nginx"]},
			{"name": "Postgres", "tech_stack": ["PostgreSQL"]},
			"not-an-object"
		],
		"non_functional": {"availability": "99.99%"},
		"deployment": {"regions": 2},
		"tech_decisions": [{"decision": "use Kafka"}]
	}`

	d, err := ParseDesign(raw)
	require.NoError(t, err)

	assert.Len(t, d.Components(), 2)
	assert.Equal(t, []string{"api gateway", "postgres"}, d.ComponentNames())
	assert.Equal(t, []string{"kong", "nginx", "postgresql"}, d.TechStack())
	assert.Equal(t, "99.99%", d.NonFunctional()["availability"])
	assert.Equal(t, float64(2), d.Deployment()["regions"])
	assert.Len(t, d.TechDecisions(), 1)
	assert.Contains(t, d.FlattenText(), "api gateway")
}

func TestParseDesignTolerantOfMissingFields(t *testing.T) {
	d, err := ParseDesign(`{"title": "bare"}`)
	require.NoError(t, err)

	assert.Empty(t, d.Components())
	assert.Empty(t, d.NonFunctional())
	assert.Empty(t, d.Deployment())
	assert.Empty(t, d.TechDecisions())
}

func TestParseDesignRejectsInvalidJSON(t *testing.T) {
	_, err := ParseDesign(`{"components": [`)
	assert.Error(t, err)
}

func TestParseThroughput(t *testing.T) {
	tests := []struct {
		in   any
		want int64
		ok   bool
	}{
		{"10K RPS", 10_000, true},
		{"10000", 10_000, true},
		{"10,000/sec", 10_000, true},
		{"1.5M", 1_500_000, true},
		{float64(2500), 2500, true},
		{"no numbers here", 0, false},
		{nil, 0, false},
		{[]any{}, 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseThroughput(tt.in)
		assert.Equal(t, tt.ok, ok, "input %v", tt.in)
		if ok {
			assert.Equal(t, tt.want, got, "input %v", tt.in)
		}
	}
}

func TestParseAvailability(t *testing.T) {
	tests := []struct {
		in   any
		want float64
		ok   bool
	}{
		{"99.99%", 99.99, true},
		{"99.9", 99.9, true},
		{"four nines", 99.99, true},
		{"five nines", 99.999, true},
		{float64(99.95), 99.95, true},
		{"always up", 0, false},
		{nil, 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseAvailability(tt.in)
		assert.Equal(t, tt.ok, ok, "input %v", tt.in)
		if ok {
			assert.InDelta(t, tt.want, got, 1e-9, "input %v", tt.in)
		}
	}
}

func TestStatusTerminal(t *testing.T) {
	assert.True(t, StatusComplete.Terminal())
	assert.True(t, StatusError.Terminal())
	assert.True(t, StatusCancelled.Terminal())
	assert.False(t, StatusDesigning.Terminal())
	assert.False(t, StatusValidating.Terminal())
}

func TestNewSessionStateDefaults(t *testing.T) {
	st := NewSessionState("arch_ab12cd34", "build a chat app", Preferences{})

	assert.Equal(t, StatusInitializing, st.Status)
	assert.Equal(t, 3, st.MaxDebateRounds)
	assert.Equal(t, 0, st.DebateRound)
	assert.Equal(t, 0, st.ValidationRound)
	assert.NotEmpty(t, st.StartedAt)
	assert.NotNil(t, st.Messages)
	assert.NotNil(t, st.Errors)

	st2 := NewSessionState("arch_ab12cd35", "x", Preferences{MaxDebateRounds: 5})
	assert.Equal(t, 5, st2.MaxDebateRounds)
}
