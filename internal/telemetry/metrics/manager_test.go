package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_MatchResult(t *testing.T) {
	m, reg := NewTestManagerAndRegistry()

	m.MatchResult("strict", ResultResolved)
	m.MatchResult("strict", ResultNotFound)
	m.MatchResult("recommend", ResultFallback)
	m.MatchResult("recommend", ResultFallback)

	expected := `
# HELP protocolengine_test_server_protocol_match_results Protocol matching outcomes by flow
# TYPE protocolengine_test_server_protocol_match_results counter
protocolengine_test_server_protocol_match_results{flow="recommend",result="fallback"} 2
protocolengine_test_server_protocol_match_results{flow="strict",result="not_found"} 1
protocolengine_test_server_protocol_match_results{flow="strict",result="resolved"} 1
`
	require.NoError(t, testutil.GatherAndCompare(
		reg,
		strings.NewReader(expected),
		"protocolengine_test_server_protocol_match_results",
	))

	var nilManager *Manager
	assert.NotPanics(t, func() {
		nilManager.MatchResult("strict", ResultError)
	})
}

func TestSetupPrometheus(t *testing.T) {
	reg := SetupPrometheus("protocolengine", "abc123")
	NewManager("protocolengine", "main", reg)

	expected := `
# HELP protocolengine_version_info Running version of the service
# TYPE protocolengine_version_info gauge
protocolengine_version_info{version="abc123"} 1
`
	require.NoError(t, testutil.GatherAndCompare(
		reg,
		strings.NewReader(expected),
		"protocolengine_version_info",
	))

	count, err := testutil.GatherAndCount(reg, "go_goroutines")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
