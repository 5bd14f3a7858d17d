package test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/2beens/protocolengine/internal/protocol"

	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedProfile(ageBracket, target string) protocol.Profile {
	return protocol.Normalize(protocol.RawProfile{
		"Age Bracket":        ageBracket,
		"Gender":             "Female",
		"Training Frequency": "3-4",
		"Training Intensity": "Medium",
		"Coaching Sessions":  "2",
		"Years of Practice":  "3-5",
		"Handedness":         "Right-handed",
		"Target":             target,
	})
}

func seedRecords() []*protocol.Record {
	return []*protocol.Record{
		{
			Profile: seedProfile("14–18", protocol.TargetPerformance),
			Payload: protocol.Payload{
				RecommendedStack: "Youth Performance",
				Protocol:         "Whey Protein, Creatine",
				Timing:           "Post-training",
				Dosage:           "20 g whey, 3 g creatine",
				NutritionAdvice:  "Carbohydrates before training, protein after.",
			},
		},
		{
			Profile: seedProfile("10–13", protocol.TargetRecovery),
			Payload: protocol.Payload{
				RecommendedStack: "Junior Recovery",
				Protocol:         "Magnesium",
				Timing:           "Before bed",
				Dosage:           "100 mg",
				NutritionAdvice:  "Sleep at least 9 hours.",
			},
		},
		{
			// shadowed by the first row
			Profile: seedProfile("14–18", protocol.TargetPerformance),
			Payload: protocol.Payload{RecommendedStack: "Never Served"},
		},
	}
}

func (s *IntegrationTestSuite) postProfile(
	ctx context.Context,
	profile protocol.Profile,
	forwardedFor string,
) (*http.Response, []byte) {
	body, err := json.Marshal(profile.Raw())
	require.NoError(s.T(), err)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, serverEndpoint+protocol.MatchPath, bytes.NewReader(body))
	require.NoError(s.T(), err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "test-agent")
	if forwardedFor != "" {
		req.Header.Set("X-Forwarded-For", forwardedFor)
	}

	resp, err := s.httpClient.Do(req)
	require.NoError(s.T(), err)
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	require.NoError(s.T(), err)
	return resp, respBody
}

func (s *IntegrationTestSuite) TestMatchProtocol() {
	t := s.T()
	ctx := context.Background()

	resp, body := s.postProfile(ctx, seedProfile("14–18", protocol.TargetPerformance), "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.NotEmpty(t, resp.Header.Get("X-Request-Id"))

	var record protocol.Record
	require.NoError(t, json.Unmarshal(body, &record))
	assert.Equal(t, "Youth Performance", record.RecommendedStack)
	assert.Equal(t, protocol.PrimarySport, record.PrimarySport)

	resp, body = s.postProfile(ctx, seedProfile("6–9", protocol.TargetPerformance), "")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.JSONEq(t, `{"error":"Protocol not found"}`, string(body))
}

func (s *IntegrationTestSuite) TestPreflight() {
	t := s.T()

	req, err := http.NewRequest(http.MethodOptions, serverEndpoint+protocol.MatchPath, nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://questionnaire.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Content-Type")

	resp, err := s.httpClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, body)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Contains(t, resp.Header.Get("Access-Control-Allow-Methods"), http.MethodPost)
}

func (s *IntegrationTestSuite) TestReloadProtocols() {
	t := s.T()
	ctx := context.Background()
	profile := seedProfile("19+", protocol.TargetEndurance)

	resp, _ := s.postProfile(ctx, profile, "")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	_, err := s.insertProtocols(&protocol.Record{
		Profile: profile,
		Payload: protocol.Payload{RecommendedStack: "Adult Endurance"},
	})
	require.NoError(t, err)

	// served from the old snapshot until reloaded
	resp, _ = s.postProfile(ctx, profile, "")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	require.NoError(t, s.server.ReloadProtocols(ctx))
	resp, body := s.postProfile(ctx, profile, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "Adult Endurance")
}

func (s *IntegrationTestSuite) TestClientRecommend() {
	t := s.T()
	ctx := context.Background()
	logger, _ := logtest.NewNullLogger()
	client := protocol.NewClient(serverEndpoint, s.httpClient, logger)

	rec := client.Recommend(ctx, seedProfile("10–13", protocol.TargetRecovery).Raw())
	assert.False(t, rec.IsFallback())
	assert.Equal(t, "Junior Recovery", rec.RecommendedStack)
}

func (s *IntegrationTestSuite) TestRateLimit() {
	t := s.T()
	ctx := context.Background()
	profile := seedProfile("14–18", protocol.TargetPerformance)

	var limited *http.Response
	var limitedBody []byte
	for i := 0; i < testRateLimitPerMin+5; i++ {
		resp, body := s.postProfile(ctx, profile, "203.0.113.50")
		if resp.StatusCode == http.StatusTooManyRequests {
			limited, limitedBody = resp, body
			break
		}
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}

	require.NotNil(t, limited, "expected to be rate limited")
	assert.NotEmpty(t, limited.Header.Get("Retry-After"))
	assert.True(t, strings.Contains(string(limitedBody), "Too many requests"))

	// other clients are not affected
	resp, _ := s.postProfile(ctx, profile, "203.0.113.51")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
