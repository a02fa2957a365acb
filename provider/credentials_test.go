package provider

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticToken(t *testing.T) {
	tok, err := StaticToken("abc").Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "abc", tok)

	_, err = StaticToken("").Token(context.Background())
	require.Error(t, err)
}

func newFakeCLIToken(now *time.Time, responses ...string) (*AzureCLIToken, *[][]string) {
	var calls [][]string
	s := NewAzureCLIToken(DefaultTokenResource)
	s.now = func() time.Time { return *now }
	s.run = func(ctx context.Context, args ...string) ([]byte, error) {
		calls = append(calls, args)
		if len(responses) == 0 {
			return nil, errors.New("az: not logged in")
		}
		out := responses[0]
		if len(responses) > 1 {
			responses = responses[1:]
		}
		return []byte(out), nil
	}
	return s, &calls
}

func TestAzureCLITokenCachesUntilNearExpiry(t *testing.T) {
	now := time.Unix(1_750_000_000, 0)
	expiry := now.Add(time.Hour).Unix()
	s, calls := newFakeCLIToken(&now,
		`{"accessToken":"first","expires_on":`+strconv.FormatInt(expiry, 10)+`}`,
		`{"accessToken":"second","expires_on":`+strconv.FormatInt(expiry+3600, 10)+`}`,
	)

	tok, err := s.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "first", tok)
	require.Len(t, *calls, 1)
	assert.Equal(t, []string{"account", "get-access-token", "--resource", DefaultTokenResource, "--output", "json"}, (*calls)[0])

	now = now.Add(50 * time.Minute)
	tok, err = s.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "first", tok)
	assert.Len(t, *calls, 1)

	now = now.Add(6 * time.Minute)
	tok, err = s.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "second", tok)
	assert.Len(t, *calls, 2)
}

func TestAzureCLITokenWithoutExpiry(t *testing.T) {
	now := time.Unix(1_750_000_000, 0)
	s, calls := newFakeCLIToken(&now, `{"accessToken":"tok"}`)

	_, err := s.Token(context.Background())
	require.NoError(t, err)
	now = now.Add(20 * time.Minute)
	_, err = s.Token(context.Background())
	require.NoError(t, err)
	assert.Len(t, *calls, 1)
}

func TestAzureCLITokenErrors(t *testing.T) {
	now := time.Unix(1_750_000_000, 0)

	s, _ := newFakeCLIToken(&now)
	_, err := s.Token(context.Background())
	require.ErrorContains(t, err, "az login")

	s, _ = newFakeCLIToken(&now, `not json`)
	_, err = s.Token(context.Background())
	require.Error(t, err)

	s, _ = newFakeCLIToken(&now, `{"accessToken":""}`)
	_, err = s.Token(context.Background())
	require.Error(t, err)
}
