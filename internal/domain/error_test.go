package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSimilarNames_SubstringContainment(t *testing.T) {
	known := []string{"web_fetcher", "filesystem", "calculator"}

	require.Equal(t, []string{"web_fetcher"}, SimilarNames("fetch", known))
	require.Equal(t, []string{"filesystem"}, SimilarNames("FILE", known))
	require.Empty(t, SimilarNames("fech", known), "no edit-distance matching")
	require.Empty(t, SimilarNames("", known))
}

func TestSimilarNames_RequestedContainsCandidate(t *testing.T) {
	require.Equal(t, []string{"fs"}, SimilarNames("my-fs-server", []string{"fs", "web"}))
}

func TestWrap_PassesThroughTypedErrors(t *testing.T) {
	typed := E(CodeToolNotFound, "missing", nil)
	wrapped := Wrap(CodeUnknown, typed)
	require.Same(t, typed, wrapped)
	require.Equal(t, CodeToolNotFound, wrapped.Code)
}

func TestWrap_ForeignErrorKeepsCause(t *testing.T) {
	cause := errors.New("boom")
	wrapped := Wrap(CodeConnectionFailed, cause)
	require.Equal(t, CodeConnectionFailed, wrapped.Code)
	require.ErrorIs(t, wrapped, cause)
}

func TestCodeFrom(t *testing.T) {
	require.Equal(t, CodeServerTimeout, CodeFrom(E(CodeServerTimeout, "slow", nil)))
	require.Equal(t, CodeConnectionFailed, CodeFrom(ErrNotConnected))
	require.Equal(t, CodeUnknown, CodeFrom(errors.New("anything")))
	require.Equal(t, ErrorCode(""), CodeFrom(nil))
}

func TestPayload_CarriesStructuredFields(t *testing.T) {
	err := E(CodeServerNotFound, "server \"web\" is not configured", nil).
		WithDetail("requested", "web").
		WithSuggestion("check the name").
		WithSimilar([]string{"web_fetcher"})

	payload := Payload(err)
	require.Equal(t, CodeServerNotFound, payload.Code)
	require.Equal(t, "server \"web\" is not configured", payload.Message)
	require.Equal(t, "web", payload.Details["requested"])
	require.Equal(t, "check the name", payload.Suggestion)
	require.Equal(t, []string{"web_fetcher"}, payload.Similar)
}

func TestPayload_ForeignErrorFallsBackToUnknown(t *testing.T) {
	payload := Payload(errors.New("kaboom"))
	require.Equal(t, CodeUnknown, payload.Code)
	require.Equal(t, "kaboom", payload.Message)
}
