package sources

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
)

func hostOf(t *testing.T, rawURL string) string {
	t.Helper()
	u, err := url.Parse(rawURL)
	require.NoError(t, err)
	return u.Host
}
