package mdns

import (
	"github.com/stretchr/testify/require"
	"testing"
)

func TestQualifyHostname(t *testing.T) {
	require.Equal(t, "", qualifyHostname(""))
	require.Equal(t, "lark.", qualifyHostname("lark"))
	require.Equal(t, "lark.local.", qualifyHostname("lark.local."))
}

func TestResponderDefaults(t *testing.T) {
	responder := NewResponder(&Config{Port: 9000})

	require.Equal(t, defaultService, responder.config.Service)
	require.Equal(t, defaultInstance, responder.config.Instance)
	require.False(t, responder.Running())
}

func TestStopWithoutStart(t *testing.T) {
	responder := NewResponder(&Config{})

	require.NoError(t, responder.Stop())
	require.NoError(t, responder.Stop())
}
