package wifi

import (
	"errors"
	"github.com/stretchr/testify/require"
	"testing"
)

func TestErrorForReason(t *testing.T) {
	tests := []struct {
		reason Reason
		want   error
	}{
		{reason: ReasonAuthFail, want: ErrCredentialsRejected},
		{reason: ReasonAuthExpire, want: ErrTimeout},
		{reason: ReasonFourWayHandshakeTimeout, want: ErrTimeout},
		{reason: ReasonHandshakeTimeout, want: ErrTimeout},
		{reason: ReasonNoApFound, want: ErrNetworkNotFound},
		{reason: ReasonUnspecified, want: ErrDriver},
		{reason: Reason(99), want: ErrDriver},
	}

	for _, tt := range tests {
		err := errorForReason(tt.reason)
		require.ErrorIs(t, err, tt.want, "reason %v", tt.reason)
	}
}

func TestDriverErrorWrapsCause(t *testing.T) {
	cause := errors.New("bus unavailable")

	err := driverError(cause)
	require.ErrorIs(t, err, ErrDriver)
	require.Contains(t, err.Error(), "bus unavailable")
}

func TestReasonString(t *testing.T) {
	require.Equal(t, "none", Reason(0).String())
	require.Equal(t, "association left", ReasonAssocLeave.String())
	require.Equal(t, "auth failed", ReasonAuthFail.String())
	require.Equal(t, "reason 77", Reason(77).String())
}
