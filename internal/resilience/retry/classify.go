package retry

import (
	"strings"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// nonRetryableFragments are the hard client/auth failure signatures the
// platform returns. Anything not matched here is assumed transient.
var nonRetryableFragments = []string{
	"invalid api key",
	"unauthorized",
	"forbidden",
	"not found",
	"bad request",
	"invalid jwt",
	"jwt expired",
}

// nonRetryableCodes maps gRPC transport failures to the same taxonomy for
// call sites that talk to the platform over gRPC.
var nonRetryableCodes = map[codes.Code]bool{
	codes.Unauthenticated:  true,
	codes.PermissionDenied: true,
	codes.NotFound:         true,
	codes.InvalidArgument:  true,
}

// IsNonRetryable reports whether err is a hard client or auth failure that
// will not succeed on retry. Timeouts and generic network failures are
// retryable.
//
// Note: "not found" is treated as non-retryable even though some read paths
// use an absent row as a legitimate empty result. Those call sites must
// resolve absence before invoking the executor.
func IsNonRetryable(err error) bool {
	if err == nil {
		return false
	}

	if s, ok := status.FromError(err); ok && nonRetryableCodes[s.Code()] {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, fragment := range nonRetryableFragments {
		if strings.Contains(msg, fragment) {
			return true
		}
	}
	return false
}
