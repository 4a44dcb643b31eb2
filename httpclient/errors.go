package httpclient

import (
	"errors"
	"fmt"
)

// ErrAuthExhausted is returned when a logical request keeps being rejected with
// 401 Unauthorized after the maximum number of re-authentication retries.
// No further network calls are made once this is raised.
var ErrAuthExhausted = errors.New("httpclient: failed to authenticate, unauthorized retries exhausted")

// UnexpectedStatusError reports a response status outside the supported
// {200, 401} set. Such responses fail the request immediately and are never
// retried, regardless of verb.
type UnexpectedStatusError struct {
	StatusCode int
}

func (e *UnexpectedStatusError) Error() string {
	return fmt.Sprintf("httpclient: unsupported status code (CODE=%d)", e.StatusCode)
}
