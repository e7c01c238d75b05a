package client

import "fmt"

// HTTPStatusError 非 2xx 响应；Code 是服务端给出的错误码（如 DuplicateTx）
type HTTPStatusError struct {
	Op         string
	StatusCode int
	Code       string
	Message    string
}

func (e *HTTPStatusError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: status %d, %s: %s", e.Op, e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: status %d, %s", e.Op, e.StatusCode, e.Message)
}
