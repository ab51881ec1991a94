package postgrest

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// RemoteError 存储端返回的非2xx响应
type RemoteError struct {
	Method string
	Path   string
	Status int
	Body   string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("remote store error: %s %s -> %d: %s", e.Method, e.Path, e.Status, e.Body)
}

// Message 尽量从PostgREST错误体中提取可读信息
func (e *RemoteError) Message() string {
	var body struct {
		Message string `json:"message"`
		Details string `json:"details"`
		Hint    string `json:"hint"`
	}
	if err := json.Unmarshal([]byte(e.Body), &body); err == nil && body.Message != "" {
		if body.Details != "" {
			return body.Message + " (" + body.Details + ")"
		}
		return body.Message
	}
	if e.Body != "" {
		return e.Body
	}
	return http.StatusText(e.Status)
}

// NotFound 按ID更新/删除时没有命中记录
func NotFound(method, path, id string) *RemoteError {
	body, _ := json.Marshal(map[string]string{"message": "no row with id " + id})
	return &RemoteError{
		Method: method,
		Path:   path,
		Status: http.StatusNotFound,
		Body:   string(body),
	}
}

// AsRemoteError 提取 *RemoteError
func AsRemoteError(err error) (*RemoteError, bool) {
	var re *RemoteError
	if errors.As(err, &re) {
		return re, true
	}
	return nil, false
}
