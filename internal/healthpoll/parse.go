package healthpoll

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"
)

// 上游对字段命名不稳定：snake_case 优先，其次 camelCase
var diagnosticFields = []struct {
	key   string
	names []string
}{
	{DiagTransportMode, []string{"transport_mode", "transportMode"}},
	{DiagAPIURL, []string{"api_url", "apiUrl"}},
}

// 失败响应体里可能携带原因的字段
var reasonFields = []string{"error", "message", "detail"}

const maxReasonLen = 200

// parseDiagnostics 宽松解析健康响应体。
// 空 body、非 JSON、非对象都不算失败，对应字段取 N/A。
func parseDiagnostics(body []byte) map[string]string {
	obj := decodeObject(body)
	out := make(map[string]string, len(diagnosticFields))
	for _, f := range diagnosticFields {
		out[f.key] = NotAvailable
		for _, name := range f.names {
			if v, ok := fieldString(obj, name); ok {
				out[f.key] = v
				break
			}
		}
	}
	return out
}

// statusMessage 生成非 2xx 响应的错误描述
func statusMessage(resp *http.Response, body []byte) string {
	status := resp.Status
	if status == "" {
		status = fmt.Sprintf("%d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}
	msg := "health endpoint returned " + strings.TrimSpace(status)
	if reason := failureReason(body); reason != "" {
		msg += ": " + reason
	}
	return msg
}

func failureReason(body []byte) string {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return ""
	}
	if obj := decodeObject(trimmed); obj != nil {
		for _, name := range reasonFields {
			if v, ok := fieldString(obj, name); ok {
				return truncate(v)
			}
		}
		return ""
	}
	if !utf8.Valid(trimmed) {
		return ""
	}
	return truncate(string(trimmed))
}

func decodeObject(body []byte) map[string]json.RawMessage {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &obj); err != nil {
		return nil
	}
	return obj
}

// fieldString 字段不存在、为 null 或空字符串都视为缺失；非字符串值按原始 JSON 文本返回
func fieldString(obj map[string]json.RawMessage, name string) (string, bool) {
	raw, ok := obj[name]
	if !ok {
		return "", false
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if s == "" {
			return "", false
		}
		return s, true
	}
	return string(raw), true
}

func truncate(s string) string {
	s = strings.TrimSpace(s)
	if len(s) <= maxReasonLen {
		return s
	}
	cut := maxReasonLen
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
