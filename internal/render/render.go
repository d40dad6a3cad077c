// Package render 在终端输出健康快照。
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"github.com/taoyao-code/mcp-status/internal/healthpoll"
)

// Format 输出格式
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat 解析输出格式
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "", FormatText:
		return FormatText, nil
	case FormatJSON, FormatYAML:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want text, json or yaml)", s)
	}
}

// record json/yaml 输出的结构
type record struct {
	State         healthpoll.State `json:"state" yaml:"state"`
	Endpoint      string           `json:"endpoint" yaml:"endpoint"`
	CheckedAt     *time.Time       `json:"checked_at,omitempty" yaml:"checked_at,omitempty"`
	TransportMode string           `json:"transport_mode" yaml:"transport_mode"`
	APIURL        string           `json:"api_url" yaml:"api_url"`
	Error         string           `json:"error,omitempty" yaml:"error,omitempty"`
	Kind          string           `json:"kind,omitempty" yaml:"kind,omitempty"`
}

// Renderer 将快照写到 w，并发安全
type Renderer struct {
	mu       sync.Mutex
	w        io.Writer
	format   Format
	endpoint string

	ok   *color.Color
	bad  *color.Color
	wait *color.Color
	dim  *color.Color
}

// New 创建渲染器；noColor 为 true 时关闭 ANSI 颜色
func New(w io.Writer, format Format, endpoint string, noColor bool) *Renderer {
	r := &Renderer{
		w:        w,
		format:   format,
		endpoint: endpoint,
		ok:       color.New(color.FgGreen, color.Bold),
		bad:      color.New(color.FgRed, color.Bold),
		wait:     color.New(color.FgYellow),
		dim:      color.New(color.Faint),
	}
	if noColor {
		for _, c := range []*color.Color{r.ok, r.bad, r.wait, r.dim} {
			c.DisableColor()
		}
	}
	return r
}

// Update 作为轮询回调使用
func (r *Renderer) Update(st healthpoll.Status) {
	_ = r.Render(st)
}

// Render 输出一条快照
func (r *Renderer) Render(st healthpoll.Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch r.format {
	case FormatJSON:
		data, err := json.Marshal(r.record(st))
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(r.w, string(data))
		return err
	case FormatYAML:
		data, err := yaml.Marshal(r.record(st))
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(r.w, "---\n%s", data)
		return err
	default:
		return r.text(st)
	}
}

func (r *Renderer) record(st healthpoll.Status) record {
	rec := record{
		State:         st.State(),
		Endpoint:      r.endpoint,
		TransportMode: st.Diagnostic(healthpoll.DiagTransportMode),
		APIURL:        st.Diagnostic(healthpoll.DiagAPIURL),
		Error:         st.Error,
		Kind:          string(st.Kind),
	}
	if !st.CheckedAt.IsZero() {
		at := st.CheckedAt.UTC()
		rec.CheckedAt = &at
	}
	return rec
}

func (r *Renderer) text(st healthpoll.Status) error {
	var b strings.Builder
	switch st.State() {
	case healthpoll.StateHealthy:
		b.WriteString(r.ok.Sprint("● Connected"))
	case healthpoll.StateUnhealthy:
		b.WriteString(r.bad.Sprint("● Disconnected"))
	default:
		b.WriteString(r.wait.Sprint("○ Checking..."))
	}

	if !st.CheckedAt.IsZero() {
		b.WriteString(r.dim.Sprintf("  last checked %s", st.CheckedAt.Format("15:04:05")))
	}
	b.WriteByte('\n')

	fmt.Fprintf(&b, "  Endpoint:   %s\n", r.endpoint)
	if st.State() != healthpoll.StateUnhealthy {
		fmt.Fprintf(&b, "  Transport:  %s\n", st.Diagnostic(healthpoll.DiagTransportMode))
		fmt.Fprintf(&b, "  API URL:    %s\n", st.Diagnostic(healthpoll.DiagAPIURL))
	} else {
		fmt.Fprintf(&b, "  Error:      %s\n", r.bad.Sprint(st.Error))
	}

	_, err := io.WriteString(r.w, b.String())
	return err
}
