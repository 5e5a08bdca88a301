// Copyright (c) 2024 The Meridian developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/holiman/uint256"
)

type discardHandler struct{}

// DiscardHandler returns a no-op handler.
func DiscardHandler() slog.Handler {
	return &discardHandler{}
}

func (h *discardHandler) Handle(_ context.Context, _ slog.Record) error {
	return nil
}

func (h *discardHandler) Enabled(_ context.Context, _ slog.Level) bool {
	return false
}

func (h *discardHandler) WithGroup(_ string) slog.Handler {
	panic("not implemented")
}

func (h *discardHandler) WithAttrs(_ []slog.Attr) slog.Handler {
	return &discardHandler{}
}

// JSONHandlerWithLevel returns a handler which emits records in JSON format
// at the provided level or above.
func JSONHandlerWithLevel(wr io.Writer, level slog.Leveler) slog.Handler {
	return slog.NewJSONHandler(wr, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(_ []string, attr slog.Attr) slog.Attr {
			switch attr.Key {
			case slog.TimeKey:
				if t, ok := attr.Value.Any().(time.Time); ok {
					attr.Value = slog.StringValue(t.Format(timeFormat))
				}
			case slog.LevelKey:
				if l, ok := attr.Value.Any().(slog.Level); ok {
					attr.Value = slog.StringValue(strings.TrimSpace(levelString(l)))
				}
			}
			return attr
		},
	})
}

const (
	timeFormat        = "2006-01-02T15:04:05-0700"
	termTimeFormat    = "01-02|15:04:05.000"
	termCtxMaxPadding = 40
)

// TerminalHandler prints records in a human friendly terminal format.
type TerminalHandler struct {
	mu       sync.Mutex
	wr       io.Writer
	lvl      *slog.LevelVar
	useColor bool
	attrs    []slog.Attr

	// fieldPadding is a map with maximum field value lengths seen until now
	// to allow padding log contexts in a bit smarter way.
	fieldPadding map[string]int
}

// NewTerminalHandlerWithLevel returns a handler which only emits records
// at the provided level or above.
func NewTerminalHandlerWithLevel(wr io.Writer, lvl *slog.LevelVar, useColor bool) *TerminalHandler {
	return &TerminalHandler{
		wr:           wr,
		lvl:          lvl,
		useColor:     useColor,
		fieldPadding: make(map[string]int),
	}
}

func (h *TerminalHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	buf := make([]byte, 0, 128)
	if h.useColor {
		if color := levelColor(r.Level); color > 0 {
			buf = append(buf, fmt.Sprintf("\x1b[%dm%s\x1b[0m", color, levelString(r.Level))...)
		} else {
			buf = append(buf, levelString(r.Level)...)
		}
	} else {
		buf = append(buf, levelString(r.Level)...)
	}
	buf = append(buf, '[')
	buf = r.Time.AppendFormat(buf, termTimeFormat)
	buf = append(buf, "] "...)
	buf = append(buf, r.Message...)

	// try to justify the log output for short messages
	if r.NumAttrs() > 0 && len(r.Message) < 40 {
		buf = append(buf, "                                        "[:40-len(r.Message)]...)
	}

	for _, attr := range h.attrs {
		buf = h.appendAttr(buf, attr)
	}
	r.Attrs(func(attr slog.Attr) bool {
		buf = h.appendAttr(buf, attr)
		return true
	})
	buf = append(buf, '\n')

	_, err := h.wr.Write(buf)
	return err
}

func (h *TerminalHandler) appendAttr(buf []byte, attr slog.Attr) []byte {
	buf = append(buf, ' ')
	key := attr.Key
	val := FormatSlogValue(attr.Value)

	padding := h.fieldPadding[key]
	if len(val) > padding {
		padding = len(val)
		if padding > termCtxMaxPadding {
			padding = termCtxMaxPadding
		}
		h.fieldPadding[key] = padding
	}
	if h.useColor {
		buf = append(buf, fmt.Sprintf("\x1b[%dm%s\x1b[0m=", 32, key)...)
	} else {
		buf = append(buf, key...)
		buf = append(buf, '=')
	}
	buf = append(buf, val...)
	if len(val) < padding {
		buf = append(buf, "                                        "[:padding-len(val)]...)
	}
	return buf
}

func (h *TerminalHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.lvl.Level()
}

func (h *TerminalHandler) WithGroup(_ string) slog.Handler {
	panic("not implemented")
}

func (h *TerminalHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &TerminalHandler{
		wr:           h.wr,
		lvl:          h.lvl,
		useColor:     h.useColor,
		attrs:        append(h.attrs, attrs...),
		fieldPadding: make(map[string]int),
	}
}

func levelString(l slog.Level) string {
	switch l {
	case LevelTrace:
		return "TRACE "
	case LevelDebug:
		return "DEBUG "
	case LevelInfo:
		return "INFO  "
	case LevelWarn:
		return "WARN  "
	case LevelError:
		return "ERROR "
	case LevelCrit:
		return "CRIT  "
	default:
		return l.String() + " "
	}
}

func levelColor(l slog.Level) int {
	switch {
	case l >= LevelCrit:
		return 35
	case l >= LevelError:
		return 31
	case l >= LevelWarn:
		return 33
	case l >= LevelInfo:
		return 32
	default:
		return 36
	}
}

// FormatSlogValue formats a slog.Value for serialization.
func FormatSlogValue(v slog.Value) string {
	switch v.Kind() {
	case slog.KindString:
		return v.String()
	case slog.KindInt64:
		return strconv.FormatInt(v.Int64(), 10)
	case slog.KindUint64:
		return strconv.FormatUint(v.Uint64(), 10)
	case slog.KindBool:
		return strconv.FormatBool(v.Bool())
	case slog.KindTime:
		return v.Time().Format(timeFormat)
	case slog.KindDuration:
		return v.Duration().String()
	}

	switch value := v.Any().(type) {
	case nil:
		return "<nil>"
	case error:
		return value.Error()
	case *big.Int:
		if value == nil {
			return "<nil>"
		}
		return value.String()
	case *uint256.Int:
		if value == nil {
			return "<nil>"
		}
		return value.Dec()
	case fmt.Stringer:
		return value.String()
	case time.Time:
		return value.Format(timeFormat)
	default:
		return fmt.Sprintf("%v", value)
	}
}
