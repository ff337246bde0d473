package logging

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Redactor reduces URLs on sensitive domains to their scheme and host,
// dropping user info, path, query and fragment.
// A Redactor with no domains leaves every input untouched.
type Redactor struct {
	pattern *regexp.Regexp
}

// NewRedactor returns a Redactor for the given root domains.
// A URL matches when its host is one of the domains or any subdomain of one.
func NewRedactor(domains ...string) *Redactor {
	quoted := make([]string, 0, len(domains))
	for _, d := range domains {
		if d = strings.TrimSpace(d); d != "" {
			quoted = append(quoted, regexp.QuoteMeta(d))
		}
	}
	if len(quoted) == 0 {
		return &Redactor{}
	}
	// group 1: scheme, group 2: host (+port), group 3: everything after the host up to whitespace.
	p := `(?i)(https?)://(?:[^\s/?#@]+@)?((?:[a-z0-9-]+\.)*(?:` + strings.Join(quoted, "|") + `)(?::\d+)?)(\S*)`
	return &Redactor{pattern: regexp.MustCompile(p)}
}

// endsHost reports whether rest, the text following a candidate host, starts outside of it.
// "mcp.gumloop.community" and "mcp.gumloop.com.evil.org" only look like a sensitive host.
func endsHost(rest string) bool {
	if rest == "" {
		return true
	}
	c := rest[0]
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return false
	case strings.IndexByte(".-_:@%", c) >= 0:
		return false
	}
	return true
}

// Redact returns s with every sensitive URL reduced to scheme://host.
func (r *Redactor) Redact(s string) string {
	if r == nil || r.pattern == nil || !strings.Contains(s, "://") {
		return s
	}
	return r.pattern.ReplaceAllStringFunc(s, func(match string) string {
		m := r.pattern.FindStringSubmatch(match)
		if m == nil {
			return match
		}
		if !endsHost(m[3]) {
			// not a sensitive host, but the rest may still carry one
			return match[:len(match)-len(m[3])] + r.Redact(m[3])
		}
		return m[1] + "://" + m[2]
	})
}

// Matches reports whether s contains at least one sensitive URL.
func (r *Redactor) Matches(s string) bool {
	if r == nil || r.pattern == nil {
		return false
	}
	for _, m := range r.pattern.FindAllStringSubmatch(s, -1) {
		if endsHost(m[3]) || r.Matches(m[3]) {
			return true
		}
	}
	return false
}

// redactedError stands in for an error whose message contained a sensitive URL.
// It still unwraps to the original error.
type redactedError struct {
	msg string
	err error
}

func (e *redactedError) Error() string { return e.msg }
func (e *redactedError) Unwrap() error { return e.err }

// RedactError returns err unchanged unless its message contains a sensitive URL,
// in which case the returned error reports the redacted message.
func (r *Redactor) RedactError(err error) error {
	if err == nil {
		return nil
	}
	msg, ok := safeString(err.Error)
	if !ok {
		return err
	}
	redacted := r.Redact(msg)
	if redacted == msg {
		return err
	}
	return &redactedError{msg: redacted, err: err}
}

// redactField rewrites the textual payload of a single zap field.
// Arrays, objects and reflected values are encoded and their strings redacted; the field is
// replaced by the redacted value only when something changed. Other types are returned unchanged.
func (r *Redactor) redactField(f zapcore.Field) zapcore.Field {
	switch f.Type {
	case zapcore.StringType:
		f.String = r.Redact(f.String)
	case zapcore.ByteStringType:
		if b, ok := f.Interface.([]byte); ok {
			f.Interface = []byte(r.Redact(string(b)))
		}
	case zapcore.StringerType:
		if s, ok := f.Interface.(fmt.Stringer); ok {
			if str, ok := safeString(s.String); ok {
				return zap.String(f.Key, r.Redact(str))
			}
		}
	case zapcore.ErrorType:
		if err, ok := f.Interface.(error); ok {
			f.Interface = r.RedactError(err)
		}
	case zapcore.ArrayMarshalerType, zapcore.ObjectMarshalerType:
		enc := zapcore.NewMapObjectEncoder()
		if err := safeAddTo(f, enc); err != nil {
			return f
		}
		if v, changed := r.redactValue(enc.Fields[f.Key]); changed {
			return zap.Any(f.Key, v)
		}
	case zapcore.ReflectType:
		b, err := json.Marshal(f.Interface)
		if err != nil || !r.Matches(string(b)) {
			return f
		}
		dec := json.NewDecoder(bytes.NewReader(b))
		dec.UseNumber()
		var generic any
		if err := dec.Decode(&generic); err != nil {
			return f
		}
		if v, changed := r.redactValue(generic); changed {
			return zap.Any(f.Key, v)
		}
	}
	return f
}

// safeAddTo encodes f into enc, recovering from panicking marshalers.
func safeAddTo(f zapcore.Field, enc *zapcore.MapObjectEncoder) (err error) {
	defer func() {
		if recover() != nil {
			err = fmt.Errorf("failed to encode field %s", f.Key)
		}
	}()
	switch f.Type {
	case zapcore.ArrayMarshalerType:
		am, ok := f.Interface.(zapcore.ArrayMarshaler)
		if !ok {
			return fmt.Errorf("field %s is not an array", f.Key)
		}
		return enc.AddArray(f.Key, am)
	default:
		om, ok := f.Interface.(zapcore.ObjectMarshaler)
		if !ok {
			return fmt.Errorf("field %s is not an object", f.Key)
		}
		return enc.AddObject(f.Key, om)
	}
}

// redactValue redacts every string inside v, which holds the generic values produced by
// zapcore.MapObjectEncoder or encoding/json.
func (r *Redactor) redactValue(v any) (any, bool) {
	switch x := v.(type) {
	case string:
		out := r.Redact(x)
		return out, out != x
	case []any:
		changed := false
		out := make([]any, len(x))
		for i, e := range x {
			var c bool
			out[i], c = r.redactValue(e)
			changed = changed || c
		}
		return out, changed
	case map[string]any:
		changed := false
		out := make(map[string]any, len(x))
		for k, e := range x {
			var c bool
			out[k], c = r.redactValue(e)
			changed = changed || c
		}
		return out, changed
	}
	return v, false
}

func (r *Redactor) redactFields(fields []zapcore.Field) []zapcore.Field {
	if len(fields) == 0 {
		return fields
	}
	// never modify the caller's slice
	out := make([]zapcore.Field, len(fields))
	for i, f := range fields {
		out[i] = r.redactField(f)
	}
	return out
}

// safeString calls fn, recovering from panics raised by nil receivers and the like.
func safeString(fn func() string) (s string, ok bool) {
	defer func() {
		if recover() != nil {
			s, ok = "", false
		}
	}()
	return fn(), true
}

// redactingCore wraps a zapcore.Core and redacts every entry before it reaches the wrapped core.
type redactingCore struct {
	zapcore.Core
	redactor *Redactor
}

// NewRedactingCore wraps core so that messages and every string a field carries,
// including those nested in arrays, objects and reflected values, are redacted by r.
func NewRedactingCore(core zapcore.Core, r *Redactor) zapcore.Core {
	return &redactingCore{Core: core, redactor: r}
}

func (c *redactingCore) With(fields []zapcore.Field) zapcore.Core {
	return &redactingCore{
		Core:     c.Core.With(c.redactor.redactFields(fields)),
		redactor: c.redactor,
	}
}

func (c *redactingCore) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(ent.Level) {
		return ce.AddCore(ent, c)
	}
	return ce
}

func (c *redactingCore) Write(ent zapcore.Entry, fields []zapcore.Field) error {
	ent.Message = c.redactor.Redact(ent.Message)
	return c.Core.Write(ent, c.redactor.redactFields(fields))
}

// RedactURLLogs returns a logger whose entries are passed through r before being written.
// Calling it on an already redacting logger stacks another, independent redaction layer.
func RedactURLLogs(logger *zap.Logger, r *Redactor) *zap.Logger {
	return logger.WithOptions(zap.WrapCore(func(core zapcore.Core) zapcore.Core {
		return NewRedactingCore(core, r)
	}))
}
