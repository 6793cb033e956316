package cmd

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	errors "github.com/Laisky/errors/v2"
	gconfig "github.com/Laisky/go-config/v2"

	"github.com/Laisky/scratchpad-mcp/internal/mcp"
	"github.com/Laisky/scratchpad-mcp/library/db/sqlite"
)

// configGetter retrieves raw configuration values by dotted key path.
type configGetter func(key string) any

type valueKind int

const (
	kindBool valueKind = iota
	kindInt
	kindText
)

// configRule describes one optional key. min applies to kindInt only.
type configRule struct {
	key  string
	kind valueKind
	min  int64
}

func configRules() []configRule {
	rules := []configRule{
		{key: "settings.scratchpad.db_path", kind: kindText},
		{key: "settings.scratchpad.max_content_bytes", kind: kindInt, min: 1},
		{key: "settings.scratchpad.index.rebuild_on_drift", kind: kindBool},
		{key: "settings.scratchpad.list.limit_default", kind: kindInt, min: 1},
		{key: "settings.scratchpad.list.limit_max", kind: kindInt, min: 1},
		{key: "settings.scratchpad.search.limit_default", kind: kindInt, min: 1},
		{key: "settings.scratchpad.search.limit_max", kind: kindInt, min: 1},
		{key: "settings.scratchpad.search.snippet_length", kind: kindInt, min: 10},
		{key: "settings.scratchpad.search.segmenter_enabled", kind: kindBool},
	}
	for _, name := range mcp.ToolNames() {
		rules = append(rules, configRule{key: "settings.mcp.tools." + name + ".enabled", kind: kindBool})
	}
	return rules
}

// validateStartupConfig validates startup configuration from the shared config source.
func validateStartupConfig() error {
	return validateStartupConfigWithGetter(func(key string) any {
		return gconfig.S.Get(key)
	})
}

// validateStartupConfigWithGetter checks every configured key and reports all
// problems in one error. Missing keys are valid.
func validateStartupConfigWithGetter(get configGetter) error {
	if get == nil {
		return errors.New("config getter is nil")
	}

	v := &configValidator{get: get}
	for _, rule := range configRules() {
		v.check(rule)
	}
	v.checkLimitOrder("settings.scratchpad.list")
	v.checkLimitOrder("settings.scratchpad.search")
	v.checkDriver("settings.scratchpad.db_driver")
	v.checkHosts("settings.web.cors.allowed_hosts")

	if len(v.problems) == 0 {
		return nil
	}
	return errors.Errorf("invalid configuration:\n - %s", strings.Join(v.problems, "\n - "))
}

type configValidator struct {
	get      configGetter
	problems []string
}

func (v *configValidator) addf(format string, args ...any) {
	v.problems = append(v.problems, fmt.Sprintf(format, args...))
}

func (v *configValidator) check(rule configRule) {
	raw := v.get(rule.key)
	if raw == nil {
		return
	}

	switch rule.kind {
	case kindBool:
		if _, ok := asBool(raw); !ok {
			v.addf("%s must be a boolean", rule.key)
		}
	case kindInt:
		n, err := asInt64(raw)
		switch {
		case err != nil:
			v.addf("%s must be an integer", rule.key)
		case n < rule.min:
			v.addf("%s must be >= %d", rule.key, rule.min)
		}
	case kindText:
		s, ok := asString(raw)
		switch {
		case !ok:
			v.addf("%s must be a string", rule.key)
		case strings.TrimSpace(s) == "":
			v.addf("%s must not be empty", rule.key)
		}
	}
}

// checkLimitOrder requires limit_default <= limit_max when both are valid integers.
func (v *configValidator) checkLimitOrder(prefix string) {
	rawDefault, rawMax := v.get(prefix+".limit_default"), v.get(prefix+".limit_max")
	if rawDefault == nil || rawMax == nil {
		return
	}
	def, errDefault := asInt64(rawDefault)
	max, errMax := asInt64(rawMax)
	if errDefault != nil || errMax != nil {
		return
	}
	if def > max {
		v.addf("%s.limit_default must be <= %s.limit_max", prefix, prefix)
	}
}

func (v *configValidator) checkDriver(key string) {
	raw := v.get(key)
	if raw == nil {
		return
	}
	name, ok := asString(raw)
	if !ok {
		v.addf("%s must be a string", key)
		return
	}
	if _, err := sqlite.NormalizeDriver(name); err != nil {
		v.addf("%s must be %q or %q", key, sqlite.DriverPure, sqlite.DriverCgo)
	}
}

// checkHosts requires a list of bare host names, without scheme or path.
func (v *configValidator) checkHosts(key string) {
	raw := v.get(key)
	if raw == nil {
		return
	}

	var hosts []any
	switch typed := raw.(type) {
	case []any:
		hosts = typed
	case []string:
		for _, h := range typed {
			hosts = append(hosts, h)
		}
	default:
		v.addf("%s must be a list of hosts", key)
		return
	}

	for i, item := range hosts {
		host, ok := asString(item)
		host = strings.TrimSpace(host)
		if !ok || host == "" || strings.Contains(host, "/") {
			v.addf("%s[%d] must be a bare host name", key, i)
		}
	}
}

// asBool accepts booleans, whole numbers and the spellings true/false, yes/no, 1/0.
func asBool(value any) (bool, bool) {
	switch v := value.(type) {
	case bool:
		return v, true
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "1", "yes":
			return true, true
		case "false", "0", "no":
			return false, true
		}
		return false, false
	}

	n, err := asInt64(value)
	if err != nil {
		return false, false
	}
	return n != 0, true
}

// asInt64 accepts integer types, integral floats and decimal strings.
func asInt64(value any) (int64, error) {
	switch v := value.(type) {
	case int:
		return int64(v), nil
	case int64:
		return v, nil
	case float64:
		if math.Trunc(v) != v {
			return 0, errors.Errorf("%v is not an integer", v)
		}
		return int64(v), nil
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return 0, errors.Wrapf(err, "parse %q", v)
		}
		return n, nil
	default:
		return 0, errors.Errorf("unsupported integer type %T", value)
	}
}

func asString(value any) (string, bool) {
	switch v := value.(type) {
	case string:
		return v, true
	case []byte:
		return string(v), true
	default:
		return "", false
	}
}
