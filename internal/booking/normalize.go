package booking

import (
	"encoding/json"
	"log/slog"
	"strconv"
	"strings"
	"time"
)

// SafeFloat coerces any raw amount value to a float64. Source collections
// mix numeric and string-encoded amounts; anything unparsable becomes 0,
// never NaN, never a panic. String parsing accepts a leading numeric prefix,
// exponent notation included ("12.5 PKR" yields 12.5, "1e3" yields 1000),
// to match how the booking forms were filled in.
func SafeFloat(v any) float64 {
	switch val := v.(type) {
	case nil:
		return 0
	case float64:
		return val
	case float32:
		return float64(val)
	case int:
		return float64(val)
	case int64:
		return float64(val)
	case json.Number:
		f, err := val.Float64()
		if err != nil {
			return 0
		}
		return f
	case string:
		return parseLeadingFloat(strings.TrimSpace(val))
	default:
		return 0
	}
}

func parseLeadingFloat(s string) float64 {
	if s == "" {
		return 0
	}
	end := 0
	seenDigit := false
	for i, r := range s {
		if r == '-' || r == '+' {
			if i != 0 {
				break
			}
		} else if r == '.' {
			if strings.ContainsRune(s[:i], '.') {
				break
			}
		} else if r < '0' || r > '9' {
			break
		} else {
			seenDigit = true
		}
		end = i + 1
	}
	if !seenDigit {
		return 0
	}
	end = extendExponent(s, end)
	f, err := strconv.ParseFloat(s[:end], 64)
	if err != nil {
		return 0
	}
	return f
}

// extendExponent grows the scanned prefix over an e/E suffix when exponent
// digits follow, so "1e5" reads as 100000 while "1e" and "1e-" stop at 1.
func extendExponent(s string, end int) int {
	i := end
	if i >= len(s) || (s[i] != 'e' && s[i] != 'E') {
		return end
	}
	i++
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	j := i
	for j < len(s) && s[j] >= '0' && s[j] <= '9' {
		j++
	}
	if j == i {
		return end
	}
	return j
}

// dateLayouts are tried in order when a date arrives as a string.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02/01/2006",
}

// SafeTimestamp derives the sortable epoch millisecond value for a raw date.
// Nil, empty and unparsable inputs yield 0 so broken records sort earliest
// instead of failing the whole aggregation. Numeric inputs are taken as
// epoch milliseconds already.
func SafeTimestamp(v any) int64 {
	switch val := v.(type) {
	case nil:
		return 0
	case time.Time:
		if val.IsZero() {
			return 0
		}
		return val.UnixMilli()
	case float64:
		return int64(val)
	case int64:
		return val
	case json.Number:
		n, err := val.Int64()
		if err != nil {
			return 0
		}
		return n
	case string:
		s := strings.TrimSpace(val)
		if s == "" {
			return 0
		}
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t.UnixMilli()
			}
		}
		return 0
	default:
		return 0
	}
}

// SafeDateLabel renders the display form of a raw date, "--" when invalid.
func SafeDateLabel(v any) string {
	ts := SafeTimestamp(v)
	if ts == 0 {
		return "--"
	}
	return time.UnixMilli(ts).UTC().Format("02/01/2006")
}

// PassengerName extracts a display label from a passenger detail field.
// Some modules store it as a JSON string, some as a pre-parsed array or
// object, some as a bare name. Malformed JSON is swallowed and logged at
// debug level, never raised.
func PassengerName(v any, logger *slog.Logger) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		s := strings.TrimSpace(val)
		if s == "" {
			return ""
		}
		if strings.HasPrefix(s, "{") || strings.HasPrefix(s, "[") {
			var parsed any
			if err := json.Unmarshal([]byte(s), &parsed); err != nil {
				if logger != nil {
					logger.Debug("malformed passenger detail", slog.String("value", s), slog.Any("error", err))
				}
				return ""
			}
			return nameFromStructured(parsed)
		}
		return s
	default:
		return nameFromStructured(v)
	}
}

var nameKeys = []string{"name", "passenger_name", "passengerName", "full_name", "customer_name"}

func nameFromStructured(v any) string {
	switch val := v.(type) {
	case []any:
		if len(val) == 0 {
			return ""
		}
		return nameFromStructured(val[0])
	case map[string]any:
		for _, key := range nameKeys {
			if name, ok := val[key].(string); ok && name != "" {
				return name
			}
		}
		return ""
	case string:
		return val
	default:
		return ""
	}
}
