package novault

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// minEntropyChars is how much of the hash a rendered password has to carry.
const minEntropyChars = 4

const hashField = "p"

// Format renders template with hash substituted for its "{p}" fields.
// The result must be at least 4 characters and contain the first 4 characters of hash, otherwise a *FormatError is returned.
func Format(template, hash string) (string, error) {
	out, err := render(template, hash)
	if err != nil {
		return "", &FormatError{Template: template, Reason: err.Error()}
	}
	if len(hash) < minEntropyChars || len(out) < minEntropyChars || !strings.Contains(out, hash[:minEntropyChars]) {
		return "", &FormatError{Template: template}
	}
	return out, nil
}

// ValidateTemplate checks that template would produce an acceptable password for a site in the given mode.
func ValidateTemplate(template string, pin bool) error {
	return dryRun(Site{Fmt: template, Pin: pin, Salt: CheckName})
}

func render(template, hash string) (string, error) {
	var (
		sb strings.Builder
		i  int
	)
	for i < len(template) {
		switch c := template[i]; c {
		case '{':
			if i+1 < len(template) && template[i+1] == '{' {
				sb.WriteByte('{')
				i += 2
				continue
			}
			end := strings.IndexByte(template[i:], '}')
			if end < 0 {
				return "", errors.New("unclosed '{'")
			}
			val, err := field(template[i+1:i+end], hash)
			if err != nil {
				return "", err
			}
			sb.WriteString(val)
			i += end + 1
		case '}':
			if i+1 < len(template) && template[i+1] == '}' {
				sb.WriteByte('}')
				i += 2
				continue
			}
			return "", errors.New("unmatched '}'")
		default:
			sb.WriteByte(c)
			i++
		}
	}
	return sb.String(), nil
}

func field(expr, hash string) (string, error) {
	name, spec, hasSpec := strings.Cut(expr, ":")
	if name != hashField {
		return "", fmt.Errorf("unknown field %q", name)
	}
	if !hasSpec {
		return hash, nil
	}
	precision, ok := strings.CutPrefix(spec, ".")
	if !ok {
		return "", fmt.Errorf("unsupported format spec %q", spec)
	}
	n, err := strconv.Atoi(precision)
	if err != nil || n < 0 {
		return "", fmt.Errorf("invalid precision %q", precision)
	}
	if n < len(hash) {
		return hash[:n], nil
	}
	return hash, nil
}
