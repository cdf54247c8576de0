package domain

import "strings"

var (
	truthyValues   = []string{"ON", "1", "YES", "TRUE", "Y"}
	negativeValues = []string{"OFF", "0", "NO", "FALSE", "N"}
)

// IsTruthy reports whether value spells an enabled flag (ON, 1, YES, TRUE, Y; any case).
func IsTruthy(value string) bool {
	return matchesAny(value, truthyValues)
}

// IsNegative reports whether value spells a disabled flag (OFF, 0, NO, FALSE, N; any case).
func IsNegative(value string) bool {
	return matchesAny(value, negativeValues)
}

func matchesAny(value string, set []string) bool {
	v := strings.ToUpper(value)
	for _, s := range set {
		if v == s {
			return true
		}
	}
	return false
}

// CheckEnvFlag reports whether name is set to a truthy value, substituting def when unset.
func CheckEnvFlag(env Environment, name, def string) bool {
	return IsTruthy(env.GetOr(name, def))
}

// CheckNegativeEnvFlag reports whether name is explicitly set to a negative value.
// An unset variable is never negative.
func CheckNegativeEnvFlag(env Environment, name string) bool {
	return IsNegative(env.Get(name))
}
