package util

import "strings"

const recordPrefix = "rec:"

// RecordKey is the provider key for key under namespace ns: "rec:<ns>:<key>".
func RecordKey(ns, key string) string {
	var b strings.Builder
	b.Grow(len(recordPrefix) + len(ns) + 1 + len(key))
	b.WriteString(recordPrefix)
	b.WriteString(ns)
	b.WriteByte(':')
	b.WriteString(key)
	return b.String()
}

// ValidNamespace reports whether ns can be used with RecordKey without
// colliding with another namespace's keys.
func ValidNamespace(ns string) bool {
	return ns != "" && !strings.ContainsAny(ns, ": \t\n")
}
