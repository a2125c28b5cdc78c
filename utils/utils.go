package utils

// ContainsString returns true iff the provided string slice hay contains string
// needle.
func ContainsString(hay []string, needle string) bool {
	for _, str := range hay {
		if str == needle {
			return true
		}
	}
	return false
}

// ContainsInt64 returns true iff the provided int64 slice hay contains needle.
func ContainsInt64(hay []int64, needle int64) bool {
	for _, v := range hay {
		if v == needle {
			return true
		}
	}
	return false
}

// IntersectsInt64 returns true iff a and b share at least one element.
func IntersectsInt64(a []int64, b []int64) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	set := make(map[int64]struct{}, len(a))
	for _, v := range a {
		set[v] = struct{}{}
	}
	for _, v := range b {
		if _, ok := set[v]; ok {
			return true
		}
	}
	return false
}

// Int64Set builds a membership set out of ids.
func Int64Set(ids []int64) map[int64]struct{} {
	set := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
