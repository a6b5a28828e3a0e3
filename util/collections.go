package util

// ContainsInt report whether val is present in set
func ContainsInt(set []int, val int) bool {
	for _, v := range set {
		if v == val {
			return true
		}
	}
	return false
}

// AppendIntOnce append val to set unless already present
func AppendIntOnce(set []int, val int) []int {
	if ContainsInt(set, val) {
		return set
	}
	return append(set, val)
}
