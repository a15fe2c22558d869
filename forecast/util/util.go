package util

// IndentExpand repeats indent growth times
func IndentExpand(indent string, growth int) string {
	indentByte := []byte(indent)
	out := make([]byte, 0, len(indent)*growth)
	for i := 0; i < growth; i++ {
		out = append(out, indentByte...)
	}
	return string(out)
}

// SliceMap applies lambda to every value in place and returns the same slice
func SliceMap(arr []float64, lambda func(float64) float64) []float64 {
	for i, v := range arr {
		arr[i] = lambda(v)
	}
	return arr
}

// FloorZero maps negative and NaN values to 0
func FloorZero(v float64) float64 {
	if v > 0 {
		return v
	}
	return 0
}
