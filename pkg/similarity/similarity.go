// Package similarity implements the character-overlap ratio used to
// auto-grade submissions against a task's expected output.
package similarity

import "math"

// Percent returns the similarity percentage between two strings. The measure
// recursively locates the longest common substring, then adds the similarity
// of the remainders on each side, mirroring the classic similar_text
// behaviour. Two empty strings yield 0.
func Percent(a, b string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}

	common := commonChars([]byte(a), []byte(b))
	return float64(common*2) / float64(len(a)+len(b)) * 100
}

// Grade converts a similarity percentage into earned points, rounding half
// away from zero.
func Grade(percent float64, maxPoints int) int {
	return int(math.Round(percent / 100 * float64(maxPoints)))
}

func commonChars(a, b []byte) int {
	posA, posB, max := longestCommonSubstring(a, b)
	if max == 0 {
		return 0
	}

	sum := max
	if posA > 0 && posB > 0 {
		sum += commonChars(a[:posA], b[:posB])
	}
	if posA+max < len(a) && posB+max < len(b) {
		sum += commonChars(a[posA+max:], b[posB+max:])
	}
	return sum
}

func longestCommonSubstring(a, b []byte) (posA, posB, max int) {
	for i := range a {
		for j := range b {
			length := 0
			for i+length < len(a) && j+length < len(b) && a[i+length] == b[j+length] {
				length++
			}
			if length > max {
				posA, posB, max = i, j, length
			}
		}
	}
	return posA, posB, max
}
