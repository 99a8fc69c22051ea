package util

// IsPrime reports whether x is a prime number.
// Trial division over 6k±1 candidates; cheap for bucket-count sized inputs.
func IsPrime(x uint64) bool {
	if x < 2 {
		return false
	}
	if x%2 == 0 {
		return x == 2
	}
	if x%3 == 0 {
		return x == 3
	}
	for k := uint64(1); (36*k*k - 12*k) < x; k++ {
		if x%(6*k+1) == 0 || x%(6*k-1) == 0 {
			return false
		}
	}
	return true
}

// NextPrime returns the smallest prime >= x.
// Special case: x <= 2 -> 2.
func NextPrime(x uint64) uint64 {
	if x <= 2 {
		return 2
	}
	for !IsPrime(x) {
		x++
	}
	return x
}
