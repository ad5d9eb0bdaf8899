package b

//asize:16
type wide struct {
	a uint64
	b uint64
}

//asize:8
type narrow struct { // want `sizeof\(narrow\) = 16, want 8`
	a uint64
	b uint64
}

// The default directive name is inert under a renamed analyzer.
//
//sizecheck:8
type ignored struct {
	a uint64
	b uint64
}
