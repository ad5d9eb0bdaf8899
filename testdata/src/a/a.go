package a

//sizecheck:2
type pair struct {
	a, b uint8
}

//sizecheck:16
type wide struct {
	a uint64
	b uint64
}

//sizecheck:0
type marker struct{}

//sizecheck:1
type small uint8

//sizecheck:15
type packed [15]byte

//sizecheck:8
type tooLarge struct { // want `sizeof\(tooLarge\) = 16, want 8`
	a uint64
	b uint64
}

type base struct{ v uint64 }

//sizecheck:8
type alias = base // want `cannot assert the size of alias: type aliases are not supported`

//sizecheck:8
type generic[T any] struct { // want `cannot assert the size of generic: generic types are not supported`
	v T
}
