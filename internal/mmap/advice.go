package mmap

import "fmt"

// AccessPattern is a madvise hint for a whole mapping.
type AccessPattern int

// Hints accepted by Advise. Platforms without madvise ignore them.
const (
	AccessDefault AccessPattern = iota
	AccessSequential
	AccessRandom
	AccessWillNeed
	AccessDontNeed
)

func (p AccessPattern) String() string {
	switch p {
	case AccessDefault:
		return "default"
	case AccessSequential:
		return "sequential"
	case AccessRandom:
		return "random"
	case AccessWillNeed:
		return "willneed"
	case AccessDontNeed:
		return "dontneed"
	default:
		return fmt.Sprintf("AccessPattern(%d)", int(p))
	}
}
