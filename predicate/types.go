package predicate

// Op is the comparison a predicate performs.
type Op int

const (
	// OpEqual compares for equality.
	OpEqual Op = iota
	// OpNotEqual compares for inequality.
	OpNotEqual
	// OpGreater holds when the stored side is greater. Versions only.
	OpGreater
	// OpLess holds when the stored side is less. Versions only.
	OpLess
)

func (op Op) String() string {
	switch op {
	case OpEqual:
		return "Equal"
	case OpNotEqual:
		return "NotEqual"
	case OpGreater:
		return "Greater"
	case OpLess:
		return "Less"
	default:
		return "Unknown"
	}
}

// Target is the side of a stored pair a predicate looks at.
type Target int

const (
	// TargetVersion compares the modification revision of the key.
	TargetVersion Target = iota
	// TargetValue compares the stored bytes.
	TargetValue
)

func (t Target) String() string {
	switch t {
	case TargetVersion:
		return "Version"
	case TargetValue:
		return "Value"
	default:
		return "Unknown"
	}
}
