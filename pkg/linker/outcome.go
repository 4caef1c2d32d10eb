package linker

// Outcome is what reconciling a single path did
type Outcome int

const (
	// NoOp means the path already matched and nothing was touched
	NoOp Outcome = iota
	// Created means a new symlink was made where nothing existed
	Created
	// Replaced means something existing was removed and a symlink made
	Replaced
	// Removed means a daglinked symlink was deleted
	Removed
	// Skipped means the path was left alone, see the accompanying error
	Skipped
)

func (o Outcome) String() string {
	switch o {
	case NoOp:
		return "unchanged"
	case Created:
		return "created"
	case Replaced:
		return "replaced"
	case Removed:
		return "removed"
	case Skipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// Changed reports whether the outcome mutated the filesystem
func (o Outcome) Changed() bool {
	return o == Created || o == Replaced || o == Removed
}
