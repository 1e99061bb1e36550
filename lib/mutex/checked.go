//go:build !mutflex_unchecked

package mutex

// Checked reports whether contract checks (unlock of an unlocked mutex, use of a
// released guard, ...) are compiled in. Build with -tags mutflex_unchecked to
// remove them.
const Checked = true
