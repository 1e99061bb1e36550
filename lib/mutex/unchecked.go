//go:build mutflex_unchecked

package mutex

// Checked reports whether contract checks are compiled in. Violations are
// undefined behaviour in this build.
const Checked = false
