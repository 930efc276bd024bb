package engine

// Shared byte-slice constants, adapted from the teacher's strings.go
// (trimmed to what the protocol engine itself needs — no URL, cookie,
// or form-encoding strings, since those are out of scope here). Most
// header-name/token comparisons in this package go through
// Headers/hasToken, which take plain strings, so only the constants
// actually reused as []byte live here.
var (
	strCRLF  = []byte("\r\n")
	strColon = []byte(":")
	strHead  = []byte("HEAD")
)
