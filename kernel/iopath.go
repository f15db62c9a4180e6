package kernel

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/japanese"
)

// PathRoots maps a guest path prefix ("mc0:", "cdrom0:", "host:") to the
// host filesystem directory it resolves into. Kept behind a pure
// function rather than a filesystem call so it can be tested without
// touching disk.
type PathRoots map[string]string

// ResolveGuestPath translates a guest path to a host one: it strips a
// purely-numeric ISO-9660 version suffix after ';', normalizes backslashes to forward
// slashes, and rewrites the recognized guest prefix to its configured
// host root. An unrecognized prefix is an error; everything else about
// this function is total.
func ResolveGuestPath(roots PathRoots, guestPath string) (string, error) {
	decoded := decodeGuestPathBytes([]byte(guestPath))
	normalized := strings.ReplaceAll(decoded, "\\", "/")

	prefix, rest, ok := splitPrefix(normalized)
	if !ok {
		return "", fmt.Errorf("ps2recomp: unrecognized guest path prefix in %q", guestPath)
	}
	root, ok := roots[prefix]
	if !ok {
		return "", fmt.Errorf("ps2recomp: no host root configured for guest prefix %q", prefix)
	}

	rest = stripISOVersionSuffix(rest)
	return root + "/" + strings.TrimPrefix(rest, "/"), nil
}

// splitPrefix extracts the "name:" prefix from a guest path, e.g.
// "mc0:/BESLES-12345/save.dat" -> ("mc0:", "/BESLES-12345/save.dat").
func splitPrefix(path string) (prefix, rest string, ok bool) {
	idx := strings.Index(path, ":")
	if idx < 0 {
		return "", "", false
	}
	return path[:idx+1], path[idx+1:], true
}

// stripISOVersionSuffix removes a trailing ";N" ISO-9660 version tag
// where N is purely numeric, e.g. "SCUS_123.45;1" -> "SCUS_123.45".
// A non-numeric or empty tail after ';' is left untouched — it is not a
// version suffix.
func stripISOVersionSuffix(path string) string {
	idx := strings.LastIndex(path, ";")
	if idx < 0 || idx == len(path)-1 {
		return path
	}
	tail := path[idx+1:]
	for _, r := range tail {
		if r < '0' || r > '9' {
			return path
		}
	}
	return path[:idx]
}

// decodeGuestPathBytes best-effort decodes raw guest path bytes, which PS2
// titles sometimes populate from Shift-JIS save-comment strings sharing
// storage with the path buffer. UTF-8 is tried first since the overwhelming
// majority of paths are plain ASCII (a strict UTF-8 subset); Shift-JIS is
// attempted only as a fallback, and raw bytes are returned unmodified if
// neither decodes cleanly.
func decodeGuestPathBytes(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}
	// x/text decoders replace undecodable bytes with U+FFFD instead of
	// returning an error, so a clean decode is one without that rune.
	if sjis, err := japanese.ShiftJIS.NewDecoder().Bytes(b); err == nil && !bytes.ContainsRune(sjis, utf8.RuneError) {
		return string(sjis)
	}
	return string(b)
}
