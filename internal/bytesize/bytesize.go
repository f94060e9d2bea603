// Package bytesize parses human-readable byte sizes in configuration, such
// as "4Mi", "64KiB", "100MB", or plain byte counts.
package bytesize

import (
	"fmt"
	"strconv"
	"strings"
)

// ByteSize is a size in bytes that unmarshals from strings like "1Gi",
// "500Mi", "100MB", or plain numbers. Binary suffixes (Ki/Mi/Gi/Ti) scale by
// 1024, decimal suffixes (K/M/G/T, with or without a trailing B) by 1000.
type ByteSize uint64

// Common byte size constants.
const (
	B  ByteSize = 1
	KB ByteSize = 1000
	MB ByteSize = 1000 * KB
	GB ByteSize = 1000 * MB
	TB ByteSize = 1000 * GB

	KiB ByteSize = 1024
	MiB ByteSize = 1024 * KiB
	GiB ByteSize = 1024 * MiB
	TiB ByteSize = 1024 * GiB
)

// Parse parses a human-readable byte size string.
func Parse(s string) (ByteSize, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty byte size string")
	}

	// Split the numeric part from the suffix.
	i := len(s)
	for i > 0 {
		c := s[i-1]
		if c >= '0' && c <= '9' || c == '.' {
			break
		}
		i--
	}
	num := strings.TrimSpace(s[:i])
	suffix := strings.TrimSpace(s[i:])

	mult, err := multiplier(suffix)
	if err != nil {
		return 0, err
	}

	val, err := strconv.ParseFloat(num, 64)
	if err != nil || val < 0 {
		return 0, fmt.Errorf("invalid byte size %q", s)
	}

	return ByteSize(val * float64(mult)), nil
}

func multiplier(suffix string) (ByteSize, error) {
	switch strings.ToLower(suffix) {
	case "", "b":
		return B, nil
	case "k", "kb":
		return KB, nil
	case "m", "mb":
		return MB, nil
	case "g", "gb":
		return GB, nil
	case "t", "tb":
		return TB, nil
	case "ki", "kib":
		return KiB, nil
	case "mi", "mib":
		return MiB, nil
	case "gi", "gib":
		return GiB, nil
	case "ti", "tib":
		return TiB, nil
	default:
		return 0, fmt.Errorf("unknown byte size unit %q", suffix)
	}
}

// UnmarshalText implements encoding.TextUnmarshaler, so ByteSize fields work
// with yaml, mapstructure decode hooks, and flag parsing.
func (b *ByteSize) UnmarshalText(text []byte) error {
	v, err := Parse(string(text))
	if err != nil {
		return err
	}
	*b = v
	return nil
}

// String renders the size with the largest exact binary unit.
func (b ByteSize) String() string {
	switch {
	case b >= TiB && b%TiB == 0:
		return fmt.Sprintf("%dTi", uint64(b/TiB))
	case b >= GiB && b%GiB == 0:
		return fmt.Sprintf("%dGi", uint64(b/GiB))
	case b >= MiB && b%MiB == 0:
		return fmt.Sprintf("%dMi", uint64(b/MiB))
	case b >= KiB && b%KiB == 0:
		return fmt.Sprintf("%dKi", uint64(b/KiB))
	default:
		return strconv.FormatUint(uint64(b), 10)
	}
}

// Uint64 returns the size as a plain uint64 byte count.
func (b ByteSize) Uint64() uint64 {
	return uint64(b)
}

// Int64 returns the size as an int64 byte count.
func (b ByteSize) Int64() int64 {
	return int64(b)
}
