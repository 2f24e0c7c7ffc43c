package sequence

import (
	"fmt"
	"strconv"
	"strings"
)

// MinWidth is the zero-padding floor of the numeric suffix. Wider numbers are
// rendered in full.
const MinWidth = 3

const separator = "-"

// Key scopes a sequence. Sequences under different keys are independent.
type Key struct {
	Prefix    string
	Partition string
}

func (k Key) Validate() error {
	if strings.TrimSpace(k.Prefix) == "" {
		return fmt.Errorf("%w: prefix is required", ErrInvalidKey)
	}
	if strings.TrimSpace(k.Partition) == "" {
		return fmt.Errorf("%w: partition is required", ErrInvalidKey)
	}
	if strings.Contains(k.Prefix, separator) || strings.Contains(k.Partition, separator) {
		return fmt.Errorf("%w: %q must not contain %q", ErrInvalidKey, k.String(), separator)
	}
	return nil
}

// Stem is the shared leading part of every identifier under k, e.g. "JB-26-".
func (k Key) Stem() string {
	return k.Prefix + separator + k.Partition + separator
}

func (k Key) String() string {
	return k.Prefix + separator + k.Partition
}

// Format renders seq under k.
func (k Key) Format(seq int64) string {
	return Format(k.Prefix, k.Partition, seq)
}

// SequenceOf extracts the numeric suffix of id. It returns
// ErrMalformedSequence when id does not belong to k or its suffix is not a
// positive decimal number.
func (k Key) SequenceOf(id string) (int64, error) {
	suffix, ok := strings.CutPrefix(id, k.Stem())
	if !ok {
		return 0, fmt.Errorf("%w: %q is outside %s", ErrMalformedSequence, id, k)
	}
	return parseSuffix(id, suffix)
}

// Identifier is the parsed form of a formatted identifier.
type Identifier struct {
	Prefix    string
	Partition string
	Sequence  int64
}

func (id Identifier) Key() Key {
	return Key{Prefix: id.Prefix, Partition: id.Partition}
}

func (id Identifier) String() string {
	return Format(id.Prefix, id.Partition, id.Sequence)
}

// Format renders PREFIX-PARTITION-NNN with the suffix zero-padded to MinWidth.
func Format(prefix, partition string, seq int64) string {
	return fmt.Sprintf("%s%s%s%s%0*d", prefix, separator, partition, separator, MinWidth, seq)
}

// Parse splits a formatted identifier into its parts.
func Parse(s string) (Identifier, error) {
	parts := strings.Split(s, separator)
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" {
		return Identifier{}, fmt.Errorf("%w: %q is not PREFIX-PARTITION-NNN", ErrMalformedSequence, s)
	}
	seq, err := parseSuffix(s, parts[2])
	if err != nil {
		return Identifier{}, err
	}
	return Identifier{Prefix: parts[0], Partition: parts[1], Sequence: seq}, nil
}

// PartitionForYear returns the two-digit partition tag of a calendar year,
// e.g. 2026 -> "26".
func PartitionForYear(year int) string {
	if year < 0 {
		year = -year
	}
	return fmt.Sprintf("%02d", year%100)
}

func parseSuffix(id, suffix string) (int64, error) {
	if suffix == "" {
		return 0, fmt.Errorf("%w: %q has an empty suffix", ErrMalformedSequence, id)
	}
	for _, r := range suffix {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("%w: %q has a non-numeric suffix", ErrMalformedSequence, id)
		}
	}
	seq, err := strconv.ParseInt(suffix, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %w", ErrMalformedSequence, id, err)
	}
	if seq <= 0 {
		return 0, fmt.Errorf("%w: %q has a non-positive suffix", ErrMalformedSequence, id)
	}
	return seq, nil
}
