// Copyright 2016 Aleksandr Demakin. All rights reserved.

package ipcsync

import (
	"math"
	"math/bits"
	"strconv"
	"strings"
	"time"
)

// Duration is a timeout value kept in six units.
// A normalized duration has Milliseconds, Microseconds and Nanoseconds below 1000
// and Minutes and Seconds below 60. Every constructor and arithmetic operation
// returns a normalized value. Overflow saturates at MaxDuration.
type Duration struct {
	Hours        uint64
	Minutes      uint64
	Seconds      uint64
	Milliseconds uint64
	Microseconds uint64
	Nanoseconds  uint64
}

// MaxDuration is the largest representable duration.
var MaxDuration = Duration{
	Hours:        math.MaxUint64,
	Minutes:      59,
	Seconds:      59,
	Milliseconds: 999,
	Microseconds: 999,
	Nanoseconds:  999,
}

// Hours returns a duration of n hours.
func Hours(n uint64) Duration { return Duration{Hours: n} }

// Minutes returns a duration of n minutes.
func Minutes(n uint64) Duration { return Duration{Minutes: n}.Normalize() }

// Seconds returns a duration of n seconds.
func Seconds(n uint64) Duration { return Duration{Seconds: n}.Normalize() }

// Milliseconds returns a duration of n milliseconds.
func Milliseconds(n uint64) Duration { return Duration{Milliseconds: n}.Normalize() }

// Microseconds returns a duration of n microseconds.
func Microseconds(n uint64) Duration { return Duration{Microseconds: n}.Normalize() }

// Nanoseconds returns a duration of n nanoseconds.
func Nanoseconds(n uint64) Duration { return Duration{Nanoseconds: n}.Normalize() }

// FromStd converts a time.Duration. Negative values become zero.
func FromStd(d time.Duration) Duration {
	if d <= 0 {
		return Duration{}
	}
	return Nanoseconds(uint64(d))
}

// bases of the units from the smallest to the largest one.
var unitBases = [...]uint64{1000, 1000, 1000, 60, 60}

// fields returns pointers to the units from the smallest to the largest one.
func (d *Duration) fields() [6]*uint64 {
	return [6]*uint64{&d.Nanoseconds, &d.Microseconds, &d.Milliseconds, &d.Seconds, &d.Minutes, &d.Hours}
}

// Normalize carries every unit overflow into the next larger unit.
func (d Duration) Normalize() Duration {
	f := d.fields()
	for i, base := range unitBases {
		carry := *f[i+1]
		*f[i+1] = carry + *f[i]/base
		if *f[i+1] < carry {
			return MaxDuration
		}
		*f[i] %= base
	}
	return d
}

// Add returns the sum of two durations.
func (d Duration) Add(other Duration) Duration {
	d, other = d.Normalize(), other.Normalize()
	f, g := d.fields(), other.fields()
	var carry uint64
	for i, base := range unitBases {
		sum := *f[i] + *g[i] + carry
		*f[i], carry = sum%base, sum/base
	}
	hours, c1 := bits.Add64(d.Hours, other.Hours, carry)
	if c1 != 0 {
		return MaxDuration
	}
	d.Hours = hours
	return d
}

// Scale returns the duration multiplied by n.
func (d Duration) Scale(n uint64) Duration {
	d = d.Normalize()
	f := d.fields()
	var carry uint64
	for i, base := range unitBases {
		hi, lo := bits.Mul64(*f[i], n)
		var c uint64
		lo, c = bits.Add64(lo, carry, 0)
		hi += c
		if hi >= base {
			return MaxDuration
		}
		carry, *f[i] = bits.Div64(hi, lo, base)
	}
	hi, lo := bits.Mul64(d.Hours, n)
	lo, c := bits.Add64(lo, carry, 0)
	if hi != 0 || c != 0 {
		return MaxDuration
	}
	d.Hours = lo
	return d
}

// IsZero returns true for an empty duration.
func (d Duration) IsZero() bool {
	return d.Normalize() == Duration{}
}

// Compare returns -1, 0 or +1 depending on whether d is shorter, equal or longer than other.
func (d Duration) Compare(other Duration) int {
	d, other = d.Normalize(), other.Normalize()
	f, g := d.fields(), other.fields()
	for i := len(f) - 1; i >= 0; i-- {
		switch {
		case *f[i] < *g[i]:
			return -1
		case *f[i] > *g[i]:
			return 1
		}
	}
	return 0
}

// Std converts the duration into time.Duration, saturating at math.MaxInt64 nanoseconds.
func (d Duration) Std() time.Duration {
	d = d.Normalize()
	const maxHours = uint64(math.MaxInt64 / int64(time.Hour))
	if d.Hours > maxHours {
		return time.Duration(math.MaxInt64)
	}
	rest := time.Duration(d.Minutes)*time.Minute +
		time.Duration(d.Seconds)*time.Second +
		time.Duration(d.Milliseconds)*time.Millisecond +
		time.Duration(d.Microseconds)*time.Microsecond +
		time.Duration(d.Nanoseconds)
	hours := time.Duration(d.Hours) * time.Hour
	if hours > time.Duration(math.MaxInt64)-rest {
		return time.Duration(math.MaxInt64)
	}
	return hours + rest
}

// String formats the duration like "1h2m3s4ms5us6ns", omitting zero units.
func (d Duration) String() string {
	d = d.Normalize()
	if d.IsZero() {
		return "0s"
	}
	var b strings.Builder
	for _, u := range []struct {
		v      uint64
		suffix string
	}{
		{d.Hours, "h"}, {d.Minutes, "m"}, {d.Seconds, "s"},
		{d.Milliseconds, "ms"}, {d.Microseconds, "us"}, {d.Nanoseconds, "ns"},
	} {
		if u.v != 0 {
			b.WriteString(strconv.FormatUint(u.v, 10))
			b.WriteString(u.suffix)
		}
	}
	return b.String()
}
