// Copyright 2016 Aleksandr Demakin. All rights reserved.

package ipcsync

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func checkNormalized(a *assert.Assertions, d Duration) {
	a.Less(d.Nanoseconds, uint64(1000))
	a.Less(d.Microseconds, uint64(1000))
	a.Less(d.Milliseconds, uint64(1000))
	a.Less(d.Seconds, uint64(60))
	a.Less(d.Minutes, uint64(60))
}

func TestDurationConstructors(t *testing.T) {
	a := assert.New(t)
	a.Equal(Duration{Seconds: 1, Milliseconds: 500}, Milliseconds(1500))
	a.Equal(Duration{Hours: 1, Minutes: 1}, Minutes(61))
	a.Equal(Duration{Minutes: 1, Seconds: 1}, Seconds(61))
	a.Equal(Milliseconds(1), Nanoseconds(1000000))
	a.Equal(Duration{Milliseconds: 2, Microseconds: 3, Nanoseconds: 4}, Nanoseconds(2003004))
	a.Equal(Hours(2), Seconds(7200))
	a.True(Duration{}.IsZero())
	a.False(Nanoseconds(1).IsZero())
}

func TestDurationAdd(t *testing.T) {
	a := assert.New(t)
	sum := Milliseconds(999).Add(Milliseconds(2))
	a.Equal(Duration{Seconds: 1, Milliseconds: 1}, sum)
	sum = Nanoseconds(999).Add(Nanoseconds(1))
	a.Equal(Microseconds(1), sum)
	sum = Minutes(59).Add(Seconds(59)).Add(Seconds(1))
	a.Equal(Hours(1), sum)
	a.Equal(MaxDuration, MaxDuration.Add(Nanoseconds(1)))
}

func TestDurationAddCommutative(t *testing.T) {
	a := assert.New(t)
	values := []Duration{
		{},
		Nanoseconds(999),
		Microseconds(1001),
		Milliseconds(123456),
		Seconds(3599),
		{Hours: 7, Minutes: 59, Seconds: 59, Milliseconds: 999, Microseconds: 999, Nanoseconds: 999},
		{Minutes: 75, Nanoseconds: 5000},
	}
	for _, x := range values {
		for _, y := range values {
			xy, yx := x.Add(y), y.Add(x)
			a.Equal(xy, yx, "%v + %v", x, y)
			checkNormalized(a, xy)
			a.Equal(x.Std()+y.Std(), xy.Std())
		}
	}
}

func TestDurationScale(t *testing.T) {
	a := assert.New(t)
	a.Equal(Seconds(3), Milliseconds(1500).Scale(2))
	a.Equal(Duration{}, Hours(10).Scale(0))
	a.Equal(Hours(1), Seconds(1).Scale(3600))
	d := Duration{Minutes: 1, Seconds: 2, Milliseconds: 3, Microseconds: 4, Nanoseconds: 5}
	scaled := d.Scale(1000)
	checkNormalized(a, scaled)
	a.Equal(d.Std()*1000, scaled.Std())
	a.Equal(MaxDuration, Hours(math.MaxUint64/2+1).Scale(2))
}

func TestDurationStd(t *testing.T) {
	a := assert.New(t)
	a.Equal(1500*time.Millisecond, Milliseconds(1500).Std())
	a.Equal(time.Duration(math.MaxInt64), MaxDuration.Std())
	a.Equal(Duration{}, FromStd(-time.Second))
	d := 3*time.Hour + 4*time.Minute + 5*time.Second + 6*time.Millisecond + 7*time.Microsecond + 8
	a.Equal(Duration{Hours: 3, Minutes: 4, Seconds: 5, Milliseconds: 6, Microseconds: 7, Nanoseconds: 8}, FromStd(d))
	a.Equal(d, FromStd(d).Std())
}

func TestDurationCompareAndString(t *testing.T) {
	a := assert.New(t)
	a.Equal(0, Milliseconds(1000).Compare(Seconds(1)))
	a.Equal(-1, Microseconds(999).Compare(Milliseconds(1)))
	a.Equal(1, Hours(1).Compare(Minutes(59)))
	a.Equal("0s", Duration{}.String())
	a.Equal("1h2m3s4ms5us6ns", Duration{Hours: 1, Minutes: 2, Seconds: 3, Milliseconds: 4, Microseconds: 5, Nanoseconds: 6}.String())
	a.Equal("1s500ms", Milliseconds(1500).String())
}
