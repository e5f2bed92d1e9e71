package stats

import (
	"io"
	"reflect"

	"github.com/google/pprof/profile"
)

// Profile walks a struct of Counter_t/Cycles_t fields (the same shape
// Stats2String consumes) and builds a pprof profile with one sample
// per field, so counters gathered with Stats/Timing enabled can be
// written out in a format pprof's existing tooling already knows how
// to visualize, instead of inventing another ad hoc dump format.
func Profile(st interface{}) *profile.Profile {
	p := &profile.Profile{
		SampleType: []*profile.ValueType{{Type: "count", Unit: "count"}},
		PeriodType: &profile.ValueType{Type: "samples", Unit: "count"},
		Period:     1,
	}

	v := reflect.ValueOf(st)
	funcID := uint64(1)
	locID := uint64(1)
	for i := 0; i < v.NumField(); i++ {
		t := v.Field(i).Type().String()
		var n int64
		switch {
		case len(t) >= len("Counter_t") && t[len(t)-len("Counter_t"):] == "Counter_t":
			n = int64(v.Field(i).Interface().(Counter_t))
		case len(t) >= len("Cycles_t") && t[len(t)-len("Cycles_t"):] == "Cycles_t":
			n = int64(v.Field(i).Interface().(Cycles_t))
		default:
			continue
		}

		name := v.Type().Field(i).Name
		fn := &profile.Function{ID: funcID, Name: name}
		loc := &profile.Location{ID: locID, Line: []profile.Line{{Function: fn, Line: 0}}}
		p.Function = append(p.Function, fn)
		p.Location = append(p.Location, loc)
		p.Sample = append(p.Sample, &profile.Sample{
			Location: []*profile.Location{loc},
			Value:    []int64{n},
		})
		funcID++
		locID++
	}
	return p
}

// WriteProfile serializes a Profile snapshot of st to w in pprof's
// native gzip-compressed protobuf format.
func WriteProfile(w io.Writer, st interface{}) error {
	return Profile(st).Write(w)
}
