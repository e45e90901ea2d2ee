// bench.go runs the E91 key-distribution simulator and the CHSH Bell
// test for each entry in the cartesian product of a collection of
// tuning parameters, e.g. round count and channel noise, and outputs a
// CSV of relevant statistics for each combination, e.g. sifted key
// length and observed QBER.
package main

import (
	"log"
	"math/rand"
	"os"
	"strings"
	"text/template"

	flag "github.com/spf13/pflag"

	"github.com/quantum-shield/qrng/qkd"
	"github.com/quantum-shield/qrng/qrng/sampler"
)

var (
	rounds = flag.IntSlice("rounds", []int{1000},
		"The number of entangled-pair sifting rounds per E91 run.")
	noise = flag.Float64Slice("noise", []float64{qkd.BaselineNoise},
		"The baseline matched-basis disagreement rates to model.")
	eve = flag.BoolSlice("eve", []bool{false, true},
		"Whether an intercept-resend attacker is present on the channel.")
	chshShots = flag.IntSlice("chshShots", []int{4096},
		"The number of trials per CHSH basis-pair correlation estimate.")
	seed = flag.Int64("seed", 42,
		"The root seed for the simulated measurement source.")
)

var (
	inputs  = []string{"rounds", "noise", "eve", "chshShots"}
	columns = []string{"Rounds", "Noise", "Eve", "SiftedBits", "QBER",
		"Secure", "CHSHShots", "S", "BellViolation", "SecurityLevel",
		"Succeeded"}
)

// An Experiment packages together the result of benchmarking a single
// parameterization for easy formatting.
type Experiment struct {
	// Fields corresponding to experiment parameters
	Rounds    int
	Noise     float64
	Eve       bool
	CHSHShots int

	// Fields corresponding to experiment results
	SiftedBits    int
	QBER          float64
	Secure        bool
	S             float64
	BellViolation bool
	SecurityLevel string
	Succeeded     bool
}

func main() {
	flag.Parse()
	os.Stdout.WriteString(header() + "\n")
	tmpl := template.Must(template.New("line").Parse(lineTmpl()))
	var args [][]interface{}
	for _, inp := range inputs {
		args = append(args, lookupInput(inp))
	}
	applyCartesian(func(args []interface{}) {
		exp := &Experiment{
			Rounds:    args[inpIndex("rounds")].(int),
			Noise:     args[inpIndex("noise")].(float64),
			Eve:       args[inpIndex("eve")].(bool),
			CHSHShots: args[inpIndex("chshShots")].(int),
		}
		if err := bench(exp); err != nil {
			log.Printf("Benching %v: %v", exp, err)
		}
		if err := tmpl.Execute(os.Stdout, exp); err != nil {
			log.Fatalf("BUG: could not fill in line template: %v", err)
		}
	}, args)
}

func inpIndex(v string) int {
	for i, inp := range inputs {
		if inp == v {
			return i
		}
	}
	return -1
}

func bench(exp *Experiment) error {
	src := sampler.NewSimulated(rand.New(rand.NewSource(*seed)), 0.5)
	e91, err := qkd.NewE91(qkd.E91Opts{
		Sampler: src,
		Rand:    rand.New(rand.NewSource(*seed + 1)),
		Noise:   exp.Noise,
	})
	if err != nil {
		return err
	}
	res, err := e91.Run(exp.Rounds, exp.Eve)
	if err != nil {
		return err
	}
	exp.SiftedBits = res.SiftedKeyLength
	exp.QBER = res.QBER
	exp.Secure = res.Secure

	chsh, err := qkd.NewCHSH(qkd.CHSHOpts{
		Sampler: src,
		Rand:    rand.New(rand.NewSource(*seed + 2)),
	})
	if err != nil {
		return err
	}
	bell, err := chsh.Run(exp.CHSHShots)
	if err != nil {
		return err
	}
	exp.S = bell.S
	exp.BellViolation = bell.BellViolation
	exp.SecurityLevel = bell.SecurityLevel
	exp.Succeeded = true
	return nil
}

func header() string {
	return strings.Join(columns, ", ")
}

func lineTmpl() string {
	var els []string
	for _, c := range columns {
		els = append(els, "{{."+c+"}}")
	}
	return strings.Join(els, ", ") + "\n"
}

func lookupInput(name string) []interface{} {
	var r []interface{}
	if v, err := flag.CommandLine.GetIntSlice(name); err == nil {
		for _, val := range v {
			r = append(r, val)
		}
	} else if v, err := flag.CommandLine.GetFloat64Slice(name); err == nil {
		for _, val := range v {
			r = append(r, val)
		}
	} else if v, err := flag.CommandLine.GetBoolSlice(name); err == nil {
		for _, val := range v {
			r = append(r, val)
		}
	} else {
		log.Fatalf("Unknown type for input %s", name)
	}
	return r
}

func applyCartesian(f func([]interface{}), args [][]interface{}) {
	for i := range args {
		if len(args[i]) == 1 {
			continue
		}
		l := make([][]interface{}, len(args))
		r := make([][]interface{}, len(args))
		copy(l, args)
		copy(r, args)
		l[i] = args[i][:1]
		r[i] = args[i][1:]
		applyCartesian(f, l)
		applyCartesian(f, r)
		return
	}
	x := make([]interface{}, 0, len(args))
	for _, a := range args {
		x = append(x, a[0])
	}
	f(x)
}
