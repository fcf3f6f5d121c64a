package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"math/big"
	"os"
	"os/signal"
	"strings"

	"github.com/zephyrtronium/bindexpr/internal/cache"
	"github.com/zephyrtronium/bindexpr/internal/runner"
)

func main() {
	log.SetFlags(0)
	var (
		inname, verb   string
		with           [][2]string
		nl, echo, desc bool
		inf, verbose   bool
		prec, places   int
		capacity       int
	)
	addwith := func(s string) error {
		d := strings.SplitN(s, "=", 2)
		if len(d) != 2 {
			return fmt.Errorf(`variable definitions must be "name=value", not %q`, s)
		}
		with = append(with, [2]string{strings.TrimSpace(d[0]), strings.TrimSpace(d[1])})
		return nil
	}
	flag.StringVar(&inname, "in", "", "input file (default stdin if no args given)")
	flag.StringVar(&verb, "fmt", "%g", "result formatting string")
	flag.Func("given", "name=value variable definition (any number of times)", addwith)
	flag.IntVar(&prec, "p", 64, "precision of calculations in bits")
	flag.BoolVar(&nl, "n", false, "parse separate input lines as separate expressions")
	flag.BoolVar(&echo, "echo", false, "print parse trees")
	flag.BoolVar(&desc, "describe", false, "print indented parse trees")
	flag.IntVar(&places, "places", -1, "round results to this many decimal places (negative to use -fmt)")
	flag.BoolVar(&inf, "inf", false, "allow division by zero to produce infinities")
	flag.IntVar(&capacity, "cache", cache.DefaultCapacity, "number of compiled expressions to cache")
	flag.BoolVar(&verbose, "v", false, "log debug information")
	flag.Parse()
	if prec <= 0 {
		log.Fatalf("precision (%d) must be positive", prec)
	}

	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	opts := []runner.Option{
		runner.WithLogger(logger),
		runner.WithPrec(uint(prec)),
		runner.WithCacheCapacity(capacity),
	}
	if inf {
		opts = append(opts, runner.WithNonFinite())
	}
	r := runner.New(opts...)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var ins []io.Reader
	f, err := infile(inname, flag.NArg() == 0)
	if err != nil {
		log.Fatal(err)
	}
	if f != nil {
		ins = append(ins, f)
	}
	for _, arg := range flag.Args() {
		ins = append(ins, strings.NewReader(arg))
	}

	given := make(map[string]*big.Float, len(with))
	for _, d := range with {
		nm := d[0]
		vl := d[1]
		// Later definitions may refer to earlier ones.
		v, err := r.Eval(ctx, vl, given)
		if err != nil {
			log.Fatalf("setting %s: %v", nm, err)
		}
		given[nm] = v
	}

	var srcs []string
	for _, in := range ins {
		s, err := sources(in, nl)
		if err != nil {
			log.Fatal(err)
		}
		srcs = append(srcs, s...)
	}

	verb += "\n"
	for _, src := range srcs {
		a, err := r.Compile(ctx, src)
		if err != nil {
			log.Fatal(err)
		}
		if echo {
			fmt.Printf("%v : ", a)
		}
		if desc {
			fmt.Print(a.Describe())
		}
		v, err := r.EvalExpr(ctx, a, given)
		if err != nil {
			fmt.Println(err)
			continue
		}
		if places >= 0 {
			fmt.Println(runner.FormatFixed(v, int32(places)))
			continue
		}
		fmt.Printf(verb, v)
	}
}

// sources reads the expressions in in. If lines is true, each nonblank line is
// a separate expression; otherwise the entire input is one.
func sources(in io.Reader, lines bool) ([]string, error) {
	if !lines {
		b, err := io.ReadAll(in)
		if err != nil {
			return nil, err
		}
		if strings.TrimSpace(string(b)) == "" {
			return nil, nil
		}
		return []string{string(b)}, nil
	}
	var r []string
	sc := bufio.NewScanner(in)
	for sc.Scan() {
		if strings.TrimSpace(sc.Text()) == "" {
			continue
		}
		r = append(r, sc.Text())
	}
	return r, sc.Err()
}

func infile(inname string, std bool) (io.Reader, error) {
	var f *os.File
	switch {
	case inname != "" && inname != "-":
		in, err := os.Open(inname)
		if err != nil {
			return nil, err
		}
		f = in
	case inname == "-", std:
		f = os.Stdin
	}
	if f == nil {
		return nil, nil
	}
	return bufio.NewReader(f), nil
}
