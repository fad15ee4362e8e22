package main

import (
	"flag"
	"fmt"
	"strings"
)

// Workload selects which statements the benchmark issues per task.
type Workload int

const (
	Inserts Workload = iota
	Selects
	Mixed
)

func (w Workload) String() string {
	switch w {
	case Inserts:
		return "inserts"
	case Selects:
		return "selects"
	case Mixed:
		return "mixed"
	default:
		return "unknown"
	}
}

func parseWorkload(s string) (Workload, error) {
	switch strings.ToLower(s) {
	case "inserts":
		return Inserts, nil
	case "selects":
		return Selects, nil
	case "mixed":
		return Mixed, nil
	default:
		return 0, fmt.Errorf("unknown workload %q (want inserts, selects or mixed)", s)
	}
}

// Config holds the benchmark's command-line parameters.
type Config struct {
	nodeAddresses []string
	dontPrepare   bool
	workload      Workload
	concurrency   int64
	batchSize     int64
	tasks         int64
	profileCPU    bool
	profileMem    bool
}

func readConfig() Config {
	nodes := flag.String("nodes", "127.0.0.1", "comma-separated list of node addresses")
	workload := flag.String("workload", "mixed", "workload to run: inserts, selects or mixed")
	dontPrepare := flag.Bool("dont-prepare", false, "skip keyspace/table setup (and, for selects, pre-populating rows)")
	concurrency := flag.Int64("concurrency", 1024, "number of concurrent goroutines issuing requests")
	batchSize := flag.Int64("batch-size", 256, "number of partition keys each goroutine claims per round")
	tasks := flag.Int64("tasks", 1_000_000, "total number of partition keys to process")
	profileCPU := flag.Bool("profile-cpu", false, "enable CPU profiling")
	profileMem := flag.Bool("profile-mem", false, "enable memory profiling")
	flag.Parse()

	w, err := parseWorkload(*workload)
	if err != nil {
		panic(err)
	}

	return Config{
		nodeAddresses: strings.Split(*nodes, ","),
		dontPrepare:   *dontPrepare,
		workload:      w,
		concurrency:   *concurrency,
		batchSize:     *batchSize,
		tasks:         *tasks,
		profileCPU:    *profileCPU,
		profileMem:    *profileMem,
	}
}
