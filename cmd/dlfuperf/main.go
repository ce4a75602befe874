// Command dlfuperf measures DLFU cache hit rates over a grid of decay time
// constants and synthetic access patterns, the way the cache is meant to be
// driven: get, and set on miss.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io/ioutil"
	"math/rand"
	"os"
	"time"

	"github.com/rcrowley/go-metrics"

	dlfucache "github.com/dbaarda/DLFUCache"
	"github.com/dbaarda/DLFUCache/cmd/dlfuperf/config"
	"github.com/dbaarda/DLFUCache/internal/tag"
	"github.com/dbaarda/DLFUCache/log"
	"github.com/dbaarda/DLFUCache/workload"
)

const usage = `
Config values merge rules:
1) config file value overrides default
2) command line value overrides any
Options:
`

func init() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage of %s:\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "%s", usage)
		flag.PrintDefaults()
	}
}

func main() {
	conf := parseConfig()
	l := log.NewLogger(conf.LogLevel, conf.LogDestination)
	if tag.Debug {
		l.Warn("Using debug build. It has more runtime checks and large performance overhead.")
	}
	for _, t := range conf.T {
		for _, name := range conf.Workloads {
			run(l, conf, t, name)
		}
	}
}

func run(l log.Logger, conf config.Parsed, t float64, name string) {
	c, err := dlfucache.New[int64, int64](l, dlfucache.Config{Size: conf.Size, MSize: conf.MSize, T: t})
	if err != nil {
		l.Fatal("Cache construction error: ", err)
	}
	gen, err := newGenerator(name, rand.New(rand.NewSource(conf.Seed)), conf.Size)
	if err != nil {
		l.Fatal("Workload construction error: ", err)
	}

	registry := metrics.NewRegistry()
	getTimer := metrics.NewRegisteredTimer("get", registry)
	setTimer := metrics.NewRegisteredTimer("set", registry)
	missCounter := metrics.NewRegisteredCounter("cache.miss", registry)

	for i := 0; i < conf.Accesses; i++ {
		k := gen()
		start := time.Now()
		_, ok := c.Get(k)
		getTimer.UpdateSince(start)
		if !ok {
			missCounter.Inc(1)
			start = time.Now()
			c.Set(k, k)
			setTimer.UpdateSince(start)
		}
	}

	cs, ms := c.CacheStats(), c.MetaStats()
	fmt.Printf("%-5s %v avg=%5.3f dev=%5.3f mavg=%5.3f mdev=%5.3f\n",
		name, c, cs.Avg, cs.Dev, ms.Avg, ms.Dev)
	metrics.WriteOnce(registry, conf.LogDestination)
}

// newGenerator builds the named access pattern sized for the cache, using
// the parameters of the reference measurements.
func newGenerator(name string, r *rand.Rand, size int) (workload.Generator, error) {
	n := float64(size)
	maxk := float64(workload.MaxKey)
	switch name {
	case "expo":
		return workload.Expo(r, n, 0)
	case "jump":
		return workload.Jump(r, n, 0, 4, 16)
	case "wave":
		return workload.Wave(r, n/2, 0, 0.25, 0, maxk)
	case "walk":
		return workload.Walk(r, 2*n, maxk/2, 0, maxk)
	case "scan":
		return workload.Scan(0, 1, 0, maxk)
	case "mixed":
		return workload.Mixed(r, n/4)
	}
	return nil, fmt.Errorf("unknown workload %q", name)
}

type flags struct {
	ConfigPath string
	config.Config
}

// parseConfig parses command flags, reads the config file if any, and
// returns the merged parsed config.
func parseConfig() config.Parsed {
	l := log.NewLogger(log.DebugLevel, os.Stderr)
	flg := parseFlags()
	fileConf := config.Default()
	if flg.ConfigPath != "" {
		data, err := ioutil.ReadFile(flg.ConfigPath)
		if err != nil {
			l.Fatal("Config file read error: ", err)
		}
		if err := json.Unmarshal(data, fileConf); err != nil {
			l.Fatal("Config parse error: ", err)
		}
	}
	config.Merge(fileConf, &flg.Config)
	parsed, err := config.Parse(fileConf)
	if err != nil {
		l.Fatal("Config error: ", err)
	}
	return parsed
}

func parseFlags() flags {
	var f flags
	flag.StringVar(&f.ConfigPath, "config", "", "path to json config")

	def := config.Default()
	usage := func(usage string, defVal interface{}) string {
		if _, ok := defVal.(string); ok {
			return usage + fmt.Sprintf(" (default %q)", defVal)
		}
		return usage + fmt.Sprintf(" (default %v)", defVal)
	}
	flag.IntVar(&f.Size, "size", 0, usage("cache tier capacity in entries", def.Size))
	flag.IntVar(&f.MSize, "msize", 0, usage("metadata tier capacity, -1 means size", def.MSize))
	flag.StringVar(&f.T, "t", "", usage("comma separated decay time constants, inf allowed", def.T))
	flag.StringVar(&f.Workloads, "workloads", "", usage("comma separated workloads: expo,jump,wave,walk,scan,mixed", def.Workloads))
	flag.IntVar(&f.Accesses, "accesses", 0, usage("accesses per run, 0 means 128*size", "128*size"))
	flag.Int64Var(&f.Seed, "seed", 0, usage("workload random seed", def.Seed))
	flag.StringVar(&f.LogDestination, "log-destination", "", usage("log destination: stderr, stdout or file path", def.LogDestination))
	flag.StringVar(&f.LogLevel, "log-level", "", usage("log level: debug, info, warn, error, fatal", def.LogLevel))
	flag.Parse()
	return f
}
