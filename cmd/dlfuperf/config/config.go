// Package config holds the dlfuperf configuration: defaults, file/flag
// merging and parsing into runnable form.
package config

import (
	"encoding/json"
	"io"
	"math"
	"os"
	"reflect"
	"strconv"
	"strings"

	"github.com/facebookgo/stackerr"

	"github.com/dbaarda/DLFUCache/internal/util"
	"github.com/dbaarda/DLFUCache/log"
)

// Config is the raw input configuration. List-valued options are
// comma-separated strings so the zero-value merge stays trivial.
type Config struct {
	Size  int `json:"size,omitempty"`
	MSize int `json:"msize,omitempty"`
	// T is a comma-separated list of decay time constants; "inf" is allowed.
	T string `json:"t,omitempty"`
	// Workloads is a comma-separated subset of expo,walk,wave,jump,scan,mixed.
	Workloads string `json:"workloads,omitempty"`
	// Accesses per run; 0 means 128*size.
	Accesses       int    `json:"accesses,omitempty"`
	Seed           int64  `json:"seed,omitempty"`
	LogDestination string `json:"log-destination,omitempty"` // Stdout, stderr, or filepath.
	LogLevel       string `json:"log-level,omitempty"`
}

func Default() *Config {
	return &Config{
		Size:           1024,
		MSize:          -1,
		T:              "0,1,2,4,8,16,inf",
		Workloads:      "expo,jump,wave,walk,mixed",
		Seed:           7,
		LogDestination: "stderr",
		LogLevel:       "info",
	}
}

// Parsed is the runnable form of a Config.
type Parsed struct {
	Size           int
	MSize          int
	T              []float64
	Workloads      []string
	Accesses       int
	Seed           int64
	LogDestination io.Writer
	LogLevel       log.Level
}

func Parse(conf *Config) (p Parsed, err error) {
	p.Size = conf.Size
	p.MSize = conf.MSize
	p.Seed = conf.Seed
	p.Accesses = conf.Accesses
	if p.Accesses == 0 {
		p.Accesses = 128 * conf.Size
	}
	for _, s := range strings.Split(conf.T, ",") {
		t, terr := parseT(strings.TrimSpace(s))
		if terr != nil {
			err = terr
			return
		}
		p.T = append(p.T, t)
	}
	for _, w := range strings.Split(conf.Workloads, ",") {
		p.Workloads = append(p.Workloads, strings.TrimSpace(w))
	}
	p.LogDestination, err = logDestination(conf.LogDestination)
	if err != nil {
		err = stackerr.Newf("Log destination open error: %v", err)
		return
	}
	p.LogLevel, err = log.LevelFromString(strings.ToUpper(conf.LogLevel))
	if err != nil {
		err = stackerr.Newf("Log level parse error: %v", err)
		return
	}
	return p, nil
}

func parseT(s string) (float64, error) {
	if strings.EqualFold(s, "inf") {
		return math.Inf(1), nil
	}
	t, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, stackerr.Newf("T parse error: %v", err)
	}
	return t, nil
}

func logDestination(dest string) (w io.Writer, err error) {
	switch strings.ToLower(dest) {
	case "stderr":
		w = os.Stderr
	case "stdout":
		w = os.Stdout
	default:
		w, err = os.OpenFile(dest, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0666)
	}
	return
}

// Merge overwrites def values with non-zero override values.
func Merge(def, override *Config) {
	defVal := reflect.ValueOf(def).Elem()
	overrideVal := reflect.ValueOf(override).Elem()
	for i, end := 0, defVal.NumField(); i < end; i++ {
		overrideVal := overrideVal.Field(i)
		if !util.IsZeroVal(overrideVal) {
			defVal.Field(i).Set(overrideVal)
		}
	}
}

func Marshal(conf *Config) []byte {
	data, err := json.Marshal(conf)
	if err != nil {
		panic(err)
	}
	return data
}
