package config

import (
	"os"
	"strconv"
	"strings"
)

// Environment overrides for module runtime knobs.
const (
	EnvWorkers   = "PAKET_WORKERS"
	EnvBatchSize = "PAKET_BATCH_SIZE"
	EnvStrategy  = "PAKET_STRATEGY"
)

// ApplyEnv overrides the runtime of every module from the environment.
// Unset or unparsable variables leave the file values alone.
func (s *Settings) ApplyEnv() {
	for i := range s.Modules {
		rt := &s.Modules[i].Runtime
		rt.Workers = pickInt(getenvInt(EnvWorkers, 0), rt.Workers)
		rt.BatchSize = pickInt(getenvInt(EnvBatchSize, 0), rt.BatchSize)
		if v := strings.TrimSpace(os.Getenv(EnvStrategy)); v != "" {
			rt.Strategy = v
		}
	}
}

// getenvInt returns the integer value of key, or def when unset or invalid.
func getenvInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// pickInt returns v when positive, else def.
func pickInt(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}
