package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

func initUint(variable *uint, name string, defaultValue uint) {
	str := os.Getenv(name)
	val, err := strconv.Atoi(str)
	if len(str) == 0 || err != nil || val < 0 {
		*variable = defaultValue
		return
	}
	*variable = uint(val)
}

func initString(variable *string, name string, defaultValue string) {
	str := os.Getenv(name)
	if len(str) == 0 {
		*variable = defaultValue
		return
	}
	*variable = str
}

// initDuration parses seconds (fractions allowed, e.g. 0.5)
func initDuration(variable *time.Duration, name string, defaultValue time.Duration) {
	str := os.Getenv(name)
	val, err := strconv.ParseFloat(str, 64)
	if len(str) == 0 || err != nil || val <= 0 {
		*variable = defaultValue
		return
	}
	*variable = time.Duration(val * float64(time.Second))
}

func initList(variable *[]string, name string, defaultValue []string) {
	*variable = nil
	for _, v := range strings.Split(os.Getenv(name), ",") {
		v = strings.TrimSpace(v)
		if len(v) > 0 {
			*variable = append(*variable, v)
		}
	}
	if len(*variable) == 0 {
		*variable = defaultValue
	}
}
