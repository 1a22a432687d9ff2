package utils

import (
	"log"

	"github.com/jwaldrip/odin/cli"
)

type ArgsOpt struct {
	OutDir string
	NumCPU int
	CfgFn  string
}

// return global arguments and check if successed
func CheckGlobalArgs(c cli.Command) (opt ArgsOpt, succ bool) {
	opt.OutDir = c.Flag("o").String()
	if opt.OutDir == "" {
		log.Fatalf("[CheckGlobalArgs] args 'o' not set\n")
	}
	opt.CfgFn = c.Flag("cfg").String()

	var ok bool
	opt.NumCPU, ok = c.Flag("t").Get().(int)
	if !ok {
		log.Fatalf("[CheckGlobalArgs] args 't': %v set error\n", c.Flag("t").String())
	}
	if opt.NumCPU < 1 {
		log.Fatalf("[CheckGlobalArgs] args 't': %d must be at least 1\n", opt.NumCPU)
	}
	return opt, true
}

func MaxInt(a, b int) int {
	if a > b {
		return a
	} else {
		return b
	}
}

func MinInt(a, b int) int {
	if a > b {
		return b
	} else {
		return a
	}
}
