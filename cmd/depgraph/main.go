// Command depgraph is a small driver binary wiring C1-C11 together
// behind a -task flag (C12), mirroring the teacher's own root-level
// main.go/pipeline.go split (§10).
package main

import (
	"log"

	"github.com/cs-au-dk/depgraph/analysis/pgraph/pgraphio"
	"github.com/cs-au-dk/depgraph/utils"
)

var (
	opts = utils.Opts()
	task = opts.Task()
)

func main() {
	utils.ParseArgs()

	defer func() {
		if r := recover(); r != nil {
			log.Fatalln("fatal:", r)
		}
	}()

	res, err := pgraphio.LoadFile(opts.InputPath())
	if err != nil {
		log.Fatalln(err)
	}

	switch {
	case task.IsPointsTo():
		runPointsTo(res)
	case task.IsReachingDefs():
		runReachingDefs(res)
	case task.IsCfgToDot():
		runCfgToDot(res)
	case task.IsValidate():
		runValidate(res)
	}
}
