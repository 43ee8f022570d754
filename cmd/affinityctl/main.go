// Command affinityctl drives a Pool through one demo run: rate-limited
// submissions spread over a fixed set of affinity keys, with an occasional
// panicking task that forces a worker replacement, followed by a graceful
// drain. It reports completed, panicked and rejected counts and the
// per-queue depths at shutdown. It plays the same role
// examples/real-world/bench/runner/runner.go and the billion_rows
// benchmark play in the teacher repo: both a manual-verification tool and
// a worked example of the package's API.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"sync/atomic"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/time/rate"

	"github.com/RamSinha/affinitypool"
)

var (
	ctlBold   = color.New(color.Bold)
	ctlGreen  = color.New(color.FgGreen)
	ctlRed    = color.New(color.FgRed)
	ctlYellow = color.New(color.FgYellow)
)

func main() {
	parallelism := flag.Int("parallelism", 4, "number of queues/workers")
	groupSize := flag.Int("group-size", 64, "per-queue capacity")
	keys := flag.Int("keys", 8, "distinct affinity keys to submit under")
	submissions := flag.Int("submissions", 2000, "total tasks to submit")
	rps := flag.Float64("rate", 4000, "submission rate (tasks/sec)")
	flag.Parse()

	_, _ = ctlBold.Println("╔══════════════════════════════════════╗")
	_, _ = ctlBold.Println("║           affinitypool demo           ║")
	_, _ = ctlBold.Println("╚══════════════════════════════════════╝")

	p, err := affinitypool.New(*parallelism,
		affinitypool.WithGroupSize(*groupSize),
		affinitypool.WithName("affinityctl-demo"),
		affinitypool.WithWaitStrategyName(affinitypool.WaitYield),
	)
	if err != nil {
		_, _ = ctlRed.Printf("failed to build pool: %v\n", err)
		os.Exit(1)
	}

	var completed atomic.Int64
	var panicked atomic.Int64
	limiter := rate.NewLimiter(rate.Limit(*rps), int(*rps))

	bar := progressbar.NewOptions(*submissions,
		progressbar.OptionSetDescription("submitting"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
	)

	rejected := 0
	for i := 0; i < *submissions; i++ {
		_ = limiter.Wait(context.Background())

		key := int64(rand.Intn(*keys))
		task := affinitypool.TaskFunc(func() {
			if rand.Intn(500) == 0 {
				panicked.Add(1)
				panic("simulated task failure")
			}
			time.Sleep(time.Microsecond * 50)
			completed.Add(1)
		})

		if err := p.Execute(task, affinitypool.WithKey(key)); err != nil {
			rejected++
		}
		_ = bar.Add(1)
	}
	fmt.Println()

	_, _ = ctlYellow.Println("draining...")
	p.Shutdown()
	if !p.AwaitTermination(30 * time.Second) {
		_, _ = ctlRed.Println("pool did not terminate within the deadline")
	}

	printStats(p, completed.Load(), panicked.Load(), rejected)
}

func printStats(p *affinitypool.Pool, completed, panicked int64, rejected int) {
	stats := p.Stats()

	fmt.Println()
	_, _ = ctlBold.Println("Result")
	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Metric", "Value")
	_ = table.Append("Pool state", stats.State.String())
	_ = table.Append("Completed", fmt.Sprintf("%d", completed))
	_ = table.Append("Panicked (replaced)", fmt.Sprintf("%d", panicked))
	_ = table.Append("Rejected", fmt.Sprintf("%d", rejected))
	_ = table.Render()

	fmt.Println()
	_, _ = ctlGreen.Println("queue depths at shutdown:")
	for i, d := range p.QueueDepths() {
		fmt.Printf("  queue %d: %d\n", i, d)
	}
}
