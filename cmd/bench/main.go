// Command bench drives inserts and/or selects against a single table as
// fast as a configurable number of goroutines allow, sampling a subset
// of request latencies for reporting.
package main

import (
	"fmt"
	"log"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/profile"

	"github.com/riverscale/cqldriver/gocql"
)

const insertStmt = "INSERT INTO benchks.benchtab (pk, v1, v2) VALUES(?, ?, ?)"
const selectStmt = "SELECT v1, v2 FROM benchks.benchtab WHERE pk = ?"
const samples = 20_000

func main() {
	config := readConfig()
	log.Printf("Benchmark configuration: %#v\n", config)

	if config.profileCPU && config.profileMem {
		log.Fatal("select one profile type")
	}
	if config.profileCPU {
		log.Println("Running with CPU profiling")
		defer profile.Start(profile.CPUProfile).Stop()
	}
	if config.profileMem {
		log.Println("Running with memory profiling")
		defer profile.Start(profile.MemProfile).Stop()
	}

	cluster := gocql.NewCluster(config.nodeAddresses...)
	cluster.Timeout = 30 * time.Second

	session, err := cluster.CreateSession()
	if err != nil {
		panic(err)
	}
	defer session.Close()

	if !config.dontPrepare {
		prepareKeyspaceAndTable(session)
	}

	if config.workload == Selects && !config.dontPrepare {
		prepareSelectsBenchmark(session, config)
	}

	var wg sync.WaitGroup
	nextBatchStart := int64(0)

	log.Println("Starting the benchmark")

	startTime := time.Now()

	selectCh := make(chan time.Duration, 2*samples)
	insertCh := make(chan time.Duration, 2*samples)
	for i := int64(0); i < config.concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			insertQ := session.Query(insertStmt)
			selectQ := session.Query(selectStmt)

			for {
				curBatchStart := atomic.AddInt64(&nextBatchStart, config.batchSize) - config.batchSize
				if curBatchStart >= config.tasks {
					break
				}

				curBatchEnd := min(curBatchStart+config.batchSize, config.tasks)

				for pk := curBatchStart; pk < curBatchEnd; pk++ {
					sample := rand.Int63n(config.tasks) < samples
					var start time.Time

					if config.workload == Inserts || config.workload == Mixed {
						if sample {
							start = time.Now()
						}
						if err := insertQ.Bind(pk, 2*pk, 3*pk).Exec(); err != nil {
							panic(err)
						}
						if sample {
							insertCh <- time.Since(start)
						}
					}

					if config.workload == Selects || config.workload == Mixed {
						var v1, v2 int64
						if sample {
							start = time.Now()
						}
						if err := selectQ.Bind(pk).Scan(&v1, &v2); err != nil {
							panic(err)
						}
						if v1 != 2*pk || v2 != 3*pk {
							panic("bad data")
						}
						if sample {
							selectCh <- time.Since(start)
						}
					}
				}
			}
		}()
	}

	wg.Wait()
	benchTime := time.Since(startTime)

	fmt.Printf("time %d\n", benchTime.Milliseconds())
	printLatencyInfo("select", selectCh)
	printLatencyInfo("insert", insertCh)
	log.Printf("Finished\nBenchmark time: %d ms\n", benchTime.Milliseconds())
}

func printLatencyInfo(name string, ch chan time.Duration) {
	cnt := len(ch)
	for i := 0; i < cnt; i++ {
		fmt.Printf("%s %d\n", name, (<-ch).Nanoseconds())
	}
}

func awaitSchemaAgreement() {
	time.Sleep(time.Second)
}

func prepareKeyspaceAndTable(session *gocql.Session) {
	if err := session.Query("DROP KEYSPACE IF EXISTS benchks").Exec(); err != nil {
		panic(err)
	}
	awaitSchemaAgreement()

	if err := session.Query("CREATE KEYSPACE IF NOT EXISTS benchks WITH REPLICATION = " +
		"{'class' : 'SimpleStrategy', 'replication_factor' : 1}").Exec(); err != nil {
		panic(err)
	}
	awaitSchemaAgreement()

	if err := session.Query("CREATE TABLE IF NOT EXISTS benchks.benchtab " +
		"(pk bigint PRIMARY KEY, v1 bigint, v2 bigint)").Exec(); err != nil {
		panic(err)
	}
	awaitSchemaAgreement()
}

func prepareSelectsBenchmark(session *gocql.Session, config Config) {
	log.Println("Preparing a selects benchmark (inserting values)...")

	var wg sync.WaitGroup
	nextBatchStart := int64(0)

	for i := int64(0); i < max(1024, config.concurrency); i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			insertQ := session.Query(insertStmt)

			for {
				curBatchStart := atomic.AddInt64(&nextBatchStart, config.batchSize) - config.batchSize
				if curBatchStart >= config.tasks {
					break
				}

				curBatchEnd := min(curBatchStart+config.batchSize, config.tasks)

				for pk := curBatchStart; pk < curBatchEnd; pk++ {
					if err := insertQ.Bind(pk, 2*pk, 3*pk).Exec(); err != nil {
						panic(err)
					}
				}
			}
		}()
	}

	wg.Wait()
}

func min(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}

func max(a, b int64) int64 {
	if a < b {
		return b
	}
	return a
}
