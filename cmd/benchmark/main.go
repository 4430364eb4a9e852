package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lychee-technology/nilability"
	"github.com/lychee-technology/nilability/factory"
)

type options struct {
	schemaDir    string
	records      int
	columns      int
	relations    int
	workers      int
	duration     time.Duration
	seed         int64
	seedProvided bool
}

func main() {
	log.SetFlags(0)

	opts := parseFlags()
	ctx := context.Background()

	if !opts.seedProvided {
		log.Printf("[info] Using random seed %d", opts.seed)
	}
	random := rand.New(rand.NewSource(opts.seed))

	var records []nilability.RecordClass
	var reflections []nilability.RelationshipReflection
	if opts.schemaDir != "" {
		config := nilability.DefaultConfig()
		config.Metadata.SchemaDirectory = opts.schemaDir
		rt, err := factory.NewRuntimeWithConfig(ctx, config)
		if err != nil {
			log.Fatalf("failed to load records from %s: %v", opts.schemaDir, err)
		}
		defer rt.Close()
		for _, name := range rt.Registry.ListRecords() {
			record, err := rt.Registry.GetRecord(name)
			if err != nil {
				log.Fatalf("failed to get record %s: %v", name, err)
			}
			rels, err := rt.Registry.Relationships(name)
			if err != nil {
				log.Fatalf("failed to get relationships of %s: %v", name, err)
			}
			records = append(records, record)
			reflections = append(reflections, rels...)
		}
	} else {
		defs := buildSyntheticRecords(random, opts.records, opts.columns, opts.relations)
		for _, def := range defs {
			records = append(records, def)
			reflections = append(reflections, def.Relationships...)
		}
	}
	if len(records) == 0 {
		log.Fatalf("no records to benchmark")
	}
	log.Printf("[info] Benchmarking %d records, %d relationships, %d workers for %s",
		len(records), len(reflections), opts.workers, opts.duration)

	engine := factory.NewEngine(nilability.DefaultConfig())
	attrOps, relOps := run(engine, records, reflections, opts.workers, opts.duration, opts.seed)

	secs := opts.duration.Seconds()
	log.Printf("[result] attribute decisions:    %d (%.0f/s)", attrOps, float64(attrOps)/secs)
	log.Printf("[result] relationship decisions: %d (%.0f/s)", relOps, float64(relOps)/secs)
}

func parseFlags() options {
	var opts options
	flag.StringVar(&opts.schemaDir, "schema-dir", getenvDefault("SCHEMA_DIR", ""), "benchmark real record documents instead of a synthetic snapshot")
	flag.IntVar(&opts.records, "records", getenvDefaultInt("BENCH_RECORDS", 200), "synthetic record count")
	flag.IntVar(&opts.columns, "columns", getenvDefaultInt("BENCH_COLUMNS", 20), "columns per synthetic record")
	flag.IntVar(&opts.relations, "relations", getenvDefaultInt("BENCH_RELATIONS", 5), "relationships per synthetic record")
	flag.IntVar(&opts.workers, "workers", getenvDefaultInt("BENCH_WORKERS", 8), "concurrent goroutines")
	flag.DurationVar(&opts.duration, "duration", 5*time.Second, "benchmark duration")
	seed := flag.Int64("seed", 0, "random seed (default: time based)")
	flag.Parse()

	opts.seedProvided = *seed != 0
	opts.seed = *seed
	if !opts.seedProvided {
		opts.seed = time.Now().UnixNano()
	}
	if opts.workers <= 0 {
		opts.workers = 1
	}
	return opts
}

var conditionKinds = []nilability.ConditionKind{nilability.ConditionIf, nilability.ConditionUnless, nilability.ConditionOn}

// buildSyntheticRecords generates records with a random mix of NOT NULL
// columns, conditional and unconditional presence rules, and relationships.
func buildSyntheticRecords(r *rand.Rand, count, columns, relations int) []*nilability.RecordDefinition {
	cardinalities := []nilability.Cardinality{
		nilability.CardinalityOwningToOne,
		nilability.CardinalityOwnedToOne,
		nilability.CardinalityToMany,
	}

	defs := make([]*nilability.RecordDefinition, 0, count)
	for i := 0; i < count; i++ {
		def := &nilability.RecordDefinition{
			RecordName:        fmt.Sprintf("Record%d", i),
			Table:             fmt.Sprintf("record_%d", i),
			RequiredByDefault: r.Intn(2) == 0,
			ColumnMap:         make(map[string]nilability.ColumnMetadata, columns+relations),
			Validations:       make(map[string][]nilability.ValidationRule),
		}
		for c := 0; c < columns; c++ {
			name := "field_" + strconv.Itoa(c)
			def.ColumnMap[name] = nilability.ColumnMetadata{Nullable: r.Intn(3) != 0}
			if rule, ok := randomPresenceRule(r); ok {
				def.Validations[name] = []nilability.ValidationRule{rule}
			}
		}
		for k := 0; k < relations; k++ {
			name := "rel_" + strconv.Itoa(k)
			fk := name + "_id"
			def.ColumnMap[fk] = nilability.ColumnMetadata{Nullable: r.Intn(2) == 0}
			rel := nilability.RelationshipReflection{
				Cardinality: cardinalities[r.Intn(len(cardinalities))],
				Name:        name,
				ForeignKey:  fk,
				ClassName:   fmt.Sprintf("Record%d", r.Intn(count)),
				Polymorphic: r.Intn(10) == 0,
				Owner:       def,
			}
			switch r.Intn(6) {
			case 0:
				rel.OptionalFlag = nilability.Bool(r.Intn(2) == 0)
			case 1:
				rel.ExplicitRequired = nilability.Bool(r.Intn(2) == 0)
			}
			if rule, ok := randomPresenceRule(r); ok {
				def.Validations[name] = []nilability.ValidationRule{rule}
			}
			def.Relationships = append(def.Relationships, rel)
		}
		defs = append(defs, def)
	}
	return defs
}

func randomPresenceRule(r *rand.Rand) (nilability.ValidationRule, bool) {
	switch r.Intn(4) {
	case 0:
		return nilability.PresenceRule(), true
	case 1:
		return nilability.PresenceRule(conditionKinds[r.Intn(len(conditionKinds))]), true
	default:
		return nilability.ValidationRule{}, false
	}
}

// run hammers engine from workers goroutines until duration elapses.
func run(engine nilability.Engine, records []nilability.RecordClass, reflections []nilability.RelationshipReflection, workers int, duration time.Duration, seed int64) (int64, int64) {
	var attrOps, relOps atomic.Int64
	deadline := time.Now().Add(duration)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(seed + int64(worker)))
			for time.Now().Before(deadline) {
				for i := 0; i < 256; i++ {
					record := records[r.Intn(len(records))]
					engine.IsNilable(record, "field_"+strconv.Itoa(r.Intn(32)))
					attrOps.Add(1)
					if len(reflections) > 0 {
						engine.IsRequired(reflections[r.Intn(len(reflections))])
						relOps.Add(1)
					}
				}
			}
		}(w)
	}
	wg.Wait()
	return attrOps.Load(), relOps.Load()
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvDefaultInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return def
}
