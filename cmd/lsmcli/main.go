package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/dlhxzb/mini-lsm/pkg/config"
	"github.com/dlhxzb/mini-lsm/pkg/logging"
	"github.com/dlhxzb/mini-lsm/pkg/lsm"
)

type cli struct {
	storage *lsm.LsmStorage
	logger  logging.Logger
	scanner *bufio.Scanner
}

func main() {
	dataDir := flag.String("data", "./data/lsmcli", "Storage directory")
	configPath := flag.String("config", "", "Path to a YAML config file (overrides -data and defaults)")
	flag.Parse()

	logger := logging.DefaultLogger().With(logging.Component("lsmcli"))

	path := *dataDir
	options := lsm.DefaultOptions()
	if *configPath != "" {
		var err error
		path, options, err = config.Load(*configPath)
		if err != nil {
			logger.Error("failed to load config", logging.Path(*configPath), logging.Error(err))
			os.Exit(1)
		}
	}

	if err := os.MkdirAll(path, 0o755); err != nil {
		logger.Error("failed to create storage directory", logging.Path(path), logging.Error(err))
		os.Exit(1)
	}

	storage, err := lsm.Open(context.Background(), path, options)
	if err != nil {
		logger.Error("failed to open storage", logging.Path(path), logging.Error(err))
		os.Exit(1)
	}
	defer storage.Close()

	logger.Info("storage opened", logging.Path(path))
	fmt.Printf("mini-lsm interactive shell, data dir %s\n", path)
	fmt.Println("Type 'help' for available commands, 'exit' to quit.")

	c := &cli{storage: storage, logger: logger, scanner: bufio.NewScanner(os.Stdin)}
	c.run()
}

func (c *cli) run() {
	for {
		fmt.Print("lsm> ")
		if !c.scanner.Scan() {
			break
		}
		line := strings.TrimSpace(c.scanner.Text())
		if line == "" {
			continue
		}
		args := strings.Fields(line)
		cmd := args[0]
		rest := args[1:]

		switch cmd {
		case "exit", "quit":
			return
		case "help":
			c.printHelp()
		case "put":
			c.cmdPut(rest)
		case "get":
			c.cmdGet(rest)
		case "delete", "del":
			c.cmdDelete(rest)
		case "scan":
			c.cmdScan(rest)
		case "sync":
			c.cmdSync()
		case "stats":
			c.cmdStats()
		default:
			fmt.Printf("unknown command %q, type 'help' for a list\n", cmd)
		}
	}
}

func (c *cli) printHelp() {
	fmt.Println(`Commands:
  put <key> <value>   store a value
  get <key>            fetch a value
  delete <key>         remove a key
  scan [lower] [upper]  print all entries in [lower, upper], unbounded if omitted
  sync                  flush the active memtable to a new SST
  stats                 print operation counters and layer-set shape
  exit                  quit`)
}

func (c *cli) cmdPut(args []string) {
	if len(args) != 2 {
		fmt.Println("usage: put <key> <value>")
		return
	}
	if err := c.storage.Put([]byte(args[0]), []byte(args[1])); err != nil {
		fmt.Printf("error: %v\n", err)
		return
	}
	fmt.Println("OK")
}

func (c *cli) cmdGet(args []string) {
	if len(args) != 1 {
		fmt.Println("usage: get <key>")
		return
	}
	value, ok, err := c.storage.Get([]byte(args[0]))
	if err != nil {
		fmt.Printf("error: %v\n", err)
		return
	}
	if !ok {
		fmt.Println("(not found)")
		return
	}
	fmt.Printf("%s\n", value)
}

func (c *cli) cmdDelete(args []string) {
	if len(args) != 1 {
		fmt.Println("usage: delete <key>")
		return
	}
	if err := c.storage.Delete([]byte(args[0])); err != nil {
		fmt.Printf("error: %v\n", err)
		return
	}
	fmt.Println("OK")
}

func (c *cli) cmdScan(args []string) {
	lower := lsm.UnboundedBound()
	upper := lsm.UnboundedBound()
	if len(args) > 0 && args[0] != "-" {
		lower = lsm.IncludedBound([]byte(args[0]))
	}
	if len(args) > 1 && args[1] != "-" {
		upper = lsm.IncludedBound([]byte(args[1]))
	}

	it, err := c.storage.Scan(lower, upper)
	if err != nil {
		fmt.Printf("error: %v\n", err)
		return
	}
	count := 0
	for it.IsValid() {
		fmt.Printf("%s => %s\n", it.Key(), it.Value())
		count++
		if err := it.Next(); err != nil {
			fmt.Printf("error: %v\n", err)
			return
		}
	}
	fmt.Printf("(%d entries)\n", count)
}

func (c *cli) cmdSync() {
	if err := c.storage.Sync(context.Background()); err != nil {
		fmt.Printf("error: %v\n", err)
		return
	}
	fmt.Println("OK")
}

func (c *cli) cmdStats() {
	s := c.storage.Stats()
	fmt.Printf("gets=%d puts=%d deletes=%d syncs=%d scans=%d memtable_bytes=%d l0_sstables=%d imm_memtables=%d\n",
		s.Gets, s.Puts, s.Deletes, s.Syncs, s.Scans, s.MemtableBytes, s.L0SSTables, s.ImmMemtables)
}
