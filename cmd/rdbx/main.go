// Command rdbx is the interactive command facade over the rdbx engine:
// a REPL that tokenizes CREATE/USE/SET/GET/EXIT lines into calls on
// internal/database, per spec.md §4.6/§6.
//
// Grounded on original_source/src/main.rs's main loop for the prompt
// shape ("db [name] > ") and uppercase command dispatch, and on the
// teacher's main2.go for the Go idiom of driving the engine from a
// small main package that never touches page internals directly.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"

	"rdbx/internal/database"
	"rdbx/internal/dberrors"
	"rdbx/internal/metrics"
)

func main() {
	metricsAddr := flag.String("metrics-addr", "", "if set, serve Prometheus metrics on this address (e.g. :9090)")
	flag.Parse()

	if dsn := os.Getenv("RDBX_SENTRY_DSN"); dsn != "" {
		if err := sentry.Init(sentry.ClientOptions{Dsn: dsn}); err != nil {
			fmt.Fprintf(os.Stderr, "sentry init failed: %v\n", err)
		} else {
			defer sentry.Flush(2 * time.Second)
			defer sentry.Recover()
		}
	}

	if *metricsAddr != "" {
		go func() {
			if err := http.ListenAndServe(*metricsAddr, metrics.Handler()); err != nil {
				fmt.Fprintf(os.Stderr, "metrics server: %v\n", err)
			}
		}()
	}

	repl()
}

// repl owns the facade's one piece of mutable state: the currently
// active database, if any.
func repl() {
	var active *database.Database
	defer func() {
		if active != nil {
			active.Close()
		}
	}()

	fmt.Println("rdbx v1 - paged B-tree key/value store")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print(prompt(active))
		if !scanner.Scan() {
			return
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		switch strings.ToUpper(fields[0]) {
		case "CREATE":
			if len(fields) < 2 {
				fmt.Println("Error: CREATE requires a database name")
				continue
			}
			if err := database.Create("", fields[1]); err != nil {
				report(err)
				continue
			}
			fmt.Printf("Database '%s' created.\n", fields[1])

		case "USE":
			if len(fields) < 2 {
				fmt.Println("Error: USE requires a database name")
				continue
			}
			db, err := database.Open("", fields[1])
			if err != nil {
				report(err)
				continue
			}
			if active != nil {
				active.Close()
			}
			active = db
			fmt.Println("Loaded v1 engine.")

		case "SET":
			if len(fields) < 3 {
				fmt.Println("Error: SET requires a key and a value")
				continue
			}
			if active == nil {
				report(dberrors.ErrNoActiveDatabase)
				continue
			}
			if err := active.Set(fields[1], strings.Join(fields[2:], " ")); err != nil {
				report(err)
				continue
			}
			fmt.Println("OK")

		case "GET":
			if len(fields) < 2 {
				fmt.Println("Error: GET requires a key")
				continue
			}
			if active == nil {
				report(dberrors.ErrNoActiveDatabase)
				continue
			}
			value, err := active.Get(fields[1])
			if dberrors.IsKeyAbsent(err) {
				fmt.Println("(nil)")
				continue
			}
			if err != nil {
				report(err)
				continue
			}
			fmt.Printf("%q\n", value)

		case "EXIT":
			return

		default:
			fmt.Println("Error: unknown command")
		}
	}
}

func prompt(active *database.Database) string {
	if active == nil {
		return "db [none] > "
	}
	return fmt.Sprintf("db [%s] > ", active.Name())
}

func report(err error) {
	if hub := sentry.CurrentHub(); hub.Client() != nil {
		hub.CaptureException(err)
	}
	fmt.Printf("Error: %s\n", err)
}
