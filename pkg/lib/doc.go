// Package lib provides a Go SDK for the bootr boot controller.
//
// This package allows applications to run the boot building blocks
// programmatically without shelling out to the bootr CLI binary: execute a
// customer startup script, verify installed versions, write and read
// environment snapshot artifacts, and query the boot history.
//
// # Quick Start
//
// Create a client and inspect the boot history:
//
//	client, err := lib.New(ctx, lib.Config{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	boots, err := client.ListBoots(ctx)
//	for _, b := range boots {
//	    fmt.Printf("%s %s %s\n", b.ID, b.Component, b.Status)
//	}
//
// # Startup Scripts
//
// Run a customer startup script and inspect its outcome. The script is
// sourced, so an `exit` inside it is reported as a termination request
// instead of killing the calling process:
//
//	result, err := client.RunScript(ctx, "/usr/local/airflow/startup/startup.sh")
//	if result.Terminated {
//	    fmt.Printf("script requested exit with code %d\n", result.ExitCode)
//	}
//
// # Version Verification
//
// Verify installed component versions against an expected versions manifest.
// Verification is advisory: it reports discrepancies, it never fails:
//
//	discrepancies, err := client.Verify(ctx, lib.Manifest{
//	    RuntimeVersion: "3.11",
//	    Components:     []lib.ExpectedVersion{{Component: "apache-airflow", Version: "2.9.2"}},
//	})
//
// # Environment Snapshots
//
// Write the current process environment to a snapshot artifact and read
// artifacts back:
//
//	err := client.Snapshot("/tmp/customer_env.json")
//	env, err := client.ReadSnapshot("/tmp/customer_env.json")
//
// # Error Handling
//
// All methods return errors that can be inspected with [errors.Is]:
//
//   - [ErrNotFound]: Resource does not exist.
//   - [ErrAlreadyExists]: Resource with the same ID already exists.
//   - [ErrNotValid]: Invalid input.
//
// # Testing
//
// Use a temporary database path to write tests without touching the real
// boot history:
//
//	client, _ := lib.New(ctx, lib.Config{
//	    DBPath: filepath.Join(t.TempDir(), "test.db"),
//	})
//	defer client.Close()
//
// # Thread Safety
//
// A [Client] is safe for concurrent use from multiple goroutines. The
// underlying storage uses SQLite with WAL mode.
package lib
